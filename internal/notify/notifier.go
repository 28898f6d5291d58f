// Package notify abstracts outbound messaging to the host chat platform.
package notify

//go:generate mockgen -destination=mock/mock_notifier.go -package=mocknotify -source=notifier.go

import "context"

// Notifier sends rendered messages back through the host platform.
// Every failure path in the rules engine ends in one of these calls;
// nothing is fatal to the process.
type Notifier interface {
	// Broadcast sends a message to everyone in the channel
	Broadcast(ctx context.Context, channelID, message string) error

	// Whisper sends a private message to the controlling party
	Whisper(ctx context.Context, channelID, userID, message string) error

	// WhisperGM sends a private message to the supervising operator
	WhisperGM(ctx context.Context, channelID, message string) error
}
