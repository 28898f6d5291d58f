package notify

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// DiscordNotifier sends messages through a discordgo session. Whispers
// go out as DMs; when no GM user is configured, GM notices fall back to
// the channel.
type DiscordNotifier struct {
	session  *discordgo.Session
	gmUserID string
}

// DiscordNotifierConfig holds configuration for the notifier
type DiscordNotifierConfig struct {
	Session  *discordgo.Session
	GMUserID string
}

// NewDiscordNotifier creates a Discord-backed notifier
func NewDiscordNotifier(cfg *DiscordNotifierConfig) *DiscordNotifier {
	return &DiscordNotifier{
		session:  cfg.Session,
		gmUserID: cfg.GMUserID,
	}
}

func (n *DiscordNotifier) Broadcast(ctx context.Context, channelID, message string) error {
	_, err := n.session.ChannelMessageSend(channelID, message)
	return err
}

func (n *DiscordNotifier) Whisper(ctx context.Context, channelID, userID, message string) error {
	dm, err := n.session.UserChannelCreate(userID)
	if err != nil {
		return err
	}
	_, err = n.session.ChannelMessageSend(dm.ID, message)
	return err
}

func (n *DiscordNotifier) WhisperGM(ctx context.Context, channelID, message string) error {
	if n.gmUserID == "" {
		return n.Broadcast(ctx, channelID, message)
	}
	return n.Whisper(ctx, channelID, n.gmUserID, message)
}
