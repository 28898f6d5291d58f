// Package scenes persists combat scenes. A Discord channel hosts at most
// one active scene, so lookup is by channel id.
package scenes

//go:generate mockgen -destination=mock/mock.go -package=mockscenes -source=repository.go

import (
	"context"

	"github.com/ProfessorProf/valor-bot-discord/internal/domain/scene"
)

// Repository defines the interface for scene persistence
type Repository interface {
	// Create stores a new scene
	Create(ctx context.Context, sc *scene.Scene) error

	// Get retrieves a scene by id
	Get(ctx context.Context, id string) (*scene.Scene, error)

	// GetByChannel retrieves the scene bound to a channel
	GetByChannel(ctx context.Context, channelID string) (*scene.Scene, error)

	// Update replaces an existing scene
	Update(ctx context.Context, sc *scene.Scene) error

	// Delete removes a scene
	Delete(ctx context.Context, id string) error
}
