package scenes

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ProfessorProf/valor-bot-discord/internal/domain/scene"
	apperr "github.com/ProfessorProf/valor-bot-discord/internal/errors"
)

type inMemoryRepository struct {
	mu        sync.RWMutex
	scenes    map[string]*scene.Scene
	byChannel map[string]string // channelID -> scene ID
}

// NewInMemoryRepository creates a new in-memory scene repository
func NewInMemoryRepository() Repository {
	return &inMemoryRepository{
		scenes:    make(map[string]*scene.Scene),
		byChannel: make(map[string]string),
	}
}

func (r *inMemoryRepository) Create(ctx context.Context, sc *scene.Scene) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.scenes[sc.ID]; exists {
		return apperr.Newf(apperr.CodeInvalidArgument, "scene already exists: %s", sc.ID)
	}

	stored, err := cloneScene(sc)
	if err != nil {
		return err
	}
	r.scenes[sc.ID] = stored
	r.byChannel[sc.ChannelID] = sc.ID
	return nil
}

func (r *inMemoryRepository) Get(ctx context.Context, id string) (*scene.Scene, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sc, exists := r.scenes[id]
	if !exists {
		return nil, apperr.NotFoundf("scene not found: %s", id)
	}
	return cloneScene(sc)
}

func (r *inMemoryRepository) GetByChannel(ctx context.Context, channelID string) (*scene.Scene, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.byChannel[channelID]
	if !exists {
		return nil, apperr.NotFoundf("no scene in channel: %s", channelID)
	}
	sc, exists := r.scenes[id]
	if !exists {
		return nil, apperr.NotFoundf("scene not found: %s", id)
	}
	return cloneScene(sc)
}

func (r *inMemoryRepository) Update(ctx context.Context, sc *scene.Scene) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.scenes[sc.ID]; !exists {
		return apperr.NotFoundf("scene not found: %s", sc.ID)
	}
	stored, err := cloneScene(sc)
	if err != nil {
		return err
	}
	r.scenes[sc.ID] = stored
	r.byChannel[sc.ChannelID] = sc.ID
	return nil
}

func (r *inMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sc, exists := r.scenes[id]
	if !exists {
		return apperr.NotFoundf("scene not found: %s", id)
	}
	delete(r.byChannel, sc.ChannelID)
	delete(r.scenes, id)
	return nil
}

// cloneScene deep-copies through JSON so callers never share mutable
// state with the store
func cloneScene(sc *scene.Scene) (*scene.Scene, error) {
	data, err := json.Marshal(sc)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to clone scene")
	}
	var copied scene.Scene
	if err := json.Unmarshal(data, &copied); err != nil {
		return nil, apperr.Wrap(err, "failed to clone scene")
	}
	return &copied, nil
}
