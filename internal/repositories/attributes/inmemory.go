package attributes

import (
	"context"
	"sort"
	"sync"

	apperr "github.com/ProfessorProf/valor-bot-discord/internal/errors"
)

type inMemoryRepository struct {
	mu       sync.RWMutex
	entities map[string]map[string]string
}

// NewInMemoryRepository creates a new in-memory attribute store
func NewInMemoryRepository() Repository {
	return &inMemoryRepository{
		entities: make(map[string]map[string]string),
	}
}

func (r *inMemoryRepository) Get(ctx context.Context, entityID, name string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	attrs, ok := r.entities[entityID]
	if !ok {
		return "", apperr.NotFoundf("entity not found: %s", entityID)
	}
	return attrs[name], nil
}

func (r *inMemoryRepository) Set(ctx context.Context, entityID, name, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	attrs, ok := r.entities[entityID]
	if !ok {
		attrs = make(map[string]string)
		r.entities[entityID] = attrs
	}
	attrs[name] = value
	return nil
}

func (r *inMemoryRepository) List(ctx context.Context, entityID string) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	attrs, ok := r.entities[entityID]
	if !ok {
		return nil, apperr.NotFoundf("entity not found: %s", entityID)
	}

	copied := make(map[string]string, len(attrs))
	for k, v := range attrs {
		copied[k] = v
	}
	return copied, nil
}

func (r *inMemoryRepository) ListEntities(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.entities))
	for id := range r.entities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *inMemoryRepository) ListAll(ctx context.Context) (map[string]map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make(map[string]map[string]string, len(r.entities))
	for id, attrs := range r.entities {
		copied := make(map[string]string, len(attrs))
		for k, v := range attrs {
			copied[k] = v
		}
		all[id] = copied
	}
	return all, nil
}
