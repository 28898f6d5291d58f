package attributes

import (
	"context"
	"errors"
	"sync"

	apperr "github.com/ProfessorProf/valor-bot-discord/internal/errors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	sheetKeyPrefix = "sheet:"
	sheetIndexKey  = "sheet:index"
)

// redisRepo implements the Repository interface using a Redis hash per
// entity plus an index set of entity ids
type redisRepo struct {
	client redis.UniversalClient
}

// NewRedis creates a Redis-backed attribute store
func NewRedis(client redis.UniversalClient) Repository {
	return &redisRepo{client: client}
}

func sheetKey(entityID string) string {
	return sheetKeyPrefix + entityID
}

func (r *redisRepo) Get(ctx context.Context, entityID, name string) (string, error) {
	exists, err := r.client.SIsMember(ctx, sheetIndexKey, entityID).Result()
	if err != nil {
		return "", apperr.Wrap(err, "failed to check entity")
	}
	if !exists {
		return "", apperr.NotFoundf("entity not found: %s", entityID)
	}

	value, err := r.client.HGet(ctx, sheetKey(entityID), name).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", apperr.Wrapf(err, "failed to read attribute %s", name)
	}
	return value, nil
}

func (r *redisRepo) Set(ctx context.Context, entityID, name, value string) error {
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, sheetKey(entityID), name, value)
	pipe.SAdd(ctx, sheetIndexKey, entityID)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperr.Wrapf(err, "failed to write attribute %s", name)
	}
	return nil
}

func (r *redisRepo) List(ctx context.Context, entityID string) (map[string]string, error) {
	exists, err := r.client.SIsMember(ctx, sheetIndexKey, entityID).Result()
	if err != nil {
		return nil, apperr.Wrap(err, "failed to check entity")
	}
	if !exists {
		return nil, apperr.NotFoundf("entity not found: %s", entityID)
	}

	attrs, err := r.client.HGetAll(ctx, sheetKey(entityID)).Result()
	if err != nil {
		return nil, apperr.Wrapf(err, "failed to list attributes for %s", entityID)
	}
	return attrs, nil
}

func (r *redisRepo) ListEntities(ctx context.Context) ([]string, error) {
	ids, err := r.client.SMembers(ctx, sheetIndexKey).Result()
	if err != nil {
		return nil, apperr.Wrap(err, "failed to list entities")
	}
	return ids, nil
}

func (r *redisRepo) ListAll(ctx context.Context) (map[string]map[string]string, error) {
	ids, err := r.ListEntities(ctx)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	all := make(map[string]map[string]string, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			attrs, gerr := r.client.HGetAll(gctx, sheetKey(id)).Result()
			if gerr != nil {
				return apperr.Wrapf(gerr, "failed to list attributes for %s", id)
			}
			mu.Lock()
			all[id] = attrs
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return all, nil
}
