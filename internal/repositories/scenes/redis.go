package scenes

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/ProfessorProf/valor-bot-discord/internal/domain/scene"
	apperr "github.com/ProfessorProf/valor-bot-discord/internal/errors"
	"github.com/redis/go-redis/v9"
)

const (
	sceneKeyPrefix   = "scene:"
	channelKeyPrefix = "scene:channel:"
)

type redisRepo struct {
	client redis.UniversalClient
}

// NewRedis creates a Redis-backed scene repository. Scenes are stored as
// JSON blobs with a channel-id pointer key alongside.
func NewRedis(client redis.UniversalClient) Repository {
	return &redisRepo{client: client}
}

func sceneKey(id string) string {
	return sceneKeyPrefix + id
}

func channelKey(channelID string) string {
	return channelKeyPrefix + channelID
}

func (r *redisRepo) Create(ctx context.Context, sc *scene.Scene) error {
	data, err := json.Marshal(sc)
	if err != nil {
		return apperr.Wrap(err, "failed to marshal scene")
	}

	created, err := r.client.SetNX(ctx, sceneKey(sc.ID), string(data), 0).Result()
	if err != nil {
		return apperr.Wrap(err, "failed to store scene")
	}
	if !created {
		return apperr.Newf(apperr.CodeInvalidArgument, "scene already exists: %s", sc.ID)
	}

	if err := r.client.Set(ctx, channelKey(sc.ChannelID), sc.ID, 0).Err(); err != nil {
		return apperr.Wrap(err, "failed to index scene channel")
	}
	return nil
}

func (r *redisRepo) Get(ctx context.Context, id string) (*scene.Scene, error) {
	data, err := r.client.Get(ctx, sceneKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, apperr.NotFoundf("scene not found: %s", id)
	}
	if err != nil {
		return nil, apperr.Wrap(err, "failed to read scene")
	}

	var sc scene.Scene
	if err := json.Unmarshal([]byte(data), &sc); err != nil {
		return nil, apperr.Wrap(err, "failed to unmarshal scene")
	}
	return &sc, nil
}

func (r *redisRepo) GetByChannel(ctx context.Context, channelID string) (*scene.Scene, error) {
	id, err := r.client.Get(ctx, channelKey(channelID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, apperr.NotFoundf("no scene in channel: %s", channelID)
	}
	if err != nil {
		return nil, apperr.Wrap(err, "failed to read channel index")
	}
	return r.Get(ctx, id)
}

func (r *redisRepo) Update(ctx context.Context, sc *scene.Scene) error {
	exists, err := r.client.Exists(ctx, sceneKey(sc.ID)).Result()
	if err != nil {
		return apperr.Wrap(err, "failed to check scene")
	}
	if exists == 0 {
		return apperr.NotFoundf("scene not found: %s", sc.ID)
	}

	data, err := json.Marshal(sc)
	if err != nil {
		return apperr.Wrap(err, "failed to marshal scene")
	}
	if err := r.client.Set(ctx, sceneKey(sc.ID), string(data), 0).Err(); err != nil {
		return apperr.Wrap(err, "failed to store scene")
	}
	return nil
}

func (r *redisRepo) Delete(ctx context.Context, id string) error {
	sc, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sceneKey(id))
	pipe.Del(ctx, channelKey(sc.ChannelID))
	if _, err := pipe.Exec(ctx); err != nil {
		return apperr.Wrap(err, "failed to delete scene")
	}
	return nil
}
