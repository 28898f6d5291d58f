package scenes_test

import (
	"context"
	"testing"

	"github.com/ProfessorProf/valor-bot-discord/internal/domain/scene"
	apperr "github.com/ProfessorProf/valor-bot-discord/internal/errors"
	"github.com/ProfessorProf/valor-bot-discord/internal/repositories/scenes"
	"github.com/ProfessorProf/valor-bot-discord/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	client := testutils.StartRedisContainer(t)
	repo := scenes.NewRedis(client)
	ctx := context.Background()

	sc := scene.New("scene-1", "channel-1")
	sc.AddToken(&scene.Token{ID: "t1", EntityID: "e1", HP: scene.Bar{Value: 30, Max: 30}})
	sc.TurnOrder = []*scene.TurnEntry{
		scene.NewCharacterEntry("t1", 7),
		scene.NewRoundMarker(1),
	}
	sc.RecordUse("e1", "Fireball", 1)
	sc.PushUndo(&scene.UndoEntry{TokenID: "t1", EntityID: "e1", TechniqueName: "Fireball", StaminaCost: 4})

	require.NoError(t, repo.Create(ctx, sc))

	// duplicate create is rejected
	require.Error(t, repo.Create(ctx, sc))

	got, err := repo.GetByChannel(ctx, "channel-1")
	require.NoError(t, err)
	assert.Equal(t, "scene-1", got.ID)
	assert.Equal(t, 30, got.Tokens["t1"].HP.Max)
	assert.Equal(t, 1, got.UseCount("e1", "Fireball"))
	require.Len(t, got.UndoStack, 1)
	assert.Equal(t, 4, got.UndoStack[0].StaminaCost)
	require.Len(t, got.TurnOrder, 2)
	assert.True(t, got.TurnOrder[1].IsRound())

	got.Round = 3
	require.NoError(t, repo.Update(ctx, got))

	got2, err := repo.Get(ctx, "scene-1")
	require.NoError(t, err)
	assert.Equal(t, 3, got2.Round)

	require.NoError(t, repo.Delete(ctx, "scene-1"))
	_, err = repo.Get(ctx, "scene-1")
	assert.True(t, apperr.IsNotFound(err))
	_, err = repo.GetByChannel(ctx, "channel-1")
	assert.True(t, apperr.IsNotFound(err))
}
