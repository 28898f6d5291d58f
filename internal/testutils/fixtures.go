package testutils

import (
	"context"
	"fmt"
	"testing"

	"github.com/ProfessorProf/valor-bot-discord/internal/domain/scene"
	"github.com/ProfessorProf/valor-bot-discord/internal/repositories/attributes"
	"github.com/stretchr/testify/require"
)

// SeedSheet writes a playable character sheet, merging overrides into a
// sane level-1 default
func SeedSheet(t *testing.T, ctx context.Context, repo attributes.Repository, entityID string, overrides map[string]string) {
	t.Helper()

	attrs := map[string]string{
		"name":       entityID,
		"type":       "normal",
		"level":      "1",
		"hp":         "30",
		"hp_max":     "30",
		"st":         "15",
		"st_max":     "15",
		"valor":      "0",
		"valor_max":  "10",
		"mus":        "5",
		"dex":        "4",
		"aur":        "3",
		"int":        "3",
		"res":        "3",
		"defense":    "3",
		"resistance": "2",
	}
	for k, v := range overrides {
		attrs[k] = v
	}
	for k, v := range attrs {
		require.NoError(t, repo.Set(ctx, entityID, k, v))
	}
}

// SeedTechniqueRow writes one repeating tech row onto a sheet
func SeedTechniqueRow(t *testing.T, ctx context.Context, repo attributes.Repository, entityID, rowID string, fields map[string]string) {
	t.Helper()

	for field, value := range fields {
		name := fmt.Sprintf("repeating_tech_%s_%s", rowID, field)
		require.NoError(t, repo.Set(ctx, entityID, name, value))
	}
}

// SeedSkillRow writes one repeating skill row onto a sheet
func SeedSkillRow(t *testing.T, ctx context.Context, repo attributes.Repository, entityID, rowID, name string, level int) {
	t.Helper()

	require.NoError(t, repo.Set(ctx, entityID, fmt.Sprintf("repeating_skills_%s_name", rowID), name))
	require.NoError(t, repo.Set(ctx, entityID, fmt.Sprintf("repeating_skills_%s_level", rowID), fmt.Sprintf("%d", level)))
}

// SeedFlawRow writes one repeating flaw row onto a sheet
func SeedFlawRow(t *testing.T, ctx context.Context, repo attributes.Repository, entityID, rowID, name string) {
	t.Helper()

	require.NoError(t, repo.Set(ctx, entityID, fmt.Sprintf("repeating_flaws_%s_name", rowID), name))
}

// CreateTestToken builds a token with full default bars
func CreateTestToken(id, entityID string) *scene.Token {
	return &scene.Token{
		ID:       id,
		EntityID: entityID,
		Name:     entityID,
		HP:       scene.Bar{Value: 30, Max: 30},
		Stamina:  scene.Bar{Value: 15, Max: 15},
		Valor:    scene.Bar{Value: 0, Max: 10},
	}
}

// CreateTestScene builds a scene holding the given tokens with a turn
// order of the tokens in argument order followed by the Round marker
func CreateTestScene(id, channelID string, tokens ...*scene.Token) *scene.Scene {
	sc := scene.New(id, channelID)
	for _, tok := range tokens {
		sc.AddToken(tok)
		sc.TurnOrder = append(sc.TurnOrder, scene.NewCharacterEntry(tok.ID, tok.Initiative))
	}
	sc.TurnOrder = append(sc.TurnOrder, scene.NewRoundMarker(sc.Round))
	return sc
}
