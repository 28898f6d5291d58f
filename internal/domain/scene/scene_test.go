package scene

import (
	"fmt"
	"testing"

	"github.com/ProfessorProf/valor-bot-discord/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScene_UsageHistory(t *testing.T) {
	s := New("scene-1", "channel-1")

	_, used := s.LastUseRound("e1", "Fireball")
	assert.False(t, used)
	assert.Equal(t, 0, s.UseCount("e1", "Fireball"))

	s.RecordUse("e1", "Fireball", 2)
	s.RecordUse("e1", "Fireball", 4)

	last, used := s.LastUseRound("e1", "Fireball")
	assert.True(t, used)
	assert.Equal(t, 4, last)
	assert.Equal(t, 2, s.UseCount("e1", "Fireball"))

	// name lookup is case-insensitive
	assert.Equal(t, 2, s.UseCount("e1", "FIREBALL"))

	require.True(t, s.RewindUse("e1", "Fireball"))
	last, used = s.LastUseRound("e1", "Fireball")
	assert.True(t, used)
	assert.Equal(t, 2, last)

	s.ClearHistory()
	assert.Equal(t, 0, s.UseCount("e1", "Fireball"))
	assert.False(t, s.RewindUse("e1", "Fireball"))
}

func TestScene_UndoStackBounded(t *testing.T) {
	s := New("scene-1", "channel-1")

	for i := 0; i < UndoDepth+5; i++ {
		s.PushUndo(&UndoEntry{TechniqueName: fmt.Sprintf("tech-%d", i)})
	}
	assert.Len(t, s.UndoStack, UndoDepth)

	// most recent first; the oldest five were dropped
	top := s.PopUndo()
	require.NotNil(t, top)
	assert.Equal(t, fmt.Sprintf("tech-%d", UndoDepth+4), top.TechniqueName)

	for s.PopUndo() != nil {
	}
	assert.Nil(t, s.PopUndo())
}

func TestToken_GrantShield(t *testing.T) {
	tok := &Token{ID: "t1"}

	assert.True(t, tok.GrantShield(20, shared.DamagePhysical))
	// a smaller shield of the same type never overwrites
	assert.False(t, tok.GrantShield(15, shared.DamagePhysical))
	assert.Equal(t, 20, tok.Shields[shared.DamagePhysical].Value)
	// a larger one does
	assert.True(t, tok.GrantShield(25, shared.DamagePhysical))
	assert.Equal(t, 25, tok.Shields[shared.DamagePhysical].Value)
	// different types coexist
	assert.True(t, tok.GrantShield(10, shared.DamageEnergy))
	assert.Len(t, tok.Shields, 2)
}

func TestToken_AbsorbDamage_VersatileFirst(t *testing.T) {
	tok := &Token{ID: "t1"}
	tok.GrantShield(10, shared.DamageVersatile)
	tok.GrantShield(8, shared.DamagePhysical)

	absorbed := tok.AbsorbDamage(15, shared.DamagePhysical)
	assert.Equal(t, 15, absorbed)
	// versatile fully spent, physical partially
	assert.Nil(t, tok.Shields[shared.DamageVersatile])
	assert.Equal(t, 3, tok.Shields[shared.DamagePhysical].Value)
}

func TestToken_AbsorbDamage_TypeMismatchPassesThrough(t *testing.T) {
	tok := &Token{ID: "t1"}
	tok.GrantShield(8, shared.DamagePhysical)

	absorbed := tok.AbsorbDamage(12, shared.DamageEnergy)
	assert.Equal(t, 0, absorbed)
	assert.Equal(t, 8, tok.Shields[shared.DamagePhysical].Value)
}

func TestToken_AbsorbDamage_CappedAtShield(t *testing.T) {
	tok := &Token{ID: "t1"}
	tok.GrantShield(5, shared.DamageEnergy)

	absorbed := tok.AbsorbDamage(30, shared.DamageEnergy)
	assert.Equal(t, 5, absorbed)
	assert.Empty(t, tok.Shields)
}

func TestScene_RotateTurn(t *testing.T) {
	s := New("scene-1", "channel-1")
	s.TurnOrder = []*TurnEntry{
		NewCharacterEntry("a", 8),
		NewCharacterEntry("b", 5),
		NewRoundMarker(1),
	}

	s.RotateTurn()
	assert.Equal(t, "b", s.TurnOrder[0].TokenID)
	assert.Equal(t, "a", s.TurnOrder[2].TokenID)
}

func TestTurnEntry_Kinds(t *testing.T) {
	round := NewRoundMarker(3)
	assert.True(t, round.IsMarker())
	assert.True(t, round.IsRound())

	effect := NewEffectMarker("Stunned", 2)
	assert.True(t, effect.IsMarker())
	assert.False(t, effect.IsRound())
	assert.True(t, effect.Formula)

	char := NewCharacterEntry("t1", 12)
	assert.False(t, char.IsMarker())

	kind, value, ok := (&TurnEntry{Label: "Ongoing 4", Value: 4}).TickLabel()
	require.True(t, ok)
	assert.Equal(t, "Ongoing", kind)
	assert.Equal(t, 4, value)

	kind, _, ok = (&TurnEntry{Label: "SRegen 2", Value: 2}).TickLabel()
	require.True(t, ok)
	assert.Equal(t, "SRegen", kind)

	_, _, ok = (&TurnEntry{Label: "Stunned", Value: 2}).TickLabel()
	assert.False(t, ok)
}

func TestScene_FirstTokenForEntity_PrefersVisible(t *testing.T) {
	s := New("scene-1", "channel-1")
	s.AddToken(&Token{ID: "shadow", EntityID: "e1", Hidden: true})
	s.AddToken(&Token{ID: "main", EntityID: "e1"})

	tok, ok := s.FirstTokenForEntity("e1")
	require.True(t, ok)
	assert.Equal(t, "main", tok.ID)

	_, ok = s.FirstTokenForEntity("missing")
	assert.False(t, ok)
}
