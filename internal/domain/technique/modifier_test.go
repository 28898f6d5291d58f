package technique

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseModifier(t *testing.T) {
	tests := []struct {
		raw       string
		wantKind  ModifierKind
		wantLevel int
	}{
		{"Piercing", ModifierPiercing, 1},
		{"Pierce", ModifierPiercing, 1},
		{"Accurate", ModifierAccurate, 1},
		{"Shift", ModifierShift, 1},
		{"Reposition 2", ModifierReposition, 2},
		{"Sapping", ModifierSapping, 1},
		{"Drain", ModifierDrain, 1},
		{"Persistent", ModifierPersistent, 1},
		{"Unerring", ModifierUnerring, 1},
		{"Continuous Regen", ModifierRegen, 1},
		{"Knock Down", ModifierKnockDown, 1},
		{"Throw", ModifierThrow, 1},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			mod := ParseModifier(tt.raw)
			assert.Equal(t, tt.wantKind, mod.Kind)
			assert.Equal(t, tt.wantLevel, mod.Level)
		})
	}
}

// Unknown modifier tags are tolerated, not errors; the sheet's tag set
// grows faster than the engine
func TestParseModifier_UnknownIsIgnored(t *testing.T) {
	mod := ParseModifier("Dramatic Entrance")
	assert.Equal(t, ModifierUnknown, mod.Kind)
	assert.Equal(t, "Dramatic Entrance", mod.Raw)
}
