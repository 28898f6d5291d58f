package technique

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLimit(t *testing.T) {
	tests := []struct {
		raw       string
		wantKind  LimitKind
		wantLevel int
	}{
		{"Valor 3", LimitValor, 3},
		{"valor", LimitValor, 1},
		{"Valor Cost 2", LimitValorCost, 2},
		{"valor c 2", LimitValorCost, 2},
		{"Ultimate Valor 5", LimitUltValor, 5},
		{"Ult Valor 4", LimitUltValor, 4},
		{"Injury 2", LimitInjury, 2},
		{"Vitality", LimitVitality, 1},
		{"Initiative 3", LimitInitiative, 3},
		{"Init 3", LimitInitiative, 3},
		{"Set-Up 2", LimitSetUp, 2},
		{"Setup 1", LimitSetUp, 1},
		{"Ammunition 2", LimitAmmunition, 2},
		{"Ammo 1", LimitAmmunition, 1},
		{"Cooldown 3", LimitCooldown, 3},
		{"Health 2", LimitHealth, 2},
		{"Ultimate Health 1", LimitUltHealth, 1},
		{"Ult Health 2", LimitUltHealth, 2},
		{"Self", LimitSelf, 1},
		{"Temporary", LimitTemporary, 1},
		{"Mercy", LimitMercy, 1},
		{"Free", LimitFree, 1},
		{"something homebrew", LimitUnknown, 1},
		// trailing token that is not numeric defaults the level, by design
		{"Cooldown long", LimitCooldown, 1},
		// case-insensitive
		{"COOLDOWN 2", LimitCooldown, 2},
		{"  valor 2  ", LimitValor, 2},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			limit := ParseLimit(tt.raw)
			assert.Equal(t, tt.wantKind, limit.Kind)
			assert.Equal(t, tt.wantLevel, limit.Level)
			assert.Equal(t, tt.raw, limit.Raw)
		})
	}
}

// Valor Limit gates on current Valor; Valor Cost Limit spends it. The
// generic "valor" prefix must never swallow a "valor c..." tag.
func TestParseLimit_ValorCostExclusion(t *testing.T) {
	assert.Equal(t, LimitValorCost, ParseLimit("Valor Cost 1").Kind)
	assert.Equal(t, LimitValorCost, ParseLimit("valor charge 2").Kind)
	assert.Equal(t, LimitValor, ParseLimit("Valor 1").Kind)
	assert.Equal(t, LimitUltValor, ParseLimit("Ultimate Valor 1").Kind)
}

func TestParseLimits_SplitsLinesAndSemicolons(t *testing.T) {
	limits := ParseLimits("Cooldown 2\nAmmunition 1; Valor 3\n\n")
	assert.Len(t, limits, 3)
	assert.Equal(t, LimitCooldown, limits[0].Kind)
	assert.Equal(t, LimitAmmunition, limits[1].Kind)
	assert.Equal(t, LimitValor, limits[2].Kind)
}

func TestParseLimits_Empty(t *testing.T) {
	assert.Empty(t, ParseLimits(""))
}
