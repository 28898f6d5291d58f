package technique

import (
	"strconv"
	"strings"
)

// LimitKind classifies a parsed limit tag
type LimitKind string

const (
	LimitUnknown       LimitKind = "unknown"
	LimitFree          LimitKind = "free" // stamina-cost-exempt marker
	LimitValor         LimitKind = "valor"
	LimitValorCost     LimitKind = "valor_cost"
	LimitUltValor      LimitKind = "ult_valor"
	LimitInjury        LimitKind = "injury"
	LimitVitality      LimitKind = "vitality"
	LimitInitiative    LimitKind = "initiative"
	LimitSetUp         LimitKind = "set_up"
	LimitAmmunition    LimitKind = "ammunition"
	LimitCooldown      LimitKind = "cooldown"
	LimitHealth        LimitKind = "health"
	LimitUltHealth     LimitKind = "ult_health"
	LimitSelf          LimitKind = "self"
	LimitTemporary     LimitKind = "temporary"
	LimitMercy         LimitKind = "mercy"
)

// Limit is a typed, leveled constraint parsed from a raw limit tag
type Limit struct {
	Kind  LimitKind
	Level int
	Raw   string
}

// limitPattern is one row of the classification table. Matching is
// case-insensitive prefix match, first match wins. Excludes handles the
// deliberately ambiguous prefixes: "valor" must not swallow "valor c..."
// because Valor Limit (gating) and Valor Cost Limit (spending) are
// unrelated rules.
type limitPattern struct {
	prefixes []string
	excludes []string
	kind     LimitKind
}

var limitTable = []limitPattern{
	{prefixes: []string{"free", "no stamina"}, kind: LimitFree},
	{prefixes: []string{"ultimate valor", "ult valor"}, kind: LimitUltValor},
	{prefixes: []string{"valor c"}, kind: LimitValorCost},
	{prefixes: []string{"valor"}, excludes: []string{"valor c"}, kind: LimitValor},
	{prefixes: []string{"injury"}, kind: LimitInjury},
	{prefixes: []string{"vitality"}, kind: LimitVitality},
	{prefixes: []string{"init"}, kind: LimitInitiative},
	{prefixes: []string{"set"}, kind: LimitSetUp},
	{prefixes: []string{"amm"}, kind: LimitAmmunition},
	{prefixes: []string{"cool"}, kind: LimitCooldown},
	{prefixes: []string{"ultimate health", "ult health"}, kind: LimitUltHealth},
	{prefixes: []string{"health"}, kind: LimitHealth},
	{prefixes: []string{"self"}, kind: LimitSelf},
	{prefixes: []string{"temp"}, kind: LimitTemporary},
	{prefixes: []string{"mercy"}, kind: LimitMercy},
}

// ParseLimit converts a free-text limit tag into a typed, leveled Limit.
// The level is the trailing whitespace-separated token when it parses as
// an integer; otherwise it defaults to 1. The default is intentional: the
// sheet tolerates free-text limits with no numeric suffix.
func ParseLimit(raw string) Limit {
	limit := Limit{
		Kind:  LimitUnknown,
		Level: trailingLevel(raw),
		Raw:   raw,
	}

	lowered := strings.ToLower(strings.TrimSpace(raw))

table:
	for _, pattern := range limitTable {
		for _, excl := range pattern.excludes {
			if strings.HasPrefix(lowered, excl) {
				continue table
			}
		}
		for _, prefix := range pattern.prefixes {
			if strings.HasPrefix(lowered, prefix) {
				limit.Kind = pattern.kind
				return limit
			}
		}
	}

	return limit
}

// trailingLevel extracts the numeric level from the last whitespace token,
// defaulting to 1
func trailingLevel(raw string) int {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return 1
	}
	if level, err := strconv.Atoi(fields[len(fields)-1]); err == nil {
		return level
	}
	return 1
}

// ParseLimits parses a block of limit tags, one per line (semicolons
// also accepted as separators). Blank lines are skipped.
func ParseLimits(block string) []Limit {
	var limits []Limit
	for _, raw := range splitTags(block) {
		limits = append(limits, ParseLimit(raw))
	}
	return limits
}

func splitTags(block string) []string {
	var tags []string
	for _, line := range strings.FieldsFunc(block, func(r rune) bool {
		return r == '\n' || r == ';'
	}) {
		line = strings.TrimSpace(line)
		if line != "" {
			tags = append(tags, line)
		}
	}
	return tags
}
