package technique

import "strings"

// ModifierKind classifies a parsed modifier tag
type ModifierKind string

const (
	ModifierUnknown    ModifierKind = "unknown"
	ModifierPiercing   ModifierKind = "piercing"
	ModifierAccurate   ModifierKind = "accurate"
	ModifierShift      ModifierKind = "shift"
	ModifierReposition ModifierKind = "reposition"
	ModifierSapping    ModifierKind = "sapping"
	ModifierDrain      ModifierKind = "drain"
	ModifierPersistent ModifierKind = "persistent"
	ModifierUnerring   ModifierKind = "unerring"
	ModifierRegen      ModifierKind = "regen" // Continuous Regen healing variant

	// Display-only tags, carried through for rendering but with no
	// numeric effect
	ModifierKnockDown ModifierKind = "knock_down"
	ModifierThrow     ModifierKind = "throw"
)

// Modifier is a typed, leveled tag altering a technique's numeric effect
// or display
type Modifier struct {
	Kind  ModifierKind
	Level int
	Raw   string
}

var modifierTable = []struct {
	prefixes []string
	kind     ModifierKind
}{
	{prefixes: []string{"pierc"}, kind: ModifierPiercing},
	{prefixes: []string{"accurate"}, kind: ModifierAccurate},
	{prefixes: []string{"shift"}, kind: ModifierShift},
	{prefixes: []string{"reposition"}, kind: ModifierReposition},
	{prefixes: []string{"sapping"}, kind: ModifierSapping},
	{prefixes: []string{"drain"}, kind: ModifierDrain},
	{prefixes: []string{"persistent"}, kind: ModifierPersistent},
	{prefixes: []string{"unerring"}, kind: ModifierUnerring},
	{prefixes: []string{"continuous"}, kind: ModifierRegen},
	{prefixes: []string{"knock"}, kind: ModifierKnockDown},
	{prefixes: []string{"throw"}, kind: ModifierThrow},
}

// ParseModifier converts a free-text modifier tag into a typed Modifier.
// Unrecognized tags parse as ModifierUnknown and are ignored by the rules
// engine; that keeps the tag set forward-compatible rather than an error.
func ParseModifier(raw string) Modifier {
	mod := Modifier{
		Kind:  ModifierUnknown,
		Level: trailingLevel(raw),
		Raw:   raw,
	}

	lowered := strings.ToLower(strings.TrimSpace(raw))
	for _, pattern := range modifierTable {
		for _, prefix := range pattern.prefixes {
			if strings.HasPrefix(lowered, prefix) {
				mod.Kind = pattern.kind
				return mod
			}
		}
	}

	return mod
}

// ParseModifiers parses a block of modifier tags, one per line
func ParseModifiers(block string) []Modifier {
	var mods []Modifier
	for _, raw := range splitTags(block) {
		mods = append(mods, ParseModifier(raw))
	}
	return mods
}
