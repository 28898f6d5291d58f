// Package technique models a character's special moves: the assembled
// Technique record, its core effect type, and the typed limit/modifier
// rules parsed from the free-text tags on the character sheet.
package technique

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ProfessorProf/valor-bot-discord/internal/domain/shared"
)

// CoreType is the effect category of a technique
type CoreType string

const (
	CoreDamage       CoreType = "damage"
	CoreUltDamage    CoreType = "ultDamage"
	CoreHealing      CoreType = "healing"
	CoreShield       CoreType = "shield"
	CoreWeaken       CoreType = "weaken"
	CoreCustom       CoreType = "custom"
	CoreMimic        CoreType = "mimic"
	CoreUltMimic     CoreType = "ultMimic"
	CoreBarrier      CoreType = "barrier"
	CoreDomain       CoreType = "domain"
	CoreUltTransform CoreType = "ultTransform"
)

// IsUltimate reports whether the core is one of the once-per-scene
// Ultimate categories
func (c CoreType) IsUltimate() bool {
	switch c {
	case CoreUltDamage, CoreUltTransform, CoreUltMimic, CoreDomain:
		return true
	}
	return false
}

// IsMimic reports whether the core borrows its effect from another
// technique
func (c CoreType) IsMimic() bool {
	return c == CoreMimic || c == CoreUltMimic
}

// IsAttack reports whether the core computes attack damage
func (c CoreType) IsAttack() bool {
	return c == CoreDamage || c == CoreUltDamage || c == CoreWeaken
}

// ParseCoreType normalizes a raw sheet value, defaulting to damage
func ParseCoreType(raw string) CoreType {
	switch strings.TrimSpace(raw) {
	case "ultDamage":
		return CoreUltDamage
	case "healing":
		return CoreHealing
	case "shield":
		return CoreShield
	case "weaken":
		return CoreWeaken
	case "custom":
		return CoreCustom
	case "mimic":
		return CoreMimic
	case "ultMimic":
		return CoreUltMimic
	case "barrier":
		return CoreBarrier
	case "domain":
		return CoreDomain
	case "ultTransform":
		return CoreUltTransform
	default:
		return CoreDamage
	}
}

// Flags are the boolean feature toggles on a technique row. Overload
// Limits and Reroll are one-shot: they force an override and are cleared
// after use.
type Flags struct {
	OverloadLimits bool `json:"overload_limits,omitempty"`
	EmpowerAttack  bool `json:"empower_attack,omitempty"`
	ResoluteStrike bool `json:"resolute_strike,omitempty"`
	Reroll         bool `json:"reroll,omitempty"`
	DigDeep        bool `json:"dig_deep,omitempty"`
}

// Technique is a complete assembled record for one technique row
type Technique struct {
	ID          string
	EntityID    string
	Name        string
	Core        CoreType
	Stat        shared.TechStat
	Cost        int
	CoreLevel   int
	TechLevel   int
	Limits      []Limit
	Modifiers   []Modifier
	MimicTarget string
	ShieldType  shared.DamageType
	Flags       Flags

	// BaseCore is set on mimic composites to the mimic technique's own
	// core, so callers can still tell a mimic from an ultimate mimic
	// after substitution
	BaseCore CoreType
}

// Limit returns the first limit of the given kind, if present
func (t *Technique) Limit(kind LimitKind) (Limit, bool) {
	for _, l := range t.Limits {
		if l.Kind == kind {
			return l, true
		}
	}
	return Limit{}, false
}

// Modifier returns the first modifier of the given kind, if present
func (t *Technique) Modifier(kind ModifierKind) (Modifier, bool) {
	for _, m := range t.Modifiers {
		if m.Kind == kind {
			return m, true
		}
	}
	return Modifier{}, false
}

// HasModifier reports whether any modifier of the given kind is present
func (t *Technique) HasModifier(kind ModifierKind) bool {
	_, ok := t.Modifier(kind)
	return ok
}

// Mimicked synthesizes the composite record for a mimic technique whose
// target has been resolved. The composite takes the target's core and
// effect fields, keeps the mimic's own name and stat, and recomputes the
// core level as mimicCore - (targetTech - targetCore). A result of zero
// or less restores the core to mimic so the caller can detect the failed
// mimic before any resources are spent.
func (t *Technique) Mimicked(target *Technique) *Technique {
	composite := *t
	composite.Name = fmt.Sprintf("%s [%s]", t.Name, target.Name)
	composite.BaseCore = t.Core
	composite.Core = target.Core
	composite.ShieldType = target.ShieldType
	composite.Modifiers = target.Modifiers
	composite.CoreLevel = t.CoreLevel - (target.TechLevel - target.CoreLevel)

	if composite.CoreLevel <= 0 {
		composite.Core = t.Core
	}

	return &composite
}

// Builder folds partial repeating-row field updates into complete
// Technique records. The same row id may recur across the attribute scan;
// recurrence merges into the existing partial record rather than
// replacing it. Records are only finalized (defaults applied, tags
// parsed) in Build, never during the fold.
type Builder struct {
	entityID string
	rows     map[string]*partialRow
	order    []string
}

type partialRow struct {
	fields map[string]string
}

// NewBuilder creates a builder for one entity's technique rows
func NewBuilder(entityID string) *Builder {
	return &Builder{
		entityID: entityID,
		rows:     make(map[string]*partialRow),
	}
}

// Add records one repeating-row field value
func (b *Builder) Add(rowID, field, value string) {
	row, ok := b.rows[rowID]
	if !ok {
		row = &partialRow{fields: make(map[string]string)}
		b.rows[rowID] = row
		b.order = append(b.order, rowID)
	}
	row.fields[strings.ToLower(field)] = value
}

// Build finalizes every folded row into an immutable Technique record,
// in first-seen row order. Core defaults to damage and core level to 1
// when the fields are absent.
func (b *Builder) Build() []*Technique {
	techniques := make([]*Technique, 0, len(b.order))
	for _, rowID := range b.order {
		fields := b.rows[rowID].fields

		t := &Technique{
			ID:          rowID,
			EntityID:    b.entityID,
			Name:        fields["name"],
			Core:        ParseCoreType(fields["core"]),
			Stat:        shared.ParseTechStat(fields["stat"]),
			Cost:        atoiOr(fields["cost"], 0),
			CoreLevel:   atoiOr(fields["corelvl"], 1),
			TechLevel:   atoiOr(fields["techlvl"], 1),
			Limits:      ParseLimits(fields["limits"]),
			Modifiers:   ParseModifiers(fields["mods"]),
			MimicTarget: fields["mimic"],
			ShieldType:  parseShieldType(fields["shieldtype"]),
			Flags: Flags{
				OverloadLimits: flagSet(fields["overload"]),
				EmpowerAttack:  flagSet(fields["empower"]),
				ResoluteStrike: flagSet(fields["resolute"]),
				Reroll:         flagSet(fields["reroll"]),
				DigDeep:        flagSet(fields["digdeep"]),
			},
		}

		techniques = append(techniques, t)
	}
	return techniques
}

func atoiOr(raw string, fallback int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
		return v
	}
	return fallback
}

func flagSet(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "on", "true", "yes":
		return true
	}
	return false
}

func parseShieldType(raw string) shared.DamageType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "energy":
		return shared.DamageEnergy
	case "versatile":
		return shared.DamageVersatile
	default:
		return shared.DamagePhysical
	}
}
