// Package shared holds cross-cutting domain vocabulary: sheet attribute
// names, technique stats, character classes, and skill/flaw keys.
package shared

import "strings"

// Sheet attribute names. Plain attributes live directly on the entity;
// repeating rows are addressed as repeating_<group>_<rowID>_<field>.
const (
	AttributeHP          = "hp"
	AttributeHPMax       = "hp_max"
	AttributeStamina     = "st"
	AttributeStaminaMax  = "st_max"
	AttributeValor       = "valor"
	AttributeValorMax    = "valor_max"
	AttributeInitiative  = "init"
	AttributeLevel       = "level"
	AttributeType        = "type"
	AttributeDefense     = "defense"
	AttributeResistance  = "resistance"
	AttributeRollBonus   = "rollbonus"
	AttributeAttackBonus = "atkrollbonus"
)

// Repeating group prefixes
const (
	GroupTechniques = "tech"
	GroupSkills     = "skills"
	GroupFlaws      = "flaws"
)

// TechStat identifies the governing stat of a technique
type TechStat string

const (
	StatNone     TechStat = "none"
	StatStrength TechStat = "str"
	StatAgility  TechStat = "agi"
	StatSpirit   TechStat = "spr"
	StatMind     TechStat = "mnd"
	StatGuts     TechStat = "gut"
)

// ActiveAttribute maps a governing stat to the rolled active attribute on
// the sheet (Strength rolls Muscle, Agility rolls Dexterity, and so on)
func (s TechStat) ActiveAttribute() string {
	switch s {
	case StatStrength:
		return "mus"
	case StatAgility:
		return "dex"
	case StatSpirit:
		return "aur"
	case StatMind:
		return "int"
	case StatGuts:
		return "res"
	default:
		return ""
	}
}

// IsPhysical reports whether the stat deals physical damage and targets
// Defense; the others deal energy damage and target Resistance
func (s TechStat) IsPhysical() bool {
	return s == StatStrength || s == StatAgility
}

// ParseTechStat normalizes a raw sheet value to a TechStat
func ParseTechStat(raw string) TechStat {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "str", "strength":
		return StatStrength
	case "agi", "agility":
		return StatAgility
	case "spr", "spirit":
		return StatSpirit
	case "mnd", "mind":
		return StatMind
	case "gut", "guts":
		return StatGuts
	default:
		return StatNone
	}
}

// CharacterClass is the sheet "type" field
type CharacterClass string

const (
	ClassMaster  CharacterClass = "master"
	ClassElite   CharacterClass = "elite"
	ClassNormal  CharacterClass = "normal"
	ClassSoldier CharacterClass = "soldier"
	ClassFlunky  CharacterClass = "flunky"
)

// IsMinion reports whether the class is one of the disposable minion
// classes, which heal at half rate and may be exempted from limits
func (c CharacterClass) IsMinion() bool {
	return c == ClassSoldier || c == ClassFlunky
}

// ParseCharacterClass normalizes a raw sheet value to a class, defaulting
// to normal
func ParseCharacterClass(raw string) CharacterClass {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "master":
		return ClassMaster
	case "elite":
		return ClassElite
	case "soldier":
		return ClassSoldier
	case "flunky":
		return ClassFlunky
	default:
		return ClassNormal
	}
}

// Skill and flaw names checked by the rules engine
const (
	SkillCrisis         = "crisis"
	SkillHealer         = "healer"
	SkillLimitlessPower = "limitless power"
	SkillBounceBack     = "bounce back"
	SkillBravado        = "bravado"
	FlawBerserker       = "berserker"
)

// DamageType classifies damage and shields
type DamageType string

const (
	DamagePhysical  DamageType = "physical"
	DamageEnergy    DamageType = "energy"
	DamageVersatile DamageType = "versatile"
)
