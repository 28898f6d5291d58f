// Package character reads combat-relevant state off a character sheet:
// class, level, stats, roll bonuses, and the repeating skill/flaw rows.
package character

//go:generate mockgen -destination=mock/mock_service.go -package=mockcharacter -source=service.go

import (
	"context"
	"strconv"
	"strings"

	"github.com/ProfessorProf/valor-bot-discord/internal/domain/shared"
	"github.com/ProfessorProf/valor-bot-discord/internal/repositories/attributes"
)

// Service defines the character profile service interface
type Service interface {
	// GetProfile assembles the combat-relevant view of an entity's sheet
	GetProfile(ctx context.Context, entityID string) (*Profile, error)
}

// Profile is the combat-relevant view of one entity
type Profile struct {
	EntityID   string
	Name       string
	Class      shared.CharacterClass
	Level      int
	Stats      map[string]int // active attribute name -> value
	RollBonus  int
	AttackRoll int
	Defense    int
	Resistance int
	Skills     map[string]int // lowercased skill name -> level
	Flaws      map[string]bool

	HP, HPMax           int
	Stamina, StaminaMax int
	Valor, ValorMax     int
}

// Stat returns the value of the active attribute behind a governing stat
func (p *Profile) Stat(stat shared.TechStat) int {
	return p.Stats[stat.ActiveAttribute()]
}

// SkillLevel returns the level of a skill, or 0 when absent
func (p *Profile) SkillLevel(name string) int {
	return p.Skills[strings.ToLower(name)]
}

// HasSkill reports whether the entity has the named skill
func (p *Profile) HasSkill(name string) bool {
	_, ok := p.Skills[strings.ToLower(name)]
	return ok
}

// HasFlaw reports whether the entity has the named flaw
func (p *Profile) HasFlaw(name string) bool {
	return p.Flaws[strings.ToLower(name)]
}

type service struct {
	attributeRepo attributes.Repository
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	AttributeRepo attributes.Repository
}

// NewService creates a new character profile service
func NewService(cfg *ServiceConfig) Service {
	return &service{attributeRepo: cfg.AttributeRepo}
}

func (s *service) GetProfile(ctx context.Context, entityID string) (*Profile, error) {
	attrs, err := s.attributeRepo.List(ctx, entityID)
	if err != nil {
		return nil, err
	}
	return ProfileFromAttributes(entityID, attrs), nil
}

// ProfileFromAttributes builds a profile from a raw attribute map; also
// used by the technique service's global scan to avoid re-reading sheets
func ProfileFromAttributes(entityID string, attrs map[string]string) *Profile {
	p := &Profile{
		EntityID:   entityID,
		Name:       attrs["name"],
		Class:      shared.ParseCharacterClass(attrs[shared.AttributeType]),
		Level:      atoiOr(attrs[shared.AttributeLevel], 1),
		RollBonus:  atoiOr(attrs[shared.AttributeRollBonus], 0),
		AttackRoll: atoiOr(attrs[shared.AttributeAttackBonus], 0),
		Defense:    atoiOr(attrs[shared.AttributeDefense], 0),
		Resistance: atoiOr(attrs[shared.AttributeResistance], 0),
		Stats:      make(map[string]int),
		Skills:     make(map[string]int),
		Flaws:      make(map[string]bool),
		HP:         atoiOr(attrs[shared.AttributeHP], 0),
		HPMax:      atoiOr(attrs[shared.AttributeHPMax], 0),
		Stamina:    atoiOr(attrs[shared.AttributeStamina], 0),
		StaminaMax: atoiOr(attrs[shared.AttributeStaminaMax], 0),
		Valor:      atoiOr(attrs[shared.AttributeValor], 0),
		ValorMax:   atoiOr(attrs[shared.AttributeValorMax], 0),
	}
	if p.Name == "" {
		p.Name = entityID
	}

	for _, stat := range []shared.TechStat{
		shared.StatStrength, shared.StatAgility, shared.StatSpirit,
		shared.StatMind, shared.StatGuts,
	} {
		attr := stat.ActiveAttribute()
		p.Stats[attr] = atoiOr(attrs[attr], 0)
	}

	// fold repeating skill and flaw rows; the fields of one row may
	// arrive in any order
	skillNames := make(map[string]string) // rowID -> name
	skillLevels := make(map[string]int)
	for name, value := range attrs {
		group, rowID, field, ok := SplitRepeating(name)
		if !ok {
			continue
		}
		switch group {
		case shared.GroupSkills:
			switch field {
			case "name":
				skillNames[rowID] = strings.ToLower(strings.TrimSpace(value))
			case "level":
				skillLevels[rowID] = atoiOr(value, 1)
			}
		case shared.GroupFlaws:
			if field == "name" {
				p.Flaws[strings.ToLower(strings.TrimSpace(value))] = true
			}
		}
	}
	for rowID, skillName := range skillNames {
		level := skillLevels[rowID]
		if level == 0 {
			level = 1
		}
		p.Skills[skillName] = level
	}

	return p
}

// SplitRepeating decomposes a repeating_<group>_<rowID>_<field> name
func SplitRepeating(name string) (group, rowID, field string, ok bool) {
	if !strings.HasPrefix(name, "repeating_") {
		return "", "", "", false
	}
	parts := strings.SplitN(name, "_", 4)
	if len(parts) != 4 {
		return "", "", "", false
	}
	return parts[1], parts[2], parts[3], true
}

func atoiOr(raw string, fallback int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
		return v
	}
	return fallback
}
