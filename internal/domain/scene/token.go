package scene

import (
	"github.com/ProfessorProf/valor-bot-discord/internal/domain/shared"
)

// Resource identifies one of a token's three bars
type Resource string

const (
	ResourceHP      Resource = "hp"
	ResourceStamina Resource = "st"
	ResourceValor   Resource = "valor"
)

// Bar is one resource bar: a current value and a maximum
type Bar struct {
	Value int `json:"value"`
	Max   int `json:"max"`
}

// Shield is an active damage shield on a token
type Shield struct {
	Value int               `json:"value"`
	Type  shared.DamageType `json:"type"`
}

// Token is a placed instance on the initiative list, referencing at most
// one entity. Multiple tokens may reference the same entity; Hidden marks
// the shadow duplicates created for them on initiative rolls.
type Token struct {
	ID           string `json:"id"`
	EntityID     string `json:"entity_id"`
	Name         string `json:"name"`
	ControllerID string `json:"controller_id,omitempty"`
	Hidden       bool   `json:"hidden,omitempty"`

	HP         Bar `json:"hp"`
	Stamina    Bar `json:"st"`
	Valor      Bar `json:"valor"`
	Initiative int `json:"initiative"`

	// BarLinks maps a resource to an entity attribute name; a linked bar
	// reads and writes the attribute instead of the token's own value
	BarLinks map[Resource]string `json:"bar_links,omitempty"`

	Shields map[shared.DamageType]*Shield `json:"shields,omitempty"`
}

// Bar returns a pointer to the bar for the given resource
func (t *Token) Bar(resource Resource) *Bar {
	switch resource {
	case ResourceHP:
		return &t.HP
	case ResourceStamina:
		return &t.Stamina
	case ResourceValor:
		return &t.Valor
	default:
		return nil
	}
}

// LinkedAttribute returns the entity attribute a bar is linked to, if any
func (t *Token) LinkedAttribute(resource Resource) (string, bool) {
	attr, ok := t.BarLinks[resource]
	return attr, ok && attr != ""
}

// GrantShield applies a new shield. An existing shield of the same type
// is only overwritten when the new value is larger.
func (t *Token) GrantShield(value int, shieldType shared.DamageType) bool {
	if t.Shields == nil {
		t.Shields = make(map[shared.DamageType]*Shield)
	}
	if existing, ok := t.Shields[shieldType]; ok && existing.Value >= value {
		return false
	}
	t.Shields[shieldType] = &Shield{Value: value, Type: shieldType}
	return true
}

// AbsorbDamage consumes shields for incoming damage of the given type and
// returns how much was absorbed. Versatile shields absorb any damage type
// before the shield matching the type; absorption is capped at each
// shield's remaining value. Spent shields are removed.
func (t *Token) AbsorbDamage(amount int, damageType shared.DamageType) int {
	absorbed := 0
	for _, shieldType := range []shared.DamageType{shared.DamageVersatile, damageType} {
		if amount <= 0 {
			break
		}
		shield, ok := t.Shields[shieldType]
		if !ok || shield.Value <= 0 {
			continue
		}
		take := amount
		if take > shield.Value {
			take = shield.Value
		}
		shield.Value -= take
		absorbed += take
		amount -= take
		if shield.Value <= 0 {
			delete(t.Shields, shieldType)
		}
	}
	return absorbed
}
