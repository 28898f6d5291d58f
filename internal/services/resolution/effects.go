package resolution

import (
	"context"
	"fmt"
	"log"

	"github.com/ProfessorProf/valor-bot-discord/internal/domain/scene"
	"github.com/ProfessorProf/valor-bot-discord/internal/domain/shared"
	"github.com/ProfessorProf/valor-bot-discord/internal/domain/technique"
	apperr "github.com/ProfessorProf/valor-bot-discord/internal/errors"
	"github.com/ProfessorProf/valor-bot-discord/internal/repositories/attributes"
	"github.com/ProfessorProf/valor-bot-discord/internal/services/character"
)

// applyEffects computes and applies the technique's effect by core type.
// Per-target failures (a target vanished mid-command) skip that target
// only; effects are independent per target.
func (s *service) applyEffects(ctx context.Context, sc *scene.Scene, actor *scene.Token, profile *character.Profile, tech *technique.Technique, input *InvokeInput, result *InvokeResult) error {
	switch {
	case tech.Core.IsAttack():
		return s.applyAttack(ctx, sc, profile, tech, input, result)
	case tech.Core == technique.CoreHealing:
		return s.applyHealing(ctx, sc, profile, tech, input, result)
	case tech.Core == technique.CoreShield:
		return s.applyShield(sc, profile, tech, input, result)
	case tech.Core == technique.CoreUltTransform:
		return s.applyTransform(ctx, sc, actor, profile, result)
	default:
		// custom, barrier, and domain cores have narrative effects; the
		// engine only spends and records them
		return nil
	}
}

func (s *service) applyAttack(ctx context.Context, sc *scene.Scene, profile *character.Profile, tech *technique.Technique, input *InvokeInput, result *InvokeResult) error {
	atk := profile.Stat(tech.Stat)

	rollBonus := atk + profile.RollBonus + profile.AttackRoll + input.RollBonus
	if tech.HasModifier(technique.ModifierAccurate) {
		rollBonus += 2
	}
	if profile.Class == shared.ClassMaster {
		rollBonus++
	}
	roll, err := s.roller.Roll(1, 10, rollBonus)
	if err != nil {
		return err
	}
	result.Roll = roll

	piercing := tech.HasModifier(technique.ModifierPiercing)
	multiplier, atkPart := 5, atk
	switch {
	case piercing:
		multiplier, atkPart = 4, atk/2
	case tech.Core == technique.CoreUltDamage:
		multiplier = 8
	}

	damage := (tech.CoreLevel+3)*multiplier + atkPart
	if roll.IsCrit {
		damage += atk
	}
	if profile.HPMax > 0 && profile.HP*5 <= profile.HPMax*2 {
		if profile.HasSkill(shared.SkillCrisis) {
			damage += 3 + 3*profile.SkillLevel(shared.SkillCrisis)
		} else if profile.HasFlaw(shared.FlawBerserker) {
			damage += 10
		}
	}
	if tech.Flags.EmpowerAttack {
		damage += 3 + 3*profile.Level
	}
	result.Damage = damage

	shift := tech.HasModifier(technique.ModifierShift)
	damageType := damageTypeFor(tech.Stat)

	for _, targetID := range input.TargetTokenIDs {
		target, ok := sc.Token(targetID)
		if !ok {
			log.Printf("Target %s is gone, skipping", targetID)
			continue
		}

		net := damage - s.targetDefense(ctx, target, tech.Stat, piercing, shift)
		if net < 0 {
			net = 0
		}

		applied, err := s.ledger.ApplyDamage(ctx, sc, targetID, net, damageType)
		if err != nil {
			if apperr.IsNotFound(err) {
				continue
			}
			return err
		}
		result.Targets = append(result.Targets, &TargetResult{
			TokenID:  targetID,
			Name:     target.Name,
			Absorbed: applied.Absorbed,
			Net:      applied.ToHP,
		})
	}
	return nil
}

// targetDefense reads the soak stat off the target's sheet: Defense for
// physical stats, Resistance for energy, flipped by Shift; Piercing
// always takes the lower of the two. Targets without a sheet soak zero.
func (s *service) targetDefense(ctx context.Context, target *scene.Token, stat shared.TechStat, piercing, shift bool) int {
	targetProfile, err := s.characterService.GetProfile(ctx, target.EntityID)
	if err != nil {
		if !apperr.IsNotFound(err) {
			log.Printf("Failed to read sheet for %s: %v", target.EntityID, err)
		}
		return 0
	}

	if piercing {
		if targetProfile.Defense < targetProfile.Resistance {
			return targetProfile.Defense
		}
		return targetProfile.Resistance
	}

	physical := stat.IsPhysical()
	if shift {
		physical = !physical
	}
	if physical {
		return targetProfile.Defense
	}
	return targetProfile.Resistance
}

func (s *service) applyHealing(ctx context.Context, sc *scene.Scene, profile *character.Profile, tech *technique.Technique, input *InvokeInput, result *InvokeResult) error {
	stat := profile.Stat(tech.Stat)
	continuous := tech.HasModifier(technique.ModifierRegen)

	multiplier := 3
	if continuous {
		multiplier = 2
	}
	amount := (tech.CoreLevel+3)*multiplier + ceilDiv(stat, 2)
	if profile.HasSkill(shared.SkillHealer) {
		amount += (profile.SkillLevel(shared.SkillHealer) + 1) * 2
	}
	if profile.Class.IsMinion() {
		amount /= 2
	}
	result.Healing = amount

	for _, targetID := range input.TargetTokenIDs {
		if _, ok := sc.Token(targetID); !ok {
			// a character target heals every token it has in the scene
			if first, ok := sc.FirstTokenForEntity(targetID); ok {
				if continuous {
					attachMarker(sc, first.ID, fmt.Sprintf("Regen %d", amount), amount)
					continue
				}
				if _, err := s.ledger.ApplyDeltaForEntity(ctx, sc, targetID, scene.ResourceHP, float64(amount), nil); err != nil {
					return err
				}
				continue
			}
			log.Printf("Target %s is gone, skipping", targetID)
			continue
		}
		if continuous {
			attachMarker(sc, targetID, fmt.Sprintf("Regen %d", amount), amount)
			continue
		}
		if _, err := s.ledger.ApplyDelta(ctx, sc, targetID, scene.ResourceHP, float64(amount), nil); err != nil {
			if apperr.IsNotFound(err) {
				continue
			}
			return err
		}
	}
	return nil
}

func (s *service) applyShield(sc *scene.Scene, profile *character.Profile, tech *technique.Technique, input *InvokeInput, result *InvokeResult) error {
	value := (tech.CoreLevel+3)*4 + profile.Stat(tech.Stat)
	result.Shield = value

	shieldType := tech.ShieldType
	if shieldType == "" {
		shieldType = shared.DamageVersatile
	}

	for _, targetID := range input.TargetTokenIDs {
		target, ok := sc.Token(targetID)
		if !ok {
			log.Printf("Target %s is gone, skipping", targetID)
			continue
		}
		target.GrantShield(value, shieldType)
	}
	return nil
}

func (s *service) applyTransform(ctx context.Context, sc *scene.Scene, actor *scene.Token, profile *character.Profile, result *InvokeResult) error {
	gain := profile.Level * 10
	if profile.Class == shared.ClassMaster {
		gain *= 2
	}
	result.Healing = gain

	if _, err := s.ledger.ApplyDelta(ctx, sc, actor.ID, scene.ResourceHP, float64(gain), nil); err != nil {
		return err
	}
	// the transformation's roll bonus outlives the scene
	return attributes.SetInt(ctx, s.attributeRepo, actor.EntityID, shared.AttributeRollBonus, profile.RollBonus+1)
}

// attachMarker inserts a non-decrementing tick marker directly after the
// target's turn entry, or at the tail when the target is not in the order
func attachMarker(sc *scene.Scene, tokenID, label string, value int) {
	marker := &scene.TurnEntry{Label: label, Value: value}
	i := sc.EntryIndex(tokenID)
	if i < 0 {
		sc.TurnOrder = append(sc.TurnOrder, marker)
		return
	}
	sc.TurnOrder = append(sc.TurnOrder[:i+1], append([]*scene.TurnEntry{marker}, sc.TurnOrder[i+1:]...)...)
}
