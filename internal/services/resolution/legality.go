package resolution

import (
	"context"
	"fmt"

	"github.com/ProfessorProf/valor-bot-discord/internal/domain/scene"
	"github.com/ProfessorProf/valor-bot-discord/internal/domain/technique"
	"github.com/ProfessorProf/valor-bot-discord/internal/services/character"
)

// checkLegality evaluates every gating rule and returns the full list of
// violations. The predicates are independent; nothing short-circuits, so
// the report always itemizes everything wrong at once.
func (s *service) checkLegality(ctx context.Context, sc *scene.Scene, actor *scene.Token, profile *character.Profile, tech *technique.Technique) ([]string, error) {
	hp, hpMax, err := s.ledger.Current(ctx, sc, actor.ID, scene.ResourceHP)
	if err != nil {
		return nil, err
	}
	stamina, _, err := s.ledger.Current(ctx, sc, actor.ID, scene.ResourceStamina)
	if err != nil {
		return nil, err
	}
	valor, _, err := s.ledger.Current(ctx, sc, actor.ID, scene.ResourceValor)
	if err != nil {
		return nil, err
	}

	var violations []string

	staminaCost := tech.Cost
	if _, free := tech.Limit(technique.LimitFree); free {
		staminaCost = 0
	}
	staminaExempt := tech.Flags.DigDeep ||
		(s.ignoreLimitsOnMinions && profile.Class.IsMinion())
	if !staminaExempt && stamina < staminaCost {
		violations = append(violations,
			fmt.Sprintf("not enough Stamina (%d of %d)", stamina, staminaCost))
	}

	if l, ok := tech.Limit(technique.LimitValor); ok && valor < l.Level {
		violations = append(violations,
			fmt.Sprintf("Valor Limit: need %d Valor, have %d", l.Level, valor))
	}
	if l, ok := tech.Limit(technique.LimitUltValor); ok && valor < l.Level {
		violations = append(violations,
			fmt.Sprintf("Ultimate Valor Limit: need %d Valor, have %d", l.Level, valor))
	}

	if l, ok := tech.Limit(technique.LimitInjury); ok {
		threshold := ceilDiv(hpMax*(5-l.Level), 5)
		if hp > threshold {
			violations = append(violations,
				fmt.Sprintf("Injury Limit: usable at %d HP or less, currently %d", threshold, hp))
		}
	}
	if _, ok := tech.Limit(technique.LimitVitality); ok {
		threshold := ceilDiv(hpMax*2, 5)
		if hp < threshold {
			violations = append(violations,
				fmt.Sprintf("Vitality Limit: usable at %d HP or more, currently %d", threshold, hp))
		}
	}

	if l, ok := tech.Limit(technique.LimitInitiative); ok && actor.Initiative <= l.Level {
		violations = append(violations,
			fmt.Sprintf("Initiative Limit: need more than %d initiative, have %d", l.Level, actor.Initiative))
	}
	if l, ok := tech.Limit(technique.LimitSetUp); ok && sc.Round <= l.Level {
		violations = append(violations,
			fmt.Sprintf("Set-Up Limit: not until round %d", l.Level+1))
	}

	if l, ok := tech.Limit(technique.LimitAmmunition); ok {
		if sc.UseCount(actor.EntityID, tech.Name) > 3-l.Level {
			violations = append(violations, "out of ammunition")
		}
	}
	if l, ok := tech.Limit(technique.LimitCooldown); ok {
		if last, used := sc.LastUseRound(actor.EntityID, tech.Name); used && sc.Round <= last+l.Level {
			violations = append(violations,
				fmt.Sprintf("Cooldown Limit: ready on round %d", last+l.Level+1))
		}
	}

	if tech.Core.IsUltimate() && !tech.HasModifier(technique.ModifierUnerring) &&
		sc.UseCount(actor.EntityID, tech.Name) >= 1 {
		violations = append(violations, "Ultimate already used this scene")
	}

	// an ordinary mimic cannot channel an Ultimate; only an ultMimic can
	if tech.BaseCore == technique.CoreMimic && tech.Core.IsUltimate() {
		violations = append(violations, "cannot mimic an Ultimate technique")
	}

	return violations, nil
}
