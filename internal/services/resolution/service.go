// Package resolution runs technique invocations end to end: identify the
// actor, resolve the technique, collect legality violations, compute and
// spend costs, compute and apply effects, record the use, and report.
// Nothing is spent unless every check passes.
package resolution

//go:generate mockgen -destination=mock/mock_service.go -package=mockresolution -source=service.go

import (
	"context"
	"fmt"
	"log"

	"github.com/ProfessorProf/valor-bot-discord/internal/dice"
	"github.com/ProfessorProf/valor-bot-discord/internal/domain/scene"
	"github.com/ProfessorProf/valor-bot-discord/internal/domain/shared"
	"github.com/ProfessorProf/valor-bot-discord/internal/domain/technique"
	apperr "github.com/ProfessorProf/valor-bot-discord/internal/errors"
	"github.com/ProfessorProf/valor-bot-discord/internal/repositories/attributes"
	"github.com/ProfessorProf/valor-bot-discord/internal/repositories/scenes"
	"github.com/ProfessorProf/valor-bot-discord/internal/services/character"
	"github.com/ProfessorProf/valor-bot-discord/internal/services/ledger"
	techsvc "github.com/ProfessorProf/valor-bot-discord/internal/services/technique"
)

// State is the terminal state of one invocation
type State string

const (
	StateSuccess             State = "success"
	StateRejectedNotFound    State = "rejected_not_found"
	StateRejectedBlocked     State = "rejected_blocked"
	StateRejectedMimicFailed State = "rejected_mimic_failed"
)

// InvokeInput carries one technique invocation
type InvokeInput struct {
	SceneID string

	// ActorTokenID names the acting token; when empty the actor is
	// resolved from ActorEntityID's first token in the scene
	ActorTokenID string

	// ActorEntityID acts as another character when set alongside a token
	ActorEntityID string

	// Query is the technique name or prefix to resolve
	Query string

	TargetTokenIDs []string
	RollBonus      int

	// Override skips the legality check entirely
	Override bool
}

// TargetResult reports what one target took
type TargetResult struct {
	TokenID  string
	Name     string
	Absorbed int
	Net      int
}

// InvokeResult is the full report of one invocation
type InvokeResult struct {
	State      State
	Technique  *technique.Technique
	Violations []string

	Roll    *dice.RollResult
	Damage  int // before per-target defenses
	Healing int
	Shield  int
	Targets []*TargetResult

	StaminaCost    int
	HPCost         int
	ValorCost      int
	InitiativeCost int
}

// UndoResult reports a reverted invocation
type UndoResult struct {
	TechniqueName  string
	TokenID        string
	HPRestored     int
	StaminaRefund  int
	ValorRefund    int
	InitiativeBack int
}

// TechniqueStatus pairs a technique with its current violations; an
// empty Violations slice means it is usable right now
type TechniqueStatus struct {
	Technique  *technique.Technique
	Violations []string
}

// Service defines the resolution engine interface
type Service interface {
	// Invoke runs one technique invocation to a terminal state
	Invoke(ctx context.Context, input *InvokeInput) (*InvokeResult, error)

	// Undo reverts the most recent successful invocation in the scene
	Undo(ctx context.Context, sceneID string) (*UndoResult, error)

	// Eligibility lists an entity's techniques with their current
	// violations, evaluated against the entity's first token
	Eligibility(ctx context.Context, sceneID, entityID string) ([]*TechniqueStatus, error)
}

type service struct {
	sceneRepo        scenes.Repository
	attributeRepo    attributes.Repository
	characterService character.Service
	techniqueService techsvc.Service
	ledger           ledger.Service
	roller           dice.Roller

	ignoreLimitsOnMinions bool
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	SceneRepo        scenes.Repository
	AttributeRepo    attributes.Repository
	CharacterService character.Service
	TechniqueService techsvc.Service
	Ledger           ledger.Service
	Roller           dice.Roller

	// IgnoreLimitsOnMinions exempts soldier and flunky classes from the
	// stamina check
	IgnoreLimitsOnMinions bool
}

// NewService creates a new resolution service
func NewService(cfg *ServiceConfig) Service {
	return &service{
		sceneRepo:             cfg.SceneRepo,
		attributeRepo:         cfg.AttributeRepo,
		characterService:      cfg.CharacterService,
		techniqueService:      cfg.TechniqueService,
		ledger:                cfg.Ledger,
		roller:                cfg.Roller,
		ignoreLimitsOnMinions: cfg.IgnoreLimitsOnMinions,
	}
}

func (s *service) Invoke(ctx context.Context, input *InvokeInput) (*InvokeResult, error) {
	sc, err := s.sceneRepo.Get(ctx, input.SceneID)
	if err != nil {
		return nil, err
	}

	actor, err := s.identifyActor(sc, input)
	if err != nil {
		return nil, err
	}

	tech, err := s.techniqueService.ResolveTechnique(ctx, actor.EntityID, input.Query)
	if err != nil {
		if apperr.IsNotFound(err) {
			return &InvokeResult{State: StateRejectedNotFound}, nil
		}
		return nil, err
	}

	// a composite whose core is still mimic after substitution failed
	// somewhere down its chain; it goes no further and pays nothing
	if tech.Core.IsMimic() && tech.MimicTarget != "" {
		return &InvokeResult{State: StateRejectedMimicFailed, Technique: tech}, nil
	}

	profile, err := s.characterService.GetProfile(ctx, actor.EntityID)
	if err != nil {
		return nil, err
	}

	bypass := input.Override || tech.Flags.OverloadLimits || tech.Flags.Reroll
	if !bypass {
		violations, checkErr := s.checkLegality(ctx, sc, actor, profile, tech)
		if checkErr != nil {
			return nil, checkErr
		}
		if len(violations) > 0 {
			return &InvokeResult{
				State:      StateRejectedBlocked,
				Technique:  tech,
				Violations: violations,
			}, nil
		}
	}

	costs := computeCosts(tech, profile)
	result := &InvokeResult{
		State:          StateSuccess,
		Technique:      tech,
		StaminaCost:    costs.stamina,
		HPCost:         costs.hp,
		ValorCost:      costs.valor,
		InitiativeCost: costs.initiative,
	}

	if err := s.spendCosts(ctx, sc, actor, costs); err != nil {
		return nil, err
	}

	if err := s.applyEffects(ctx, sc, actor, profile, tech, input, result); err != nil {
		return nil, err
	}

	sc.RecordUse(actor.EntityID, tech.Name, sc.Round)
	sc.PushUndo(&scene.UndoEntry{
		TokenID:        actor.ID,
		EntityID:       actor.EntityID,
		TechniqueName:  tech.Name,
		HPCost:         costs.hp,
		StaminaCost:    costs.stamina,
		ValorCost:      costs.valor,
		InitiativeCost: costs.initiative,
		TargetTokenIDs: input.TargetTokenIDs,
	})
	sc.LastActorTokenID = actor.ID

	s.clearOneShotFlags(ctx, tech)

	if err := s.sceneRepo.Update(ctx, sc); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) identifyActor(sc *scene.Scene, input *InvokeInput) (*scene.Token, error) {
	if input.ActorTokenID != "" {
		token, ok := sc.Token(input.ActorTokenID)
		if !ok {
			return nil, apperr.InvalidArgumentf("no such token in the scene: %s", input.ActorTokenID)
		}
		if input.ActorEntityID != "" && token.EntityID != input.ActorEntityID {
			// acting as another character from a borrowed token
			borrowed := *token
			borrowed.EntityID = input.ActorEntityID
			return &borrowed, nil
		}
		return token, nil
	}
	if input.ActorEntityID != "" {
		if token, ok := sc.FirstTokenForEntity(input.ActorEntityID); ok {
			return token, nil
		}
		return nil, apperr.InvalidArgumentf("no token for %s in the scene", input.ActorEntityID)
	}
	return nil, apperr.InvalidArgumentf("no actor: select a token or name a character")
}

type costSet struct {
	stamina    int
	hp         int
	valor      int
	initiative int
}

// computeCosts derives the spend from the technique's cost field and
// limit tags. Order of application is stamina, HP, valor, initiative.
func computeCosts(tech *technique.Technique, profile *character.Profile) costSet {
	var costs costSet

	costs.stamina = tech.Cost
	if _, free := tech.Limit(technique.LimitFree); free {
		costs.stamina = 0
	}
	if tech.Flags.DigDeep {
		costs.hp += costs.stamina * 5
		costs.stamina = 0
	}

	if l, ok := tech.Limit(technique.LimitHealth); ok {
		costs.hp += 5 * l.Level
	}
	if l, ok := tech.Limit(technique.LimitUltHealth); ok {
		costs.hp += ceilDiv(profile.HPMax*l.Level, 5)
	}
	if l, ok := tech.Limit(technique.LimitValorCost); ok {
		costs.valor = l.Level
	}
	if l, ok := tech.Limit(technique.LimitInitiative); ok {
		costs.initiative = l.Level
	}

	return costs
}

func (s *service) spendCosts(ctx context.Context, sc *scene.Scene, actor *scene.Token, costs costSet) error {
	if costs.stamina > 0 {
		if _, err := s.ledger.ApplyDelta(ctx, sc, actor.ID, scene.ResourceStamina, float64(-costs.stamina), nil); err != nil {
			return err
		}
	}
	if costs.hp > 0 {
		if _, err := s.ledger.ApplyDelta(ctx, sc, actor.ID, scene.ResourceHP, float64(-costs.hp), nil); err != nil {
			return err
		}
	}
	if costs.valor > 0 {
		if _, err := s.ledger.ApplyDelta(ctx, sc, actor.ID, scene.ResourceValor, float64(-costs.valor), nil); err != nil {
			return err
		}
	}
	if costs.initiative > 0 {
		setInitiative(sc, actor, actor.Initiative-costs.initiative)
	}
	return nil
}

// setInitiative keeps the token and its turn-order entry in step
func setInitiative(sc *scene.Scene, token *scene.Token, value int) {
	token.Initiative = value
	if i := sc.EntryIndex(token.ID); i >= 0 {
		sc.TurnOrder[i].Value = value
	}
}

// clearOneShotFlags writes the Overload Limits and Reroll toggles back
// to the sheet as off; they force one override and are then spent
func (s *service) clearOneShotFlags(ctx context.Context, tech *technique.Technique) {
	for flag, set := range map[string]bool{
		"overload": tech.Flags.OverloadLimits,
		"reroll":   tech.Flags.Reroll,
	} {
		if !set {
			continue
		}
		name := fmt.Sprintf("repeating_tech_%s_%s", tech.ID, flag)
		if err := s.attributeRepo.Set(ctx, tech.EntityID, name, "0"); err != nil {
			log.Printf("Failed to clear %s flag on %s: %v", flag, tech.ID, err)
		}
	}
}

func (s *service) Undo(ctx context.Context, sceneID string) (*UndoResult, error) {
	sc, err := s.sceneRepo.Get(ctx, sceneID)
	if err != nil {
		return nil, err
	}

	entry := sc.PopUndo()
	if entry == nil {
		return nil, apperr.Internalf("nothing to undo")
	}

	// the refund and the history rewind go together; both happen on the
	// in-memory scene and land in one Update
	if entry.StaminaCost > 0 {
		if _, err := s.ledger.ApplyDelta(ctx, sc, entry.TokenID, scene.ResourceStamina, float64(entry.StaminaCost), nil); err != nil && !apperr.IsNotFound(err) {
			return nil, err
		}
	}
	if entry.HPCost > 0 {
		if _, err := s.ledger.ApplyDelta(ctx, sc, entry.TokenID, scene.ResourceHP, float64(entry.HPCost), nil); err != nil && !apperr.IsNotFound(err) {
			return nil, err
		}
	}
	if entry.ValorCost > 0 {
		if _, err := s.ledger.ApplyDelta(ctx, sc, entry.TokenID, scene.ResourceValor, float64(entry.ValorCost), nil); err != nil && !apperr.IsNotFound(err) {
			return nil, err
		}
	}
	if entry.InitiativeCost > 0 {
		if token, ok := sc.Token(entry.TokenID); ok {
			setInitiative(sc, token, token.Initiative+entry.InitiativeCost)
		}
	}

	sc.RewindUse(entry.EntityID, entry.TechniqueName)

	if err := s.sceneRepo.Update(ctx, sc); err != nil {
		return nil, err
	}

	return &UndoResult{
		TechniqueName:  entry.TechniqueName,
		TokenID:        entry.TokenID,
		HPRestored:     entry.HPCost,
		StaminaRefund:  entry.StaminaCost,
		ValorRefund:    entry.ValorCost,
		InitiativeBack: entry.InitiativeCost,
	}, nil
}

func (s *service) Eligibility(ctx context.Context, sceneID, entityID string) ([]*TechniqueStatus, error) {
	sc, err := s.sceneRepo.Get(ctx, sceneID)
	if err != nil {
		return nil, err
	}
	token, ok := sc.FirstTokenForEntity(entityID)
	if !ok {
		return nil, apperr.InvalidArgumentf("no token for %s in the scene", entityID)
	}
	profile, err := s.characterService.GetProfile(ctx, entityID)
	if err != nil {
		return nil, err
	}
	techs, err := s.techniqueService.ListTechniques(ctx, entityID)
	if err != nil {
		return nil, err
	}

	statuses := make([]*TechniqueStatus, 0, len(techs))
	for _, tech := range techs {
		violations, checkErr := s.checkLegality(ctx, sc, token, profile, tech)
		if checkErr != nil {
			return nil, checkErr
		}
		statuses = append(statuses, &TechniqueStatus{Technique: tech, Violations: violations})
	}
	return statuses, nil
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// damageTypeFor selects the damage and shield channel for an attack
func damageTypeFor(stat shared.TechStat) shared.DamageType {
	if stat.IsPhysical() {
		return shared.DamagePhysical
	}
	return shared.DamageEnergy
}
