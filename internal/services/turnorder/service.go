// Package turnorder reacts to turn-order list changes: countdown-marker
// expiry, round rollover with Valor grants, per-turn tick effects, and
// optional initiative auto-reorder. Every reaction is a bounded
// fixed-point pass over the list, capped at the list length.
package turnorder

//go:generate mockgen -destination=mock/mock_service.go -package=mockturnorder -source=service.go

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/ProfessorProf/valor-bot-discord/internal/dice"
	"github.com/ProfessorProf/valor-bot-discord/internal/domain/scene"
	"github.com/ProfessorProf/valor-bot-discord/internal/domain/shared"
	"github.com/ProfessorProf/valor-bot-discord/internal/domain/technique"
	apperr "github.com/ProfessorProf/valor-bot-discord/internal/errors"
	"github.com/ProfessorProf/valor-bot-discord/internal/notify"
	"github.com/ProfessorProf/valor-bot-discord/internal/repositories/scenes"
	"github.com/ProfessorProf/valor-bot-discord/internal/services/character"
	"github.com/ProfessorProf/valor-bot-discord/internal/services/ledger"
	techsvc "github.com/ProfessorProf/valor-bot-discord/internal/services/technique"
)

// TickReport records one applied per-turn effect
type TickReport struct {
	TokenID string
	Kind    string
	Amount  int
}

// Report summarizes what one processing pass did
type Report struct {
	Round       int
	RolledOver  bool
	Expired     []string
	Ticks       []TickReport
	ValorGrants map[string]int
	OffCooldown []string
	Swaps       int
}

// Service defines the turn-order processor interface
type Service interface {
	// AdvanceTurn ends the current turn: the head entry rotates to the
	// tail and the list is processed to the next character's turn
	AdvanceTurn(ctx context.Context, sceneID string) (*Report, error)

	// Process runs the fixed-point pass on an in-memory scene without
	// persisting; callers that batch several mutations persist once
	Process(ctx context.Context, sc *scene.Scene) (*Report, error)

	// AddEffect attaches a countdown marker after a token's entry
	AddEffect(ctx context.Context, sceneID, tokenID, label string, duration int) (*Report, error)

	// RemoveEffect removes the first marker whose label matches
	RemoveEffect(ctx context.Context, sceneID, label string) error

	// Rest restores half of every token's HP and Stamina and resets
	// Valor to its baseline; usage history and the undo stack clear
	Rest(ctx context.Context, sceneID string) error

	// FullRest restores every resource outright
	FullRest(ctx context.Context, sceneID string) error

	// RollInitiative rebuilds the turn order from scratch on d10 + dex
	RollInitiative(ctx context.Context, sceneID string) (*scene.Scene, error)
}

type service struct {
	sceneRepo        scenes.Repository
	characterService character.Service
	techniqueService techsvc.Service
	ledger           ledger.Service
	roller           dice.Roller
	notifier         notify.Notifier
	autoReorder      bool
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	SceneRepo        scenes.Repository
	CharacterService character.Service
	TechniqueService techsvc.Service
	Ledger           ledger.Service
	Roller           dice.Roller
	Notifier         notify.Notifier

	// AutoReorder re-sorts the last actor's block after initiative
	// changes
	AutoReorder bool
}

// NewService creates a new turn-order service
func NewService(cfg *ServiceConfig) Service {
	return &service{
		sceneRepo:        cfg.SceneRepo,
		characterService: cfg.CharacterService,
		techniqueService: cfg.TechniqueService,
		ledger:           cfg.Ledger,
		roller:           cfg.Roller,
		notifier:         cfg.Notifier,
		autoReorder:      cfg.AutoReorder,
	}
}

func (s *service) AdvanceTurn(ctx context.Context, sceneID string) (*Report, error) {
	sc, err := s.sceneRepo.Get(ctx, sceneID)
	if err != nil {
		return nil, err
	}
	if len(sc.TurnOrder) == 0 {
		return nil, apperr.InvalidArgumentf("the turn order is empty; roll initiative first")
	}

	if head := sc.TurnOrder[0]; !head.IsMarker() {
		sc.LastActorTokenID = head.TokenID
	}
	sc.RotateTurn()

	report, err := s.Process(ctx, sc)
	if err != nil {
		return nil, err
	}
	if err := s.sceneRepo.Update(ctx, sc); err != nil {
		return nil, err
	}
	return report, nil
}

// Process advances the list until a character entry sits at the head.
// The iteration cap makes marker-only lists terminate instead of
// spinning.
func (s *service) Process(ctx context.Context, sc *scene.Scene) (*Report, error) {
	report := &Report{Round: sc.Round, ValorGrants: make(map[string]int)}

	limit := len(sc.TurnOrder)
	for i := 0; i < limit; i++ {
		if len(sc.TurnOrder) == 0 {
			break
		}
		head := sc.TurnOrder[0]
		if !head.IsMarker() {
			break
		}

		if head.IsRound() {
			if err := s.rollover(ctx, sc, report); err != nil {
				return nil, err
			}
			continue
		}

		if head.Formula {
			if head.Value <= 0 {
				s.expire(ctx, sc, head, report)
			} else {
				head.Value--
				sc.RotateTurn()
			}
			continue
		}

		if kind, amount, ok := head.TickLabel(); ok {
			if err := s.applyTick(ctx, sc, kind, amount, report); err != nil {
				return nil, err
			}
		}
		sc.RotateTurn()
	}

	if s.autoReorder && sc.LastActorTokenID != "" {
		report.Swaps = s.reorder(sc)
	}
	return report, nil
}

// expire removes a spent countdown marker and cascades one decrement to
// the next marker if it is also counting down
func (s *service) expire(ctx context.Context, sc *scene.Scene, head *scene.TurnEntry, report *Report) {
	sc.TurnOrder = sc.TurnOrder[1:]
	report.Expired = append(report.Expired, head.Label)
	s.broadcast(ctx, sc, fmt.Sprintf("**%s** has worn off.", head.Label))

	if len(sc.TurnOrder) > 0 {
		if next := sc.TurnOrder[0]; next.IsMarker() && next.Formula {
			next.Value--
		}
	}
}

func (s *service) rollover(ctx context.Context, sc *scene.Scene, report *Report) error {
	sc.Round++
	sc.TurnOrder[0].Value = sc.Round
	sc.RotateTurn()

	report.RolledOver = true
	report.Round = sc.Round
	s.broadcast(ctx, sc, fmt.Sprintf("**Round %d** begins.", sc.Round))

	// the guard makes rollover idempotent: reprocessing a list that has
	// not moved the marker past the boundary again grants nothing
	if sc.LastValorRound < sc.Round {
		sc.LastValorRound = sc.Round
		if err := s.grantValor(ctx, sc, report); err != nil {
			return err
		}
	}

	s.cooldownAlerts(ctx, sc, report)
	return nil
}

// grantValor pays each entity its per-round Valor exactly once, no
// matter how many tokens represent it
func (s *service) grantValor(ctx context.Context, sc *scene.Scene, report *Report) error {
	granted := make(map[string]bool)
	for _, tokenID := range sortedTokenIDs(sc) {
		token := sc.Tokens[tokenID]
		if token.Valor.Max <= 0 || granted[token.EntityID] {
			continue
		}
		granted[token.EntityID] = true

		rate := 1
		profile, err := s.characterService.GetProfile(ctx, token.EntityID)
		if err == nil {
			if profile.Class == shared.ClassMaster {
				rate *= 2
			}
			if profile.HasSkill(shared.SkillLimitlessPower) {
				rate++
			}
			current, _, currErr := s.ledger.Current(ctx, sc, tokenID, scene.ResourceValor)
			if currErr == nil && current < 0 && profile.HasSkill(shared.SkillBounceBack) {
				rate++
			}
		} else if !apperr.IsNotFound(err) {
			return err
		}

		if _, err := s.ledger.ApplyDelta(ctx, sc, tokenID, scene.ResourceValor, float64(rate), nil); err != nil {
			return err
		}
		report.ValorGrants[token.EntityID] = rate
	}
	return nil
}

// cooldownAlerts announces techniques coming off cooldown on exactly
// this round; failures here never block the rollover
func (s *service) cooldownAlerts(ctx context.Context, sc *scene.Scene, report *Report) {
	seen := make(map[string]bool)
	for _, tokenID := range sortedTokenIDs(sc) {
		token := sc.Tokens[tokenID]
		if seen[token.EntityID] {
			continue
		}
		seen[token.EntityID] = true

		techs, err := s.techniqueService.ListTechniques(ctx, token.EntityID)
		if err != nil {
			if !apperr.IsNotFound(err) {
				log.Printf("Failed to list techniques for %s: %v", token.EntityID, err)
			}
			continue
		}
		for _, tech := range techs {
			l, ok := tech.Limit(technique.LimitCooldown)
			if !ok {
				continue
			}
			last, used := sc.LastUseRound(token.EntityID, tech.Name)
			if used && sc.Round == last+l.Level+1 {
				notice := fmt.Sprintf("%s's **%s** is off cooldown.", token.Name, tech.Name)
				report.OffCooldown = append(report.OffCooldown, notice)
				s.broadcast(ctx, sc, notice)
			}
		}
	}
}

// applyTick walks backward from the tail to the nearest character entry
// and applies the ongoing effect to its token
func (s *service) applyTick(ctx context.Context, sc *scene.Scene, kind string, amount int, report *Report) error {
	var tokenID string
	for i := len(sc.TurnOrder) - 1; i >= 0; i-- {
		if !sc.TurnOrder[i].IsMarker() {
			tokenID = sc.TurnOrder[i].TokenID
			break
		}
	}
	if tokenID == "" {
		return nil
	}

	var err error
	switch kind {
	case "Ongoing":
		_, err = s.ledger.ApplyDelta(ctx, sc, tokenID, scene.ResourceHP, float64(-amount), nil)
	case "Regen":
		_, err = s.ledger.ApplyDelta(ctx, sc, tokenID, scene.ResourceHP, float64(amount), nil)
	case "SRegen":
		_, err = s.ledger.ApplyDelta(ctx, sc, tokenID, scene.ResourceStamina, float64(amount), nil)
	}
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil
		}
		return err
	}

	report.Ticks = append(report.Ticks, TickReport{TokenID: tokenID, Kind: kind, Amount: amount})
	return nil
}

func (s *service) AddEffect(ctx context.Context, sceneID, tokenID, label string, duration int) (*Report, error) {
	sc, err := s.sceneRepo.Get(ctx, sceneID)
	if err != nil {
		return nil, err
	}
	if _, ok := sc.Token(tokenID); !ok {
		return nil, apperr.InvalidArgumentf("no such token in the scene: %s", tokenID)
	}

	marker := scene.NewEffectMarker(label, duration)
	i := sc.EntryIndex(tokenID)
	if i < 0 {
		sc.TurnOrder = append(sc.TurnOrder, marker)
	} else {
		sc.TurnOrder = append(sc.TurnOrder[:i+1],
			append([]*scene.TurnEntry{marker}, sc.TurnOrder[i+1:]...)...)
	}

	report, err := s.Process(ctx, sc)
	if err != nil {
		return nil, err
	}
	if err := s.sceneRepo.Update(ctx, sc); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *service) RemoveEffect(ctx context.Context, sceneID, label string) error {
	sc, err := s.sceneRepo.Get(ctx, sceneID)
	if err != nil {
		return err
	}

	for i, entry := range sc.TurnOrder {
		if entry.IsMarker() && !entry.IsRound() && entry.Label == label {
			sc.TurnOrder = append(sc.TurnOrder[:i], sc.TurnOrder[i+1:]...)
			return s.sceneRepo.Update(ctx, sc)
		}
	}
	return apperr.NotFoundf("no effect named %q in the turn order", label)
}

func (s *service) Rest(ctx context.Context, sceneID string) error {
	return s.rest(ctx, sceneID, false)
}

func (s *service) FullRest(ctx context.Context, sceneID string) error {
	return s.rest(ctx, sceneID, true)
}

func (s *service) rest(ctx context.Context, sceneID string, full bool) error {
	sc, err := s.sceneRepo.Get(ctx, sceneID)
	if err != nil {
		return err
	}

	for _, tokenID := range sortedTokenIDs(sc) {
		token := sc.Tokens[tokenID]

		if full {
			if _, err := s.ledger.ApplyDelta(ctx, sc, tokenID, scene.ResourceHP, float64(token.HP.Max), &ledger.Options{Absolute: true}); err != nil {
				return err
			}
			if _, err := s.ledger.ApplyDelta(ctx, sc, tokenID, scene.ResourceStamina, float64(token.Stamina.Max), &ledger.Options{Absolute: true}); err != nil {
				return err
			}
		} else {
			if _, err := s.ledger.ApplyDelta(ctx, sc, tokenID, scene.ResourceHP, 0.5, &ledger.Options{RatioOfMax: true}); err != nil {
				return err
			}
			if _, err := s.ledger.ApplyDelta(ctx, sc, tokenID, scene.ResourceStamina, 0.5, &ledger.Options{RatioOfMax: true}); err != nil {
				return err
			}
		}

		baseline := s.valorBaseline(ctx, token.EntityID)
		if _, err := s.ledger.ApplyDelta(ctx, sc, tokenID, scene.ResourceValor, float64(baseline), &ledger.Options{Absolute: true}); err != nil {
			return err
		}
	}

	// a fresh scene: stale cooldowns, ammunition counts, and undo
	// entries would all point at fights that no longer exist
	sc.ClearHistory()
	sc.UndoStack = nil

	return s.sceneRepo.Update(ctx, sc)
}

// valorBaseline is the Valor a character starts a scene with: zero, or
// twice the Bravado skill level
func (s *service) valorBaseline(ctx context.Context, entityID string) int {
	profile, err := s.characterService.GetProfile(ctx, entityID)
	if err != nil {
		return 0
	}
	return profile.SkillLevel(shared.SkillBravado) * 2
}

func (s *service) RollInitiative(ctx context.Context, sceneID string) (*scene.Scene, error) {
	sc, err := s.sceneRepo.Get(ctx, sceneID)
	if err != nil {
		return nil, err
	}

	type rolled struct {
		tokenID string
		score   int
	}
	var entries []rolled
	seen := make(map[string]bool)

	for _, tokenID := range sortedTokenIDs(sc) {
		token := sc.Tokens[tokenID]

		dex := 0
		if profile, profErr := s.characterService.GetProfile(ctx, token.EntityID); profErr == nil {
			dex = profile.Stat(shared.StatAgility)
		}

		roll, rollErr := s.roller.Roll(1, 10, dex)
		if rollErr != nil {
			return nil, rollErr
		}

		// duplicate-entity tokens stay in the order under their own
		// entries but are hidden shadows of the first
		token.Hidden = seen[token.EntityID]
		seen[token.EntityID] = true

		token.Initiative = roll.Total
		entries = append(entries, rolled{tokenID: tokenID, score: roll.Total})
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].score > entries[j].score })

	sc.TurnOrder = sc.TurnOrder[:0]
	for _, e := range entries {
		sc.TurnOrder = append(sc.TurnOrder, scene.NewCharacterEntry(e.tokenID, e.score))
	}
	sc.Round = 1
	sc.TurnOrder = append(sc.TurnOrder, scene.NewRoundMarker(sc.Round))
	sc.LastValorRound = 0
	sc.LastActorTokenID = ""
	sc.ClearHistory()
	sc.UndoStack = nil

	if err := s.sceneRepo.Update(ctx, sc); err != nil {
		return nil, err
	}
	return sc, nil
}

// reorder bubbles the last actor's block upward while the block above it
// has a lower initiative score, and returns the swap count
func (s *service) reorder(sc *scene.Scene) int {
	swaps := 0
	for range sc.TurnOrder {
		start := sc.EntryIndex(sc.LastActorTokenID)
		if start <= 0 {
			break
		}

		aboveStart := blockStart(sc, start-1)
		above := sc.TurnOrder[aboveStart]
		if above.IsMarker() || above.Value >= sc.TurnOrder[start].Value {
			break
		}

		swapBlocks(sc, aboveStart, start)
		swaps++
	}
	return swaps
}

// blockStart walks backward from i to the character entry that owns the
// block i belongs to; a bare marker run is its own block
func blockStart(sc *scene.Scene, i int) int {
	for i > 0 && sc.TurnOrder[i].IsMarker() && !sc.TurnOrder[i].IsRound() {
		i--
	}
	return i
}

// blockEnd returns the index one past the block starting at i: the
// character entry plus its contiguous trailing markers
func blockEnd(sc *scene.Scene, i int) int {
	j := i + 1
	for j < len(sc.TurnOrder) && sc.TurnOrder[j].IsMarker() && !sc.TurnOrder[j].IsRound() {
		j++
	}
	return j
}

// swapBlocks exchanges the block starting at a with the one starting at
// b, where a precedes b and the blocks are adjacent
func swapBlocks(sc *scene.Scene, a, b int) {
	end := blockEnd(sc, b)
	swapped := make([]*scene.TurnEntry, 0, end-a)
	swapped = append(swapped, sc.TurnOrder[b:end]...)
	swapped = append(swapped, sc.TurnOrder[a:b]...)
	copy(sc.TurnOrder[a:end], swapped)
}

func sortedTokenIDs(sc *scene.Scene) []string {
	ids := make([]string, 0, len(sc.Tokens))
	for id := range sc.Tokens {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *service) broadcast(ctx context.Context, sc *scene.Scene, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Broadcast(ctx, sc.ChannelID, message); err != nil {
		log.Printf("Failed to broadcast to %s: %v", sc.ChannelID, err)
	}
}
