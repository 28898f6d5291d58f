// Package ledger applies resource deltas to tokens and entities: bar
// and linked-attribute writes, upper-bound clamping, shield absorption,
// and the critical-health notifications fired by HP writes.
package ledger

//go:generate mockgen -destination=mock/mock_service.go -package=mockledger -source=service.go

import (
	"context"
	"log"
	"math"

	"github.com/ProfessorProf/valor-bot-discord/internal/domain/scene"
	"github.com/ProfessorProf/valor-bot-discord/internal/domain/shared"
	apperr "github.com/ProfessorProf/valor-bot-discord/internal/errors"
	"github.com/ProfessorProf/valor-bot-discord/internal/notify"
	"github.com/ProfessorProf/valor-bot-discord/internal/repositories/attributes"
)

// Options control how a delta is interpreted
type Options struct {
	// RatioOfMax treats the amount as a fraction of the bar maximum;
	// the change is ceil(amount * max)
	RatioOfMax bool

	// Absolute replaces the current value instead of adding to it
	Absolute bool
}

// DamageResult reports how incoming damage was split between shields
// and HP
type DamageResult struct {
	Absorbed int
	ToHP     int
}

// Service defines the resource ledger interface. Methods mutate the
// scene in memory; persisting the scene is the caller's job, keeping
// one command's writes atomic.
type Service interface {
	// Current reads a token's resource value and maximum, preferring a
	// linked entity attribute over the token's own bar
	Current(ctx context.Context, sc *scene.Scene, tokenID string, resource scene.Resource) (value, max int, err error)

	// ApplyDelta applies a change to a token's resource and returns the
	// actual change after clamping
	ApplyDelta(ctx context.Context, sc *scene.Scene, tokenID string, resource scene.Resource, amount float64, opts *Options) (int, error)

	// ApplyDeltaForEntity applies a change to every token of an entity
	// plus the entity's own attribute; used when the target is a
	// character rather than a specific token
	ApplyDeltaForEntity(ctx context.Context, sc *scene.Scene, entityID string, resource scene.Resource, amount float64, opts *Options) (int, error)

	// ApplyDamage routes damage through the token's shields and applies
	// the remainder to HP
	ApplyDamage(ctx context.Context, sc *scene.Scene, tokenID string, amount int, damageType shared.DamageType) (*DamageResult, error)
}

type service struct {
	attributeRepo attributes.Repository
	notifier      notify.Notifier
	clampFloor    bool
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	AttributeRepo attributes.Repository
	Notifier      notify.Notifier

	// ClampFloor floors resources at zero. The reference behavior only
	// clamps at the maximum and leaves flooring to display code; the
	// toggle exists because that asymmetry is a candidate bug, not a
	// contract.
	ClampFloor bool
}

// NewService creates a new ledger service
func NewService(cfg *ServiceConfig) Service {
	return &service{
		attributeRepo: cfg.AttributeRepo,
		notifier:      cfg.Notifier,
		clampFloor:    cfg.ClampFloor,
	}
}

func resourceAttributes(resource scene.Resource) (attr, maxAttr string) {
	switch resource {
	case scene.ResourceHP:
		return shared.AttributeHP, shared.AttributeHPMax
	case scene.ResourceStamina:
		return shared.AttributeStamina, shared.AttributeStaminaMax
	default:
		return shared.AttributeValor, shared.AttributeValorMax
	}
}

func (s *service) Current(ctx context.Context, sc *scene.Scene, tokenID string, resource scene.Resource) (int, int, error) {
	token, ok := sc.Token(tokenID)
	if !ok {
		return 0, 0, apperr.NotFoundf("token not found: %s", tokenID)
	}

	bar := token.Bar(resource)
	if attr, linked := token.LinkedAttribute(resource); linked {
		value, err := attributes.GetInt(ctx, s.attributeRepo, token.EntityID, attr, bar.Value)
		if err != nil {
			return 0, 0, err
		}
		return value, bar.Max, nil
	}
	return bar.Value, bar.Max, nil
}

func (s *service) ApplyDelta(ctx context.Context, sc *scene.Scene, tokenID string, resource scene.Resource, amount float64, opts *Options) (int, error) {
	token, ok := sc.Token(tokenID)
	if !ok {
		return 0, apperr.NotFoundf("token not found: %s", tokenID)
	}

	old, max, err := s.Current(ctx, sc, tokenID, resource)
	if err != nil {
		return 0, err
	}

	newValue := s.clamp(next(old, max, amount, opts), max)

	if attr, linked := token.LinkedAttribute(resource); linked {
		if err := attributes.SetInt(ctx, s.attributeRepo, token.EntityID, attr, newValue); err != nil {
			return 0, err
		}
		// keep every bar linked to the same attribute in step
		for _, other := range sc.TokensForEntity(token.EntityID) {
			if otherAttr, otherLinked := other.LinkedAttribute(resource); otherLinked && otherAttr == attr {
				other.Bar(resource).Value = newValue
			}
		}
	} else {
		token.Bar(resource).Value = newValue
	}

	if resource == scene.ResourceHP {
		s.checkCritical(ctx, sc, token, old, newValue, max)
	}

	return newValue - old, nil
}

func (s *service) ApplyDeltaForEntity(ctx context.Context, sc *scene.Scene, entityID string, resource scene.Resource, amount float64, opts *Options) (int, error) {
	attr, maxAttr := resourceAttributes(resource)

	old, err := attributes.GetInt(ctx, s.attributeRepo, entityID, attr, 0)
	if err != nil {
		return 0, err
	}
	max, err := attributes.GetInt(ctx, s.attributeRepo, entityID, maxAttr, 0)
	if err != nil {
		return 0, err
	}

	newValue := s.clamp(next(old, max, amount, opts), max)
	if err := attributes.SetInt(ctx, s.attributeRepo, entityID, attr, newValue); err != nil {
		return 0, err
	}

	for _, token := range sc.TokensForEntity(entityID) {
		token.Bar(resource).Value = newValue
	}

	if resource == scene.ResourceHP {
		if token, ok := sc.FirstTokenForEntity(entityID); ok {
			s.checkCritical(ctx, sc, token, old, newValue, max)
		}
	}

	return newValue - old, nil
}

func (s *service) ApplyDamage(ctx context.Context, sc *scene.Scene, tokenID string, amount int, damageType shared.DamageType) (*DamageResult, error) {
	token, ok := sc.Token(tokenID)
	if !ok {
		return nil, apperr.NotFoundf("token not found: %s", tokenID)
	}
	if amount < 0 {
		return nil, apperr.InvalidArgumentf("damage cannot be negative: %d", amount)
	}

	absorbed := token.AbsorbDamage(amount, damageType)
	remainder := amount - absorbed

	if remainder > 0 {
		if _, err := s.ApplyDelta(ctx, sc, tokenID, scene.ResourceHP, float64(-remainder), nil); err != nil {
			return nil, err
		}
	}

	return &DamageResult{Absorbed: absorbed, ToHP: remainder}, nil
}

// next computes the unclamped new value
func next(old, max int, amount float64, opts *Options) int {
	if opts == nil {
		opts = &Options{}
	}
	change := int(math.Ceil(amount))
	if opts.RatioOfMax {
		change = int(math.Ceil(amount * float64(max)))
	}
	if opts.Absolute {
		return change
	}
	return old + change
}

func (s *service) clamp(value, max int) int {
	if value > max {
		value = max
	}
	if s.clampFloor && value < 0 {
		value = 0
	}
	return value
}

// CriticalThreshold is the HP value at or below which a character is in
// critical health: ceil(max * 0.4)
func CriticalThreshold(max int) int {
	return (max*2 + 4) / 5
}

// checkCritical emits entered/left critical notices exactly once per
// threshold crossing, never on every write
func (s *service) checkCritical(ctx context.Context, sc *scene.Scene, token *scene.Token, old, newValue, max int) {
	if s.notifier == nil || max <= 0 {
		return
	}

	threshold := CriticalThreshold(max)
	wasCritical := old < threshold
	isCritical := newValue < threshold
	if wasCritical == isCritical {
		return
	}

	message := token.Name + " is in critical health!"
	if !isCritical {
		message = token.Name + " is no longer critical."
	}

	var err error
	if token.ControllerID != "" {
		err = s.notifier.Whisper(ctx, sc.ChannelID, token.ControllerID, message)
	} else {
		err = s.notifier.WhisperGM(ctx, sc.ChannelID, message)
	}
	if err != nil {
		log.Printf("Failed to send critical-health notice for %s: %v", token.ID, err)
	}
}
