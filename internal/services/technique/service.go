// Package technique assembles Technique records from the repeating rows
// of a character sheet and resolves name lookups, including the global
// search behind mimic techniques.
package technique

//go:generate mockgen -destination=mock/mock_service.go -package=mocktechnique -source=service.go

import (
	"context"
	"sort"
	"strings"

	"github.com/ProfessorProf/valor-bot-discord/internal/domain/shared"
	"github.com/ProfessorProf/valor-bot-discord/internal/domain/technique"
	apperr "github.com/ProfessorProf/valor-bot-discord/internal/errors"
	"github.com/ProfessorProf/valor-bot-discord/internal/repositories/attributes"
	"github.com/ProfessorProf/valor-bot-discord/internal/services/character"
)

// Service defines the technique repository interface
type Service interface {
	// ListTechniques assembles every technique on an entity's sheet
	ListTechniques(ctx context.Context, entityID string) ([]*technique.Technique, error)

	// ResolveTechnique finds a technique by fuzzy name match on an
	// entity's sheet and resolves any mimic indirection. A failed mimic
	// is returned as-is with its mimic core intact so the caller can
	// reject it before spending resources.
	ResolveTechnique(ctx context.Context, entityID, query string) (*technique.Technique, error)
}

type service struct {
	attributeRepo attributes.Repository
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	AttributeRepo attributes.Repository
}

// NewService creates a new technique service
func NewService(cfg *ServiceConfig) Service {
	return &service{attributeRepo: cfg.AttributeRepo}
}

func (s *service) ListTechniques(ctx context.Context, entityID string) ([]*technique.Technique, error) {
	attrs, err := s.attributeRepo.List(ctx, entityID)
	if err != nil {
		return nil, err
	}
	return assemble(entityID, attrs), nil
}

// assemble folds the repeating tech rows of one attribute map into
// complete records. Attribute names are sorted first so row order is
// stable across calls.
func assemble(entityID string, attrs map[string]string) []*technique.Technique {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	builder := technique.NewBuilder(entityID)
	for _, name := range names {
		group, rowID, field, ok := character.SplitRepeating(name)
		if !ok || group != shared.GroupTechniques {
			continue
		}
		builder.Add(rowID, field, attrs[name])
	}
	return builder.Build()
}

func (s *service) ResolveTechnique(ctx context.Context, entityID, query string) (*technique.Technique, error) {
	techs, err := s.ListTechniques(ctx, entityID)
	if err != nil {
		return nil, err
	}

	tech := matchTechnique(query, techs)
	if tech == nil {
		return nil, apperr.NotFoundf("no technique matching %q", query)
	}

	return s.resolveMimic(ctx, tech, make(map[string]bool))
}

// resolveMimic substitutes a mimic's target, depth-first: a target that
// is itself a mimic is resolved to its own composite before the outer
// substitution. The visited set stops chains that loop back on
// themselves.
func (s *service) resolveMimic(ctx context.Context, tech *technique.Technique, visited map[string]bool) (*technique.Technique, error) {
	if !tech.Core.IsMimic() {
		return tech, nil
	}
	if tech.MimicTarget == "" {
		return nil, apperr.Internalf("mimic technique %q has no target", tech.Name)
	}

	key := tech.EntityID + "/" + tech.ID
	if visited[key] {
		return nil, apperr.InvalidArgumentf("mimic chain through %q loops back on itself", tech.Name)
	}
	visited[key] = true

	target, err := s.findGlobal(ctx, tech.MimicTarget)
	if err != nil {
		return nil, err
	}
	target, err = s.resolveMimic(ctx, target, visited)
	if err != nil {
		return nil, err
	}
	return tech.Mimicked(target), nil
}

// findGlobal searches every sheet for the mimic target, not just the
// caster's own
func (s *service) findGlobal(ctx context.Context, query string) (*technique.Technique, error) {
	all, err := s.attributeRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	entityIDs := make([]string, 0, len(all))
	for entityID := range all {
		entityIDs = append(entityIDs, entityID)
	}
	sort.Strings(entityIDs)

	var candidates []*technique.Technique
	for _, entityID := range entityIDs {
		candidates = append(candidates, assemble(entityID, all[entityID])...)
	}

	if tech := matchTechnique(query, candidates); tech != nil {
		return tech, nil
	}
	return nil, apperr.Internalf("mimic target %q not found on any sheet", query)
}

// matchTechnique runs the three-tier fuzzy cascade: case-insensitive
// prefix, then contains, then contains after stripping everything that
// is not a letter or digit. Each tier only runs when the previous one
// matched nothing; the first match within a tier wins.
func matchTechnique(query string, techs []*technique.Technique) *technique.Technique {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	for _, t := range techs {
		if strings.HasPrefix(strings.ToLower(t.Name), q) {
			return t
		}
	}
	for _, t := range techs {
		if strings.Contains(strings.ToLower(t.Name), q) {
			return t
		}
	}

	stripped := stripNonAlphanumeric(q)
	if stripped == "" {
		return nil
	}
	for _, t := range techs {
		if strings.Contains(stripNonAlphanumeric(strings.ToLower(t.Name)), stripped) {
			return t
		}
	}
	return nil
}

func stripNonAlphanumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
