package services

import (
	"github.com/ProfessorProf/valor-bot-discord/internal/config"
	"github.com/ProfessorProf/valor-bot-discord/internal/dice"
	"github.com/ProfessorProf/valor-bot-discord/internal/notify"
	"github.com/ProfessorProf/valor-bot-discord/internal/repositories/attributes"
	"github.com/ProfessorProf/valor-bot-discord/internal/repositories/scenes"
	characterService "github.com/ProfessorProf/valor-bot-discord/internal/services/character"
	ledgerService "github.com/ProfessorProf/valor-bot-discord/internal/services/ledger"
	resolutionService "github.com/ProfessorProf/valor-bot-discord/internal/services/resolution"
	techniqueService "github.com/ProfessorProf/valor-bot-discord/internal/services/technique"
	turnorderService "github.com/ProfessorProf/valor-bot-discord/internal/services/turnorder"
	"github.com/ProfessorProf/valor-bot-discord/internal/uuid"
)

// Provider holds all service instances plus the repositories the
// handler layer needs for scene and sheet management
type Provider struct {
	CharacterService  characterService.Service
	TechniqueService  techniqueService.Service
	LedgerService     ledgerService.Service
	ResolutionService resolutionService.Service
	TurnOrderService  turnorderService.Service

	AttributeRepository attributes.Repository
	SceneRepository     scenes.Repository
	IDGenerator         uuid.Generator
}

// ProviderConfig holds configuration for creating services
type ProviderConfig struct {
	AttributeRepository attributes.Repository
	SceneRepository     scenes.Repository
	IDGenerator         uuid.Generator
	Roller              dice.Roller
	Notifier            notify.Notifier
	Rules               config.RulesConfig
}

// NewProvider creates a new service provider with all services initialized
func NewProvider(cfg *ProviderConfig) *Provider {
	// Use in-memory repositories if none provided
	attrRepo := cfg.AttributeRepository
	if attrRepo == nil {
		attrRepo = attributes.NewInMemoryRepository()
	}

	sceneRepo := cfg.SceneRepository
	if sceneRepo == nil {
		sceneRepo = scenes.NewInMemoryRepository()
	}

	roller := cfg.Roller
	if roller == nil {
		roller = dice.NewRandomRoller()
	}

	idGen := cfg.IDGenerator
	if idGen == nil {
		idGen = uuid.NewGoogleUUIDGenerator()
	}

	charService := characterService.NewService(&characterService.ServiceConfig{
		AttributeRepo: attrRepo,
	})

	techService := techniqueService.NewService(&techniqueService.ServiceConfig{
		AttributeRepo: attrRepo,
	})

	ledgerSvc := ledgerService.NewService(&ledgerService.ServiceConfig{
		AttributeRepo: attrRepo,
		Notifier:      cfg.Notifier,
		ClampFloor:    cfg.Rules.ClampFloor,
	})

	resolutionSvc := resolutionService.NewService(&resolutionService.ServiceConfig{
		SceneRepo:             sceneRepo,
		AttributeRepo:         attrRepo,
		CharacterService:      charService,
		TechniqueService:      techService,
		Ledger:                ledgerSvc,
		Roller:                roller,
		IgnoreLimitsOnMinions: cfg.Rules.IgnoreLimitsOnMinions,
	})

	turnorderSvc := turnorderService.NewService(&turnorderService.ServiceConfig{
		SceneRepo:        sceneRepo,
		CharacterService: charService,
		TechniqueService: techService,
		Ledger:           ledgerSvc,
		Roller:           roller,
		Notifier:         cfg.Notifier,
		AutoReorder:      cfg.Rules.AutoReorder,
	})

	return &Provider{
		CharacterService:    charService,
		TechniqueService:    techService,
		LedgerService:       ledgerSvc,
		ResolutionService:   resolutionSvc,
		TurnOrderService:    turnorderSvc,
		AttributeRepository: attrRepo,
		SceneRepository:     sceneRepo,
		IDGenerator:         idGen,
	}
}
