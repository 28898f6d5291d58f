// Package discord wires slash commands to the technique services.
package discord

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/ProfessorProf/valor-bot-discord/internal/handlers/discord/valor"
	"github.com/ProfessorProf/valor-bot-discord/internal/services"
)

// Handler handles all Discord interactions
type Handler struct {
	ServiceProvider *services.Provider

	techHandler       *valor.TechHandler
	undoHandler       *valor.UndoHandler
	statusHandler     *valor.StatusHandler
	effectHandler     *valor.EffectHandler
	restHandler       *valor.RestHandler
	initiativeHandler *valor.InitiativeHandler
	sceneHandler      *valor.SceneHandler
}

// HandlerConfig holds configuration for the Discord handler
type HandlerConfig struct {
	ServiceProvider *services.Provider
}

// NewHandler creates a new Discord handler
func NewHandler(cfg *HandlerConfig) *Handler {
	return &Handler{
		ServiceProvider:   cfg.ServiceProvider,
		techHandler:       valor.NewTechHandler(cfg.ServiceProvider),
		undoHandler:       valor.NewUndoHandler(cfg.ServiceProvider),
		statusHandler:     valor.NewStatusHandler(cfg.ServiceProvider),
		effectHandler:     valor.NewEffectHandler(cfg.ServiceProvider),
		restHandler:       valor.NewRestHandler(cfg.ServiceProvider),
		initiativeHandler: valor.NewInitiativeHandler(cfg.ServiceProvider),
		sceneHandler:      valor.NewSceneHandler(cfg.ServiceProvider),
	}
}

// RegisterCommands registers all slash commands with Discord
func (h *Handler) RegisterCommands(s *discordgo.Session, guildID string) error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "valor",
			Description: "Valor technique bot commands",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "tech",
					Description: "Use a technique",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "name",
							Description: "Technique name or abbreviation",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "targets",
							Description: "Target token names, comma-separated",
							Required:    false,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "bonus",
							Description: "One-off bonus to the attack roll",
							Required:    false,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "actor",
							Description: "Act as a token other than your own",
							Required:    false,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "as",
							Description: "Use another character's sheet",
							Required:    false,
						},
						{
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Name:        "override",
							Description: "Ignore limits and pay costs anyway (GM)",
							Required:    false,
						},
					},
				},
				{
					Name:        "undo",
					Description: "Revert the most recent technique use",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
				},
				{
					Name:        "status",
					Description: "List a character's techniques and what blocks them",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "actor",
							Description: "Token name, defaults to your token",
							Required:    false,
						},
					},
				},
				{
					Name:        "rest",
					Description: "Recover half HP and Stamina between fights",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
				},
				{
					Name:        "fullrest",
					Description: "Recover everything",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
				},
				{
					Name:        "initiative",
					Description: "Turn order commands",
					Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "roll",
							Description: "Roll initiative and rebuild the turn order",
							Type:        discordgo.ApplicationCommandOptionSubCommand,
						},
						{
							Name:        "next",
							Description: "End the current turn",
							Type:        discordgo.ApplicationCommandOptionSubCommand,
						},
					},
				},
				{
					Name:        "effect",
					Description: "Countdown effect commands",
					Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "add",
							Description: "Attach a countdown effect to a token",
							Type:        discordgo.ApplicationCommandOptionSubCommand,
							Options: []*discordgo.ApplicationCommandOption{
								{
									Type:        discordgo.ApplicationCommandOptionString,
									Name:        "token",
									Description: "Token the effect sits behind",
									Required:    true,
								},
								{
									Type:        discordgo.ApplicationCommandOptionString,
									Name:        "label",
									Description: "Effect name",
									Required:    true,
								},
								{
									Type:        discordgo.ApplicationCommandOptionInteger,
									Name:        "duration",
									Description: "Rounds until it wears off",
									Required:    true,
								},
							},
						},
						{
							Name:        "remove",
							Description: "Remove an effect by name",
							Type:        discordgo.ApplicationCommandOptionSubCommand,
							Options: []*discordgo.ApplicationCommandOption{
								{
									Type:        discordgo.ApplicationCommandOptionString,
									Name:        "label",
									Description: "Effect name",
									Required:    true,
								},
							},
						},
					},
				},
				{
					Name:        "scene",
					Description: "Scene management commands",
					Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "start",
							Description: "Start a scene in this channel",
							Type:        discordgo.ApplicationCommandOptionSubCommand,
						},
						{
							Name:        "add",
							Description: "Add a combatant to the scene",
							Type:        discordgo.ApplicationCommandOptionSubCommand,
							Options: []*discordgo.ApplicationCommandOption{
								{
									Type:        discordgo.ApplicationCommandOptionString,
									Name:        "character",
									Description: "Character sheet id",
									Required:    true,
								},
								{
									Type:        discordgo.ApplicationCommandOptionString,
									Name:        "name",
									Description: "Token name, defaults to the sheet name",
									Required:    false,
								},
								{
									Type:        discordgo.ApplicationCommandOptionUser,
									Name:        "controller",
									Description: "Player controlling this token",
									Required:    false,
								},
								{
									Type:        discordgo.ApplicationCommandOptionBoolean,
									Name:        "minion",
									Description: "Keep bars on the token instead of the sheet",
									Required:    false,
								},
							},
						},
						{
							Name:        "end",
							Description: "End the channel's scene",
							Type:        discordgo.ApplicationCommandOptionSubCommand,
						},
					},
				},
			},
		},
	}

	for _, cmd := range commands {
		_, err := s.ApplicationCommandCreate(s.State.User.ID, guildID, cmd)
		if err != nil {
			return fmt.Errorf("failed to create command %s: %w", cmd.Name, err)
		}
		log.Printf("Registered command: %s", cmd.Name)
	}

	return nil
}

// HandleInteraction handles all Discord interactions
func (h *Handler) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type == discordgo.InteractionApplicationCommand {
		h.handleCommand(s, i)
	}
}

// handleCommand handles slash command interactions
func (h *Handler) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if data.Name != "valor" || len(data.Options) == 0 {
		return
	}

	top := data.Options[0]

	if top.Type == discordgo.ApplicationCommandOptionSubCommand {
		switch top.Name {
		case "tech":
			req := &valor.TechRequest{Session: s, Interaction: i}
			for _, opt := range top.Options {
				switch opt.Name {
				case "name":
					req.Query = opt.StringValue()
				case "targets":
					req.Targets = opt.StringValue()
				case "bonus":
					req.Bonus = int(opt.IntValue())
				case "actor":
					req.Actor = opt.StringValue()
				case "as":
					req.AsEntity = opt.StringValue()
				case "override":
					req.Override = opt.BoolValue()
				}
			}
			if err := h.techHandler.Handle(req); err != nil {
				log.Printf("Error handling tech command: %v", err)
			}
		case "undo":
			req := &valor.UndoRequest{Session: s, Interaction: i}
			if err := h.undoHandler.Handle(req); err != nil {
				log.Printf("Error handling undo command: %v", err)
			}
		case "status":
			req := &valor.StatusRequest{Session: s, Interaction: i}
			for _, opt := range top.Options {
				if opt.Name == "actor" {
					req.Actor = opt.StringValue()
				}
			}
			if err := h.statusHandler.Handle(req); err != nil {
				log.Printf("Error handling status command: %v", err)
			}
		case "rest", "fullrest":
			req := &valor.RestRequest{Session: s, Interaction: i, Full: top.Name == "fullrest"}
			if err := h.restHandler.Handle(req); err != nil {
				log.Printf("Error handling %s command: %v", top.Name, err)
			}
		}
		return
	}

	if len(top.Options) == 0 {
		return
	}
	sub := top.Options[0]

	switch top.Name {
	case "initiative":
		req := &valor.InitiativeRequest{Session: s, Interaction: i, Roll: sub.Name == "roll"}
		if err := h.initiativeHandler.Handle(req); err != nil {
			log.Printf("Error handling initiative %s: %v", sub.Name, err)
		}
	case "effect":
		req := &valor.EffectRequest{Session: s, Interaction: i, Add: sub.Name == "add"}
		for _, opt := range sub.Options {
			switch opt.Name {
			case "token":
				req.Token = opt.StringValue()
			case "label":
				req.Label = opt.StringValue()
			case "duration":
				req.Duration = int(opt.IntValue())
			}
		}
		if err := h.effectHandler.Handle(req); err != nil {
			log.Printf("Error handling effect %s: %v", sub.Name, err)
		}
	case "scene":
		req := &valor.SceneRequest{Session: s, Interaction: i, Action: sub.Name}
		for _, opt := range sub.Options {
			switch opt.Name {
			case "character":
				req.EntityID = opt.StringValue()
			case "name":
				req.TokenName = opt.StringValue()
			case "controller":
				if user := opt.UserValue(s); user != nil {
					req.Controller = user.ID
				}
			case "minion":
				req.Minion = opt.BoolValue()
			}
		}
		if err := h.sceneHandler.Handle(req); err != nil {
			log.Printf("Error handling scene %s: %v", sub.Name, err)
		}
	}
}
