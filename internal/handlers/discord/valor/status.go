package valor

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/ProfessorProf/valor-bot-discord/internal/services"
)

// StatusRequest carries one /valor status query
type StatusRequest struct {
	Session     *discordgo.Session
	Interaction *discordgo.InteractionCreate

	Actor string // token name, defaults to the caller's token
}

// StatusHandler lists a character's techniques and their eligibility
type StatusHandler struct {
	services *services.Provider
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(provider *services.Provider) *StatusHandler {
	return &StatusHandler{services: provider}
}

func (h *StatusHandler) Handle(req *StatusRequest) error {
	if err := deferResponse(req.Session, req.Interaction); err != nil {
		return err
	}
	ctx := context.Background()

	sc, err := sceneForChannel(ctx, h.services.SceneRepository, req.Interaction.ChannelID)
	if err != nil {
		return editResponse(req.Session, req.Interaction, renderError(err))
	}

	entityID := ""
	if req.Actor != "" {
		token, ok := findToken(sc, req.Actor)
		if !ok {
			return editResponse(req.Session, req.Interaction,
				fmt.Sprintf("❌ No token named **%s** in the scene.", req.Actor))
		}
		entityID = token.EntityID
	} else if token, ok := tokenForUser(sc, userID(req.Interaction)); ok {
		entityID = token.EntityID
	} else {
		return editResponse(req.Session, req.Interaction,
			"❌ You have no token in this scene; name one with the `actor` option.")
	}

	statuses, err := h.services.ResolutionService.Eligibility(ctx, sc.ID, entityID)
	if err != nil {
		return editResponse(req.Session, req.Interaction, renderError(err))
	}
	if len(statuses) == 0 {
		return editResponse(req.Session, req.Interaction,
			fmt.Sprintf("**%s** has no techniques on their sheet.", entityID))
	}

	var lines []string
	for _, status := range statuses {
		tech := status.Technique
		if len(status.Violations) == 0 {
			lines = append(lines, fmt.Sprintf("✅ **%s** (%s, cost %d)", tech.Name, tech.Core, tech.Cost))
			continue
		}
		lines = append(lines, fmt.Sprintf("🚫 **%s** — %s", tech.Name, strings.Join(status.Violations, "; ")))
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("📜 Techniques — round %d", sc.Round),
		Description: strings.Join(lines, "\n"),
		Color:       0x9b59b6,
	}
	return editEmbed(req.Session, req.Interaction, embed)
}
