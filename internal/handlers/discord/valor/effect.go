package valor

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/ProfessorProf/valor-bot-discord/internal/services"
)

// EffectRequest carries one /valor effect add or remove
type EffectRequest struct {
	Session     *discordgo.Session
	Interaction *discordgo.InteractionCreate

	Add      bool
	Label    string
	Duration int
	Token    string
}

// EffectHandler manages countdown markers on the turn order
type EffectHandler struct {
	services *services.Provider
}

// NewEffectHandler creates a new effect handler
func NewEffectHandler(provider *services.Provider) *EffectHandler {
	return &EffectHandler{services: provider}
}

func (h *EffectHandler) Handle(req *EffectRequest) error {
	if err := deferResponse(req.Session, req.Interaction); err != nil {
		return err
	}
	ctx := context.Background()

	sc, err := sceneForChannel(ctx, h.services.SceneRepository, req.Interaction.ChannelID)
	if err != nil {
		return editResponse(req.Session, req.Interaction, renderError(err))
	}

	if !req.Add {
		if err := h.services.TurnOrderService.RemoveEffect(ctx, sc.ID, req.Label); err != nil {
			return editResponse(req.Session, req.Interaction, renderError(err))
		}
		return editResponse(req.Session, req.Interaction,
			fmt.Sprintf("🧹 **%s** removed from the turn order.", req.Label))
	}

	token, ok := findToken(sc, req.Token)
	if !ok {
		return editResponse(req.Session, req.Interaction,
			fmt.Sprintf("❌ No token named **%s** in the scene.", req.Token))
	}
	if req.Duration < 1 {
		return editResponse(req.Session, req.Interaction, "❌ Duration must be at least 1 round.")
	}

	if _, err := h.services.TurnOrderService.AddEffect(ctx, sc.ID, token.ID, req.Label, req.Duration); err != nil {
		return editResponse(req.Session, req.Interaction, renderError(err))
	}
	return editResponse(req.Session, req.Interaction,
		fmt.Sprintf("⏳ **%s** attached to **%s** for %d rounds.", req.Label, token.Name, req.Duration))
}
