package valor

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/ProfessorProf/valor-bot-discord/internal/services"
)

// RestRequest carries one /valor rest or fullrest
type RestRequest struct {
	Session     *discordgo.Session
	Interaction *discordgo.InteractionCreate

	Full bool
}

// RestHandler restores the scene's resources between fights
type RestHandler struct {
	services *services.Provider
}

// NewRestHandler creates a new rest handler
func NewRestHandler(provider *services.Provider) *RestHandler {
	return &RestHandler{services: provider}
}

func (h *RestHandler) Handle(req *RestRequest) error {
	if err := deferResponse(req.Session, req.Interaction); err != nil {
		return err
	}
	ctx := context.Background()

	sc, err := sceneForChannel(ctx, h.services.SceneRepository, req.Interaction.ChannelID)
	if err != nil {
		return editResponse(req.Session, req.Interaction, renderError(err))
	}

	if req.Full {
		if err := h.services.TurnOrderService.FullRest(ctx, sc.ID); err != nil {
			return editResponse(req.Session, req.Interaction, renderError(err))
		}
		return editResponse(req.Session, req.Interaction,
			"🌙 Full rest: everyone is back to full HP and Stamina, and Valor resets.")
	}

	if err := h.services.TurnOrderService.Rest(ctx, sc.ID); err != nil {
		return editResponse(req.Session, req.Interaction, renderError(err))
	}
	return editResponse(req.Session, req.Interaction,
		"🍵 Rest: everyone recovers half their HP and Stamina, and Valor resets.")
}
