package valor

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/ProfessorProf/valor-bot-discord/internal/services"
)

// UndoRequest carries one /valor undo
type UndoRequest struct {
	Session     *discordgo.Session
	Interaction *discordgo.InteractionCreate
}

// UndoHandler reverts the most recent technique resolution
type UndoHandler struct {
	services *services.Provider
}

// NewUndoHandler creates a new undo handler
func NewUndoHandler(provider *services.Provider) *UndoHandler {
	return &UndoHandler{services: provider}
}

func (h *UndoHandler) Handle(req *UndoRequest) error {
	if err := deferResponse(req.Session, req.Interaction); err != nil {
		return err
	}
	ctx := context.Background()

	sc, err := sceneForChannel(ctx, h.services.SceneRepository, req.Interaction.ChannelID)
	if err != nil {
		return editResponse(req.Session, req.Interaction, renderError(err))
	}

	result, err := h.services.ResolutionService.Undo(ctx, sc.ID)
	if err != nil {
		return editResponse(req.Session, req.Interaction, renderError(err))
	}

	var refunds []string
	if result.StaminaRefund > 0 {
		refunds = append(refunds, fmt.Sprintf("%d ST", result.StaminaRefund))
	}
	if result.HPRestored > 0 {
		refunds = append(refunds, fmt.Sprintf("%d HP", result.HPRestored))
	}
	if result.ValorRefund > 0 {
		refunds = append(refunds, fmt.Sprintf("%d Valor", result.ValorRefund))
	}
	if result.InitiativeBack > 0 {
		refunds = append(refunds, fmt.Sprintf("%d initiative", result.InitiativeBack))
	}

	message := fmt.Sprintf("↩️ **%s** undone.", result.TechniqueName)
	if len(refunds) > 0 {
		message += " Refunded: " + strings.Join(refunds, ", ") + "."
	}
	return editResponse(req.Session, req.Interaction, message)
}
