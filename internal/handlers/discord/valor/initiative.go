package valor

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/ProfessorProf/valor-bot-discord/internal/domain/scene"
	"github.com/ProfessorProf/valor-bot-discord/internal/services"
	"github.com/ProfessorProf/valor-bot-discord/internal/services/turnorder"
)

// InitiativeRequest carries one /valor initiative or /valor next
type InitiativeRequest struct {
	Session     *discordgo.Session
	Interaction *discordgo.InteractionCreate

	// Roll rebuilds the turn order from scratch; otherwise the current
	// turn ends and the list advances
	Roll bool
}

// InitiativeHandler drives the turn order
type InitiativeHandler struct {
	services *services.Provider
}

// NewInitiativeHandler creates a new initiative handler
func NewInitiativeHandler(provider *services.Provider) *InitiativeHandler {
	return &InitiativeHandler{services: provider}
}

func (h *InitiativeHandler) Handle(req *InitiativeRequest) error {
	if err := deferResponse(req.Session, req.Interaction); err != nil {
		return err
	}
	ctx := context.Background()

	sc, err := sceneForChannel(ctx, h.services.SceneRepository, req.Interaction.ChannelID)
	if err != nil {
		return editResponse(req.Session, req.Interaction, renderError(err))
	}

	if req.Roll {
		rolled, err := h.services.TurnOrderService.RollInitiative(ctx, sc.ID)
		if err != nil {
			return editResponse(req.Session, req.Interaction, renderError(err))
		}
		return editEmbed(req.Session, req.Interaction, orderEmbed(rolled, nil))
	}

	report, err := h.services.TurnOrderService.AdvanceTurn(ctx, sc.ID)
	if err != nil {
		return editResponse(req.Session, req.Interaction, renderError(err))
	}
	sc, err = h.services.SceneRepository.Get(ctx, sc.ID)
	if err != nil {
		return editResponse(req.Session, req.Interaction, renderError(err))
	}
	return editEmbed(req.Session, req.Interaction, orderEmbed(sc, report))
}

// orderEmbed renders the turn order top-down, head first
func orderEmbed(sc *scene.Scene, report *turnorder.Report) *discordgo.MessageEmbed {
	var lines []string
	for idx, entry := range sc.TurnOrder {
		pointer := "▫️"
		if idx == 0 {
			pointer = "▶️"
		}
		switch {
		case entry.IsRound():
			lines = append(lines, fmt.Sprintf("%s — Round %d —", pointer, entry.Value))
		case entry.IsMarker():
			lines = append(lines, fmt.Sprintf("%s ⏳ %s (%d)", pointer, entry.Label, entry.Value))
		default:
			token := sc.Tokens[entry.TokenID]
			name := entry.TokenID
			if token != nil {
				name = token.Name
				if token.Hidden {
					continue
				}
			}
			lines = append(lines, fmt.Sprintf("%s **%s** (%d)", pointer, name, entry.Value))
		}
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("⚔️ Turn Order — round %d", sc.Round),
		Description: strings.Join(lines, "\n"),
		Color:       0x3498db,
	}
	if report == nil {
		return embed
	}

	var notes []string
	if report.RolledOver {
		notes = append(notes, fmt.Sprintf("🔄 Round %d begins.", report.Round))
	}
	for _, label := range report.Expired {
		notes = append(notes, fmt.Sprintf("⌛ **%s** has worn off.", label))
	}
	for _, tick := range report.Ticks {
		name := tick.TokenID
		if token := sc.Tokens[tick.TokenID]; token != nil {
			name = token.Name
		}
		switch tick.Kind {
		case "Ongoing":
			notes = append(notes, fmt.Sprintf("🔥 **%s** takes %d ongoing damage.", name, tick.Amount))
		case "Regen":
			notes = append(notes, fmt.Sprintf("💚 **%s** regenerates %d HP.", name, tick.Amount))
		case "SRegen":
			notes = append(notes, fmt.Sprintf("💙 **%s** recovers %d Stamina.", name, tick.Amount))
		}
	}
	for _, notice := range report.OffCooldown {
		notes = append(notes, "✅ "+notice)
	}
	if len(notes) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "This turn",
			Value: strings.Join(notes, "\n"),
		})
	}
	return embed
}
