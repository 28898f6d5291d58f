package valor

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	apperr "github.com/ProfessorProf/valor-bot-discord/internal/errors"
	"github.com/ProfessorProf/valor-bot-discord/internal/services"
	"github.com/ProfessorProf/valor-bot-discord/internal/services/resolution"
)

// TechRequest carries one /valor tech invocation
type TechRequest struct {
	Session     *discordgo.Session
	Interaction *discordgo.InteractionCreate

	Query    string
	Targets  string // comma-separated token names
	Bonus    int
	Actor    string // token name, defaults to the caller's token
	AsEntity string // act with another character's sheet
	Override bool
}

// TechHandler resolves and applies technique invocations
type TechHandler struct {
	services *services.Provider
}

// NewTechHandler creates a new tech handler
func NewTechHandler(provider *services.Provider) *TechHandler {
	return &TechHandler{services: provider}
}

func (h *TechHandler) Handle(req *TechRequest) error {
	if err := deferResponse(req.Session, req.Interaction); err != nil {
		return err
	}
	ctx := context.Background()

	sc, err := sceneForChannel(ctx, h.services.SceneRepository, req.Interaction.ChannelID)
	if err != nil {
		return editResponse(req.Session, req.Interaction, renderError(err))
	}

	actorTokenID := ""
	if req.Actor != "" {
		token, ok := findToken(sc, req.Actor)
		if !ok {
			return editResponse(req.Session, req.Interaction,
				fmt.Sprintf("❌ No token named **%s** in the scene.", req.Actor))
		}
		actorTokenID = token.ID
	} else if token, ok := tokenForUser(sc, userID(req.Interaction)); ok {
		actorTokenID = token.ID
	} else {
		return editResponse(req.Session, req.Interaction,
			"❌ You have no token in this scene; name one with the `actor` option.")
	}

	targetIDs, missing := splitTargets(sc, req.Targets)
	if len(missing) > 0 {
		return editResponse(req.Session, req.Interaction,
			fmt.Sprintf("❌ Unknown targets: %s", strings.Join(missing, ", ")))
	}

	result, err := h.services.ResolutionService.Invoke(ctx, &resolution.InvokeInput{
		SceneID:        sc.ID,
		ActorTokenID:   actorTokenID,
		ActorEntityID:  req.AsEntity,
		Query:          req.Query,
		TargetTokenIDs: targetIDs,
		RollBonus:      req.Bonus,
		Override:       req.Override,
	})
	if err != nil {
		return editResponse(req.Session, req.Interaction, renderError(err))
	}

	switch result.State {
	case resolution.StateRejectedNotFound:
		return editResponse(req.Session, req.Interaction,
			fmt.Sprintf("❌ No technique matches **%s**.", req.Query))
	case resolution.StateRejectedMimicFailed:
		return editResponse(req.Session, req.Interaction,
			fmt.Sprintf("💨 **%s** fizzles: the mimicked technique is beyond its reach. Nothing was spent.",
				result.Technique.Name))
	case resolution.StateRejectedBlocked:
		err := apperr.RuleViolation("technique blocked", result.Violations)
		return editResponse(req.Session, req.Interaction,
			renderError(err)+"\n\nUse the `override` option to push through anyway.")
	}

	return editEmbed(req.Session, req.Interaction, techEmbed(result))
}

func techEmbed(result *resolution.InvokeResult) *discordgo.MessageEmbed {
	tech := result.Technique
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("⚔️ %s", tech.Name),
		Color: 0x3498db,
	}

	if result.Roll != nil {
		crit := ""
		if result.Roll.IsCrit {
			crit = " — **critical!**"
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "🎲 Roll",
			Value: fmt.Sprintf("%d (d10 %d + %d)%s",
				result.Roll.Total, result.Roll.Rolls[0], result.Roll.Bonus, crit),
			Inline: true,
		})
	}

	switch {
	case result.Damage > 0:
		lines := make([]string, 0, len(result.Targets))
		for _, t := range result.Targets {
			line := fmt.Sprintf("**%s** takes %d", t.Name, t.Net)
			if t.Absorbed > 0 {
				line += fmt.Sprintf(" (%d soaked by shields)", t.Absorbed)
			}
			lines = append(lines, line)
		}
		value := fmt.Sprintf("%d before defenses", result.Damage)
		if len(lines) > 0 {
			value += "\n" + strings.Join(lines, "\n")
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "💥 Damage", Value: value,
		})
	case result.Healing > 0:
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "💚 Healing", Value: fmt.Sprintf("%d", result.Healing), Inline: true,
		})
	case result.Shield > 0:
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "🛡️ Shield", Value: fmt.Sprintf("%d", result.Shield), Inline: true,
		})
	}

	if costs := renderCosts(result); costs != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Costs", Value: costs, Inline: true,
		})
	}
	return embed
}

func renderCosts(result *resolution.InvokeResult) string {
	var parts []string
	if result.StaminaCost > 0 {
		parts = append(parts, fmt.Sprintf("%d ST", result.StaminaCost))
	}
	if result.HPCost > 0 {
		parts = append(parts, fmt.Sprintf("%d HP", result.HPCost))
	}
	if result.ValorCost > 0 {
		parts = append(parts, fmt.Sprintf("%d Valor", result.ValorCost))
	}
	if result.InitiativeCost > 0 {
		parts = append(parts, fmt.Sprintf("%d initiative", result.InitiativeCost))
	}
	return strings.Join(parts, ", ")
}
