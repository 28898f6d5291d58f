package valor

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/ProfessorProf/valor-bot-discord/internal/domain/scene"
	"github.com/ProfessorProf/valor-bot-discord/internal/domain/shared"
	apperr "github.com/ProfessorProf/valor-bot-discord/internal/errors"
	"github.com/ProfessorProf/valor-bot-discord/internal/services"
)

// SceneRequest carries one /valor scene subcommand
type SceneRequest struct {
	Session     *discordgo.Session
	Interaction *discordgo.InteractionCreate

	Action string // "start", "add", "end"

	// add options
	EntityID   string
	TokenName  string
	Controller string
	Minion     bool
}

// SceneHandler manages the channel's active scene and its tokens
type SceneHandler struct {
	services *services.Provider
}

// NewSceneHandler creates a new scene handler
func NewSceneHandler(provider *services.Provider) *SceneHandler {
	return &SceneHandler{services: provider}
}

func (h *SceneHandler) Handle(req *SceneRequest) error {
	if err := deferResponse(req.Session, req.Interaction); err != nil {
		return err
	}
	ctx := context.Background()

	switch req.Action {
	case "start":
		return h.handleStart(ctx, req)
	case "add":
		return h.handleAdd(ctx, req)
	case "end":
		return h.handleEnd(ctx, req)
	default:
		return editResponse(req.Session, req.Interaction,
			renderError(apperr.InvalidArgumentf("unknown scene action %q", req.Action)))
	}
}

func (h *SceneHandler) handleStart(ctx context.Context, req *SceneRequest) error {
	if _, err := h.services.SceneRepository.GetByChannel(ctx, req.Interaction.ChannelID); err == nil {
		return editResponse(req.Session, req.Interaction,
			"❌ This channel already has an active scene. End it with `/valor scene end` first.")
	} else if !apperr.IsNotFound(err) {
		return editResponse(req.Session, req.Interaction, renderError(err))
	}

	sc := scene.New(h.services.IDGenerator.New(), req.Interaction.ChannelID)
	sc.TurnOrder = append(sc.TurnOrder, scene.NewRoundMarker(sc.Round))
	if err := h.services.SceneRepository.Create(ctx, sc); err != nil {
		return editResponse(req.Session, req.Interaction, renderError(err))
	}
	return editResponse(req.Session, req.Interaction,
		"🎬 Scene started. Add combatants with `/valor scene add`, then `/valor initiative roll`.")
}

func (h *SceneHandler) handleAdd(ctx context.Context, req *SceneRequest) error {
	sc, err := sceneForChannel(ctx, h.services.SceneRepository, req.Interaction.ChannelID)
	if err != nil {
		return editResponse(req.Session, req.Interaction, renderError(err))
	}

	profile, err := h.services.CharacterService.GetProfile(ctx, req.EntityID)
	if err != nil {
		return editResponse(req.Session, req.Interaction, renderError(err))
	}

	name := req.TokenName
	if name == "" {
		name = profile.Name
	}
	if existing, ok := findToken(sc, name); ok && existing.Name == name {
		return editResponse(req.Session, req.Interaction,
			fmt.Sprintf("❌ A token named **%s** is already in the scene.", name))
	}

	token := &scene.Token{
		ID:       h.services.IDGenerator.New(),
		EntityID: req.EntityID,
		Name:     name,
		HP:       scene.Bar{Value: profile.HP, Max: profile.HPMax},
		Stamina:  scene.Bar{Value: profile.Stamina, Max: profile.StaminaMax},
		Valor:    scene.Bar{Value: profile.Valor, Max: profile.ValorMax},
	}
	if req.Controller != "" {
		token.ControllerID = req.Controller
	}
	// A minion token keeps its own bars; a character token writes
	// through to the sheet so damage persists across scenes.
	if !req.Minion {
		token.BarLinks = map[scene.Resource]string{
			scene.ResourceHP:      shared.AttributeHP,
			scene.ResourceStamina: shared.AttributeStamina,
			scene.ResourceValor:   shared.AttributeValor,
		}
	}
	sc.AddToken(token)
	sc.TurnOrder = append(sc.TurnOrder, scene.NewCharacterEntry(token.ID, 0))
	if err := h.services.SceneRepository.Update(ctx, sc); err != nil {
		return editResponse(req.Session, req.Interaction, renderError(err))
	}

	return editResponse(req.Session, req.Interaction,
		fmt.Sprintf("➕ **%s** joins the scene (%d/%d HP, %d/%d ST).",
			token.Name, token.HP.Value, token.HP.Max, token.Stamina.Value, token.Stamina.Max))
}

func (h *SceneHandler) handleEnd(ctx context.Context, req *SceneRequest) error {
	sc, err := sceneForChannel(ctx, h.services.SceneRepository, req.Interaction.ChannelID)
	if err != nil {
		return editResponse(req.Session, req.Interaction, renderError(err))
	}
	if err := h.services.SceneRepository.Delete(ctx, sc.ID); err != nil {
		return editResponse(req.Session, req.Interaction, renderError(err))
	}
	return editResponse(req.Session, req.Interaction, "🏁 Scene ended.")
}
