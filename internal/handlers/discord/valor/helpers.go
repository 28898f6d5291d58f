// Package valor holds the slash-command handlers for the technique bot:
// invocation, undo, status, effects, rest, initiative, and scene
// management.
package valor

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/ProfessorProf/valor-bot-discord/internal/domain/scene"
	apperr "github.com/ProfessorProf/valor-bot-discord/internal/errors"
	"github.com/ProfessorProf/valor-bot-discord/internal/repositories/scenes"
)

// deferResponse acknowledges the interaction so the handler has time to
// do real work
func deferResponse(req *discordgo.Session, i *discordgo.InteractionCreate) error {
	err := req.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		return fmt.Errorf("failed to acknowledge interaction: %w", err)
	}
	return nil
}

func editResponse(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
	})
	return err
}

func editEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error {
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	})
	return err
}

// renderError turns a rules-engine error into a user-visible message;
// nothing that reaches here is fatal
func renderError(err error) string {
	switch apperr.GetCode(err) {
	case apperr.CodeNotFound:
		return fmt.Sprintf("❌ %s", err.Error())
	case apperr.CodeInvalidArgument:
		return fmt.Sprintf("❌ %s", err.Error())
	case apperr.CodeRuleViolation:
		lines := []string{"🚫 That technique is blocked:"}
		for _, v := range apperr.Violations(err) {
			lines = append(lines, "• "+v)
		}
		return strings.Join(lines, "\n")
	default:
		return fmt.Sprintf("⚠️ Something went wrong: %s", err.Error())
	}
}

// sceneForChannel loads the channel's active scene
func sceneForChannel(ctx context.Context, repo scenes.Repository, channelID string) (*scene.Scene, error) {
	sc, err := repo.GetByChannel(ctx, channelID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFoundf("no active scene in this channel; start one with `/valor scene start`")
		}
		return nil, err
	}
	return sc, nil
}

// findToken resolves a token by name (case-insensitive prefix) within
// the scene
func findToken(sc *scene.Scene, name string) (*scene.Token, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil, false
	}
	var prefix *scene.Token
	for _, token := range sc.Tokens {
		lowered := strings.ToLower(token.Name)
		if lowered == needle {
			return token, true
		}
		if prefix == nil && strings.HasPrefix(lowered, needle) {
			prefix = token
		}
	}
	if prefix != nil {
		return prefix, true
	}
	return nil, false
}

// tokenForUser finds the first visible token the user controls
func tokenForUser(sc *scene.Scene, userID string) (*scene.Token, bool) {
	var hidden *scene.Token
	for _, token := range sc.Tokens {
		if token.ControllerID != userID {
			continue
		}
		if !token.Hidden {
			return token, true
		}
		hidden = token
	}
	if hidden != nil {
		return hidden, true
	}
	return nil, false
}

// splitTargets parses a comma-separated target list. Each name resolves
// to a token id, or to an entity id when it matches a character rather
// than any one token — entity targets reach every token the character
// has in the scene.
func splitTargets(sc *scene.Scene, raw string) ([]string, []string) {
	var ids, missing []string
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if token, ok := findToken(sc, name); ok {
			ids = append(ids, token.ID)
			continue
		}
		if entityID, ok := findEntity(sc, name); ok {
			ids = append(ids, entityID)
			continue
		}
		missing = append(missing, name)
	}
	return ids, missing
}

// findEntity matches a name against the entity ids behind the scene's
// tokens
func findEntity(sc *scene.Scene, name string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, token := range sc.Tokens {
		if strings.ToLower(token.EntityID) == needle {
			return token.EntityID, true
		}
	}
	return "", false
}

func userID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
