// Package scene holds the combat-state aggregate: the tokens on the
// field, the ordered turn list, the round number, per-technique usage
// history, and the bounded undo stack. One Scene is the unit of
// persistence and of run-to-completion mutation.
package scene

import (
	"strings"
	"time"
)

// UndoDepth bounds the undo stack; the oldest entry is dropped when a
// push would exceed it
const UndoDepth = 20

// UndoEntry captures everything needed to exactly reverse one successful
// technique resolution
type UndoEntry struct {
	TokenID        string   `json:"token_id"`
	EntityID       string   `json:"entity_id"`
	TechniqueName  string   `json:"technique_name"`
	HPCost         int      `json:"hp_cost"`
	StaminaCost    int      `json:"stamina_cost"`
	ValorCost      int      `json:"valor_cost"`
	InitiativeCost int      `json:"initiative_cost"`
	TargetTokenIDs []string `json:"target_token_ids,omitempty"`
}

// Scene is the combat-state aggregate
type Scene struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`

	Round     int               `json:"round"`
	Tokens    map[string]*Token `json:"tokens"`
	TurnOrder []*TurnEntry      `json:"turn_order"`

	// History maps usage keys to the ordered rounds a technique was used
	History map[string][]int `json:"history"`

	UndoStack []*UndoEntry `json:"undo_stack"`

	// LastValorRound guards round-rollover Valor grants against firing
	// twice for the same round number
	LastValorRound int `json:"last_valor_round"`

	// LastActorTokenID is the most recently acted character, the pivot
	// for initiative auto-reorder
	LastActorTokenID string `json:"last_actor_token_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// New creates an empty scene
func New(id, channelID string) *Scene {
	return &Scene{
		ID:        id,
		ChannelID: channelID,
		Round:     1,
		Tokens:    make(map[string]*Token),
		History:   make(map[string][]int),
		CreatedAt: time.Now(),
	}
}

// AddToken places a token in the scene
func (s *Scene) AddToken(token *Token) {
	s.Tokens[token.ID] = token
}

// Token returns the token with the given id, if present
func (s *Scene) Token(id string) (*Token, bool) {
	t, ok := s.Tokens[id]
	return t, ok
}

// TokensForEntity returns every token representing the given entity
func (s *Scene) TokensForEntity(entityID string) []*Token {
	var tokens []*Token
	for _, t := range s.Tokens {
		if t.EntityID == entityID {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// FirstTokenForEntity returns a visible token for the entity, falling
// back to a hidden one
func (s *Scene) FirstTokenForEntity(entityID string) (*Token, bool) {
	var hidden *Token
	for _, t := range s.Tokens {
		if t.EntityID != entityID {
			continue
		}
		if !t.Hidden {
			return t, true
		}
		hidden = t
	}
	if hidden != nil {
		return hidden, true
	}
	return nil, false
}

func usageKey(entityID, techName string) string {
	return entityID + "::" + strings.ToLower(techName)
}

// RecordUse appends the round to the technique's usage sequence
func (s *Scene) RecordUse(entityID, techName string, round int) {
	if s.History == nil {
		s.History = make(map[string][]int)
	}
	key := usageKey(entityID, techName)
	s.History[key] = append(s.History[key], round)
}

// LastUseRound returns the most recent round the technique was used, if
// it has been used this scene
func (s *Scene) LastUseRound(entityID, techName string) (int, bool) {
	uses := s.History[usageKey(entityID, techName)]
	if len(uses) == 0 {
		return 0, false
	}
	return uses[len(uses)-1], true
}

// UseCount returns how many times the technique has been used this scene
func (s *Scene) UseCount(entityID, techName string) int {
	return len(s.History[usageKey(entityID, techName)])
}

// RewindUse removes the last usage entry for the technique, returning
// false when there is nothing to rewind
func (s *Scene) RewindUse(entityID, techName string) bool {
	key := usageKey(entityID, techName)
	uses := s.History[key]
	if len(uses) == 0 {
		return false
	}
	s.History[key] = uses[:len(uses)-1]
	return true
}

// ClearHistory drops all usage records; fired on rest, full rest, and
// initiative re-rolls
func (s *Scene) ClearHistory() {
	s.History = make(map[string][]int)
}

// PushUndo appends an undo entry, dropping the oldest beyond UndoDepth
func (s *Scene) PushUndo(entry *UndoEntry) {
	s.UndoStack = append(s.UndoStack, entry)
	if len(s.UndoStack) > UndoDepth {
		s.UndoStack = s.UndoStack[len(s.UndoStack)-UndoDepth:]
	}
}

// PopUndo removes and returns the most recent undo entry, or nil when
// there is nothing to undo
func (s *Scene) PopUndo() *UndoEntry {
	if len(s.UndoStack) == 0 {
		return nil
	}
	entry := s.UndoStack[len(s.UndoStack)-1]
	s.UndoStack = s.UndoStack[:len(s.UndoStack)-1]
	return entry
}

// EntryIndex returns the turn-order index of the given token, or -1
func (s *Scene) EntryIndex(tokenID string) int {
	for i, e := range s.TurnOrder {
		if e.TokenID == tokenID {
			return i
		}
	}
	return -1
}

// RotateTurn moves the head of the turn order to the tail
func (s *Scene) RotateTurn() {
	if len(s.TurnOrder) < 2 {
		return
	}
	head := s.TurnOrder[0]
	s.TurnOrder = append(s.TurnOrder[1:], head)
}
