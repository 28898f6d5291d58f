package scene

import "strings"

// RoundMarkerLabel names the single marker anchoring round rollover
const RoundMarkerLabel = "Round"

// TurnEntry is one element of the ordered turn-order list: either a
// character reference (TokenID set, Value is its initiative score) or a
// synthetic marker (TokenID empty, Label set, Value is a countdown).
// Convention used throughout this package and the turn-order service:
// the head of the list is the entry being processed; advancing a turn
// rotates the head to the tail.
type TurnEntry struct {
	TokenID string `json:"token_id,omitempty"`
	Label   string `json:"label,omitempty"`
	Value   int    `json:"value"`
	Formula bool   `json:"formula,omitempty"` // decrementing countdown marker
}

// IsMarker reports whether the entry is a synthetic marker
func (e *TurnEntry) IsMarker() bool {
	return e.TokenID == ""
}

// IsRound reports whether the entry is the Round marker
func (e *TurnEntry) IsRound() bool {
	return e.IsMarker() && e.Label == RoundMarkerLabel
}

// TickLabel returns the ongoing-effect kind ("Ongoing", "Regen",
// "SRegen") and its magnitude when the marker is one of the per-turn
// tick effects
func (e *TurnEntry) TickLabel() (string, int, bool) {
	if !e.IsMarker() {
		return "", 0, false
	}
	for _, kind := range []string{"SRegen", "Regen", "Ongoing"} {
		if strings.HasPrefix(e.Label, kind+" ") || e.Label == kind {
			return kind, e.Value, true
		}
	}
	return "", 0, false
}

// NewRoundMarker creates the Round marker at the given round number
func NewRoundMarker(round int) *TurnEntry {
	return &TurnEntry{Label: RoundMarkerLabel, Value: round}
}

// NewEffectMarker creates a decrementing countdown marker
func NewEffectMarker(label string, duration int) *TurnEntry {
	return &TurnEntry{Label: label, Value: duration, Formula: true}
}

// NewCharacterEntry creates a character entry for a token
func NewCharacterEntry(tokenID string, initiative int) *TurnEntry {
	return &TurnEntry{TokenID: tokenID, Value: initiative}
}
