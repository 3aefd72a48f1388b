package game

import (
	"encoding/json"
	"fmt"
)

// Phase is the coarse game phase: PhaseLobby before the game starts
// ("LOBBY" on the wire), positive integers once it has.
type Phase int

const PhaseLobby Phase = 0

const lobbyMarker = `"LOBBY"`

func (p Phase) IsLobby() bool { return p == PhaseLobby }

func (p Phase) MarshalJSON() ([]byte, error) {
	if p.IsLobby() {
		return []byte(lobbyMarker), nil
	}
	return json.Marshal(int(p))
}

func (p *Phase) UnmarshalJSON(data []byte) error {
	if string(data) == lobbyMarker {
		*p = PhaseLobby
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("phase must be %s or an integer: %w", lobbyMarker, err)
	}
	if n <= 0 {
		return fmt.Errorf("phase must be positive, got %d", n)
	}
	*p = Phase(n)
	return nil
}

// Subphase gates which actions are legal within a turn. Values outside the
// four selection subphases are battle-phase labels the client only observes.
type Subphase string

const (
	SubphaseDraw     Subphase = "DRAW"
	SubphaseDiscard  Subphase = "DISCARD"
	SubphasePlay     Subphase = "PLAY"
	SubphaseShopping Subphase = "SHOPPING"
)

func (s Subphase) IsBattle() bool {
	switch s {
	case SubphaseDraw, SubphaseDiscard, SubphasePlay, SubphaseShopping:
		return false
	}
	return true
}

// DrawSource names one of the two piles a draw can take from.
type DrawSource string

const (
	SourceDeck    DrawSource = "DECK"
	SourceDiscard DrawSource = "DISCARD"
)

func ParseDrawSource(s string) (DrawSource, bool) {
	switch DrawSource(s) {
	case SourceDeck:
		return SourceDeck, true
	case SourceDiscard:
		return SourceDiscard, true
	}
	return "", false
}

// CharacterStack is a played character: the base face card plus the cards
// stacked onto it in play order (front = bottom).
type CharacterStack struct {
	Rank     string `json:"rank"`
	Suit     Suit   `json:"suit"`
	Stack    []Card `json:"stack"`
	IsTapped bool   `json:"is_tapped"`
	Shield   int    `json:"shield"`
}

type Player struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Characters []CharacterStack `json:"characters"`
	Hand       []Card           `json:"hand"`
	Coins      int              `json:"coins"`
	IsAlive    bool             `json:"is_alive"`
}

// GameState is the authoritative snapshot received over the wire. Each
// snapshot fully replaces the previous one; nothing in it is patched
// client-side.
type GameState struct {
	Phase            Phase    `json:"phase"`
	TurnSubphase     Subphase `json:"turn_subphase"`
	CurrentTurnIndex int      `json:"current_turn_index"`
	Players          []Player `json:"players"`
	Deck             []Card   `json:"deck"`
	DiscardPile      []Card   `json:"discard_pile"`
	ShopRow          []Card   `json:"shop_row,omitempty"`
}

// CurrentPlayer resolves current_turn_index against players. The index is
// only meaningful outside the lobby and when it is in range.
func (s *GameState) CurrentPlayer() (*Player, bool) {
	if s.Phase.IsLobby() || s.CurrentTurnIndex < 0 || s.CurrentTurnIndex >= len(s.Players) {
		return nil, false
	}
	return &s.Players[s.CurrentTurnIndex], true
}

func (s *GameState) PlayerByID(id string) (*Player, bool) {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i], true
		}
	}
	return nil, false
}

// IsTurnOf reports whether the player with the given id holds the turn.
func (s *GameState) IsTurnOf(id string) bool {
	p, ok := s.CurrentPlayer()
	return ok && p.ID == id
}
