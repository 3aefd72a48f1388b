package protocol

import "github.com/shovelsgame/shovels-client/internal/game"

// Server -> client envelope types.
const (
	TypeStateUpdate = "state_update"
	TypeError       = "error"
)

// Client -> server envelope types.
const (
	TypeAction    = "action"
	TypeStartGame = "start_game"
)

// Action types carried inside an "action" envelope.
const (
	ActionDraw    = "draw"
	ActionDiscard = "discard"
	ActionPlay    = "play"
	ActionAdvance = "action" // generic end-of-subphase signal
)

type ServerMessage struct {
	Type    string          `json:"type"`
	State   *game.GameState `json:"state,omitempty"`
	Message string          `json:"message,omitempty"`
}

type ClientMessage struct {
	Type string      `json:"type"`
	Data *ActionData `json:"data,omitempty"`
}

type ActionData struct {
	ActionType string       `json:"action_type"`
	Params     ActionParams `json:"params"`
}

// ActionParams is the union of every action's parameters. Unset fields are
// omitted, so an advance encodes its params as the empty mapping the server
// expects.
type ActionParams struct {
	Sources        []game.DrawSource `json:"sources,omitempty"`
	CardIndex      *int              `json:"card_index,omitempty"`
	CharacterIndex *int              `json:"character_index,omitempty"`
}
