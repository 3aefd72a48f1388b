package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shovelsgame/shovels-client/internal/game"
)

var ErrUnknownType = errors.New("unknown message type")

// EncodeAction wraps an action type and its parameters into the outbound
// envelope. No validation happens here: legality is the controller's job,
// which keeps this mapping trivially round-trippable.
func EncodeAction(actionType string, params ActionParams) ClientMessage {
	return ClientMessage{
		Type: TypeAction,
		Data: &ActionData{ActionType: actionType, Params: params},
	}
}

func EncodeDraw(sources []game.DrawSource) ClientMessage {
	return EncodeAction(ActionDraw, ActionParams{Sources: sources})
}

func EncodeDiscard(cardIndex int) ClientMessage {
	return EncodeAction(ActionDiscard, ActionParams{CardIndex: &cardIndex})
}

func EncodePlay(cardIndex, characterIndex int) ClientMessage {
	return EncodeAction(ActionPlay, ActionParams{
		CardIndex:      &cardIndex,
		CharacterIndex: &characterIndex,
	})
}

func EncodeAdvance() ClientMessage {
	return EncodeAction(ActionAdvance, ActionParams{})
}

func EncodeStartGame() ClientMessage {
	return ClientMessage{Type: TypeStartGame}
}

// DecodeServer parses an inbound frame. Frames whose type is neither
// state_update nor error decode to ErrUnknownType so the caller can drop
// them without tearing the connection down.
func DecodeServer(data []byte) (ServerMessage, error) {
	var msg ServerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ServerMessage{}, fmt.Errorf("decode server message: %w", err)
	}
	switch msg.Type {
	case TypeStateUpdate:
		if msg.State == nil {
			return ServerMessage{}, errors.New("state_update without state")
		}
	case TypeError:
	default:
		return ServerMessage{}, fmt.Errorf("%w: %q", ErrUnknownType, msg.Type)
	}
	return msg, nil
}

// DecodeClient parses an outbound frame back into its envelope. The fixture
// server and the codec round-trip tests use this.
func DecodeClient(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ClientMessage{}, fmt.Errorf("decode client message: %w", err)
	}
	switch msg.Type {
	case TypeAction:
		if msg.Data == nil {
			return ClientMessage{}, errors.New("action without data")
		}
	case TypeStartGame:
	default:
		return ClientMessage{}, fmt.Errorf("%w: %q", ErrUnknownType, msg.Type)
	}
	return msg, nil
}
