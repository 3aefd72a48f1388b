// Package protocol defines the wire envelopes for a game session.
//
// Server -> Client
//
//	{ "type": "state_update", "state": <GameState> }
//	{ "type": "error", "message": <string> }
//
// Client -> Server
//
//	{ "type": "action", "data": { "action_type": <string>, "params": <mapping> } }
//	{ "type": "start_game" }
//
// Parameter shapes by action_type:
//
//	draw:    { "sources": ["DECK"|"DISCARD", ...] }  // exactly 2 when sent
//	discard: { "card_index": <int> }
//	play:    { "card_index": <int>, "character_index": <int> }
//	action:  {}                                      // advance out of PLAY
//
// There is no request/response pairing: the next state_update is the only
// confirmation an action gets, and it may reflect another player's action
// instead.
package protocol
