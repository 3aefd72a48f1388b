package game

// Mode is what the local player may currently do. It is always derived from
// the latest snapshot, never stored and transitioned client-side, so local
// and server truth cannot diverge.
type Mode int

const (
	ModeSpectating Mode = iota
	ModeLobby
	ModeDrawing
	ModeDiscarding
	ModePlaying
	ModeShopping
	ModeBattleWait
)

func (m Mode) String() string {
	switch m {
	case ModeSpectating:
		return "SPECTATING"
	case ModeLobby:
		return "LOBBY"
	case ModeDrawing:
		return "DRAWING"
	case ModeDiscarding:
		return "DISCARDING"
	case ModePlaying:
		return "PLAYING"
	case ModeShopping:
		return "SHOPPING"
	case ModeBattleWait:
		return "BATTLE_WAIT"
	default:
		return "INVALID"
	}
}

// Derive computes the local player's mode from a snapshot. A nil snapshot or
// someone else's turn derives SPECTATING.
func Derive(s *GameState, userID string) Mode {
	if s == nil {
		return ModeSpectating
	}
	if s.Phase.IsLobby() {
		return ModeLobby
	}
	if !s.IsTurnOf(userID) {
		return ModeSpectating
	}
	switch s.TurnSubphase {
	case SubphaseDraw:
		return ModeDrawing
	case SubphaseDiscard:
		return ModeDiscarding
	case SubphasePlay:
		return ModePlaying
	case SubphaseShopping:
		return ModeShopping
	default:
		return ModeBattleWait
	}
}
