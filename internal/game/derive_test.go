package game

import "testing"

func twoPlayerState(phase Phase, sub Subphase, turnIdx int) *GameState {
	return &GameState{
		Phase:            phase,
		TurnSubphase:     sub,
		CurrentTurnIndex: turnIdx,
		Players:          []Player{{ID: "u1"}, {ID: "u2"}},
	}
}

func TestDerive(t *testing.T) {
	cases := []struct {
		name  string
		state *GameState
		user  string
		want  Mode
	}{
		{name: "nil snapshot", state: nil, user: "u1", want: ModeSpectating},
		{name: "lobby", state: twoPlayerState(PhaseLobby, "", 0), user: "u1", want: ModeLobby},
		{name: "not my turn", state: twoPlayerState(1, SubphaseDraw, 1), user: "u1", want: ModeSpectating},
		{name: "my draw", state: twoPlayerState(1, SubphaseDraw, 0), user: "u1", want: ModeDrawing},
		{name: "my discard", state: twoPlayerState(1, SubphaseDiscard, 0), user: "u1", want: ModeDiscarding},
		{name: "my play", state: twoPlayerState(1, SubphasePlay, 0), user: "u1", want: ModePlaying},
		{name: "my shopping", state: twoPlayerState(1, SubphaseShopping, 0), user: "u1", want: ModeShopping},
		{name: "battle subphase", state: twoPlayerState(2, "BATTLE_ACTION", 0), user: "u1", want: ModeBattleWait},
		{name: "unknown user spectates", state: twoPlayerState(1, SubphaseDraw, 0), user: "ghost", want: ModeSpectating},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Derive(tc.state, tc.user); got != tc.want {
				t.Fatalf("want %s, got %s", tc.want, got)
			}
		})
	}
}
