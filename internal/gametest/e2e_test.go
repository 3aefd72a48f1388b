package gametest_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shovelsgame/shovels-client/internal/action"
	"github.com/shovelsgame/shovels-client/internal/conn"
	"github.com/shovelsgame/shovels-client/internal/game"
	"github.com/shovelsgame/shovels-client/internal/gametest"
	"github.com/shovelsgame/shovels-client/internal/protocol"
	"github.com/shovelsgame/shovels-client/internal/rooms"
	"github.com/shovelsgame/shovels-client/internal/session"
)

const testToken = "test-token"

func recvClientMessage(t *testing.T, srv *gametest.Server) protocol.ClientMessage {
	t.Helper()
	select {
	case got := <-srv.Inbox():
		return got.Msg
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for client message")
		return protocol.ClientMessage{} // unreachable
	}
}

func waitFor(t *testing.T, within time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(within)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition never held")
}

// Full pipeline: directory join over HTTP, websocket session, lobby start,
// then a complete draw turn — the same wiring the CLI uses.
func TestFullSessionFlow(t *testing.T) {
	ctx := context.Background()
	srv := gametest.NewServer(testToken, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	directory := rooms.NewClient(ts.URL, testToken, nil)
	room, err := directory.Create(ctx, "table")
	require.NoError(t, err)
	require.NoError(t, directory.Join(ctx, room.RoomID, "u1"))

	c, err := conn.Open(ctx, conn.Target{
		BaseURL: "ws" + strings.TrimPrefix(ts.URL, "http"),
		RoomID:  room.RoomID,
		Token:   testToken,
	}, nil)
	require.NoError(t, err)
	defer c.Close()

	store := session.NewStore()
	ctrl := action.NewController(store, c, "u1", nil)
	sess := session.New(c.Events(), store, nil, ctrl)
	sess.Start()

	// Join snapshot: the lobby.
	waitFor(t, time.Second, func() bool { return store.Current() != nil })
	require.Equal(t, game.ModeLobby, ctrl.Mode())

	// Starting from the lobby is legal and reaches the server.
	require.NoError(t, ctrl.StartGame())
	require.Equal(t, protocol.TypeStartGame, recvClientMessage(t, srv).Type)

	// The server "starts" the game: my DRAW turn.
	srv.Broadcast(room.RoomID, protocol.ServerMessage{
		Type: protocol.TypeStateUpdate,
		State: &game.GameState{
			Phase:            1,
			TurnSubphase:     game.SubphaseDraw,
			CurrentTurnIndex: 0,
			Players:          []game.Player{{ID: "u1"}, {ID: "u2"}},
		},
	})
	waitFor(t, time.Second, func() bool { return ctrl.Mode() == game.ModeDrawing })

	require.NoError(t, ctrl.AddDrawSource(game.SourceDiscard))
	require.NoError(t, ctrl.AddDrawSource(game.SourceDeck))
	require.NoError(t, ctrl.ConfirmDraw())

	msg := recvClientMessage(t, srv)
	require.Equal(t, protocol.ActionDraw, msg.Data.ActionType)
	require.Equal(t,
		[]game.DrawSource{game.SourceDiscard, game.SourceDeck},
		msg.Data.Params.Sources)
	require.Empty(t, ctrl.PendingDraw())

	// A server-side rejection shows up on the error slot, and the next
	// snapshot clears it and resets a half-made selection.
	srv.Broadcast(room.RoomID, protocol.ServerMessage{
		Type: protocol.TypeError, Message: "Illegal draw",
	})
	waitFor(t, time.Second, func() bool {
		_, ok := store.Err()
		return ok
	})

	srv.Broadcast(room.RoomID, protocol.ServerMessage{
		Type: protocol.TypeStateUpdate,
		State: &game.GameState{
			Phase:            1,
			TurnSubphase:     game.SubphaseDiscard,
			CurrentTurnIndex: 0,
			Players: []game.Player{
				{ID: "u1", Hand: []game.Card{{UID: "a"}, {UID: "b"}}},
				{ID: "u2"},
			},
		},
	})
	waitFor(t, time.Second, func() bool { return ctrl.Mode() == game.ModeDiscarding })
	_, hasErr := store.Err()
	require.False(t, hasErr, "snapshot should clear the server error")
	require.Empty(t, ctrl.PendingDraw())

	// Discard the second card.
	ctrl.SelectCard(1)
	require.NoError(t, ctrl.ConfirmDiscard())
	msg = recvClientMessage(t, srv)
	require.Equal(t, protocol.ActionDiscard, msg.Data.ActionType)
	require.Equal(t, 1, *msg.Data.Params.CardIndex)

	// The server tears the room down; the session ends cleanly.
	srv.CloseRoom(room.RoomID)
	select {
	case <-sess.Done():
		require.NoError(t, sess.Err())
	case <-time.After(time.Second):
		t.Fatalf("session never finished")
	}
}
