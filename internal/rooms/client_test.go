package rooms_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shovelsgame/shovels-client/internal/gametest"
	"github.com/shovelsgame/shovels-client/internal/rooms"
)

const testToken = "test-token"

func startDirectory(t *testing.T) (*gametest.Server, string) {
	t.Helper()
	srv := gametest.NewServer(testToken, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts.URL
}

func TestCreateListJoin(t *testing.T) {
	ctx := context.Background()
	_, base := startDirectory(t)
	client := rooms.NewClient(base, testToken, nil)

	created, err := client.Create(ctx, "friday table")
	require.NoError(t, err)
	require.NotEmpty(t, created.RoomID)
	require.Equal(t, "friday table", created.Name)
	require.False(t, created.IsStarted)

	listed, err := client.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, created.RoomID, listed[0].RoomID)

	require.NoError(t, client.Join(ctx, created.RoomID, "u1"))

	listed, err = client.List(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, listed[0].PlayerCount)
}

func TestListEmpty(t *testing.T) {
	_, base := startDirectory(t)
	client := rooms.NewClient(base, testToken, nil)

	listed, err := client.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, listed)
}

func TestJoinMissingRoom(t *testing.T) {
	_, base := startDirectory(t)
	client := rooms.NewClient(base, testToken, nil)

	err := client.Join(context.Background(), "nope", "u1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Room not found")
}

// A rejected credential maps to ErrUnauthorized so callers can invalidate
// the token locally instead of retrying.
func TestUnauthorized(t *testing.T) {
	_, base := startDirectory(t)
	client := rooms.NewClient(base, "stale-token", nil)

	_, err := client.List(context.Background())
	require.ErrorIs(t, err, rooms.ErrUnauthorized)

	_, err = client.Create(context.Background(), "x")
	require.ErrorIs(t, err, rooms.ErrUnauthorized)
}
