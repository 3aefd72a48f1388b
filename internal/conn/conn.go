package conn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/shovelsgame/shovels-client/internal/game"
	"github.com/shovelsgame/shovels-client/internal/protocol"
)

const writeTimeout = 3 * time.Second

var ErrNotConnected = errors.New("connection is not open")

type Status int

const (
	StatusConnecting Status = iota
	StatusOpen
	StatusClosed
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "CONNECTING"
	case StatusOpen:
		return "OPEN"
	case StatusClosed:
		return "CLOSED"
	case StatusFailed:
		return "FAILED"
	default:
		return "INVALID"
	}
}

// Target addresses one room membership. The token is opaque here; the auth
// collaborator issued it.
type Target struct {
	BaseURL string // ws(s)://host
	RoomID  string
	Token   string
}

func (t Target) URL() string {
	q := url.Values{}
	q.Set("token", t.Token)
	return fmt.Sprintf("%s/ws/room/%s?%s", t.BaseURL, t.RoomID, q.Encode())
}

// Event is delivered on Conn.Events. The stream ends with exactly one
// Terminal event, after which the channel is closed.
type Event interface{ isConnEvent() }

type StateUpdate struct{ State *game.GameState }

// ServerError carries a human-readable rule violation from the server.
type ServerError struct{ Message string }

// Terminal reports the connection's end. Err is nil for a locally requested
// close and non-nil for a transport failure or abnormal remote close.
type Terminal struct{ Err error }

func (StateUpdate) isConnEvent() {}
func (ServerError) isConnEvent() {}
func (Terminal) isConnEvent()    {}

// Conn owns one websocket for its lifetime. The caller owns the handle and
// releases the transport with Close; no reconnect is ever attempted here.
type Conn struct {
	ws  *websocket.Conn
	log *zap.Logger

	mu     sync.Mutex
	status Status

	events   chan Event
	terminal sync.Once
}

// Open dials the room's websocket. On failure the handle never reaches OPEN
// and the error is returned directly.
func Open(ctx context.Context, target Target, log *zap.Logger) (*Conn, error) {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Conn{
		log:    log.With(zap.String("room", target.RoomID)),
		status: StatusConnecting,
		events: make(chan Event, 16),
	}

	ws, _, err := websocket.Dial(ctx, target.URL(), nil)
	if err != nil {
		c.status = StatusFailed
		return nil, fmt.Errorf("dial room %s: %w", target.RoomID, err)
	}
	c.ws = ws
	c.status = StatusOpen
	c.log.Info("connection open")

	go c.readLoop()
	return c, nil
}

// Events is the inbound stream. Closed after the Terminal event.
func (c *Conn) Events() <-chan Event { return c.events }

func (c *Conn) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Send writes one envelope. It fails fast with ErrNotConnected outside OPEN
// rather than queueing; delivery is fire-and-forget, confirmed only by a
// later state_update.
func (c *Conn) Send(msg protocol.ClientMessage) error {
	c.mu.Lock()
	if c.status != StatusOpen {
		c.mu.Unlock()
		return fmt.Errorf("%w (status %s)", ErrNotConnected, c.status)
	}
	c.mu.Unlock()

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := c.ws.Write(ctx, websocket.MessageText, payload); err != nil {
		return fmt.Errorf("write envelope: %w", err)
	}
	return nil
}

// Close releases the transport. Safe to call more than once; the read loop
// still delivers the single Terminal event.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.status == StatusClosed || c.status == StatusFailed {
		c.mu.Unlock()
		return nil
	}
	c.status = StatusClosed
	c.mu.Unlock()
	return c.ws.Close(websocket.StatusNormalClosure, "bye")
}

func (c *Conn) readLoop() {
	for {
		_, data, err := c.ws.Read(context.Background())
		if err != nil {
			c.finish(err)
			return
		}

		msg, err := protocol.DecodeServer(data)
		if err != nil {
			// Malformed or unknown frames never kill the pipeline.
			c.log.Warn("dropping inbound frame", zap.Error(err))
			continue
		}

		switch msg.Type {
		case protocol.TypeStateUpdate:
			c.events <- StateUpdate{State: msg.State}
		case protocol.TypeError:
			c.events <- ServerError{Message: msg.Message}
		}
	}
}

// finish records the terminal status and emits the one terminal notification.
func (c *Conn) finish(readErr error) {
	c.mu.Lock()
	requested := c.status == StatusClosed
	if !requested {
		switch websocket.CloseStatus(readErr) {
		case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			c.status = StatusClosed
			requested = true
		default:
			c.status = StatusFailed
		}
	}
	c.mu.Unlock()

	c.terminal.Do(func() {
		if requested {
			c.log.Info("connection closed")
			c.events <- Terminal{}
		} else {
			c.log.Warn("connection failed", zap.Error(readErr))
			c.events <- Terminal{Err: readErr}
		}
		close(c.events)
	})
}
