// Package gametest is an in-process stand-in for the game server: the room
// directory over HTTP plus the per-room websocket that pushes snapshots and
// error messages. Integration tests drive it by hand; it applies no game
// rules.
package gametest

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shovelsgame/shovels-client/internal/game"
	"github.com/shovelsgame/shovels-client/internal/protocol"
)

type Room struct {
	RoomID      string `json:"room_id"`
	Name        string `json:"name"`
	PlayerCount int    `json:"player_count"`
	IsStarted   bool   `json:"is_started"`
}

// RoomMessage is one envelope received from a client, tagged with its room.
type RoomMessage struct {
	RoomID string
	Msg    protocol.ClientMessage
}

type client struct {
	ws     *websocket.Conn
	outbox chan []byte
}

type Server struct {
	log   *zap.Logger
	token string // when set, HTTP and ws require this bearer token

	mu      sync.Mutex
	rooms   map[string]*Room
	states  map[string]*game.GameState
	clients map[string][]*client

	inbox chan RoomMessage
}

// NewServer builds a fixture server. An empty token disables auth checks.
func NewServer(token string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		log:     log,
		token:   token,
		rooms:   make(map[string]*Room),
		states:  make(map[string]*game.GameState),
		clients: make(map[string][]*client),
		inbox:   make(chan RoomMessage, 64),
	}
}

// Inbox delivers every decoded client envelope for assertions.
func (s *Server) Inbox() <-chan RoomMessage { return s.inbox }

// CreateRoom registers a room directly, bypassing HTTP, for test setup.
// Fresh rooms hold a lobby snapshot.
func (s *Server) CreateRoom(name string) *Room {
	room := &Room{RoomID: uuid.NewString()[:8], Name: name}
	s.mu.Lock()
	s.rooms[room.RoomID] = room
	s.states[room.RoomID] = &game.GameState{Phase: game.PhaseLobby}
	s.mu.Unlock()
	return room
}

// SetState seeds the snapshot joining clients receive. It does not broadcast;
// pair it with Broadcast to push the change to connected clients.
func (s *Server) SetState(roomID string, state *game.GameState) {
	s.mu.Lock()
	s.states[roomID] = state
	s.mu.Unlock()
}

// Broadcast pushes a server message to every client in the room.
func (s *Server) Broadcast(roomID string, msg protocol.ServerMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		s.log.Error("marshal broadcast", zap.Error(err))
		return
	}
	s.push(roomID, payload)
}

// BroadcastRaw pushes an arbitrary frame, malformed ones included, so tests
// can exercise the client's drop-and-continue path.
func (s *Server) BroadcastRaw(roomID string, payload []byte) {
	s.push(roomID, payload)
}

func (s *Server) push(roomID string, payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cl := range s.clients[roomID] {
		select {
		case cl.outbox <- payload:
		default:
			// Slow client; skip rather than block the test.
		}
	}
}

// CloseRoom closes every websocket in the room with a going-away status,
// which clients treat as a clean close.
func (s *Server) CloseRoom(roomID string) {
	s.closeRoom(roomID, websocket.StatusGoingAway, "room closed")
}

// FailRoom closes every websocket in the room abnormally, which clients
// treat as a transport failure.
func (s *Server) FailRoom(roomID string) {
	s.closeRoom(roomID, websocket.StatusInternalError, "room failed")
}

func (s *Server) closeRoom(roomID string, status websocket.StatusCode, reason string) {
	s.mu.Lock()
	conns := s.clients[roomID]
	delete(s.clients, roomID)
	s.mu.Unlock()
	for _, cl := range conns {
		close(cl.outbox)
		_ = cl.ws.Close(status, reason)
	}
}

// Handler builds the HTTP surface: the room directory plus the per-room
// websocket endpoint.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/rooms", s.requireAuth(s.listRooms))
	r.Post("/rooms", s.requireAuth(s.createRoom))
	r.Post("/rooms/{roomID}/join", s.requireAuth(s.joinRoom))
	r.Get("/ws/room/{roomID}", s.serveRoomWS)
	return r
}

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" && r.Header.Get("Authorization") != "Bearer "+s.token {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next(w, r)
	}
}

func (s *Server) listRooms(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := make([]Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		out = append(out, *room)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid body")
		return
	}
	room := s.CreateRoom(req.Name)
	writeJSON(w, http.StatusOK, room)
}

func (s *Server) joinRoom(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("player_id")
	s.mu.Lock()
	room := s.rooms[chi.URLParam(r, "roomID")]
	if room != nil && playerID != "" {
		room.PlayerCount++
	}
	s.mu.Unlock()
	if room == nil {
		writeDetail(w, http.StatusNotFound, "Room not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Joined successfully"})
}

func (s *Server) serveRoomWS(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	if s.token != "" && r.URL.Query().Get("token") != s.token {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	s.mu.Lock()
	_, ok := s.rooms[roomID]
	s.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusNotFound, "Room not found")
		return
	}

	ws, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}

	cl := &client{ws: ws, outbox: make(chan []byte, 16)}
	s.mu.Lock()
	s.clients[roomID] = append(s.clients[roomID], cl)
	state := s.states[roomID]
	s.mu.Unlock()

	// Send the current snapshot immediately on join so a new client never
	// waits for the next broadcast to learn what is true right now.
	if state != nil {
		if payload, err := json.Marshal(protocol.ServerMessage{
			Type: protocol.TypeStateUpdate, State: state,
		}); err == nil {
			cl.outbox <- payload
		}
	}

	// Writer: one goroutine drains the outbox.
	go func() {
		for payload := range cl.outbox {
			_ = ws.Write(r.Context(), websocket.MessageText, payload)
		}
	}()

	for {
		_, data, err := ws.Read(r.Context())
		if err != nil {
			return
		}
		msg, err := protocol.DecodeClient(data)
		if err != nil {
			s.log.Warn("bad client frame", zap.Error(err))
			reply, _ := json.Marshal(protocol.ServerMessage{
				Type: protocol.TypeError, Message: "bad json",
			})
			cl.outbox <- reply
			continue
		}
		s.inbox <- RoomMessage{RoomID: roomID, Msg: msg}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
