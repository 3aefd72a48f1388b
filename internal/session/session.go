package session

import (
	"sync"

	"go.uber.org/zap"

	"github.com/shovelsgame/shovels-client/internal/conn"
	"github.com/shovelsgame/shovels-client/internal/game"
)

// SnapshotHook is invoked for every applied snapshot, after the store has
// been updated. The turn controller uses it to clear stale selections.
type SnapshotHook interface {
	HandleSnapshot(*game.GameState)
}

// Session pumps one connection's event stream into a store. The pipeline is
// one-directional: transport -> store -> hooks; nothing here ever writes
// back to the connection.
type Session struct {
	events <-chan conn.Event
	store  *Store
	hooks  []SnapshotHook
	log    *zap.Logger

	done chan struct{}

	mu  sync.Mutex
	err error
}

func New(events <-chan conn.Event, store *Store, log *zap.Logger, hooks ...SnapshotHook) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		events: events,
		store:  store,
		hooks:  hooks,
		log:    log,
		done:   make(chan struct{}),
	}
}

// Start launches the pump. It runs until the connection's terminal event.
func (s *Session) Start() {
	go s.run()
}

// Done is closed once the connection has ended, in either direction.
func (s *Session) Done() <-chan struct{} { return s.done }

// Err reports the terminal transport error, nil for a clean close. Only
// meaningful after Done.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Session) run() {
	defer close(s.done)
	for ev := range s.events {
		switch ev := ev.(type) {
		case conn.StateUpdate:
			s.store.Apply(ev.State)
			for _, h := range s.hooks {
				h.HandleSnapshot(ev.State)
			}
		case conn.ServerError:
			s.log.Info("server rejected action", zap.String("message", ev.Message))
			s.store.SetError(ev.Message)
		case conn.Terminal:
			s.mu.Lock()
			s.err = ev.Err
			s.mu.Unlock()
			return
		}
	}
}
