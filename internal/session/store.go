package session

import (
	"sync"

	"github.com/shovelsgame/shovels-client/internal/game"
)

// Store holds the latest authoritative snapshot. Writes only ever come from
// the session pump; readers (controller, renderers) share it behind an
// RWMutex. Apply is strict replace-on-write: the server is the single source
// of truth and nothing here merges or patches.
//
// The error slot is independent of the snapshot slot so an unrelated
// snapshot race can never drop a displayed error, except through the one
// stated rule: a successful state_update clears it.
type Store struct {
	mu     sync.RWMutex
	state  *game.GameState
	errMsg string
	hasErr bool
	subs   map[string]chan *game.GameState
}

func NewStore() *Store {
	return &Store{subs: make(map[string]chan *game.GameState)}
}

// Apply replaces the current snapshot, clears any pending error, and
// notifies subscribers. A subscriber whose channel is full just misses the
// notification; it re-reads Current on the next one.
func (s *Store) Apply(next *game.GameState) {
	s.mu.Lock()
	s.state = next
	s.errMsg = ""
	s.hasErr = false
	for _, ch := range s.subs {
		select {
		case ch <- next:
		default:
		}
	}
	s.mu.Unlock()
}

// Current returns the latest snapshot, or nil before the first one.
func (s *Store) Current() *game.GameState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetError records a transient, user-visible message. Newest replaces
// oldest; server-reported and client-local violations share this slot so a
// UI treats them uniformly.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	s.errMsg = msg
	s.hasErr = true
	s.mu.Unlock()
}

// ClearError dismisses the current message, if any.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.errMsg = ""
	s.hasErr = false
	s.mu.Unlock()
}

func (s *Store) Err() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg, s.hasErr
}

// Subscribe registers a snapshot channel under an id, replacing any prior
// registration for that id.
func (s *Store) Subscribe(id string, ch chan *game.GameState) {
	s.mu.Lock()
	s.subs[id] = ch
	s.mu.Unlock()
}

func (s *Store) Unsubscribe(id string) {
	s.mu.Lock()
	delete(s.subs, id)
	s.mu.Unlock()
}
