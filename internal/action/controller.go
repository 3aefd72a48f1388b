// Package action gates which actions the local player may attempt and owns
// the transient selection state behind them. These checks are a UX layer,
// not a trust boundary: the server re-validates everything independently.
package action

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/shovelsgame/shovels-client/internal/game"
	"github.com/shovelsgame/shovels-client/internal/protocol"
	"github.com/shovelsgame/shovels-client/internal/session"
)

var (
	ErrNotYourTurn     = errors.New("not your turn")
	ErrWrongSubphase   = errors.New("action not legal in this subphase")
	ErrDrawSourcesFull = errors.New("two draw sources already pending")
	ErrDrawOrder       = errors.New("if drawing from both, discard must be chosen first")
	ErrDrawIncomplete  = errors.New("draw needs exactly two sources")
	ErrNoCardSelected  = errors.New("exactly one hand card must be selected")
)

const drawOrderMessage = "Rule: If drawing from both, you must pick from Discard first."

// Sender is the outbound half of the connection. Send is fire-and-forget;
// the next snapshot is the only confirmation.
type Sender interface {
	Send(protocol.ClientMessage) error
}

// Controller derives the local player's legal actions from the latest
// snapshot and holds the selection state leading up to a submission. It
// reads the store, it never writes snapshots; its only store writes are to
// the shared transient-error slot, so local and server-reported violations
// reach the UI the same way.
type Controller struct {
	store  *session.Store
	send   Sender
	userID string
	log    *zap.Logger

	mu           sync.Mutex
	selected     []int // 0 or 1 hand index
	pendingDraw  []game.DrawSource
	lastSubphase game.Subphase
}

func NewController(store *session.Store, send Sender, userID string, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		store:  store,
		send:   send,
		userID: userID,
		log:    log.With(zap.String("user", userID)),
	}
}

// Mode derives what the local player may currently do.
func (c *Controller) Mode() game.Mode {
	return game.Derive(c.store.Current(), c.userID)
}

// SelectedHand returns a copy of the current hand selection (0 or 1 index).
func (c *Controller) SelectedHand() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.selected...)
}

// PendingDraw returns a copy of the pending draw sources in selection order.
func (c *Controller) PendingDraw() []game.DrawSource {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]game.DrawSource(nil), c.pendingDraw...)
}

// SelectCard toggles a hand index. Clicking the selected card deselects it;
// clicking another replaces the selection (this game is single-card only).
// Indices are a snapshot artifact, so validity is re-derived at submit time
// against the snapshot current then, never trusted from here.
func (c *Controller) SelectCard(index int) {
	c.mu.Lock()
	if len(c.selected) == 1 && c.selected[0] == index {
		c.selected = nil
	} else {
		c.selected = []int{index}
	}
	c.mu.Unlock()
	c.store.ClearError()
}

// AddDrawSource appends a pile to the pending draw selection. The ordered
// pair [DECK, DISCARD] is rejected up front, mirroring the server's
// discard-first rule; the already-selected entry is retained.
func (c *Controller) AddDrawSource(src game.DrawSource) error {
	if err := c.requireMode(game.ModeDrawing); err != nil {
		return c.violation(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pendingDraw) >= 2 {
		return ErrDrawSourcesFull
	}
	if len(c.pendingDraw) == 1 && c.pendingDraw[0] == game.SourceDeck && src == game.SourceDiscard {
		c.store.SetError(drawOrderMessage)
		return ErrDrawOrder
	}
	c.pendingDraw = append(c.pendingDraw, src)
	return nil
}

// ResetDraw clears the pending draw selection without server interaction.
func (c *Controller) ResetDraw() {
	c.mu.Lock()
	c.pendingDraw = nil
	c.mu.Unlock()
}

// ConfirmDraw submits the two pending sources in their selected order and
// clears the pending state.
func (c *Controller) ConfirmDraw() error {
	if err := c.requireMode(game.ModeDrawing); err != nil {
		return c.violation(err)
	}

	c.mu.Lock()
	if len(c.pendingDraw) != 2 {
		c.mu.Unlock()
		return c.violation(ErrDrawIncomplete)
	}
	sources := append([]game.DrawSource(nil), c.pendingDraw...)
	c.mu.Unlock()

	if err := c.send.Send(protocol.EncodeDraw(sources)); err != nil {
		return err
	}
	c.log.Debug("draw submitted", zap.Any("sources", sources))
	c.ResetDraw()
	return nil
}

// ConfirmDiscard submits the single selected hand index and clears the
// selection.
func (c *Controller) ConfirmDiscard() error {
	if err := c.requireMode(game.ModeDiscarding); err != nil {
		return c.violation(err)
	}

	c.mu.Lock()
	if len(c.selected) != 1 {
		c.mu.Unlock()
		return c.violation(ErrNoCardSelected)
	}
	index := c.selected[0]
	c.mu.Unlock()

	if err := c.send.Send(protocol.EncodeDiscard(index)); err != nil {
		return err
	}
	c.log.Debug("discard submitted", zap.Int("card_index", index))
	c.clearSelection()
	return nil
}

// ClickCharacter completes a play: with exactly one hand card selected
// during PLAY, clicking a character stack sends the pair. Any other click is
// ignored outright, not an error.
func (c *Controller) ClickCharacter(characterIndex int) error {
	if c.Mode() != game.ModePlaying {
		return nil
	}

	c.mu.Lock()
	if len(c.selected) != 1 {
		c.mu.Unlock()
		return nil
	}
	cardIndex := c.selected[0]
	c.mu.Unlock()

	if err := c.send.Send(protocol.EncodePlay(cardIndex, characterIndex)); err != nil {
		return err
	}
	c.log.Debug("play submitted",
		zap.Int("card_index", cardIndex), zap.Int("character_index", characterIndex))
	c.clearSelection()
	return nil
}

// Advance signals intent to leave the play subphase. No parameters.
func (c *Controller) Advance() error {
	if err := c.requireMode(game.ModePlaying); err != nil {
		return c.violation(err)
	}
	return c.send.Send(protocol.EncodeAdvance())
}

// StartGame asks the server to start; legal only in the lobby.
func (c *Controller) StartGame() error {
	if c.Mode() != game.ModeLobby {
		return c.violation(ErrWrongSubphase)
	}
	return c.send.Send(protocol.EncodeStartGame())
}

// Cancel clears all pending local selection. Purely local; an already-sent
// action cannot be cancelled.
func (c *Controller) Cancel() {
	c.mu.Lock()
	c.selected = nil
	c.pendingDraw = nil
	c.mu.Unlock()
}

// HandleSnapshot reacts to each applied snapshot. Pending draw sources are
// dropped whenever the subphase is no longer DRAW, and every selection is
// dropped on a subphase boundary, so a snapshot race cannot leak a stale
// selection into a new subphase.
func (c *Controller) HandleSnapshot(s *game.GameState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s.TurnSubphase != c.lastSubphase {
		c.lastSubphase = s.TurnSubphase
		c.selected = nil
		c.pendingDraw = nil
		return
	}
	if s.TurnSubphase != game.SubphaseDraw {
		c.pendingDraw = nil
	}
}

func (c *Controller) clearSelection() {
	c.mu.Lock()
	c.selected = nil
	c.mu.Unlock()
}

// requireMode distinguishes "someone else's turn" from "my turn, wrong
// subphase" so the surfaced message is accurate.
func (c *Controller) requireMode(want game.Mode) error {
	mode := c.Mode()
	if mode == want {
		return nil
	}
	if s := c.store.Current(); s == nil || !s.IsTurnOf(c.userID) {
		return ErrNotYourTurn
	}
	return ErrWrongSubphase
}

// violation surfaces a local legality failure on the shared transient error
// slot. No message is ever sent for these.
func (c *Controller) violation(err error) error {
	c.log.Debug("action rejected locally", zap.Error(err))
	c.store.SetError(err.Error())
	return err
}
