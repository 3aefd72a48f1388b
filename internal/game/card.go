package game

import "strconv"

type Suit string

const (
	SuitClubs    Suit = "CLUBS"
	SuitDiamonds Suit = "DIAMONDS"
	SuitHearts   Suit = "HEARTS"
	SuitSpades   Suit = "SPADES"
)

// Card is an immutable snapshot value. Every card the client holds came off
// the wire; nothing here is ever mutated locally.
//
// Number cards carry Rank 2-10. Aces carry Rank 10 with IsAce set. Face
// cards carry Rank 0 with IsFace set and FaceRank one of "J", "Q", "K".
type Card struct {
	UID      string `json:"uid"`
	Rank     int    `json:"rank"`
	Suit     Suit   `json:"suit"`
	IsFace   bool   `json:"is_face"`
	FaceRank string `json:"face_rank,omitempty"`
	IsAce    bool   `json:"is_ace"`
}

// Label renders the rank the way a player reads it: A, 2..10, J, Q, K.
func (c Card) Label() string {
	switch {
	case c.IsFace:
		return c.FaceRank
	case c.IsAce:
		return "A"
	default:
		return strconv.Itoa(c.Rank)
	}
}

func (c Card) String() string {
	return c.Label() + " of " + string(c.Suit)
}
