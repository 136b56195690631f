package game

import (
	"fmt"

	"github.com/baraclan/mathdeck/internal/card"
)

// Equation is the candidate expression: the cards the player has laid out,
// in order. Unlike the multiset containers it preserves position, but it
// still implements card.Store so cards move in and out only through
// card.Transfer.
type Equation struct {
	cards []card.Card
}

// NewEquation creates an empty equation line
func NewEquation() *Equation {
	return &Equation{}
}

// Add appends count instances of a card type to the end of the line.
func (e *Equation) Add(c card.Card, count int) error {
	if count <= 0 {
		return fmt.Errorf("%w: add %d x %s to equation", card.ErrBadCount, count, c.DisplayName())
	}
	for i := 0; i < count; i++ {
		e.cards = append(e.cards, c)
	}
	return nil
}

// Remove deletes count instances of a card type, rightmost first.
func (e *Equation) Remove(c card.Card, count int) error {
	if count <= 0 {
		return fmt.Errorf("%w: remove %d x %s from equation", card.ErrBadCount, count, c.DisplayName())
	}
	if e.Count(c) < count {
		return fmt.Errorf("%w: remove %d x %s from equation, only %d placed",
			card.ErrInsufficient, count, c.DisplayName(), e.Count(c))
	}
	removed := 0
	for i := len(e.cards) - 1; i >= 0 && removed < count; i-- {
		if e.cards[i] == c {
			e.cards = append(e.cards[:i], e.cards[i+1:]...)
			removed++
		}
	}
	return nil
}

// Count returns how many instances of a card type are placed
func (e *Equation) Count(c card.Card) int {
	n := 0
	for _, placed := range e.cards {
		if placed == c {
			n++
		}
	}
	return n
}

// Cards returns a copy of the placed sequence, left to right.
func (e *Equation) Cards() []card.Card {
	out := make([]card.Card, len(e.cards))
	copy(out, e.cards)
	return out
}

// At returns the card at position i
func (e *Equation) At(i int) (card.Card, bool) {
	if i < 0 || i >= len(e.cards) {
		return card.Card{}, false
	}
	return e.cards[i], true
}

// Len returns the number of placed cards
func (e *Equation) Len() int {
	return len(e.cards)
}

// IsEmpty reports whether no cards are placed
func (e *Equation) IsEmpty() bool {
	return len(e.cards) == 0
}

// Clear removes all cards
func (e *Equation) Clear() {
	e.cards = e.cards[:0]
}
