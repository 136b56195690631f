package game

import "github.com/baraclan/mathdeck/internal/card"

// DrawHand draws a fresh hand of up to capacity cards from the deck,
// consuming deck inventory as it goes. Running out of cards is a stop-early
// outcome, not a failure: an empty deck yields an empty hand, and a deck
// exhausted mid-draw yields a partial hand.
func DrawHand(deck *card.Deck, capacity int) *card.Container {
	hand := card.NewHand("Hand")
	RefillToCapacity(hand, deck, capacity)
	return hand
}

// RefillToCapacity tops up an existing hand from the deck until the hand
// holds capacity cards or the deck is exhausted.
func RefillToCapacity(hand *card.Container, deck *card.Deck, capacity int) {
	for hand.Total() < capacity {
		c, ok := deck.Draw()
		if !ok {
			return
		}
		// Add only rejects non-positive counts; a drawn card always fits.
		_ = hand.Add(c, 1)
	}
}
