package card

import rand "math/rand/v2"

// Deck is a drawable container. Draws pick a uniformly random card instance
// from the flattened multiset, so types with higher counts are proportionally
// more likely.
type Deck struct {
	Container
	rng *rand.Rand
}

// NewDeck creates an empty deck that draws with the given RNG
func NewDeck(name string, rng *rand.Rand) *Deck {
	return &Deck{
		Container: *NewContainer(name),
		rng:       rng,
	}
}

// NewDeckFrom creates a deck seeded from a type -> count mapping. The mapping
// is copied; the deck never aliases the caller's state.
func NewDeckFrom(name string, counts map[Card]int, rng *rand.Rand) *Deck {
	d := NewDeck(name, rng)
	for c, n := range counts {
		if n > 0 {
			d.counts[c] = n
		}
	}
	return d
}

// Draw removes and returns one random card instance, weighted by count.
// Returns false when the deck is empty.
func (d *Deck) Draw() (Card, bool) {
	total := d.Total()
	if total == 0 {
		return Card{}, false
	}
	// Walk the deterministic type order until the random index lands in a
	// type's count bucket. Equivalent to flattening and indexing, without
	// building the flat list.
	idx := d.rng.IntN(total)
	for _, c := range d.Types() {
		idx -= d.counts[c]
		if idx < 0 {
			if err := d.Remove(c, 1); err != nil {
				return Card{}, false
			}
			return c, true
		}
	}
	return Card{}, false
}
