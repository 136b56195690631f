package card

import (
	"fmt"
	rand "math/rand/v2"
	"strconv"
)

// AllTypes returns the 14 card types the game is played with: digits 0-9 and
// the four operators.
func AllTypes() []Card {
	types := make([]Card, 0, 14)
	for n := 0; n <= 9; n++ {
		types = append(types, NewNumber(n))
	}
	for _, op := range []Op{Add, Subtract, Multiply, Divide} {
		types = append(types, NewOperator(op))
	}
	return types
}

// Parse builds a card from its short config form: a digit string or one of
// "+", "-", "*", "/".
func Parse(s string) (Card, error) {
	switch s {
	case "+":
		return NewOperator(Add), nil
	case "-":
		return NewOperator(Subtract), nil
	case "*":
		return NewOperator(Multiply), nil
	case "/":
		return NewOperator(Divide), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return Card{}, fmt.Errorf("card: cannot parse %q", s)
	}
	return NewNumber(n), nil
}

// StarterDeck returns the default player deck: two of each of the 14 card
// types, 28 cards total.
func StarterDeck(name string, rng *rand.Rand) *Deck {
	d := NewDeck(name, rng)
	for _, c := range AllTypes() {
		d.counts[c] = 2
	}
	return d
}

// FullCollection returns the catalog of every available card type, one of
// each.
func FullCollection() *Container {
	col := NewCollection("Full Collection")
	for _, c := range AllTypes() {
		col.counts[c] = 1
	}
	return col
}
