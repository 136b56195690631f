// Package card defines the atomic game unit (a number or operator card) and
// the multiset containers all gameplay operates on.
package card

import "fmt"

// Kind discriminates the two card variants.
type Kind int

const (
	Number Kind = iota
	Operator
)

// String returns the string representation of a kind
func (k Kind) String() string {
	switch k {
	case Number:
		return "Number"
	case Operator:
		return "Operator"
	default:
		return "?"
	}
}

// Op represents an arithmetic operator
type Op int

const (
	Add Op = iota
	Subtract
	Multiply
	Divide
)

// String returns the operator symbol
func (o Op) String() string {
	switch o {
	case Add:
		return "+"
	case Subtract:
		return "-"
	case Multiply:
		return "*"
	case Divide:
		return "/"
	default:
		return "?"
	}
}

// Precedence returns the binding strength of the operator. Multiply and
// Divide bind tighter than Add and Subtract.
func (o Op) Precedence() int {
	switch o {
	case Multiply, Divide:
		return 2
	default:
		return 1
	}
}

// Card is an immutable card value. Two cards of the same kind carrying the
// same number or operator are the same card type; containers track how many
// instances of each type they hold.
type Card struct {
	Kind   Kind
	Number int // set iff Kind == Number
	Op     Op  // set iff Kind == Operator
}

// NewNumber creates a number card
func NewNumber(value int) Card {
	return Card{Kind: Number, Number: value}
}

// NewOperator creates an operator card
func NewOperator(op Op) Card {
	return Card{Kind: Operator, Op: op}
}

// DisplayName returns the human-readable label, e.g. "Number (5)" or
// "Operator (+)". The label doubles as the card's stable identifier: cards
// reconstructed from persistence derive their identity from it.
func (c Card) DisplayName() string {
	if c.Kind == Number {
		return fmt.Sprintf("Number (%d)", c.Number)
	}
	return fmt.Sprintf("Operator (%s)", c.Op)
}

// ID returns the card type's stable identifier.
func (c Card) ID() string {
	return c.DisplayName()
}

// String returns the card's face value as shown on the table: the number
// itself, or the operator symbol.
func (c Card) String() string {
	if c.Kind == Number {
		return fmt.Sprintf("%d", c.Number)
	}
	return c.Op.String()
}

// IsNumber returns true for number cards
func (c Card) IsNumber() bool {
	return c.Kind == Number
}

// IsOperator returns true for operator cards
func (c Card) IsOperator() bool {
	return c.Kind == Operator
}

// IsSign reports whether the card is a + or - operator, the only operators
// that can act as a unary sign.
func (c Card) IsSign() bool {
	return c.Kind == Operator && (c.Op == Add || c.Op == Subtract)
}

// Less orders card types deterministically for display: numbers by value
// first, then operators in +, -, *, / order.
func (c Card) Less(other Card) bool {
	if c.Kind != other.Kind {
		return c.Kind < other.Kind
	}
	if c.Kind == Number {
		return c.Number < other.Number
	}
	return c.Op < other.Op
}
