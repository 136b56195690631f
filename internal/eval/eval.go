// Package eval turns an ordered sequence of cards into a single integer
// result under standard operator precedence. Evaluation is a pure function:
// it never mutates its input and always fails the same way for the same
// card values.
package eval

import (
	"errors"
	"fmt"

	"github.com/baraclan/mathdeck/internal/card"
)

var (
	// ErrMalformed indicates the card sequence is not a valid expression:
	// empty input, leading/trailing operator, a dangling unary sign, a sign
	// not followed by a number, or broken number/operator alternation.
	ErrMalformed = errors.New("eval: malformed expression")

	// ErrDivideByZero indicates a division with divisor zero anywhere in the
	// expression.
	ErrDivideByZero = errors.New("eval: division by zero")

	// ErrEvaluation indicates token reduction did not collapse to exactly one
	// value. Unreachable after validation, but checked rather than trusted.
	ErrEvaluation = errors.New("eval: evaluation error")
)

// Evaluate reduces the expression to an integer. Multiplication and division
// bind tighter than addition and subtraction; equal precedence associates
// left to right. Division truncates toward zero: 7/2 = 3, -7/2 = -3.
func Evaluate(cards []card.Card) (int, error) {
	if len(cards) == 0 {
		return 0, fmt.Errorf("%w: empty expression", ErrMalformed)
	}

	tokens, err := normalizeUnary(cards)
	if err != nil {
		return 0, err
	}

	// After normalization the sequence must strictly alternate
	// NUMBER, OPERATOR, NUMBER, ... starting and ending on a number.
	if err := validate(tokens); err != nil {
		return 0, err
	}

	return reduce(toPostfix(tokens))
}

// normalizeUnary folds unary +/- signs into the following number card. A
// sign is unary iff it opens the expression or immediately follows another
// operator. [-, 5, +, 3] becomes [-5, +, 3].
func normalizeUnary(cards []card.Card) ([]card.Card, error) {
	out := make([]card.Card, 0, len(cards))
	for i := 0; i < len(cards); {
		c := cards[i]
		unary := c.IsSign() && (i == 0 || cards[i-1].IsOperator())
		if !unary {
			out = append(out, c)
			i++
			continue
		}
		if i+1 >= len(cards) {
			return nil, fmt.Errorf("%w: unary sign at end of expression", ErrMalformed)
		}
		next := cards[i+1]
		if !next.IsNumber() {
			return nil, fmt.Errorf("%w: unary sign must be followed by a number", ErrMalformed)
		}
		value := next.Number
		if c.Op == card.Subtract {
			value = -value
		}
		// Transient signed card; it only exists for this evaluation.
		out = append(out, card.NewNumber(value))
		i += 2
	}
	return out, nil
}

func validate(tokens []card.Card) error {
	if len(tokens) == 0 {
		return fmt.Errorf("%w: empty expression", ErrMalformed)
	}
	if !tokens[0].IsNumber() {
		return fmt.Errorf("%w: expression must start with a number", ErrMalformed)
	}
	if !tokens[len(tokens)-1].IsNumber() {
		return fmt.Errorf("%w: expression cannot end with an operator", ErrMalformed)
	}
	if len(tokens)%2 == 0 {
		return fmt.Errorf("%w: invalid expression length", ErrMalformed)
	}
	for i, t := range tokens {
		wantNumber := i%2 == 0
		if t.IsNumber() != wantNumber {
			return fmt.Errorf("%w: numbers and operators must alternate", ErrMalformed)
		}
	}
	return nil
}

// toPostfix runs the shunting-yard transformation. Popping operators of
// greater-or-equal precedence before pushing keeps equal precedence
// left-associative.
func toPostfix(tokens []card.Card) []card.Card {
	output := make([]card.Card, 0, len(tokens))
	var ops []card.Card
	for _, t := range tokens {
		if t.IsNumber() {
			output = append(output, t)
			continue
		}
		for len(ops) > 0 && ops[len(ops)-1].Op.Precedence() >= t.Op.Precedence() {
			output = append(output, ops[len(ops)-1])
			ops = ops[:len(ops)-1]
		}
		ops = append(ops, t)
	}
	for len(ops) > 0 {
		output = append(output, ops[len(ops)-1])
		ops = ops[:len(ops)-1]
	}
	return output
}

func reduce(postfix []card.Card) (int, error) {
	var stack []int
	for _, t := range postfix {
		if t.IsNumber() {
			stack = append(stack, t.Number)
			continue
		}
		if len(stack) < 2 {
			return 0, fmt.Errorf("%w: not enough operands", ErrEvaluation)
		}
		b := stack[len(stack)-1]
		a := stack[len(stack)-2]
		stack = stack[:len(stack)-2]
		v, err := apply(t.Op, a, b)
		if err != nil {
			return 0, err
		}
		stack = append(stack, v)
	}
	if len(stack) != 1 {
		return 0, fmt.Errorf("%w: reduction left %d values", ErrEvaluation, len(stack))
	}
	return stack[0], nil
}

func apply(op card.Op, a, b int) (int, error) {
	switch op {
	case card.Add:
		return a + b, nil
	case card.Subtract:
		return a - b, nil
	case card.Multiply:
		return a * b, nil
	case card.Divide:
		if b == 0 {
			return 0, ErrDivideByZero
		}
		// Go's integer division truncates toward zero, the semantics the
		// goal values were tuned against.
		return a / b, nil
	default:
		return 0, fmt.Errorf("%w: unknown operator", ErrEvaluation)
	}
}

// String renders the expression for logs and display, e.g. "2 + 3 * 4".
func String(cards []card.Card) string {
	s := ""
	for i, c := range cards {
		if i > 0 {
			s += " "
		}
		s += c.String()
	}
	return s
}
