package eval

import (
	"errors"
	"strings"
	"testing"

	"github.com/baraclan/mathdeck/internal/card"
)

// expr builds a card sequence from space-free tokens: "2+3*4" etc. Each rune
// is one card.
func expr(t *testing.T, s string) []card.Card {
	t.Helper()
	cards := make([]card.Card, 0, len(s))
	for _, r := range s {
		c, err := card.Parse(string(r))
		if err != nil {
			t.Fatalf("bad test expression %q: %v", s, err)
		}
		cards = append(cards, c)
	}
	return cards
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"5", 5},
		{"2+3", 5},
		{"2+3*4", 14},
		{"2*3+4", 10},
		{"8-2-3", 3},     // left associative
		{"8/4/2", 1},     // left associative
		{"7/2", 3},       // truncation toward zero
		{"9*9", 81},
		{"1+2*3-4", 3},
		{"6/3*2", 4},
		{"0*9", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Evaluate(expr(t, tt.input))
			if err != nil {
				t.Fatalf("Evaluate(%q) error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("Evaluate(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestEvaluateUnarySigns(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"-5", -5},
		{"+5", 5},
		{"-5+3", -2},
		{"3*-2", -6},
		{"3--2", 5},
		{"-2*-3", 6},
		{"-7/2", -3}, // truncation toward zero, not flooring
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Evaluate(expr(t, tt.input))
			if err != nil {
				t.Fatalf("Evaluate(%q) error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("Evaluate(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestEvaluateMalformed(t *testing.T) {
	tests := []string{
		"",     // empty
		"+",    // lone sign
		"*",    // lone operator
		"5+",   // trailing operator
		"*5",   // leading non-sign operator
		"55",   // adjacent numbers
		"5+*3", // sign-less operator after operator
		"5++",  // dangling sign
		"-*5",  // sign followed by operator
	}

	for _, input := range tests {
		name := input
		if name == "" {
			name = "empty"
		}
		t.Run(name, func(t *testing.T) {
			_, err := Evaluate(expr(t, input))
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Evaluate(%q) = %v, want ErrMalformed", input, err)
			}
		})
	}
}

func TestEvaluateDivideByZero(t *testing.T) {
	tests := []string{
		"5/0",
		"1+6/0",
		"5/0+1", // fails even though later terms exist
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := Evaluate(expr(t, input))
			if !errors.Is(err, ErrDivideByZero) {
				t.Errorf("Evaluate(%q) = %v, want ErrDivideByZero", input, err)
			}
		})
	}
}

func TestEvaluateDoesNotMutateInput(t *testing.T) {
	cards := expr(t, "-5+3")
	before := make([]card.Card, len(cards))
	copy(before, cards)

	if _, err := Evaluate(cards); err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	for i := range cards {
		if cards[i] != before[i] {
			t.Fatalf("input mutated at index %d: %v -> %v", i, before[i], cards[i])
		}
	}
}

func TestString(t *testing.T) {
	cards := expr(t, "2+3*4")
	got := String(cards)
	if !strings.Contains(got, "2") || !strings.Contains(got, "+") {
		t.Errorf("String() = %q, want rendering of all cards", got)
	}
}
