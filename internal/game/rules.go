package game

import "math"

// HandCapacity is the number of cards a hand is drawn or refilled to.
const HandCapacity = 8

// GoalAward is the score awarded per goal reached. No partial credit, no
// penalty for failed attempts.
const GoalAward = 100

// exactEpsilon bounds what counts as an exact match in the zero-margin
// rounds.
const exactEpsilon = 1e-4

// DefaultGoals is the standard ten-round goal sequence.
var DefaultGoals = []float64{4, -12, -36, 46, 576, -72, -144, 58, 5184, -268}

// Rules configures a single game instance
type Rules struct {
	Goals        []float64
	HandCapacity int
	Award        int
}

// DefaultRules returns the standard ten-round game
func DefaultRules() Rules {
	return Rules{
		Goals:        DefaultGoals,
		HandCapacity: HandCapacity,
		Award:        GoalAward,
	}
}

// Tutorial truncates the goal sequence to the first n goals and leaves
// everything else unchanged.
func (r Rules) Tutorial(n int) Rules {
	if n > len(r.Goals) {
		n = len(r.Goals)
	}
	out := r
	out.Goals = r.Goals[:n]
	return out
}

// MarginForRound returns the tolerance band for a 1-based round number:
// rounds 1-3 exact, 4-6 within 5%, 7-8 within 10%, 9 and later within 15%.
func MarginForRound(round int) float64 {
	switch {
	case round >= 9:
		return 0.15
	case round >= 7:
		return 0.10
	case round >= 4:
		return 0.05
	default:
		return 0
	}
}

// WithinTolerance reports whether result matches the goal for the given
// round. Zero-margin rounds require equality within a small epsilon;
// otherwise the result must fall inclusively inside
// [goal*(1-margin), goal*(1+margin)], with the bounds ordered so negative
// goals get the same band width as positive ones.
func WithinTolerance(result float64, goal float64, round int) bool {
	margin := MarginForRound(round)
	if margin == 0 {
		return math.Abs(result-goal) < exactEpsilon
	}
	lo := goal * (1 - margin)
	hi := goal * (1 + margin)
	if lo > hi {
		lo, hi = hi, lo
	}
	return result >= lo && result <= hi
}
