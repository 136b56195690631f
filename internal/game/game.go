// Package game implements the round/turn state machine: drawing a hand from
// the working deck, moving cards between hand and equation, judging
// submissions against the goal sequence, and advancing rounds until the game
// completes.
package game

import (
	"errors"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/baraclan/mathdeck/internal/card"
	"github.com/baraclan/mathdeck/internal/eval"
	"github.com/baraclan/mathdeck/internal/statistics"
)

// State is the machine's observable state
type State int

const (
	// AwaitingRound is the initial state, before Start is called.
	AwaitingRound State = iota
	// InPlay means a hand is drawn and the player is assembling an equation.
	InPlay
	// RoundAdvance is entered transiently when a goal is met, on the way to
	// the next round or to Completed.
	RoundAdvance
	// Completed is terminal: every goal has been reached.
	Completed
	// Halted is terminal: an outside arbiter ended the match before this
	// machine completed. No further transitions are accepted and no result
	// is recorded.
	Halted
)

// String returns the string representation of a state
func (s State) String() string {
	switch s {
	case AwaitingRound:
		return "awaiting-round"
	case InPlay:
		return "in-play"
	case RoundAdvance:
		return "round-advance"
	case Completed:
		return "completed"
	case Halted:
		return "halted"
	default:
		return "unknown"
	}
}

var (
	// ErrNotInPlay is returned by player actions outside the InPlay state.
	ErrNotInPlay = errors.New("game: no round in play")

	// ErrEmptyEquation is returned by Discard when nothing is placed.
	ErrEmptyEquation = errors.New("game: equation is empty")
)

// SubmitResult reports how a submission was judged
type SubmitResult struct {
	Value     int
	Err       error // evaluation failure, nil when the expression evaluated
	Accepted  bool
	Goal      float64
	Margin    float64
	Completed bool
}

// Game is one player's state machine. It owns a working copy of the player's
// deck for the duration of each round; the persistent deck is only ever read.
// All transitions run synchronously on the caller's goroutine.
type Game struct {
	rules  Rules
	logger *log.Logger
	rng    *rand.Rand

	// source is the player's persistent deck composition, copied into a
	// fresh working deck at every round start.
	source map[card.Card]int

	deck     *card.Deck
	hand     *card.Container
	equation *Equation
	bin      *card.Container

	state     State
	goalIndex int
	turn      int
	score     int

	subscribers []func(Event)

	recorder *statistics.Recorder
	username string
	mode     statistics.Mode
}

// Option configures a Game
type Option func(*Game)

// WithLogger sets the game's logger
func WithLogger(logger *log.Logger) Option {
	return func(g *Game) { g.logger = logger }
}

// WithRules overrides the default rules
func WithRules(rules Rules) Option {
	return func(g *Game) { g.rules = rules }
}

// WithRecorder wires session statistics: the game records a win for username
// under mode when it completes.
func WithRecorder(rec *statistics.Recorder, username string, mode statistics.Mode) Option {
	return func(g *Game) {
		g.recorder = rec
		g.username = username
		g.mode = mode
	}
}

// New creates a game over a copy of the given deck composition. Call Start
// to begin the first round.
func New(source map[card.Card]int, rng *rand.Rand, opts ...Option) *Game {
	g := &Game{
		rules:    DefaultRules(),
		logger:   log.New(nil),
		rng:      rng,
		source:   make(map[card.Card]int, len(source)),
		equation: NewEquation(),
		bin:      card.NewCollection("Card Bin"),
		state:    AwaitingRound,
	}
	for c, n := range source {
		if n > 0 {
			g.source[c] = n
		}
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Subscribe registers a callback invoked synchronously for every event.
func (g *Game) Subscribe(fn func(Event)) {
	g.subscribers = append(g.subscribers, fn)
}

func (g *Game) publish(e Event) {
	for _, fn := range g.subscribers {
		fn(e)
	}
}

// Start begins the first round
func (g *Game) Start() {
	if g.state != AwaitingRound {
		return
	}
	g.startRound()
}

// startRound copies the persistent deck into a fresh working deck, draws a
// hand, clears the equation and bin, and resets the turn counter.
func (g *Game) startRound() {
	g.deck = card.NewDeckFrom("Working Deck", g.source, g.rng)
	g.hand = DrawHand(g.deck, g.rules.HandCapacity)
	g.equation.Clear()
	g.bin = card.NewCollection("Card Bin")
	g.turn = 1
	g.state = InPlay

	g.logger.Debug("round started",
		"round", g.Round(),
		"goal", g.Goal(),
		"margin", g.Margin(),
		"hand", g.hand.Total(),
		"deck", g.deck.Total())

	g.publish(RoundStartEvent{
		Round:    g.Round(),
		Goal:     g.Goal(),
		Margin:   g.Margin(),
		HandSize: g.hand.Total(),
		DeckSize: g.deck.Total(),
	})
}

// Place moves one instance of a card type from the hand to the end of the
// equation line. Any card may go in any position; validity is only judged on
// submission.
func (g *Game) Place(c card.Card) error {
	if g.state != InPlay {
		return ErrNotInPlay
	}
	if err := card.Transfer(c, 1, g.hand, g.equation); err != nil {
		return err
	}
	g.publish(CardPlacedEvent{Card: c})
	return nil
}

// Unplace moves one instance of a card type from the equation line back to
// the hand, rightmost instance first.
func (g *Game) Unplace(c card.Card) error {
	if g.state != InPlay {
		return ErrNotInPlay
	}
	if err := card.Transfer(c, 1, g.equation, g.hand); err != nil {
		return err
	}
	g.publish(CardReturnedEvent{Card: c})
	return nil
}

// Submit evaluates the equation against the current goal. Whatever the
// outcome, the placed cards go to the bin, never back to the hand. A failed
// evaluation or an out-of-tolerance result costs a turn and refills the
// hand; a result inside the tolerance band scores, advances the goal, and
// either starts the next round or completes the game.
func (g *Game) Submit() (SubmitResult, error) {
	if g.state != InPlay {
		return SubmitResult{}, ErrNotInPlay
	}

	placed := g.equation.Cards()
	expr := eval.String(placed)
	value, evalErr := eval.Evaluate(placed)
	g.binEquation()

	res := SubmitResult{
		Value:  value,
		Err:    evalErr,
		Goal:   g.Goal(),
		Margin: g.Margin(),
	}

	if evalErr == nil && WithinTolerance(float64(value), g.Goal(), g.Round()) {
		res.Accepted = true
		g.score += g.rules.Award
		g.goalIndex++
		g.state = RoundAdvance

		g.logger.Info("goal reached", "expression", expr, "value", value, "score", g.score)
		g.publish(SubmitEvent{
			Expression: expr,
			Value:      value,
			Accepted:   true,
			Goal:       res.Goal,
			Margin:     res.Margin,
			Score:      g.score,
			Turn:       g.turn,
		})

		if g.goalIndex >= len(g.rules.Goals) {
			g.complete()
			res.Completed = true
		} else {
			g.startRound()
		}
		return res, nil
	}

	// Failed evaluation and out-of-tolerance results are handled
	// identically: cards are already binned, the attempt costs a turn, and
	// the hand refills from the working deck.
	g.turn++
	RefillToCapacity(g.hand, g.deck, g.rules.HandCapacity)

	if evalErr != nil {
		g.logger.Debug("invalid equation", "expression", expr, "err", evalErr)
	} else {
		g.logger.Debug("goal missed", "expression", expr, "value", value, "goal", res.Goal)
	}
	g.publish(SubmitEvent{
		Expression: expr,
		Value:      value,
		Err:        evalErr,
		Goal:       res.Goal,
		Margin:     res.Margin,
		Score:      g.score,
		Turn:       g.turn,
	})
	return res, nil
}

// Discard bins the equation line without evaluating it, costs a turn, and
// refills the hand. Only allowed while at least one card is placed.
func (g *Game) Discard() error {
	if g.state != InPlay {
		return ErrNotInPlay
	}
	if g.equation.IsEmpty() {
		return ErrEmptyEquation
	}
	binned := g.equation.Len()
	g.binEquation()
	g.turn++
	RefillToCapacity(g.hand, g.deck, g.rules.HandCapacity)
	g.publish(DiscardEvent{Binned: binned, Turn: g.turn})
	return nil
}

// binEquation moves every placed card to the bin and clears the line.
func (g *Game) binEquation() {
	for _, c := range g.equation.Cards() {
		_ = g.bin.Add(c, 1)
	}
	g.equation.Clear()
}

func (g *Game) complete() {
	g.state = Completed
	g.logger.Info("game completed", "score", g.score, "rounds", len(g.rules.Goals))
	if g.recorder != nil {
		g.recorder.RecordResult(g.username, g.mode, statistics.Win)
	}
	g.publish(CompletedEvent{Score: g.score, Rounds: len(g.rules.Goals)})
}

// Halt freezes the machine in the Halted state. A completed game stays
// Completed; its result has already been recorded.
func (g *Game) Halt() {
	if g.state == Completed || g.state == Halted {
		return
	}
	g.state = Halted
	g.logger.Debug("game halted", "round", g.Round(), "score", g.score)
}

// State returns the machine's current state
func (g *Game) State() State { return g.state }

// Round returns the 1-based current round number. Once completed it stays at
// the final round.
func (g *Game) Round() int {
	if g.goalIndex >= len(g.rules.Goals) {
		return len(g.rules.Goals)
	}
	return g.goalIndex + 1
}

// GoalIndex returns the 0-based index of the current goal
func (g *Game) GoalIndex() int { return g.goalIndex }

// Goal returns the current round's target value
func (g *Game) Goal() float64 {
	if g.goalIndex >= len(g.rules.Goals) {
		return g.rules.Goals[len(g.rules.Goals)-1]
	}
	return g.rules.Goals[g.goalIndex]
}

// RemainingGoals returns the goals not yet reached, current first.
func (g *Game) RemainingGoals() []float64 {
	if g.goalIndex >= len(g.rules.Goals) {
		return nil
	}
	out := make([]float64, len(g.rules.Goals)-g.goalIndex)
	copy(out, g.rules.Goals[g.goalIndex:])
	return out
}

// Margin returns the current round's tolerance margin
func (g *Game) Margin() float64 { return MarginForRound(g.Round()) }

// Turn returns the current turn count within the round
func (g *Game) Turn() int { return g.turn }

// Score returns the accumulated score
func (g *Game) Score() int { return g.score }

// Hand returns the player's current hand
func (g *Game) Hand() *card.Container { return g.hand }

// Deck returns the working deck for the current round
func (g *Game) Deck() *card.Deck { return g.deck }

// Equation returns the placed card sequence, left to right.
func (g *Game) Equation() []card.Card { return g.equation.Cards() }

// EquationLine returns the ordered equation store itself
func (g *Game) EquationLine() *Equation { return g.equation }

// Bin returns the scratch bin of submitted and discarded cards
func (g *Game) Bin() *card.Container { return g.bin }
