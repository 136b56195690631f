// Package duel runs the local two-player match: two independent game state
// machines race through a shared goal sequence against a shared stopwatch.
// The first machine to complete ends the match for both.
package duel

import (
	"context"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/baraclan/mathdeck/internal/card"
	"github.com/baraclan/mathdeck/internal/game"
	"github.com/baraclan/mathdeck/internal/statistics"
)

// MatchGoalCount is how many goals a duel is played to, drawn at random from
// the configured goal list and shared by both players.
const MatchGoalCount = 5

// Player identifies a side of the table
type Player int

const (
	Red Player = iota
	Blue
)

// String returns the string representation of a player
func (p Player) String() string {
	if p == Red {
		return "red"
	}
	return "blue"
}

// Mode returns the statistics mode for this side
func (p Player) Mode() statistics.Mode {
	if p == Red {
		return statistics.LocalMultiplayerRed
	}
	return statistics.LocalMultiplayerBlue
}

// Result is the outcome of a finished duel
type Result struct {
	Winner         Player
	Score          int
	ElapsedSeconds int
}

// Config describes a duel before it starts. Each side plays its own deck;
// the goal sequence and stopwatch are the only shared state.
type Config struct {
	Rules     game.Rules
	Decks     [2]map[card.Card]int
	Usernames [2]string
	Recorder  *statistics.Recorder
	Clock     quartz.Clock
	Logger    *log.Logger
}

// Session owns the two machines and the stopwatch
type Session struct {
	logger *log.Logger
	clock  quartz.Clock

	games     [2]*game.Game
	goals     []float64
	usernames [2]string
	recorder  *statistics.Recorder

	mu       sync.Mutex
	elapsed  int
	finished bool
	result   Result

	cancelTick context.CancelFunc
	done       chan struct{}
}

// NewSession builds a duel. The shared goal sequence is a random pick of
// MatchGoalCount goals from the configured list, identical for both sides.
func NewSession(cfg Config, rng *rand.Rand) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(nil)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = quartz.NewReal()
	}

	rules := cfg.Rules
	if len(rules.Goals) == 0 {
		rules = game.DefaultRules()
	}
	goals := pickGoals(rules.Goals, MatchGoalCount, rng)
	rules.Goals = goals

	s := &Session{
		logger:    logger,
		clock:     clock,
		goals:     goals,
		usernames: cfg.Usernames,
		recorder:  cfg.Recorder,
		done:      make(chan struct{}),
	}

	for _, p := range []Player{Red, Blue} {
		opts := []game.Option{
			game.WithRules(rules),
			game.WithLogger(logger.With("player", p.String())),
		}
		if cfg.Recorder != nil {
			opts = append(opts, game.WithRecorder(cfg.Recorder, cfg.Usernames[p], p.Mode()))
		}
		g := game.New(cfg.Decks[p], rng, opts...)
		player := p
		g.Subscribe(func(e game.Event) {
			if done, ok := e.(game.CompletedEvent); ok {
				s.finish(player, done.Score)
			}
		})
		s.games[p] = g
	}
	return s
}

// pickGoals returns n goals chosen without replacement in shuffled order.
func pickGoals(goals []float64, n int, rng *rand.Rand) []float64 {
	if n > len(goals) {
		n = len(goals)
	}
	perm := rng.Perm(len(goals))
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = goals[perm[i]]
	}
	return out
}

// Start begins both games and the stopwatch. The stopwatch ticks once per
// second until the match finishes or ctx is cancelled.
func (s *Session) Start(ctx context.Context) {
	tickCtx, cancel := context.WithCancel(ctx)
	s.cancelTick = cancel

	s.games[Red].Start()
	s.games[Blue].Start()

	tick := s.clock.TickerFunc(tickCtx, time.Second, func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.finished {
			s.elapsed++
		}
		return nil
	}, "duel-stopwatch")
	go func() {
		// Wait returns once the ticker context is cancelled.
		_ = tick.Wait()
	}()
}

// finish records the winner and stops the stopwatch. Only the first
// completion counts; later calls are no-ops.
func (s *Session) finish(winner Player, score int) {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return
	}
	s.finished = true
	s.result = Result{Winner: winner, Score: score, ElapsedSeconds: s.elapsed}
	s.mu.Unlock()

	if s.cancelTick != nil {
		s.cancelTick()
	}

	loser := Blue
	if winner == Blue {
		loser = Red
	}
	// Freeze the losing machine: the match is over, so it takes no further
	// transitions and can never record a win of its own.
	s.games[loser].Halt()
	if s.recorder != nil {
		// The winner's game already recorded its win; the loser never
		// completes, so the session records the loss.
		s.recorder.RecordResult(s.usernames[loser], loser.Mode(), statistics.Loss)
	}

	s.logger.Info("duel finished",
		"winner", winner.String(),
		"score", s.result.Score,
		"elapsed_seconds", s.result.ElapsedSeconds)
	close(s.done)
}

// Game returns one side's state machine
func (s *Session) Game(p Player) *game.Game {
	return s.games[p]
}

// Goals returns the shared goal sequence
func (s *Session) Goals() []float64 {
	out := make([]float64, len(s.goals))
	copy(out, s.goals)
	return out
}

// Elapsed returns the stopwatch reading in seconds
func (s *Session) Elapsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

// Done is closed when the match finishes
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Result returns the match result once the duel has finished
func (s *Session) Result() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.finished
}
