// Package statistics tracks per-user win/loss/tie counters for the current
// session, split by game mode. Counters live for the session only; nothing
// here touches disk.
package statistics

import "sync"

// Mode identifies which game variant a result belongs to
type Mode int

const (
	SinglePlayer Mode = iota
	LocalMultiplayerRed
	LocalMultiplayerBlue
	OnlineMultiplayer
)

// String returns the string representation of a mode
func (m Mode) String() string {
	switch m {
	case SinglePlayer:
		return "single-player"
	case LocalMultiplayerRed:
		return "local-multiplayer-red"
	case LocalMultiplayerBlue:
		return "local-multiplayer-blue"
	case OnlineMultiplayer:
		return "online-multiplayer"
	default:
		return "unknown"
	}
}

// Outcome is the result of a completed match
type Outcome int

const (
	Win Outcome = iota
	Loss
	Tie
)

// String returns the string representation of an outcome
func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Loss:
		return "loss"
	case Tie:
		return "tie"
	default:
		return "unknown"
	}
}

// Counters holds win/loss/tie tallies for one mode
type Counters struct {
	Wins   int
	Losses int
	Ties   int
}

// Total returns the number of games recorded in these counters
func (c Counters) Total() int {
	return c.Wins + c.Losses + c.Ties
}

// Snapshot is a point-in-time copy of one user's counters across all modes
type Snapshot struct {
	Username string
	ByMode   map[Mode]Counters
}

// TotalGames returns the number of games recorded across all modes
func (s Snapshot) TotalGames() int {
	total := 0
	for _, c := range s.ByMode {
		total += c.Total()
	}
	return total
}

// Recorder accumulates session statistics keyed by username. Safe for
// concurrent use; the duel mode's two machines may complete close together.
type Recorder struct {
	mu    sync.Mutex
	users map[string]map[Mode]Counters
}

// NewRecorder creates an empty session recorder
func NewRecorder() *Recorder {
	return &Recorder{
		users: make(map[string]map[Mode]Counters),
	}
}

// RecordResult tallies one completed match for the user. Called exactly once
// per completed match by whoever owns the game instance.
func (r *Recorder) RecordResult(username string, mode Mode, outcome Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	byMode, ok := r.users[username]
	if !ok {
		byMode = make(map[Mode]Counters)
		r.users[username] = byMode
	}
	c := byMode[mode]
	switch outcome {
	case Win:
		c.Wins++
	case Loss:
		c.Losses++
	case Tie:
		c.Ties++
	}
	byMode[mode] = c
}

// Read returns a copy of the user's counters. The second return is false if
// the user has no recorded results yet.
func (r *Recorder) Read(username string) (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	byMode, ok := r.users[username]
	snap := Snapshot{Username: username, ByMode: make(map[Mode]Counters, len(byMode))}
	for m, c := range byMode {
		snap.ByMode[m] = c
	}
	return snap, ok
}
