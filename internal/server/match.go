package server

import (
	"errors"
	"sync"
	"time"

	"github.com/coder/quartz"

	"github.com/baraclan/mathdeck/internal/protocol"
)

// match pairs two connections racing through the same goal sequence. The
// relay's only authority is timing: the first Finished it sees wins.
type match struct {
	code  string
	clock quartz.Clock

	mu        sync.Mutex
	players   []*connection
	usernames map[*connection]string
	startedAt time.Time
	started   bool
	done      bool
}

func newMatch(code string, clock quartz.Clock) *match {
	return &match{
		code:      code,
		clock:     clock,
		usernames: make(map[*connection]string),
	}
}

// add registers a player. The second return is true when the match just
// filled and should start.
func (m *match) add(conn *connection, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.players) >= 2 {
		return false, errors.New("match is full")
	}
	for _, existing := range m.players {
		if m.usernames[existing] == username {
			return false, errors.New("username already taken in this match")
		}
	}
	m.players = append(m.players, conn)
	m.usernames[conn] = username
	return len(m.players) == 2, nil
}

// start notifies both players and starts the match clock
func (m *match) start() {
	m.mu.Lock()
	if m.started || len(m.players) != 2 {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.startedAt = m.clock.Now()
	players := append([]*connection(nil), m.players...)
	names := []string{m.usernames[players[0]], m.usernames[players[1]]}
	m.mu.Unlock()

	players[0].send(protocol.TypeMatchStart, protocol.MatchStart{Match: m.code, Opponent: names[1]})
	players[1].send(protocol.TypeMatchStart, protocol.MatchStart{Match: m.code, Opponent: names[0]})
}

// relayProgress forwards one player's progress to the other
func (m *match) relayProgress(from *connection, prog protocol.Progress) {
	m.mu.Lock()
	opponent := m.opponentLocked(from)
	username := m.usernames[from]
	m.mu.Unlock()

	if opponent == nil {
		return
	}
	opponent.send(protocol.TypeOpponentProgress, protocol.OpponentProgress{
		Username: username,
		Round:    prog.Round,
		Score:    prog.Score,
		Turn:     prog.Turn,
	})
}

// finish settles the match for the first Finished received. Returns true
// when this call decided the match.
func (m *match) finish(from *connection, fin protocol.Finished) bool {
	m.mu.Lock()
	if m.done || !m.started {
		m.mu.Unlock()
		return false
	}
	m.done = true
	winner := m.usernames[from]
	elapsed := int(m.clock.Since(m.startedAt) / time.Second)
	players := append([]*connection(nil), m.players...)
	m.mu.Unlock()

	for _, p := range players {
		p.send(protocol.TypeMatchResult, protocol.MatchResult{
			Winner:         winner,
			Score:          fin.Score,
			ElapsedSeconds: elapsed,
			You:            p == from,
		})
	}
	return true
}

// forfeit settles the match when a player disconnects mid-game. Returns true
// when the remaining player was declared the winner.
func (m *match) forfeit(gone *connection) bool {
	m.mu.Lock()
	if m.done || !m.started {
		m.mu.Unlock()
		return false
	}
	m.done = true
	opponent := m.opponentLocked(gone)
	winner := ""
	if opponent != nil {
		winner = m.usernames[opponent]
	}
	elapsed := int(m.clock.Since(m.startedAt) / time.Second)
	m.mu.Unlock()

	if opponent == nil {
		return false
	}
	opponent.send(protocol.TypeMatchResult, protocol.MatchResult{
		Winner:         winner,
		ElapsedSeconds: elapsed,
		You:            true,
	})
	return true
}

func (m *match) opponentLocked(conn *connection) *connection {
	for _, p := range m.players {
		if p != conn {
			return p
		}
	}
	return nil
}
