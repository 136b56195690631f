// Package tui renders the game in the terminal. It is a thin shell over the
// game state machine: every key press maps to one machine transition, and
// the view re-renders from machine state plus the event log. No game rules
// live here.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/baraclan/mathdeck/internal/card"
	"github.com/baraclan/mathdeck/internal/duel"
	"github.com/baraclan/mathdeck/internal/eval"
	"github.com/baraclan/mathdeck/internal/game"
)

const maxLogLines = 6

// TickMsg drives the stopwatch display refresh in duel mode
type TickMsg time.Time

// OpponentProgressMsg reports the remote opponent's progress (online mode)
type OpponentProgressMsg struct {
	Username string
	Round    int
	Score    int
}

// MatchResultMsg reports the online match outcome
type MatchResultMsg struct {
	Winner         string
	You            bool
	ElapsedSeconds int
}

// Model is the Bubble Tea model for all three play modes
type Model struct {
	logger *log.Logger
	keys   KeyMap

	// games[0] is the only entry outside local duel mode.
	games   []*game.Game
	session *duel.Session // nil outside local duel mode
	active  duel.Player

	// Online mode state
	online       bool
	opponentName string
	opponentInfo string
	matchOver    bool
	matchBanner  string

	// onSubmit lets the online runner forward progress to the relay.
	onSubmit func(res game.SubmitResult, g *game.Game)

	cursor   int
	gameLog  *logBuffer
	quitting bool
	width    int
}

// logBuffer is shared by every copy of the model so event subscriptions
// registered at construction keep writing to the buffer the view reads.
type logBuffer struct {
	lines []string
}

func (b *logBuffer) push(line string) {
	b.lines = append(b.lines, line)
	if len(b.lines) > maxLogLines {
		b.lines = b.lines[len(b.lines)-maxLogLines:]
	}
}

// NewSingle builds a model for single-player and tutorial games
func NewSingle(g *game.Game, logger *log.Logger) Model {
	m := newModel(logger)
	m.games = []*game.Game{g}
	m.subscribe(g, "")
	return m
}

// NewDuel builds a model for the local two-player match
func NewDuel(session *duel.Session, logger *log.Logger) Model {
	m := newModel(logger)
	m.session = session
	m.games = []*game.Game{session.Game(duel.Red), session.Game(duel.Blue)}
	m.subscribe(m.games[0], "red: ")
	m.subscribe(m.games[1], "blue: ")
	return m
}

// NewOnline builds a model for an online duel. onSubmit runs after every
// submission so the runner can forward progress to the relay.
func NewOnline(g *game.Game, opponent string, onSubmit func(game.SubmitResult, *game.Game), logger *log.Logger) Model {
	m := newModel(logger)
	m.games = []*game.Game{g}
	m.online = true
	m.opponentName = opponent
	m.onSubmit = onSubmit
	m.subscribe(g, "")
	return m
}

func newModel(logger *log.Logger) Model {
	return Model{
		logger:  logger,
		keys:    DefaultKeyMap(),
		gameLog: &logBuffer{},
	}
}

// subscribe mirrors game events into the on-screen log. All transitions run
// inside Update, so appending here is safe.
func (m *Model) subscribe(g *game.Game, prefix string) {
	g.Subscribe(func(e game.Event) {
		switch ev := e.(type) {
		case game.RoundStartEvent:
			m.pushLog(fmt.Sprintf("%sround %d: goal %s", prefix, ev.Round, formatGoal(ev.Goal, ev.Margin)))
		case game.SubmitEvent:
			if ev.Err != nil {
				m.pushLog(fmt.Sprintf("%sinvalid equation (%s)", prefix, ev.Expression))
			} else if ev.Accepted {
				m.pushLog(fmt.Sprintf("%s%s = %d, goal reached!", prefix, ev.Expression, ev.Value))
			} else {
				m.pushLog(fmt.Sprintf("%s%s = %d, missed goal %g", prefix, ev.Expression, ev.Value, ev.Goal))
			}
		case game.DiscardEvent:
			m.pushLog(fmt.Sprintf("%sdiscarded %d cards", prefix, ev.Binned))
		case game.CompletedEvent:
			m.pushLog(fmt.Sprintf("%sall goals reached, final score %d", prefix, ev.Score))
		}
	})
}

func (m Model) pushLog(line string) {
	m.gameLog.push(line)
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	if m.session != nil {
		return tickCmd()
	}
	return nil
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case TickMsg:
		if m.session != nil {
			if _, finished := m.session.Result(); !finished {
				return m, tickCmd()
			}
		}
		return m, nil

	case OpponentProgressMsg:
		m.opponentInfo = fmt.Sprintf("%s: round %d, score %d", msg.Username, msg.Round, msg.Score)
		return m, nil

	case MatchResultMsg:
		m.matchOver = true
		if msg.You {
			m.matchBanner = fmt.Sprintf("You win! (%s)", FormatClock(msg.ElapsedSeconds))
		} else {
			m.matchBanner = fmt.Sprintf("%s wins (%s)", msg.Winner, FormatClock(msg.ElapsedSeconds))
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	if m.matchOver {
		return m, nil
	}
	if m.session != nil {
		if _, finished := m.session.Result(); finished {
			return m, nil
		}
	}

	if m.session != nil && key.Matches(msg, m.keys.Switch) {
		if m.active == duel.Red {
			m.active = duel.Blue
		} else {
			m.active = duel.Red
		}
		m.cursor = 0
		return m, nil
	}

	g := m.activeGame()
	if g.State() == game.Completed {
		return m, nil
	}
	hand := g.Hand().AsList()

	switch {
	case key.Matches(msg, m.keys.Left):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Right):
		if m.cursor < len(hand)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Place):
		if m.cursor < len(hand) {
			if err := g.Place(hand[m.cursor]); err != nil {
				m.pushLog(ErrorStyle.Render(err.Error()))
			}
			m.clampCursor(g)
		}
	case key.Matches(msg, m.keys.Unplace):
		placed := g.Equation()
		if len(placed) > 0 {
			if err := g.Unplace(placed[len(placed)-1]); err != nil {
				m.pushLog(ErrorStyle.Render(err.Error()))
			}
		}
	case key.Matches(msg, m.keys.Submit):
		res, err := g.Submit()
		if err != nil {
			m.pushLog(ErrorStyle.Render(err.Error()))
			break
		}
		if m.onSubmit != nil {
			m.onSubmit(res, g)
		}
		m.clampCursor(g)
		if m.session == nil && !m.online && g.State() == game.Completed {
			// Single-player ends at completion; leave the final screen up.
			return m, nil
		}
	case key.Matches(msg, m.keys.Discard):
		if err := g.Discard(); err != nil {
			m.pushLog(ErrorStyle.Render(err.Error()))
		}
		m.clampCursor(g)
	}
	return m, nil
}

func (m *Model) clampCursor(g *game.Game) {
	if n := g.Hand().Total(); m.cursor >= n && n > 0 {
		m.cursor = n - 1
	} else if n == 0 {
		m.cursor = 0
	}
}

func (m Model) activeGame() *game.Game {
	if m.session != nil {
		return m.session.Game(m.active)
	}
	return m.games[0]
}

// View implements tea.Model
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("mathdeck"))
	b.WriteString("\n\n")

	if m.session != nil {
		b.WriteString(m.duelHeader())
	}
	if m.online {
		b.WriteString(m.onlineHeader())
	}

	g := m.activeGame()
	b.WriteString(m.renderGame(g))

	if m.matchBanner != "" {
		b.WriteString("\n" + WinnerStyle.Render(m.matchBanner) + "\n")
	} else if g.State() == game.Completed && m.session == nil && !m.online {
		b.WriteString("\n" + WinnerStyle.Render(fmt.Sprintf("Congratulations! Final score: %d", g.Score())) + "\n")
	}

	if len(m.gameLog.lines) > 0 {
		b.WriteString("\n" + LogStyle.Render(strings.Join(m.gameLog.lines, "\n")) + "\n")
	}
	b.WriteString("\n" + HelpStyle.Render(m.helpLine()))
	return b.String()
}

func (m Model) duelHeader() string {
	res, finished := m.session.Result()
	if finished {
		return WinnerStyle.Render(fmt.Sprintf("%s wins in %s, score %d",
			res.Winner, FormatClock(res.ElapsedSeconds), res.Score)) + "\n\n"
	}
	return StatusStyle.Render(fmt.Sprintf("⏱ %s  playing: %s",
		FormatClock(m.session.Elapsed()), m.active)) + "\n\n"
}

func (m Model) onlineHeader() string {
	line := fmt.Sprintf("vs %s", m.opponentName)
	if m.opponentInfo != "" {
		line += "  ·  " + m.opponentInfo
	}
	return StatusStyle.Render(line) + "\n\n"
}

func (m Model) renderGame(g *game.Game) string {
	var b strings.Builder

	totalRounds := g.Round() + len(g.RemainingGoals()) - 1
	if g.State() == game.Completed {
		totalRounds = g.Round()
	}
	b.WriteString(StatusStyle.Render(fmt.Sprintf("Score: %d   Turn: %d   Round: %d/%d",
		g.Score(), g.Turn(), g.Round(), totalRounds)))
	b.WriteString("\n")
	b.WriteString(GoalStyle.Render("Goal: " + formatGoal(g.Goal(), g.Margin())))
	b.WriteString("\n\n")

	placed := g.Equation()
	eqLine := "Equation: "
	if len(placed) == 0 {
		eqLine += "(empty)"
	} else {
		eqLine += eval.String(placed)
		if v, err := eval.Evaluate(placed); err == nil {
			eqLine += ResultStyle.Render(fmt.Sprintf("  = %d", v))
		} else {
			eqLine += ErrorStyle.Render("  (invalid)")
		}
	}
	b.WriteString(EquationStyle.Render(eqLine))
	b.WriteString("\n\n")

	b.WriteString(m.renderHand(g))
	b.WriteString("\n")
	b.WriteString(StatusStyle.Render(fmt.Sprintf("Deck: %d cards remaining", g.Deck().Total())))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderHand(g *game.Game) string {
	hand := g.Hand().AsList()
	if len(hand) == 0 {
		return StatusStyle.Render("Hand: (empty)")
	}
	cells := make([]string, len(hand))
	for i, c := range hand {
		style := CardStyle
		if i == m.cursor {
			style = SelectedCardStyle
		}
		cells[i] = style.Render(c.String())
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, cells...)
}

func (m Model) helpLine() string {
	parts := []string{
		m.keys.Left.Help().Key + "/" + m.keys.Right.Help().Key + " select",
		m.keys.Place.Help().Key + " place",
		m.keys.Unplace.Help().Key + " take back",
		m.keys.Submit.Help().Key + " submit",
		m.keys.Discard.Help().Key + " discard",
	}
	if m.session != nil {
		parts = append(parts, m.keys.Switch.Help().Key+" switch")
	}
	parts = append(parts, m.keys.Quit.Help().Key+" quit")
	return strings.Join(parts, "  ·  ")
}

func formatGoal(goal, margin float64) string {
	if margin == 0 {
		return fmt.Sprintf("%g (exact)", goal)
	}
	return fmt.Sprintf("%g (±%g%%)", goal, margin*100)
}

// FormatClock renders a stopwatch value as mm:ss.
func FormatClock(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// FormatHandList renders a hand for plain (non-TUI) logs.
func FormatHandList(cards []card.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
