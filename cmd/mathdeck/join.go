package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/baraclan/mathdeck/cmd/mathdeck/shared"
	"github.com/baraclan/mathdeck/internal/client"
	"github.com/baraclan/mathdeck/internal/game"
	"github.com/baraclan/mathdeck/internal/protocol"
	"github.com/baraclan/mathdeck/internal/statistics"
	"github.com/baraclan/mathdeck/internal/tui"
)

// JoinCmd plays an online duel through a relay server
type JoinCmd struct {
	Server  string `kong:"default='ws://localhost:8080/ws',help='WebSocket relay URL'"`
	Match   string `kong:"default='default',help='Match code to join'"`
	Name    string `kong:"default='player',help='Display name'"`
	Config  string `kong:"help='Config file path (HCL)'"`
	Deck    string `kong:"default='',help='Deck to play'"`
	Seed    *int64 `kong:"help='Deterministic RNG seed (optional)'"`
	Debug   bool   `kong:"help='Enable debug logging'"`
	LogFile string `kong:"help='Write game logs to this file'"`
}

func (c *JoinCmd) Run() error {
	logger, closer := shared.SetupGameLogger(c.LogFile, c.Debug)
	if closer != nil {
		defer closer.Close()
	}

	cfg, err := loadConfig(c.Config)
	if err != nil {
		return err
	}
	counts, err := resolveDeck(cfg, c.Deck)
	if err != nil {
		return err
	}

	ctx := shared.SetupSignalHandler()

	// Relay events arrive on the client's read goroutine before the TUI
	// program exists, so they are buffered and pumped in once it does.
	startCh := make(chan protocol.MatchStart, 1)
	progressCh := make(chan protocol.OpponentProgress, 16)
	resultCh := make(chan protocol.MatchResult, 1)
	errCh := make(chan protocol.Error, 4)

	handler := client.Handler{
		OnMatchStart:       func(ms protocol.MatchStart) { startCh <- ms },
		OnOpponentProgress: func(op protocol.OpponentProgress) { progressCh <- op },
		OnMatchResult:      func(mr protocol.MatchResult) { resultCh <- mr },
		OnError:            func(e protocol.Error) { errCh <- e },
	}

	relay, err := client.Dial(ctx, c.Server, c.Match, c.Name, handler, logger)
	if err != nil {
		return err
	}
	defer relay.Close()

	fmt.Printf("Joined match %q as %s, waiting for an opponent...\n", c.Match, c.Name)

	var start protocol.MatchStart
	select {
	case start = <-startCh:
	case e := <-errCh:
		return fmt.Errorf("relay: %s", e.Message)
	case <-relay.Done():
		return fmt.Errorf("relay closed the connection")
	case <-ctx.Done():
		return ctx.Err()
	}

	recorder := statistics.NewRecorder()
	rng := newRNG(c.Seed)
	startedAt := time.Now()

	onSubmit := func(res game.SubmitResult, g *game.Game) {
		if res.Completed {
			relay.SendFinished(g.Score(), int(time.Since(startedAt)/time.Second))
			return
		}
		if res.Accepted {
			relay.SendProgress(g.Round(), g.Score(), g.Turn())
		}
	}

	// The relay decides the outcome, so the match result handler records
	// statistics rather than the game itself.
	g := game.New(counts, rng,
		game.WithRules(cfg.Rules()),
		game.WithLogger(logger),
	)
	g.Start()

	program := tea.NewProgram(tui.NewOnline(g, start.Opponent, onSubmit, logger), tea.WithAltScreen())

	go func() {
		for {
			select {
			case op := <-progressCh:
				program.Send(tui.OpponentProgressMsg{Username: op.Username, Round: op.Round, Score: op.Score})
			case mr := <-resultCh:
				program.Send(tui.MatchResultMsg{Winner: mr.Winner, You: mr.You, ElapsedSeconds: mr.ElapsedSeconds})
				outcome := statistics.Loss
				if mr.You {
					outcome = statistics.Win
				}
				recorder.RecordResult(c.Name, statistics.OnlineMultiplayer, outcome)
			case e := <-errCh:
				logger.Error("relay error", "message", e.Message)
			case <-relay.Done():
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run game: %w", err)
	}

	printStats(recorder, c.Name)
	return nil
}
