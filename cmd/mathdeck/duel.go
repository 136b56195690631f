package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/baraclan/mathdeck/cmd/mathdeck/shared"
	"github.com/baraclan/mathdeck/internal/card"
	"github.com/baraclan/mathdeck/internal/duel"
	"github.com/baraclan/mathdeck/internal/statistics"
	"github.com/baraclan/mathdeck/internal/tui"
)

// DuelCmd runs a local two-player duel on one terminal
type DuelCmd struct {
	Config   string `kong:"help='Config file path (HCL)'"`
	RedDeck  string `kong:"default='',help='Deck for the red player'"`
	BlueDeck string `kong:"default='',help='Deck for the blue player'"`
	RedName  string `kong:"default='red',help='Red player name'"`
	BlueName string `kong:"default='blue',help='Blue player name'"`
	Seed     *int64 `kong:"help='Deterministic RNG seed (optional)'"`
	Debug    bool   `kong:"help='Enable debug logging'"`
	LogFile  string `kong:"help='Write game logs to this file'"`
}

func (c *DuelCmd) Run() error {
	logger, closer := shared.SetupGameLogger(c.LogFile, c.Debug)
	if closer != nil {
		defer closer.Close()
	}

	cfg, err := loadConfig(c.Config)
	if err != nil {
		return err
	}

	var decks [2]map[card.Card]int
	for i, name := range []string{c.RedDeck, c.BlueDeck} {
		counts, err := resolveDeck(cfg, name)
		if err != nil {
			return err
		}
		decks[i] = counts
	}

	recorder := statistics.NewRecorder()
	session := duel.NewSession(duel.Config{
		Rules:     cfg.Rules(),
		Decks:     decks,
		Usernames: [2]string{c.RedName, c.BlueName},
		Recorder:  recorder,
		Logger:    logger,
	}, newRNG(c.Seed))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	session.Start(ctx)

	program := tea.NewProgram(tui.NewDuel(session, logger), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run duel: %w", err)
	}

	if result, ok := session.Result(); ok {
		fmt.Printf("%s wins with %d points in %s\n",
			result.Winner, result.Score, tui.FormatClock(result.ElapsedSeconds))
	}
	return nil
}
