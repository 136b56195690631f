package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	rand "math/rand/v2"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/baraclan/mathdeck/cmd/mathdeck/shared"
	"github.com/baraclan/mathdeck/internal/card"
	"github.com/baraclan/mathdeck/internal/config"
	"github.com/baraclan/mathdeck/internal/deckstore"
	"github.com/baraclan/mathdeck/internal/game"
	"github.com/baraclan/mathdeck/internal/randutil"
	"github.com/baraclan/mathdeck/internal/statistics"
	"github.com/baraclan/mathdeck/internal/tui"
)

// PlayCmd runs the full single-player game
type PlayCmd struct {
	Config  string `kong:"help='Config file path (HCL)'"`
	Deck    string `kong:"default='',help='Deck to play (saved deck or config deck; default is the first configured deck)'"`
	Name    string `kong:"default='player',help='Name used for the statistics ledger'"`
	Seed    *int64 `kong:"help='Deterministic RNG seed (optional)'"`
	Debug   bool   `kong:"help='Enable debug logging'"`
	LogFile string `kong:"help='Write game logs to this file'"`
}

func (c *PlayCmd) Run() error {
	return runSinglePlayer(c.Config, c.Deck, c.Name, c.Seed, c.Debug, c.LogFile, false)
}

// TutorialCmd runs a shortened game over the first few goals
type TutorialCmd struct {
	Config  string `kong:"help='Config file path (HCL)'"`
	Deck    string `kong:"default='',help='Deck to play'"`
	Name    string `kong:"default='player',help='Name used for the statistics ledger'"`
	Seed    *int64 `kong:"help='Deterministic RNG seed (optional)'"`
	Debug   bool   `kong:"help='Enable debug logging'"`
	LogFile string `kong:"help='Write game logs to this file'"`
}

func (c *TutorialCmd) Run() error {
	return runSinglePlayer(c.Config, c.Deck, c.Name, c.Seed, c.Debug, c.LogFile, true)
}

// runSinglePlayer wires config, deck, rng and statistics into one game and
// hands it to the TUI.
func runSinglePlayer(configPath, deckName, username string, seed *int64, debug bool, logFile string, tutorial bool) error {
	logger, closer := shared.SetupGameLogger(logFile, debug)
	if closer != nil {
		defer closer.Close()
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	rules := cfg.Rules()
	if tutorial {
		rules = rules.Tutorial(cfg.Game.TutorialRounds)
	}

	counts, err := resolveDeck(cfg, deckName)
	if err != nil {
		return err
	}

	rng := newRNG(seed)
	recorder := statistics.NewRecorder()

	g := game.New(counts, rng,
		game.WithRules(rules),
		game.WithLogger(logger),
		game.WithRecorder(recorder, username, statistics.SinglePlayer),
	)
	g.Start()

	program := tea.NewProgram(tui.NewSingle(g, logger), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run game: %w", err)
	}

	printStats(recorder, username)
	return nil
}

// loadConfig reads the config file, falling back to the default search path
// and then to built-in defaults when no file exists.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = shared.DefaultConfigPath()
	}
	return config.Load(path)
}

// resolveDeck looks a deck name up in the saved-decks store first, then in
// the config blocks. An empty name selects the first configured deck.
func resolveDeck(cfg *config.Config, name string) (map[card.Card]int, error) {
	if name != "" {
		store := deckstore.New(decksPath(), shared.SetupLogger(false))
		if deck, err := store.Get(name); err == nil {
			return deck.Cards, nil
		} else if !errors.Is(err, deckstore.ErrNotFound) {
			return nil, err
		}
	}
	return cfg.DeckCounts(name)
}

func decksPath() string {
	return filepath.Join(shared.DataDir(), "decks.json")
}

func newRNG(seed *int64) *rand.Rand {
	if seed != nil {
		return randutil.New(*seed)
	}
	return randutil.New(time.Now().UnixNano())
}

func printStats(rec *statistics.Recorder, username string) {
	snap, ok := rec.Read(username)
	if !ok {
		return
	}
	for mode, counters := range snap.ByMode {
		fmt.Printf("%s: %d won, %d lost, %d tied\n", mode, counters.Wins, counters.Losses, counters.Ties)
	}
}
