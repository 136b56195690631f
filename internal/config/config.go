// Package config loads the game's HCL configuration: the goal sequence, hand
// capacity, scoring, and named starting-deck compositions.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/baraclan/mathdeck/internal/card"
	"github.com/baraclan/mathdeck/internal/game"
)

// Config is the complete game configuration
type Config struct {
	Game  GameSettings `hcl:"game,block"`
	Decks []DeckConfig `hcl:"deck,block"`
}

// GameSettings contains round and scoring configuration
type GameSettings struct {
	Goals          []float64 `hcl:"goals,optional"`
	HandCapacity   int       `hcl:"hand_capacity,optional"`
	GoalAward      int       `hcl:"goal_award,optional"`
	TutorialRounds int       `hcl:"tutorial_rounds,optional"`
}

// DeckConfig defines a named starting-deck composition. Card keys use the
// short form: "0".."9", "+", "-", "*", "/".
type DeckConfig struct {
	Name  string         `hcl:"name,label"`
	Cards map[string]int `hcl:"cards"`
}

// Default returns the built-in configuration: the standard ten-goal
// sequence, eight-card hands, 100 points per goal, and the starter deck of
// two of each of the fourteen card types.
func Default() *Config {
	starter := make(map[string]int, 14)
	for _, c := range card.AllTypes() {
		starter[c.String()] = 2
	}
	return &Config{
		Game: GameSettings{
			Goals:          game.DefaultGoals,
			HandCapacity:   game.HandCapacity,
			GoalAward:      game.GoalAward,
			TutorialRounds: 3,
		},
		Decks: []DeckConfig{
			{Name: "starter", Cards: starter},
		},
	}
}

// Load parses an HCL configuration file. An absent file and missing optional
// settings both fall back to the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse config: %s", diags.Error())
	}

	cfg := &Config{}
	if diags := gohcl.DecodeBody(file.Body, nil, cfg); diags.HasErrors() {
		return nil, fmt.Errorf("decode config: %s", diags.Error())
	}

	defaults := Default()
	if len(cfg.Game.Goals) == 0 {
		cfg.Game.Goals = defaults.Game.Goals
	}
	if cfg.Game.HandCapacity <= 0 {
		cfg.Game.HandCapacity = defaults.Game.HandCapacity
	}
	if cfg.Game.GoalAward <= 0 {
		cfg.Game.GoalAward = defaults.Game.GoalAward
	}
	if cfg.Game.TutorialRounds <= 0 {
		cfg.Game.TutorialRounds = defaults.Game.TutorialRounds
	}
	if len(cfg.Decks) == 0 {
		cfg.Decks = defaults.Decks
	}
	return cfg, nil
}

// Rules converts the settings into game rules
func (c *Config) Rules() game.Rules {
	return game.Rules{
		Goals:        c.Game.Goals,
		HandCapacity: c.Game.HandCapacity,
		Award:        c.Game.GoalAward,
	}
}

// DeckCounts resolves a named deck block into a card-type composition.
// Falls back to the first configured deck when name is empty.
func (c *Config) DeckCounts(name string) (map[card.Card]int, error) {
	var dc *DeckConfig
	if name == "" && len(c.Decks) > 0 {
		dc = &c.Decks[0]
	} else {
		for i := range c.Decks {
			if c.Decks[i].Name == name {
				dc = &c.Decks[i]
				break
			}
		}
	}
	if dc == nil {
		return nil, fmt.Errorf("config: no deck named %q", name)
	}

	counts := make(map[card.Card]int, len(dc.Cards))
	for key, n := range dc.Cards {
		if n <= 0 {
			continue
		}
		c, err := card.Parse(key)
		if err != nil {
			return nil, fmt.Errorf("config: deck %q: %w", dc.Name, err)
		}
		counts[c] += n
	}
	return counts, nil
}
