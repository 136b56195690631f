package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baraclan/mathdeck/internal/card"
	"github.com/baraclan/mathdeck/internal/game"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
game {
  goals           = [10, 20, 30]
  hand_capacity   = 6
  goal_award      = 50
  tutorial_rounds = 2
}

deck "practice" {
  cards = {
    "5" = 4
    "+" = 2
  }
}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []float64{10, 20, 30}, cfg.Game.Goals)
	assert.Equal(t, 6, cfg.Game.HandCapacity)
	assert.Equal(t, 50, cfg.Game.GoalAward)
	assert.Equal(t, 2, cfg.Game.TutorialRounds)

	rules := cfg.Rules()
	assert.Equal(t, []float64{10, 20, 30}, rules.Goals)
	assert.Equal(t, 6, rules.HandCapacity)
	assert.Equal(t, 50, rules.Award)

	counts, err := cfg.DeckCounts("practice")
	require.NoError(t, err)
	assert.Equal(t, map[card.Card]int{
		card.NewNumber(5):          4,
		card.NewOperator(card.Add): 2,
	}, counts)
}

func TestLoadPartialConfigFallsBack(t *testing.T) {
	path := writeConfig(t, `
game {
  goals = [7]
}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []float64{7}, cfg.Game.Goals)
	assert.Equal(t, game.HandCapacity, cfg.Game.HandCapacity)
	assert.Equal(t, game.GoalAward, cfg.Game.GoalAward)
	require.NotEmpty(t, cfg.Decks)
	assert.Equal(t, "starter", cfg.Decks[0].Name)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejectsBadSyntax(t *testing.T) {
	path := writeConfig(t, `game {`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestDeckCountsUnknownName(t *testing.T) {
	cfg := Default()
	_, err := cfg.DeckCounts("missing")
	assert.Error(t, err)
}

func TestDeckCountsDefaultDeck(t *testing.T) {
	cfg := Default()
	counts, err := cfg.DeckCounts("")
	require.NoError(t, err)

	total := 0
	for _, n := range counts {
		total += n
	}
	assert.Equal(t, 28, total)
	assert.Len(t, counts, len(card.AllTypes()))
}

func TestDeckCountsRejectsBadCard(t *testing.T) {
	cfg := &Config{Decks: []DeckConfig{
		{Name: "bad", Cards: map[string]int{"xyz": 1}},
	}}
	_, err := cfg.DeckCounts("bad")
	assert.Error(t, err)
}
