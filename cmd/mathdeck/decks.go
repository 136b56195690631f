package main

import (
	"fmt"
	"sort"

	"github.com/baraclan/mathdeck/cmd/mathdeck/shared"
	"github.com/baraclan/mathdeck/internal/card"
	"github.com/baraclan/mathdeck/internal/deckstore"
)

// DecksCmd manages the saved-decks file
type DecksCmd struct {
	List   DecksListCmd   `cmd:"" help:"List saved decks"`
	Save   DecksSaveCmd   `cmd:"" help:"Save or replace a deck"`
	Delete DecksDeleteCmd `cmd:"" help:"Delete a saved deck"`

	Debug bool `kong:"help='Enable debug logging'"`
}

type DecksListCmd struct{}

func (c *DecksListCmd) Run(parent *DecksCmd) error {
	store := deckstore.New(decksPath(), shared.SetupLogger(parent.Debug))
	decks, err := store.List()
	if err != nil {
		return err
	}
	if len(decks) == 0 {
		fmt.Println("No saved decks.")
		return nil
	}
	for _, d := range decks {
		fmt.Printf("%s (%d cards)\n", d.Name, totalCards(d.Cards))
		for _, t := range sortedTypes(d.Cards) {
			fmt.Printf("  %s x%d\n", t.DisplayName(), d.Cards[t])
		}
	}
	return nil
}

type DecksSaveCmd struct {
	Name  string   `kong:"arg,help='Deck name'"`
	Cards []string `kong:"arg,help='Card faces, one per argument (0-9 + - * /); repeat a face to add copies'"`
}

func (c *DecksSaveCmd) Run(parent *DecksCmd) error {
	counts := make(map[card.Card]int)
	for _, face := range c.Cards {
		parsed, err := card.Parse(face)
		if err != nil {
			return err
		}
		counts[parsed]++
	}

	store := deckstore.New(decksPath(), shared.SetupLogger(parent.Debug))

	// The write runs off the caller's goroutine; Flush holds the process
	// open until it lands so a failure still reaches the user.
	var saveErr error
	store.SaveAsync(c.Name, counts, func(err error) { saveErr = err })
	store.Flush()
	if saveErr != nil {
		return saveErr
	}
	fmt.Printf("Saved deck %q with %d cards.\n", c.Name, totalCards(counts))
	return nil
}

type DecksDeleteCmd struct {
	Name string `kong:"arg,help='Deck name'"`
}

func (c *DecksDeleteCmd) Run(parent *DecksCmd) error {
	store := deckstore.New(decksPath(), shared.SetupLogger(parent.Debug))
	if err := store.Delete(c.Name); err != nil {
		return err
	}
	fmt.Printf("Deleted deck %q.\n", c.Name)
	return nil
}

func totalCards(counts map[card.Card]int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}

func sortedTypes(counts map[card.Card]int) []card.Card {
	types := make([]card.Card, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Less(types[j]) })
	return types
}
