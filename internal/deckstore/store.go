// Package deckstore persists named decks as a JSON document on disk. A deck
// is stored as its name plus a list of {cardName, count} records; card types
// are reconstructed losslessly from their display-name encoding
// ("Number (5)", "Operator (+)").
package deckstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/baraclan/mathdeck/internal/card"
	"github.com/baraclan/mathdeck/internal/fileutil"
)

// ErrNotFound indicates no saved deck with the requested name
var ErrNotFound = errors.New("deckstore: deck not found")

// Deck is a saved deck: a name and its card-type composition.
type Deck struct {
	Name  string
	Cards map[card.Card]int
}

type deckRecord struct {
	Name  string       `json:"name"`
	Cards []cardRecord `json:"cards"`
}

type cardRecord struct {
	CardName string `json:"cardName"`
	Count    int    `json:"count"`
}

// Store reads and writes the saved-decks file. All mutations rewrite the
// whole document atomically; the file is small (a handful of named decks).
type Store struct {
	path   string
	logger zerolog.Logger

	mu sync.Mutex
	wg sync.WaitGroup
}

// New creates a store backed by the given file path. The file is created on
// first save.
func New(path string, logger zerolog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// List returns all saved decks, sorted by name.
func (s *Store) List() ([]Deck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Get returns the saved deck with the given name
func (s *Store) Get(name string) (Deck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	decks, err := s.load()
	if err != nil {
		return Deck{}, err
	}
	for _, d := range decks {
		if d.Name == name {
			return d, nil
		}
	}
	return Deck{}, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Save upserts a deck by name
func (s *Store) Save(name string, cards map[card.Card]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	decks, err := s.load()
	if err != nil {
		return err
	}
	saved := Deck{Name: name, Cards: copyCounts(cards)}
	replaced := false
	for i, d := range decks {
		if d.Name == name {
			decks[i] = saved
			replaced = true
			break
		}
	}
	if !replaced {
		decks = append(decks, saved)
	}
	return s.write(decks)
}

// SaveAsync issues a fire-and-forget save. Gameplay never waits on the disk:
// a failed write is reported through the callback (and the log) without
// rolling back any in-memory state.
func (s *Store) SaveAsync(name string, cards map[card.Card]int, onErr func(error)) {
	snapshot := copyCounts(cards)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.Save(name, snapshot); err != nil {
			s.logger.Error().Err(err).Str("deck", name).Msg("async deck save failed")
			if onErr != nil {
				onErr(err)
			}
		}
	}()
}

// Delete removes a deck by name. Deleting a deck that does not exist returns
// ErrNotFound.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	decks, err := s.load()
	if err != nil {
		return err
	}
	kept := decks[:0]
	found := false
	for _, d := range decks {
		if d.Name == name {
			found = true
			continue
		}
		kept = append(kept, d)
	}
	if !found {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return s.write(kept)
}

// Flush waits for outstanding async saves
func (s *Store) Flush() {
	s.wg.Wait()
}

func (s *Store) load() ([]Deck, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read deck file: %w", err)
	}

	var records []deckRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse deck file: %w", err)
	}

	decks := make([]Deck, 0, len(records))
	for _, rec := range records {
		d := Deck{Name: rec.Name, Cards: make(map[card.Card]int, len(rec.Cards))}
		for _, cr := range rec.Cards {
			c, err := ReconstructCard(cr.CardName)
			if err != nil {
				// An unrecognised card name is skipped rather than failing
				// the whole load; the remaining decks stay usable.
				s.logger.Warn().Str("card", cr.CardName).Str("deck", rec.Name).
					Msg("skipping unrecognised card in saved deck")
				continue
			}
			if cr.Count > 0 {
				d.Cards[c] += cr.Count
			}
		}
		decks = append(decks, d)
	}
	sort.Slice(decks, func(i, j int) bool { return decks[i].Name < decks[j].Name })
	return decks, nil
}

func (s *Store) write(decks []Deck) error {
	records := make([]deckRecord, 0, len(decks))
	for _, d := range decks {
		rec := deckRecord{Name: d.Name, Cards: make([]cardRecord, 0, len(d.Cards))}
		types := make([]card.Card, 0, len(d.Cards))
		for c := range d.Cards {
			types = append(types, c)
		}
		sort.Slice(types, func(i, j int) bool { return types[i].Less(types[j]) })
		for _, c := range types {
			rec.Cards = append(rec.Cards, cardRecord{CardName: c.DisplayName(), Count: d.Cards[c]})
		}
		records = append(records, rec)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode deck file: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create deck dir: %w", err)
		}
	}
	if err := fileutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write deck file: %w", err)
	}
	return nil
}

// ReconstructCard rebuilds a card type from its stored display name,
// e.g. "Number (5)" or "Operator (+)".
func ReconstructCard(name string) (card.Card, error) {
	open := strings.Index(name, "(")
	end := strings.LastIndex(name, ")")
	if open < 0 || end < open {
		return card.Card{}, fmt.Errorf("deckstore: malformed card name %q", name)
	}
	payload := strings.TrimSpace(name[open+1 : end])

	switch {
	case strings.HasPrefix(name, "Number"):
		value, err := strconv.Atoi(payload)
		if err != nil {
			return card.Card{}, fmt.Errorf("deckstore: bad number in card name %q", name)
		}
		return card.NewNumber(value), nil
	case strings.HasPrefix(name, "Operator"):
		switch payload {
		case "+":
			return card.NewOperator(card.Add), nil
		case "-":
			return card.NewOperator(card.Subtract), nil
		case "*":
			return card.NewOperator(card.Multiply), nil
		case "/":
			return card.NewOperator(card.Divide), nil
		}
		return card.Card{}, fmt.Errorf("deckstore: unknown operator in card name %q", name)
	default:
		return card.Card{}, fmt.Errorf("deckstore: unknown card kind in %q", name)
	}
}

func copyCounts(cards map[card.Card]int) map[card.Card]int {
	out := make(map[card.Card]int, len(cards))
	for c, n := range cards {
		if n > 0 {
			out[c] = n
		}
	}
	return out
}
