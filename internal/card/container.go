package card

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrInsufficient indicates a removal or transfer asked for more
	// instances of a card type than the source holds. This is a caller bug
	// (hand and equation out of sync), never something to clamp silently.
	ErrInsufficient = errors.New("card: insufficient supply")

	// ErrBadCount indicates an add/remove/transfer with a non-positive count.
	ErrBadCount = errors.New("card: count must be positive")
)

// Store is the minimal mutable card-holding surface Transfer operates on.
// Container implements it; so does the game's ordered equation line.
type Store interface {
	Add(c Card, count int) error
	Remove(c Card, count int) error
	Count(c Card) int
}

// Container is a named multiset of card types. A type with count zero is not
// present in the mapping; enumeration order is deterministic regardless of
// insertion order.
type Container struct {
	name   string
	counts map[Card]int
}

// NewContainer creates an empty container
func NewContainer(name string) *Container {
	return &Container{
		name:   name,
		counts: make(map[Card]int),
	}
}

// NewHand creates an empty hand. Capacity is enforced by the draw code, not
// the container.
func NewHand(name string) *Container {
	return NewContainer(name)
}

// NewCollection creates an empty collection (a scratch bin or card catalog).
func NewCollection(name string) *Container {
	return NewContainer(name)
}

// Name returns the container's display name
func (ct *Container) Name() string {
	return ct.name
}

// Add inserts count instances of a card type.
func (ct *Container) Add(c Card, count int) error {
	if count <= 0 {
		return fmt.Errorf("%w: add %d x %s to %s", ErrBadCount, count, c.DisplayName(), ct.name)
	}
	ct.counts[c] += count
	return nil
}

// Remove deletes count instances of a card type. Removing more than the
// container holds fails with ErrInsufficient and leaves the container
// untouched.
func (ct *Container) Remove(c Card, count int) error {
	if count <= 0 {
		return fmt.Errorf("%w: remove %d x %s from %s", ErrBadCount, count, c.DisplayName(), ct.name)
	}
	have := ct.counts[c]
	if have < count {
		return fmt.Errorf("%w: remove %d x %s from %s, only %d available",
			ErrInsufficient, count, c.DisplayName(), ct.name, have)
	}
	if have == count {
		delete(ct.counts, c)
	} else {
		ct.counts[c] = have - count
	}
	return nil
}

// Count returns how many instances of a card type the container holds
func (ct *Container) Count(c Card) int {
	return ct.counts[c]
}

// Total returns the total number of card instances
func (ct *Container) Total() int {
	total := 0
	for _, n := range ct.counts {
		total += n
	}
	return total
}

// UniqueTypes returns the number of distinct card types held
func (ct *Container) UniqueTypes() int {
	return len(ct.counts)
}

// Contains reports whether at least one instance of the card type is held
func (ct *Container) Contains(c Card) bool {
	return ct.counts[c] > 0
}

// IsEmpty reports whether the container holds no cards
func (ct *Container) IsEmpty() bool {
	return len(ct.counts) == 0
}

// Counts returns a copy of the type -> count mapping.
func (ct *Container) Counts() map[Card]int {
	out := make(map[Card]int, len(ct.counts))
	for c, n := range ct.counts {
		out[c] = n
	}
	return out
}

// Types returns the held card types in deterministic display order.
func (ct *Container) Types() []Card {
	types := make([]Card, 0, len(ct.counts))
	for c := range ct.counts {
		types = append(types, c)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Less(types[j]) })
	return types
}

// AsList flattens the multiset into a sequence with each type repeated per
// its count, in deterministic display order.
func (ct *Container) AsList() []Card {
	out := make([]Card, 0, ct.Total())
	for _, c := range ct.Types() {
		for i := 0; i < ct.counts[c]; i++ {
			out = append(out, c)
		}
	}
	return out
}

// Transfer moves count instances of a card type from one store to another.
// It fails without mutating either store when the source holds fewer than
// count instances; on success the source is decremented and the destination
// incremented as a single logical operation.
func Transfer(c Card, count int, from, to Store) error {
	if count <= 0 {
		return fmt.Errorf("%w: transfer %d x %s", ErrBadCount, count, c.DisplayName())
	}
	if from.Count(c) < count {
		return fmt.Errorf("%w: transfer %d x %s, only %d available",
			ErrInsufficient, count, c.DisplayName(), from.Count(c))
	}
	if err := from.Remove(c, count); err != nil {
		return err
	}
	if err := to.Add(c, count); err != nil {
		// Restore the source so the pair stays consistent. Add only fails on
		// non-positive counts, which the guard above already rejected.
		_ = from.Add(c, count)
		return err
	}
	return nil
}
