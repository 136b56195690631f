package game

import "github.com/baraclan/mathdeck/internal/card"

// EventType identifies a game event
type EventType string

const (
	EventRoundStart   EventType = "round_start"
	EventCardPlaced   EventType = "card_placed"
	EventCardReturned EventType = "card_returned"
	EventSubmit       EventType = "submit"
	EventDiscard      EventType = "discard"
	EventCompleted    EventType = "completed"
)

// Event is a state-transition notification pushed to subscribers. The
// presentation layer renders from these; the machine itself has no display
// dependencies.
type Event interface {
	EventType() EventType
}

// RoundStartEvent is published when a round begins
type RoundStartEvent struct {
	Round    int // 1-based
	Goal     float64
	Margin   float64
	HandSize int
	DeckSize int
}

func (e RoundStartEvent) EventType() EventType { return EventRoundStart }

// CardPlacedEvent is published when a card moves from hand to equation
type CardPlacedEvent struct {
	Card card.Card
}

func (e CardPlacedEvent) EventType() EventType { return EventCardPlaced }

// CardReturnedEvent is published when a card moves from equation back to hand
type CardReturnedEvent struct {
	Card card.Card
}

func (e CardReturnedEvent) EventType() EventType { return EventCardReturned }

// SubmitEvent is published after every submission, accepted or not.
type SubmitEvent struct {
	Expression string
	Value      int
	Err        error // non-nil when the expression did not evaluate
	Accepted   bool
	Goal       float64
	Margin     float64
	Score      int
	Turn       int
}

func (e SubmitEvent) EventType() EventType { return EventSubmit }

// DiscardEvent is published when the player discards the equation line
type DiscardEvent struct {
	Binned int
	Turn   int
}

func (e DiscardEvent) EventType() EventType { return EventDiscard }

// CompletedEvent is published once, when the final goal is reached.
type CompletedEvent struct {
	Score  int
	Rounds int
}

func (e CompletedEvent) EventType() EventType { return EventCompleted }
