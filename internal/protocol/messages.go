// Package protocol defines the JSON messages exchanged between the duel
// relay and its clients. The relay never simulates gameplay; it only carries
// each player's round progress to the other side and declares the winner.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the payload carried by a Message
type MessageType string

// Client -> Server
const (
	TypeJoin     MessageType = "join"
	TypeProgress MessageType = "progress"
	TypeFinished MessageType = "finished"
)

// Server -> Client
const (
	TypeMatchStart       MessageType = "match_start"
	TypeOpponentProgress MessageType = "opponent_progress"
	TypeMatchResult      MessageType = "match_result"
	TypeError            MessageType = "error"
)

// Message is the wire envelope
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp,omitempty"`
}

// Join is sent once after connecting to enter a match
type Join struct {
	Match    string `json:"match"`
	Username string `json:"username"`
}

// Progress reports a player's round advance to the relay
type Progress struct {
	Round int `json:"round"`
	Score int `json:"score"`
	Turn  int `json:"turn"`
}

// Finished reports that a player's game completed
type Finished struct {
	Score          int `json:"score"`
	ElapsedSeconds int `json:"elapsed_seconds"`
}

// MatchStart tells both clients the match is on
type MatchStart struct {
	Match    string `json:"match"`
	Opponent string `json:"opponent"`
}

// OpponentProgress relays the other player's Progress
type OpponentProgress struct {
	Username string `json:"username"`
	Round    int    `json:"round"`
	Score    int    `json:"score"`
	Turn     int    `json:"turn"`
}

// MatchResult declares the outcome to both clients
type MatchResult struct {
	Winner         string `json:"winner"`
	Score          int    `json:"score"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
	You            bool   `json:"you"` // true in the winner's copy
}

// Error reports a protocol or match error
type Error struct {
	Message string `json:"message"`
}

// Encode wraps a payload in the envelope
func Encode(t MessageType, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	return json.Marshal(Message{Type: t, Data: data, Timestamp: time.Now().UTC()})
}

// Decode parses the envelope
func Decode(raw []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	return msg, nil
}

// DecodePayload parses the envelope's payload into out
func DecodePayload(msg Message, out any) error {
	if err := json.Unmarshal(msg.Data, out); err != nil {
		return fmt.Errorf("decode %s payload: %w", msg.Type, err)
	}
	return nil
}
