// Package client connects a local game to the online duel relay. It forwards
// this player's round progress upward and surfaces the opponent's progress
// and the match result through callbacks.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/baraclan/mathdeck/internal/protocol"
)

// Handler receives relay events. Callbacks run on the client's read
// goroutine; keep them short.
type Handler struct {
	OnMatchStart       func(protocol.MatchStart)
	OnOpponentProgress func(protocol.OpponentProgress)
	OnMatchResult      func(protocol.MatchResult)
	OnError            func(protocol.Error)
}

// Client is a relay connection for one player
type Client struct {
	logger  *log.Logger
	ws      *websocket.Conn
	handler Handler

	writeMu sync.Mutex
	once    sync.Once
	done    chan struct{}
}

// Dial connects to the relay and joins a match
func Dial(ctx context.Context, serverURL, match, username string, handler Handler, logger *log.Logger) (*Client, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, serverURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial relay: %w", err)
	}

	c := &Client{
		logger:  logger,
		ws:      ws,
		handler: handler,
		done:    make(chan struct{}),
	}
	if err := c.write(protocol.TypeJoin, protocol.Join{Match: match, Username: username}); err != nil {
		ws.Close()
		return nil, err
	}
	go c.readLoop()
	return c, nil
}

// SendProgress reports a round advance to the relay
func (c *Client) SendProgress(round, score, turn int) error {
	return c.write(protocol.TypeProgress, protocol.Progress{Round: round, Score: score, Turn: turn})
}

// SendFinished reports game completion to the relay
func (c *Client) SendFinished(score, elapsedSeconds int) error {
	return c.write(protocol.TypeFinished, protocol.Finished{Score: score, ElapsedSeconds: elapsedSeconds})
}

// Done is closed when the connection ends
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close shuts the connection down
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
		c.ws.Close()
	})
}

func (c *Client) write(t protocol.MessageType, payload any) error {
	raw, err := protocol.Encode(t, payload)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, raw)
}

func (c *Client) readLoop() {
	defer c.Close()
	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if !errors.Is(err, websocket.ErrCloseSent) {
				c.logger.Debug("relay connection closed", "err", err)
			}
			return
		}
		msg, err := protocol.Decode(raw)
		if err != nil {
			c.logger.Warn("malformed relay message", "err", err)
			continue
		}
		c.dispatch(msg)
	}
}

func (c *Client) dispatch(msg protocol.Message) {
	switch msg.Type {
	case protocol.TypeMatchStart:
		var m protocol.MatchStart
		if err := protocol.DecodePayload(msg, &m); err == nil && c.handler.OnMatchStart != nil {
			c.handler.OnMatchStart(m)
		}
	case protocol.TypeOpponentProgress:
		var p protocol.OpponentProgress
		if err := protocol.DecodePayload(msg, &p); err == nil && c.handler.OnOpponentProgress != nil {
			c.handler.OnOpponentProgress(p)
		}
	case protocol.TypeMatchResult:
		var r protocol.MatchResult
		if err := protocol.DecodePayload(msg, &r); err == nil && c.handler.OnMatchResult != nil {
			c.handler.OnMatchResult(r)
		}
	case protocol.TypeError:
		var e protocol.Error
		if err := protocol.DecodePayload(msg, &e); err == nil && c.handler.OnError != nil {
			c.handler.OnError(e)
		}
	default:
		c.logger.Debug("unhandled relay message", "type", string(msg.Type))
	}
}
