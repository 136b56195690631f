package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/baraclan/mathdeck/internal/protocol"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// connection wraps one websocket client. Writes go through a channel so the
// single writePump is the only goroutine touching the socket's write side.
type connection struct {
	ws     *websocket.Conn
	logger zerolog.Logger
	out    chan []byte

	match *match

	closeOnce sync.Once
	closed    chan struct{}
}

func newConnection(ws *websocket.Conn, logger zerolog.Logger) *connection {
	return &connection{
		ws:     ws,
		logger: logger,
		out:    make(chan []byte, 16),
		closed: make(chan struct{}),
	}
}

// send encodes and queues a message. A slow client that fills its queue is
// dropped rather than blocking the match.
func (c *connection) send(t protocol.MessageType, payload any) {
	raw, err := protocol.Encode(t, payload)
	if err != nil {
		c.logger.Error().Err(err).Str("type", string(t)).Msg("encode message")
		return
	}
	select {
	case c.out <- raw:
	case <-c.closed:
	default:
		c.logger.Warn().Msg("client send queue full, closing")
		c.close()
	}
}

func (c *connection) sendError(message string) {
	c.send(protocol.TypeError, protocol.Error{Message: message})
}

func (c *connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case raw := <-c.out:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *connection) close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.ws.Close()
	})
}
