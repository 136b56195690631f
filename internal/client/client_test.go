package client

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baraclan/mathdeck/internal/protocol"
	"github.com/baraclan/mathdeck/internal/server"
)

func newRelay(t *testing.T) string {
	t.Helper()
	s := server.New(zerolog.Nop(), server.Config{})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func waitFor[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
		panic("unreachable")
	}
}

func TestTwoClientsPlayThroughRelay(t *testing.T) {
	url := newRelay(t)
	ctx := context.Background()
	logger := log.New(nil)

	redStart := make(chan protocol.MatchStart, 1)
	redProgress := make(chan protocol.OpponentProgress, 4)
	redResult := make(chan protocol.MatchResult, 1)
	red, err := Dial(ctx, url, "game-1", "ruth", Handler{
		OnMatchStart:       func(m protocol.MatchStart) { redStart <- m },
		OnOpponentProgress: func(p protocol.OpponentProgress) { redProgress <- p },
		OnMatchResult:      func(r protocol.MatchResult) { redResult <- r },
	}, logger)
	require.NoError(t, err)
	defer red.Close()

	blueStart := make(chan protocol.MatchStart, 1)
	blueResult := make(chan protocol.MatchResult, 1)
	blue, err := Dial(ctx, url, "game-1", "brian", Handler{
		OnMatchStart:  func(m protocol.MatchStart) { blueStart <- m },
		OnMatchResult: func(r protocol.MatchResult) { blueResult <- r },
	}, logger)
	require.NoError(t, err)
	defer blue.Close()

	assert.Equal(t, "brian", waitFor(t, redStart, "red match start").Opponent)
	assert.Equal(t, "ruth", waitFor(t, blueStart, "blue match start").Opponent)

	require.NoError(t, blue.SendProgress(2, 100, 1))
	prog := waitFor(t, redProgress, "opponent progress")
	assert.Equal(t, "brian", prog.Username)
	assert.Equal(t, 2, prog.Round)

	require.NoError(t, red.SendFinished(500, 73))

	win := waitFor(t, redResult, "red result")
	assert.True(t, win.You)
	assert.Equal(t, "ruth", win.Winner)

	lose := waitFor(t, blueResult, "blue result")
	assert.False(t, lose.You)
	assert.Equal(t, "ruth", lose.Winner)
}

func TestDialBadURL(t *testing.T) {
	_, err := Dial(context.Background(), "ws://127.0.0.1:1/ws", "m", "u", Handler{}, log.New(nil))
	assert.Error(t, err)
}

func TestErrorCallback(t *testing.T) {
	url := newRelay(t)

	errCh := make(chan protocol.Error, 1)
	c, err := Dial(context.Background(), url, "game-1", "ruth", Handler{
		OnError: func(e protocol.Error) { errCh <- e },
	}, log.New(nil))
	require.NoError(t, err)
	defer c.Close()

	// A second join with the same username in the same match is rejected.
	second, err := Dial(context.Background(), url, "game-1", "ruth", Handler{
		OnError: func(e protocol.Error) { errCh <- e },
	}, log.New(nil))
	require.NoError(t, err)
	defer second.Close()

	e := waitFor(t, errCh, "relay error")
	assert.Contains(t, e.Message, "username")
}
