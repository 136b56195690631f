package main

import (
	"github.com/baraclan/mathdeck/cmd/mathdeck/shared"
	"github.com/baraclan/mathdeck/internal/server"
)

// ServeCmd runs the online duel relay
type ServeCmd struct {
	Addr       string `kong:"default=':8080',help='Server address'"`
	Debug      bool   `kong:"help='Enable debug logging'"`
	Structured bool   `kong:"help='Emit structured (JSON) logs'"`
}

func (c *ServeCmd) Run() error {
	var logger = shared.SetupLogger(c.Debug)
	if c.Structured {
		logger = shared.SetupStructuredLogger(c.Debug)
	}

	s := server.New(logger, server.Config{Addr: c.Addr})

	logger.Info().
		Str("address", c.Addr).
		Msg("Starting relay server")

	ctx := shared.SetupSignalHandlerWithLogger(logger)
	return s.Run(ctx)
}
