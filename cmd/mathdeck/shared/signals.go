package shared

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
)

// SetupSignalHandler returns a context cancelled on SIGINT or SIGTERM.
func SetupSignalHandler() context.Context {
	return signalContext(nil)
}

// SetupSignalHandlerWithLogger is SetupSignalHandler plus a shutdown log line.
func SetupSignalHandlerWithLogger(logger zerolog.Logger) context.Context {
	return signalContext(&logger)
}

func signalContext(logger *zerolog.Logger) context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-ch
		if logger != nil {
			logger.Info().Str("signal", sig.String()).Msg("shutting down")
		}
		cancel()
	}()
	return ctx
}
