package shared

import (
	"io"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/rs/zerolog"
)

// SetupLogger configures zerolog with pretty console output
func SetupLogger(debug bool) zerolog.Logger {
	return newZerolog(zerolog.ConsoleWriter{Out: os.Stderr}, debug)
}

// SetupStructuredLogger configures zerolog for structured (JSON) output
func SetupStructuredLogger(debug bool) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	return newZerolog(os.Stderr, debug)
}

func newZerolog(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// SetupGameLogger configures the charm logger used while the TUI owns the
// terminal. Output goes to the given file path so it never corrupts the
// screen; an empty path discards everything. The returned closer is nil when
// no file was opened.
func SetupGameLogger(path string, debug bool) (*charmlog.Logger, io.Closer) {
	var out io.Writer = io.Discard
	var closer io.Closer
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			out = f
			closer = f
		}
	}

	logger := charmlog.New(out)
	if debug {
		logger.SetLevel(charmlog.DebugLevel)
	} else {
		logger.SetLevel(charmlog.InfoLevel)
	}
	logger.SetReportTimestamp(true)
	return logger, closer
}
