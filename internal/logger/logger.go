// Package logger configures the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	// Quiet until Init runs so library code never writes to a TUI screen.
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	log.Logger = zerolog.New(consoleWriter(os.Stderr)).With().Timestamp().Logger()
}

// Init sets the global level and output. Verbose enables debug logs;
// otherwise only warnings and errors are written.
func Init(verbose bool, w io.Writer) {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if w == nil {
		w = os.Stderr
	}
	log.Logger = zerolog.New(consoleWriter(w)).With().Timestamp().Logger()
}

// Get returns a logger tagged with the component name.
func Get(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

func consoleWriter(w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.DateTime,
	}
}
