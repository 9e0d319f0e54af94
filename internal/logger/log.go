// Package logger configures the agent's own structured logging. The
// shipping core itself never logs; it reports through a diagnostic hook
// that cmd/agent points here.
package logger

import (
	"io"
	"os"
	"strings"

	stdlog "log"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

func Init(level string, pretty bool) {
	lvl := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level))); err == nil && level != "" {
		lvl = parsed
	}
	zerolog.SetGlobalLevel(lvl)

	var w io.Writer = os.Stdout
	if pretty {
		w = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		}
	}

	hostname, _ := os.Hostname()

	zlog.Logger = zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Str("service", "seqship").
		Str("host", hostname).
		Logger()

	// Anything going through the standard library logger (third-party
	// code included) lands in the same stream.
	stdlog.SetFlags(0)
	stdlog.SetOutput(zlog.Logger)
}
