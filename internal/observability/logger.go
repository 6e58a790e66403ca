package observability

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger configures the process-wide logger for the named service
// and returns it. Output goes to stderr so buffer output on stdout
// stays pipeable.
func InitLogger(service string) zerolog.Logger {
	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Str("service", service).Logger()
	log.Logger = logger
	return logger
}
