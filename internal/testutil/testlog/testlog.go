package testlog

import (
	"os"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var configureOnce sync.Once

// Start configures the global logger for tests. Output is suppressed
// unless HELPERD_TEST_LOG asks for it.
func Start(t *testing.T) {
	t.Helper()
	configureOnce.Do(func() {
		if os.Getenv("HELPERD_TEST_LOG") != "" {
			log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
				Level(zerolog.DebugLevel).With().Timestamp().Logger()
			return
		}
		log.Logger = zerolog.Nop()
	})
	log.Debug().Str("test", t.Name()).Msg("start")
}
