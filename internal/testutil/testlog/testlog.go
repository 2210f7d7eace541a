package testlog

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/danmuck/zkctl/internal/logging"
)

// Start configures test logging and returns a logger tagged with the
// test name.
func Start(t *testing.T) zerolog.Logger {
	t.Helper()
	logger := logging.ConfigureTests()
	return logger.With().Str("test", t.Name()).Logger()
}
