// Package obslog configures the daemon's structured logger.
//
// The teacher (dm-vev-OpenClaude) has no structured logger of its own — it's
// an interactive terminal tool, not a daemon. This is grounded instead on
// intelligencedev-manifold/internal/observability/logging.go's InitLogger,
// the rest of the retrieval pack's daemon-style logging setup.
package obslog

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Init sets zerolog's global level from SHELLGEIST_LOG_LEVEL (default
// "info") and returns a new logger writing to stderr (keeping the Unix
// socket's own stdout clean of incidental output).
func Init() zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	level := strings.ToLower(strings.TrimSpace(os.Getenv("SHELLGEIST_LOG_LEVEL")))
	if level == "" {
		level = "info"
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
