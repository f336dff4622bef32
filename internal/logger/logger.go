package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var Log *slog.Logger

func init() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	Log = slog.New(handler)
}

// Init reconfigures both the slog logger and the global zerolog logger so
// request logs and pipeline logs share level and destination.
func Init(level string, w io.Writer) {
	if w == nil {
		w = os.Stdout
	}

	slogLevel := slog.LevelInfo
	zLevel := zerolog.InfoLevel
	switch strings.ToLower(level) {
	case "debug":
		slogLevel, zLevel = slog.LevelDebug, zerolog.DebugLevel
	case "warn", "warning":
		slogLevel, zLevel = slog.LevelWarn, zerolog.WarnLevel
	case "error":
		slogLevel, zLevel = slog.LevelError, zerolog.ErrorLevel
	}

	Log = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slogLevel}))
	slog.SetDefault(Log)

	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(zLevel)
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}
