package telemetry

import (
	"log/slog"
	"os"
	"strings"

	"github.com/AfonsoScheufele/sistema-vendas-backend-sub001/internal/config"
)

// SetupLogger installs the global slog default logger according to the
// logging configuration: "json" format gives a JSONHandler (production),
// anything else a TextHandler (local development). Level is one of "debug",
// "info", "warn", "error"; unknown values fall back to info. Source locations
// are attached only at debug level.
//
// The logger is installed as the slog default so the audit pipeline's
// absorbed-failure log lines carry the configured format without threading a
// *slog.Logger through every component.
func SetupLogger(cfg config.LoggingConfig) {
	var lvl slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
	slog.Info("logger initialised", "format", cfg.Format, "level", lvl.String())
}
