package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/go-chi/httplog/v3"

	"hrms/internal/platform/config"
)

const appName = "hrms"

// New builds the process logger. Records use the ECS field layout so request
// logs emitted by httplog and application logs share one schema.
func New(w io.Writer, cfg config.Config) *slog.Logger {
	schema := httplog.SchemaECS.Concise(!cfg.IsProduction())
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       ParseLevel(cfg.LogLevel),
		ReplaceAttr: schema.ReplaceAttr,
	})
	return slog.New(handler).With(
		slog.String("app", appName),
		slog.String("env", cfg.Environment),
	)
}

// ParseLevel accepts slog level names with an optional offset such as
// "debug" or "warn+2". Anything else is Info.
func ParseLevel(raw string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return slog.LevelInfo
	}
	return level
}
