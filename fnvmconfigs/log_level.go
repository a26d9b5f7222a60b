package fnvmconfigs

import (
	"log/slog"

	"github.com/reusee/fnvm/configs"
)

type LogLevel slog.Level

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// LogLevel is the configured level, info when not configured. -log-* flags take precedence.
func (Module) LogLevel(
	loader configs.Loader,
) LogLevel {
	if l, ok := logLevels[configs.First[string](loader, "log_level")]; ok {
		return LogLevel(l)
	}
	return LogLevel(slog.LevelInfo)
}
