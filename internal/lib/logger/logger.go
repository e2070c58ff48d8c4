package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// SetupLogger builds the process logger for the given environment.
// local: human-readable text at debug level; dev: JSON at debug level;
// prod: JSON at info level appended to a file under logPath, falling
// back to stdout if the file cannot be opened.
func SetupLogger(env string, logPath string) *slog.Logger {
	var handler slog.Handler

	switch env {
	case envProd:
		var out io.Writer = os.Stdout
		file, err := os.OpenFile(
			filepath.Join(logPath, "weatherbot.log"),
			os.O_CREATE|os.O_WRONLY|os.O_APPEND,
			0o644,
		)
		if err == nil {
			out = file
		}
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo})
	case envDev:
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	case envLocal:
		fallthrough
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	return slog.New(handler)
}
