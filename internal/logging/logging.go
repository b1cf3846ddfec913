package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"
)

// New builds the service logger: colored text in development, JSON
// otherwise.
func New(w io.Writer, development bool, level slog.Level) *slog.Logger {
	var handler slog.Handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	if development {
		handler = tint.NewHandler(w, &tint.Options{
			Level: level,
		})
	}
	return slog.New(handler)
}

// EngineLevel maps a slog level onto logrus.
func EngineLevel(level slog.Level) logrus.Level {
	switch {
	case level < slog.LevelDebug:
		return logrus.TraceLevel
	case level < slog.LevelInfo:
		return logrus.DebugLevel
	case level < slog.LevelWarn:
		return logrus.InfoLevel
	case level < slog.LevelError:
		return logrus.WarnLevel
	default:
		return logrus.ErrorLevel
	}
}

type RotateConfig struct {
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// SetupEngine configures an engine logger. With a filename set, entries
// are also written to a rotating JSON file.
func SetupEngine(log *logrus.Logger, development bool, level slog.Level, rotate RotateConfig) error {
	log.SetOutput(os.Stderr)
	log.SetLevel(EngineLevel(level))
	log.SetFormatter(&logrus.TextFormatter{ForceColors: development})

	if rotate.Filename == "" {
		return nil
	}

	hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
		Filename:   rotate.Filename,
		MaxSize:    max(rotate.MaxSizeMB, 1),
		MaxBackups: rotate.MaxBackups,
		MaxAge:     rotate.MaxAgeDays,
		Level:      log.GetLevel(),
		Formatter:  &logrus.JSONFormatter{},
	})
	if err != nil {
		return fmt.Errorf("unable to create log file hook: %w", err)
	}
	log.AddHook(hook)
	return nil
}
