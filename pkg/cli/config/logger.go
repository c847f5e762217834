package config

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fredboard/pkg/utils/logging"
	"github.com/urfave/cli/v3"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger holds CLI flags for the process logger
type Logger struct {
	level      string
	format     string
	file       string
	maxSize    int
	maxBackups int
	maxAge     int
	compress   bool
}

// Flags returns CLI flags for logger configuration
func (x *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Category:    "Logging",
			Sources:     cli.EnvVars("FREDBOARD_LOG_LEVEL"),
			Destination: &x.level,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console, json)",
			Value:       string(logging.FormatConsole),
			Category:    "Logging",
			Sources:     cli.EnvVars("FREDBOARD_LOG_FORMAT"),
			Destination: &x.format,
		},
		&cli.StringFlag{
			Name:        "log-file",
			Usage:       "Also write logs to this file with rotation",
			Category:    "Logging",
			Sources:     cli.EnvVars("FREDBOARD_LOG_FILE"),
			Destination: &x.file,
		},
		&cli.IntFlag{
			Name:        "log-max-size",
			Usage:       "Maximum size in megabytes of a log file before rotation",
			Value:       25,
			Category:    "Logging",
			Sources:     cli.EnvVars("FREDBOARD_LOG_MAX_SIZE"),
			Destination: &x.maxSize,
		},
		&cli.IntFlag{
			Name:        "log-max-backups",
			Usage:       "Maximum number of rotated log files to keep",
			Value:       10,
			Category:    "Logging",
			Sources:     cli.EnvVars("FREDBOARD_LOG_MAX_BACKUPS"),
			Destination: &x.maxBackups,
		},
		&cli.IntFlag{
			Name:        "log-max-age",
			Usage:       "Maximum number of days to retain rotated log files",
			Value:       14,
			Category:    "Logging",
			Sources:     cli.EnvVars("FREDBOARD_LOG_MAX_AGE"),
			Destination: &x.maxAge,
		},
		&cli.BoolFlag{
			Name:        "log-compress",
			Usage:       "Compress rotated log files",
			Value:       true,
			Category:    "Logging",
			Sources:     cli.EnvVars("FREDBOARD_LOG_COMPRESS"),
			Destination: &x.compress,
		},
	}
}

func (x Logger) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("level", x.level),
		slog.String("format", x.format),
		slog.String("file", x.file),
	)
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, goerr.Wrap(ErrInvalidConfig, "unknown log level",
			goerr.V(FieldKey, "log-level"), goerr.V(ValueKey, s))
	}
}

func parseFormat(s string) (logging.Format, error) {
	switch logging.Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", logging.FormatConsole:
		return logging.FormatConsole, nil
	case logging.FormatJSON:
		return logging.FormatJSON, nil
	default:
		return "", goerr.Wrap(ErrInvalidConfig, "unknown log format",
			goerr.V(FieldKey, "log-format"), goerr.V(ValueKey, s))
	}
}

// Build creates the logger and the closer of its rotating file, if any
func (x *Logger) Build(stderr io.Writer) (*slog.Logger, func(), error) {
	level, err := parseLevel(x.level)
	if err != nil {
		return nil, nil, err
	}
	format, err := parseFormat(x.format)
	if err != nil {
		return nil, nil, err
	}

	w := stderr
	closer := func() {}
	useColor := format == logging.FormatConsole && !color.NoColor

	if x.file != "" {
		rotator := &lumberjack.Logger{
			Filename:   x.file,
			MaxSize:    x.maxSize,
			MaxBackups: x.maxBackups,
			MaxAge:     x.maxAge,
			Compress:   x.compress,
		}
		w = io.MultiWriter(stderr, rotator)
		// escape sequences would end up in the file
		useColor = false
		closer = func() {
			if err := rotator.Close(); err != nil {
				slog.Default().Error("failed to close log file", "error", err)
			}
		}
	}

	return logging.NewLogger(w, format, level, useColor), closer, nil
}

// Configure builds the logger, installs it as the default and returns a closer
func (x *Logger) Configure() (func(), error) {
	logger, closer, err := x.Build(os.Stderr)
	if err != nil {
		return nil, err
	}
	logging.SetDefault(logger)
	return closer, nil
}
