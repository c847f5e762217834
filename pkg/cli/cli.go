package cli

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/secmon-lab/fredboard/pkg/cli/config"
	"github.com/secmon-lab/fredboard/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func Run(ctx context.Context, args []string, version string) error {
	app := newApp(version)

	if err := app.Run(ctx, args); err != nil {
		logging.Default().Error("failed to run app", "error", err)
		return err
	}

	return nil
}

func newApp(version string) *cli.Command {
	var loggerCfg config.Logger
	var closer func()

	return &cli.Command{
		Name:    "fredboard",
		Usage:   "Economic data dashboard backed by the FRED API",
		Version: version,
		Flags:   loggerCfg.Flags(),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return ctx, err
			}

			f, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closer = f

			logging.Default().Debug("Starting fredboard", "logger", loggerCfg)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if closer != nil {
				closer()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdSearch(),
			cmdSeries(),
		},
	}
}

// output returns the writer for command results
func output(c *cli.Command) io.Writer {
	if w := c.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}
