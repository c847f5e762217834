package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fredboard/pkg/cli/config"
	"github.com/secmon-lab/fredboard/pkg/domain/model"
	"github.com/secmon-lab/fredboard/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdSeries() *cli.Command {
	var fredCfg config.FRED
	var tail int

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "tail",
			Usage:       "Number of latest observations to print",
			Value:       5,
			Destination: &tail,
		},
	}
	flags = append(flags, fredCfg.Flags()...)

	return &cli.Command{
		Name:      "series",
		Usage:     "Print metadata and latest observations of a series",
		ArgsUsage: "SERIES_ID",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			seriesID := strings.TrimSpace(c.Args().First())
			if seriesID == "" {
				return goerr.New("series id is required")
			}

			gateway, err := fredCfg.Configure()
			if err != nil {
				return err
			}

			preview, err := usecase.NewSeriesUseCase(gateway).Preview(ctx, seriesID)
			if err != nil {
				return err
			}

			printSeries(output(c), preview, tail)
			return nil
		},
	}
}

func printSeries(w io.Writer, p *model.SeriesPreview, tail int) {
	color.New(color.FgCyan, color.Bold).Fprintf(w, "%s", p.SeriesID)
	fmt.Fprintf(w, "  %s\n", p.Title)

	label := color.New(color.Faint)
	if m := p.Metadata; m != nil {
		for _, row := range [][2]string{
			{"Units", m.Units},
			{"Frequency", m.Frequency},
			{"Last updated", m.LastUpdated},
			{"Range", rangeOf(m.ObservationStart, m.ObservationEnd)},
		} {
			if row[1] == "" {
				continue
			}
			label.Fprintf(w, "  %-13s", row[0])
			fmt.Fprintln(w, row[1])
		}
	}

	if !p.HasData() {
		color.New(color.FgYellow).Fprintln(w, "  no data available")
		return
	}

	label.Fprintf(w, "  %-13s", "Observations")
	fmt.Fprintln(w, len(p.Observations))

	start := 0
	if tail > 0 && len(p.Observations) > tail {
		start = len(p.Observations) - tail
	}
	for _, obs := range p.Observations[start:] {
		fmt.Fprintf(w, "    %s  %s\n", obs.Date, color.GreenString("%g", obs.Value))
	}
}

func rangeOf(start, end string) string {
	if start == "" && end == "" {
		return ""
	}
	return start + " .. " + end
}
