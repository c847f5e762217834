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

func cmdSearch() *cli.Command {
	var fredCfg config.FRED
	var limit int

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"n"},
			Usage:       "Maximum number of series to print",
			Value:       10,
			Destination: &limit,
		},
	}
	flags = append(flags, fredCfg.Flags()...)

	return &cli.Command{
		Name:      "search",
		Usage:     "Search the FRED catalog and print matching series",
		ArgsUsage: "TERM",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			term := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if term == "" {
				return goerr.New("search term is required")
			}

			gateway, err := fredCfg.Configure()
			if err != nil {
				return err
			}

			matches, err := usecase.NewSeriesUseCase(gateway).Search(ctx, term)
			if err != nil {
				return err
			}

			printSearchResults(output(c), term, matches, limit)
			return nil
		},
	}
}

func printSearchResults(w io.Writer, term string, matches []*model.SeriesSummary, limit int) {
	if len(matches) == 0 {
		color.New(color.FgYellow).Fprintf(w, "No series found for %q\n", term)
		return
	}

	shown := matches
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	idColor := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.Faint)
	for i, m := range shown {
		marker := "  "
		if i == 0 {
			// the first match is what the dashboard would add
			marker = color.GreenString("* ")
		}
		fmt.Fprintf(w, "%s%s  %s\n", marker, idColor.Sprint(m.ID), m.Title)
		if m.Units != "" || m.Frequency != "" {
			dim.Fprintf(w, "    %s, %s\n", m.Units, m.Frequency)
		}
	}
	if len(matches) > len(shown) {
		dim.Fprintf(w, "... and %d more\n", len(matches)-len(shown))
	}
}
