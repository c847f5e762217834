package cli

import (
	"context"
	"io"
)

var (
	PrintSearchResults = printSearchResults
	PrintSeries        = printSeries
)

// RunWithWriter runs the application writing command results to w
func RunWithWriter(ctx context.Context, args []string, w io.Writer) error {
	app := newApp("test")
	app.Writer = w
	return app.Run(ctx, args)
}
