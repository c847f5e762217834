package config_test

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/fredboard/pkg/cli/config"
	"github.com/urfave/cli/v3"
)

func TestFREDConfigure(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		_, err := config.NewFREDForTest("", "").Configure()
		gt.Error(t, err).Is(config.ErrMissingAPIKey)
	})

	t.Run("configured", func(t *testing.T) {
		client, err := config.NewFREDForTest("key", "http://localhost:1/fred").Configure()
		gt.NoError(t, err)
		gt.Value(t, client).NotNil()
	})
}

func TestFREDMetadataCacheDisabledByDefault(t *testing.T) {
	var fred config.FRED
	var found bool
	for _, f := range fred.Flags() {
		d, ok := f.(*cli.DurationFlag)
		if !ok || d.Name != "fred-metadata-ttl" {
			continue
		}
		found = true
		gt.Value(t, d.Value).Equal(time.Duration(0))
	}
	gt.Bool(t, found).True()
	gt.Value(t, fred.MetadataTTL()).Equal(time.Duration(0))
}

func TestFREDLogValueHidesKey(t *testing.T) {
	v := config.NewFREDForTest("supersecret", "").LogValue()
	gt.Bool(t, strings.Contains(v.String(), "supersecret")).False()
}

func TestSentryConfigure_Disabled(t *testing.T) {
	flush, err := config.NewSentryForTest("").Configure()
	gt.NoError(t, err).Required()
	flush()
	gt.Bool(t, config.NewSentryForTest("").LogValue().Kind() == slog.KindGroup).True()
}
