package config_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/fredboard/pkg/cli/config"
)

func TestRepositoryConfigure(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		repo, err := config.NewRepositoryForTest("memory", "").Configure(ctx)
		gt.NoError(t, err).Required()
		defer repo.Close()

		blob, err := repo.Session().Get(ctx, "s1")
		gt.NoError(t, err)
		gt.Value(t, blob).Nil()
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sessions.db")
		repo, err := config.NewRepositoryForTest("sqlite", path).Configure(ctx)
		gt.NoError(t, err).Required()
		defer repo.Close()

		gt.NoError(t, repo.Session().Put(ctx, "s1", []byte("[]"))).Required()
		blob, err := repo.Session().Get(ctx, "s1")
		gt.NoError(t, err)
		gt.Value(t, string(blob)).Equal("[]")
	})

	t.Run("firestore without project", func(t *testing.T) {
		_, err := config.NewRepositoryForTest("firestore", "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := config.NewRepositoryForTest("redis", "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})
}
