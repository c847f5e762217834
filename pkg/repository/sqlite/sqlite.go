package sqlite

import (
	"context"
	"database/sql"

	_ "github.com/glebarez/go-sqlite"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fredboard/pkg/domain/interfaces"
)

// SQLite keeps session slots in a single local database file
type SQLite struct {
	db      *sql.DB
	session *sessionRepository
}

var _ interfaces.Repository = &SQLite{}

var pragmas = []string{
	"PRAGMA journal_mode=WAL;",
	"PRAGMA synchronous=NORMAL;",
	"PRAGMA busy_timeout=5000;",
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		blob BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	);`,
	"CREATE INDEX IF NOT EXISTS sessions_updated_at ON sessions (updated_at);",
}

// New opens (creating if needed) the database at path and applies the schema
func New(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open sqlite", goerr.V("path", path))
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, goerr.Wrap(err, "failed to set pragma", goerr.V("pragma", pragma))
		}
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, goerr.Wrap(err, "failed to apply schema", goerr.V("path", path))
		}
	}

	return &SQLite{
		db:      db,
		session: newSessionRepository(db),
	}, nil
}

func (s *SQLite) Session() interfaces.SessionRepository {
	return s.session
}

func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
