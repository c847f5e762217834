package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fredboard/pkg/domain/interfaces"
)

type sessionRepository struct {
	db *sql.DB
}

var _ interfaces.SessionRepository = &sessionRepository{}

func newSessionRepository(db *sql.DB) *sessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Get(ctx context.Context, sessionID string) ([]byte, error) {
	var blob []byte
	err := r.db.QueryRowContext(ctx,
		"SELECT blob FROM sessions WHERE session_id = ?", sessionID,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get session", goerr.V("session_id", sessionID))
	}
	return blob, nil
}

func (r *sessionRepository) Put(ctx context.Context, sessionID string, blob []byte) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO sessions (session_id, blob, updated_at) VALUES (?, ?, ?) "+
			"ON CONFLICT(session_id) DO UPDATE SET blob=excluded.blob, updated_at=excluded.updated_at",
		sessionID, blob, time.Now().UnixNano(),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to save session", goerr.V("session_id", sessionID))
	}
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE session_id = ?", sessionID); err != nil {
		return goerr.Wrap(err, "failed to delete session", goerr.V("session_id", sessionID))
	}
	return nil
}

func (r *sessionRepository) DeleteIdle(ctx context.Context, before time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE updated_at < ?", before.UnixNano())
	if err != nil {
		return 0, goerr.Wrap(err, "failed to delete idle sessions", goerr.V("before", before))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count deleted sessions")
	}
	return int(n), nil
}
