package memory

import (
	"time"

	"github.com/secmon-lab/fredboard/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	session *sessionRepository
}

var _ interfaces.Repository = &Memory{}

type Option func(*Memory)

// WithClock sets the clock that stamps session writes
func WithClock(now func() time.Time) Option {
	return func(m *Memory) {
		m.session.now = now
	}
}

func New(opts ...Option) *Memory {
	m := &Memory{
		session: newSessionRepository(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Session() interfaces.SessionRepository {
	return m.session
}

func (m *Memory) Close() error {
	return nil
}
