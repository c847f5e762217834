package config

import "time"

// NewDashboardForTest creates a Dashboard config for testing purposes
func NewDashboardForTest(configPath, emptySearch string) *Dashboard {
	return &Dashboard{
		configPath:    configPath,
		emptySearch:   emptySearch,
		sessionTTL:    24 * time.Hour,
		sweepInterval: 10 * time.Minute,
	}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, sqlitePath string) *Repository {
	return &Repository{
		backend:    backend,
		sqlitePath: sqlitePath,
	}
}

// NewFREDForTest creates a FRED config for testing purposes
func NewFREDForTest(apiKey, baseURL string) *FRED {
	return &FRED{
		apiKey:  apiKey,
		baseURL: baseURL,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, file string) *Logger {
	return &Logger{
		level:      level,
		format:     format,
		file:       file,
		maxSize:    1,
		maxBackups: 1,
		maxAge:     1,
	}
}

// NewSentryForTest creates a Sentry config for testing purposes
func NewSentryForTest(dsn string) *Sentry {
	return &Sentry{dsn: dsn}
}
