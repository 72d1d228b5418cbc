package constants

import "time"

const (
	// BulkGamesPageSize is the page size for the unfiltered bulk game list.
	BulkGamesPageSize = 1000
	// SearchGamesPageSize bounds free-text game searches.
	SearchGamesPageSize = 20
	// RunsPageSize is the page size for run listings.
	RunsPageSize = 200

	// MaxPages caps any pagination loop. Completion is normally detected by
	// a short page; this guards against a server that never returns one.
	MaxPages = 200
)

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	DBMaxOpenConns    = 10
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 1 * time.Hour
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	// GameSearchLimit bounds local cache name lookups.
	GameSearchLimit = 50
)
