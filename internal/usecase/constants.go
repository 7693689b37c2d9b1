package usecase

import "time"

const (
	// DefaultStorageTimeout bounds a single load-modify-save cycle.
	DefaultStorageTimeout = 10 * time.Second

	// DefaultSummaryCacheTTL is how long a computed summary stays cached.
	// Entries are keyed by ledger version, so the TTL only bounds memory.
	DefaultSummaryCacheTTL = 10 * time.Minute
)
