package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a single ledger
	// transition. Prevents a stuck transition from holding the balance lock.
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached.
	IdempotencyKeyTTL = 24 * time.Hour

	// StatsCacheTTL is how long dashboard aggregates may be served stale.
	StatsCacheTTL = 30 * time.Second
)
