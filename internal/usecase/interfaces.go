package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/shopbook/internal/domain"
)

// EntryFilter narrows entry lookups by linked sell, kind and note.
type EntryFilter struct {
	LinkedSellID string
	Kind         domain.Kind
	Note         string
}

// EntryRepository defines data access for ledger entries.
type EntryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.Entry) error
	GetByID(ctx context.Context, id string) (*domain.Entry, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Entry, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Entry, error)
	ListByCreatorAndReview(ctx context.Context, creatorID string, state domain.ReviewState) ([]*domain.Entry, error)
	ListSells(ctx context.Context) ([]*domain.Entry, error)
	ListByFilter(ctx context.Context, filter EntryFilter) ([]*domain.Entry, error)
	ListByLinkedSell(ctx context.Context, tx Transaction, sellID string) ([]*domain.Entry, error)
	SumByFilter(ctx context.Context, tx Transaction, filter EntryFilter) (decimal.Decimal, error)
	Update(ctx context.Context, tx Transaction, entry *domain.Entry) error
	UpdateSellPayment(ctx context.Context, tx Transaction, id string, rest decimal.Decimal, completion domain.CompletionState) error
	UpdateProfit(ctx context.Context, tx Transaction, id string, profit decimal.Decimal, kind domain.ProfitKind) error
	UpdateReview(ctx context.Context, id string, state domain.ReviewState, note, reviewerID string) (*domain.Entry, error)
	Delete(ctx context.Context, tx Transaction, id string) error
	DeleteByLinkedSell(ctx context.Context, tx Transaction, sellID string) error
}

// BalanceRepository defines access to the singleton running balance.
type BalanceRepository interface {
	// Get returns the current balance, creating it with a zero amount when
	// absent.
	Get(ctx context.Context) (*domain.Balance, error)
	// GetForUpdate locks the balance row for the duration of the transaction,
	// creating it when absent. Every transition takes this lock first so that
	// transitions serialize against each other.
	GetForUpdate(ctx context.Context, tx Transaction) (*domain.Balance, error)
	// Adjust adds delta to the balance in a single statement. Positive is
	// credit, negative is debit.
	Adjust(ctx context.Context, tx Transaction, delta decimal.Decimal) error
}

// OrderIDAllocator produces human-readable order identifiers.
type OrderIDAllocator interface {
	// NextRootID returns the next free root order id, prefix plus a
	// zero-padded six digit sequence.
	NextRootID(ctx context.Context, tx Transaction) (string, error)
	// NextChildID returns the sell's order id suffixed with the lowest unused
	// letter A-Z. Falls back to a fresh root id plus "A" when the sell has no
	// order id of its own.
	NextChildID(ctx context.Context, tx Transaction, sell *domain.Entry) (string, error)
}

// StatsRepository defines read-side aggregation over entries.
type StatsRepository interface {
	TotalsByKind(ctx context.Context, since, until time.Time) (*domain.KindTotals, error)
}

// UserRepository defines data access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs a transition when the storage layer reports a transient
// conflict (deadlock, serialization failure).
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
