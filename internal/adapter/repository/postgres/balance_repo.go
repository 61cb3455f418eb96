package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/shopbook/internal/domain"
	"github.com/iho/shopbook/internal/usecase"
)

// BalanceRepository implements usecase.BalanceRepository over a single-row
// table. The row is created lazily with a zero amount.
type BalanceRepository struct {
	pool *pgxpool.Pool
}

// NewBalanceRepository creates a new BalanceRepository.
func NewBalanceRepository(pool *pgxpool.Pool) *BalanceRepository {
	return &BalanceRepository{pool: pool}
}

const balanceSelect = `SELECT amount, updated_at FROM balances WHERE id = 1`

// Get returns the current balance snapshot, creating the row when absent.
func (r *BalanceRepository) Get(ctx context.Context) (*domain.Balance, error) {
	balance, err := scanBalance(r.pool.QueryRow(ctx, balanceSelect))
	if err == nil {
		return balance, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	if err := r.ensureRow(ctx, r.pool); err != nil {
		return nil, err
	}

	return scanBalance(r.pool.QueryRow(ctx, balanceSelect))
}

// GetForUpdate locks the balance row for the transaction, creating it when
// absent. Taking this lock first serializes ledger transitions.
func (r *BalanceRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction) (*domain.Balance, error) {
	q := tx.(*Tx).PgxTx()

	if err := r.ensureRow(ctx, q); err != nil {
		return nil, err
	}

	return scanBalance(q.QueryRow(ctx, balanceSelect+` FOR UPDATE`))
}

// Adjust adds delta to the balance in a single statement.
func (r *BalanceRepository) Adjust(ctx context.Context, tx usecase.Transaction, delta decimal.Decimal) error {
	query := `UPDATE balances SET amount = amount + $1, updated_at = $2 WHERE id = 1`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, query, decimalToNumeric(delta), timeToPgTimestamptz(time.Now().UTC()))

	return err
}

func (r *BalanceRepository) ensureRow(ctx context.Context, q querier) error {
	query := `
		INSERT INTO balances (id, amount, updated_at)
		VALUES (1, 0, $1)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := q.Exec(ctx, query, timeToPgTimestamptz(time.Now().UTC()))

	return err
}

func scanBalance(row pgx.Row) (*domain.Balance, error) {
	var (
		amount    pgtype.Numeric
		updatedAt pgtype.Timestamptz
	)

	if err := row.Scan(&amount, &updatedAt); err != nil {
		return nil, err
	}

	return &domain.Balance{
		Amount:    numericToDecimal(amount),
		UpdatedAt: updatedAt.Time,
	}, nil
}
