package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/shopbook/internal/domain"
	"github.com/iho/shopbook/internal/usecase"
)

// Order id format: fixed prefix, zero-padded digits (six or more once the
// sequence outgrows them), fixed suffix. Children of a sell append a single
// letter to the sell's own id.
const (
	orderIDPrefix  = "#P"
	orderIDSuffix  = "K"
	orderIDPattern = `^#P[0-9]{6,}K$`
)

// OrderIDAllocator implements usecase.OrderIDAllocator by scanning existing
// order ids at call time. Allocation runs inside the transition's transaction,
// after the balance lock, so concurrent calls cannot hand out the same id; the
// UNIQUE index on order_id is the final guard.
type OrderIDAllocator struct {
	pool *pgxpool.Pool
}

// NewOrderIDAllocator creates a new OrderIDAllocator.
func NewOrderIDAllocator(pool *pgxpool.Pool) *OrderIDAllocator {
	return &OrderIDAllocator{pool: pool}
}

func (a *OrderIDAllocator) db(tx usecase.Transaction) querier {
	if tx != nil {
		return tx.(*Tx).PgxTx()
	}

	return a.pool
}

// NextRootID returns the next free root order id, one past the numerically
// highest in use, starting at 000001.
func (a *OrderIDAllocator) NextRootID(ctx context.Context, tx usecase.Transaction) (string, error) {
	query := `
		SELECT COALESCE(MAX(substring(order_id FROM '^#P([0-9]+)K$')::int), 0)
		FROM entries
		WHERE order_id ~ $1
	`

	var max int
	if err := a.db(tx).QueryRow(ctx, query, orderIDPattern).Scan(&max); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%06d%s", orderIDPrefix, max+1, orderIDSuffix), nil
}

// NextChildID returns the sell's order id plus the lowest unused letter A-Z.
// A deleted child's letter becomes free again; letters still held by
// siblings are skipped. Every sell is assigned an order id at creation,
// so a missing one is an error.
func (a *OrderIDAllocator) NextChildID(ctx context.Context, tx usecase.Transaction, sell *domain.Entry) (string, error) {
	base := sell.OrderID
	if base == "" {
		return "", domain.ErrMissingOrderID
	}

	query := `SELECT order_id FROM entries WHERE order_id LIKE $1 || '%'`

	rows, err := a.db(tx).Query(ctx, query, base)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var used ['Z' - 'A' + 1]bool
	for rows.Next() {
		var orderID string
		if err := rows.Scan(&orderID); err != nil {
			return "", err
		}

		if len(orderID) != len(base)+1 {
			continue
		}

		letter := orderID[len(base)]
		if letter >= 'A' && letter <= 'Z' {
			used[letter-'A'] = true
		}
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	for i, taken := range used {
		if !taken {
			return fmt.Sprintf("%s%c", base, 'A'+i), nil
		}
	}

	return "", fmt.Errorf("order id %s: all child letters in use", base)
}
