package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/shopbook/internal/domain"
)

// StatsRepository implements usecase.StatsRepository with one aggregation
// query per time window.
type StatsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository creates a new StatsRepository.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// TotalsByKind sums totalAmount per kind and profit/loss per profit kind over
// [since, until). A zero since means all time.
func (r *StatsRepository) TotalsByKind(ctx context.Context, since, until time.Time) (*domain.KindTotals, error) {
	query := `
		SELECT
			COALESCE(SUM(total_amount) FILTER (WHERE kind = 'sell'), 0),
			COALESCE(SUM(total_amount) FILTER (WHERE kind = 'purchase'), 0),
			COALESCE(SUM(total_amount) FILTER (WHERE kind = 'expense'), 0),
			COALESCE(SUM(total_amount) FILTER (WHERE kind = 'other'), 0),
			COALESCE(SUM(profit_or_loss) FILTER (WHERE profit_kind = 'profit'), 0),
			COALESCE(SUM(profit_or_loss) FILTER (WHERE profit_kind = 'loss'), 0)
		FROM entries
		WHERE created_at >= $1 AND created_at < $2
	`

	var (
		sellTotal     pgtype.Numeric
		purchaseTotal pgtype.Numeric
		expenseTotal  pgtype.Numeric
		otherTotal    pgtype.Numeric
		profitTotal   pgtype.Numeric
		lossTotal     pgtype.Numeric
	)

	err := r.pool.QueryRow(ctx, query, timeToPgTimestamptz(since), timeToPgTimestamptz(until)).Scan(
		&sellTotal,
		&purchaseTotal,
		&expenseTotal,
		&otherTotal,
		&profitTotal,
		&lossTotal,
	)
	if err != nil {
		return nil, err
	}

	return &domain.KindTotals{
		SellTotal:     numericToDecimal(sellTotal),
		PurchaseTotal: numericToDecimal(purchaseTotal),
		ExpenseTotal:  numericToDecimal(expenseTotal),
		OtherTotal:    numericToDecimal(otherTotal),
		ProfitTotal:   numericToDecimal(profitTotal),
		LossTotal:     numericToDecimal(lossTotal),
	}, nil
}
