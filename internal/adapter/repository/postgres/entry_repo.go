package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/shopbook/internal/domain"
	"github.com/iho/shopbook/internal/usecase"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const entryColumns = `id, order_id, kind, name, company, phone, note, address,
	total_amount, advance, rest_money, delivery_charge, linked_sell_id,
	created_by, completion, review_state, reviewed_by, review_note,
	profit_or_loss, profit_kind, created_at`

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	pool *pgxpool.Pool
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

func (r *EntryRepository) db(tx usecase.Transaction) querier {
	if tx != nil {
		return tx.(*Tx).PgxTx()
	}

	return r.pool
}

// Create inserts a new entry inside the transition's transaction.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	query := `
		INSERT INTO entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21)
	`

	_, err := r.db(tx).Exec(ctx, query,
		entry.ID,
		entry.OrderID,
		string(entry.Kind),
		entry.Name,
		entry.Company,
		entry.Phone,
		entry.Note,
		entry.Address,
		decimalToNumeric(entry.TotalAmount),
		decimalToNumeric(entry.Advance),
		decimalToNumeric(entry.RestMoney),
		decimalToNumeric(entry.DeliveryCharge),
		textOrNull(entry.LinkedSellID),
		entry.CreatedBy,
		string(entry.Completion),
		string(entry.ReviewState),
		textOrNull(entry.ReviewedBy),
		entry.ReviewNote,
		decimalToNumeric(entry.ProfitOrLoss),
		string(entry.ProfitKind),
		timeToPgTimestamptz(entry.CreatedAt),
	)

	return err
}

// GetByID retrieves an entry by ID.
func (r *EntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = $1`

	return scanEntry(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves an entry by ID with a FOR UPDATE lock.
func (r *EntryRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = $1 FOR UPDATE`

	return scanEntry(r.db(tx).QueryRow(ctx, query, id))
}

// List lists entries ordered by creation time descending.
func (r *EntryRepository) List(ctx context.Context, limit, offset int) ([]*domain.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}

	return collectEntries(rows)
}

// ListByCreatorAndReview lists a creator's entries in one review state.
func (r *EntryRepository) ListByCreatorAndReview(ctx context.Context, creatorID string, state domain.ReviewState) ([]*domain.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries
		WHERE created_by = $1 AND review_state = $2
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, creatorID, string(state))
	if err != nil {
		return nil, err
	}

	return collectEntries(rows)
}

// ListSells lists sell entries, newest first.
func (r *EntryRepository) ListSells(ctx context.Context) ([]*domain.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries
		WHERE kind = 'sell'
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	return collectEntries(rows)
}

// ListByFilter lists entries narrowed by linked sell, kind and note.
func (r *EntryRepository) ListByFilter(ctx context.Context, filter usecase.EntryFilter) ([]*domain.Entry, error) {
	query, args := filterQuery(`SELECT `+entryColumns+` FROM entries`, filter)

	rows, err := r.pool.Query(ctx, query+" ORDER BY created_at DESC", args...)
	if err != nil {
		return nil, err
	}

	return collectEntries(rows)
}

// ListByLinkedSell lists all children of a sell inside the transaction.
func (r *EntryRepository) ListByLinkedSell(ctx context.Context, tx usecase.Transaction, sellID string) ([]*domain.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries
		WHERE linked_sell_id = $1
		ORDER BY created_at
	`

	rows, err := r.db(tx).Query(ctx, query, sellID)
	if err != nil {
		return nil, err
	}

	return collectEntries(rows)
}

// SumByFilter sums total_amount over entries matching the filter.
func (r *EntryRepository) SumByFilter(ctx context.Context, tx usecase.Transaction, filter usecase.EntryFilter) (decimal.Decimal, error) {
	query, args := filterQuery(`SELECT COALESCE(SUM(total_amount), 0) FROM entries`, filter)

	var sum pgtype.Numeric
	if err := r.db(tx).QueryRow(ctx, query, args...).Scan(&sum); err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(sum), nil
}

// Update rewrites an entry's mutable fields.
func (r *EntryRepository) Update(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	query := `
		UPDATE entries
		SET name = $2, company = $3, phone = $4, note = $5, address = $6,
			total_amount = $7, advance = $8, rest_money = $9,
			delivery_charge = $10, completion = $11, review_state = $12,
			reviewed_by = $13, review_note = $14, profit_or_loss = $15,
			profit_kind = $16
		WHERE id = $1
	`

	tag, err := r.db(tx).Exec(ctx, query,
		entry.ID,
		entry.Name,
		entry.Company,
		entry.Phone,
		entry.Note,
		entry.Address,
		decimalToNumeric(entry.TotalAmount),
		decimalToNumeric(entry.Advance),
		decimalToNumeric(entry.RestMoney),
		decimalToNumeric(entry.DeliveryCharge),
		string(entry.Completion),
		string(entry.ReviewState),
		textOrNull(entry.ReviewedBy),
		entry.ReviewNote,
		decimalToNumeric(entry.ProfitOrLoss),
		string(entry.ProfitKind),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}

	return nil
}

// UpdateSellPayment sets a sell's accrued rest and completion state.
func (r *EntryRepository) UpdateSellPayment(ctx context.Context, tx usecase.Transaction, id string, rest decimal.Decimal, completion domain.CompletionState) error {
	query := `UPDATE entries SET rest_money = $2, completion = $3 WHERE id = $1`

	tag, err := r.db(tx).Exec(ctx, query, id, decimalToNumeric(rest), string(completion))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}

	return nil
}

// UpdateProfit sets a sell's resolved profit/loss fields.
func (r *EntryRepository) UpdateProfit(ctx context.Context, tx usecase.Transaction, id string, profit decimal.Decimal, kind domain.ProfitKind) error {
	query := `UPDATE entries SET profit_or_loss = $2, profit_kind = $3 WHERE id = $1`

	tag, err := r.db(tx).Exec(ctx, query, id, decimalToNumeric(profit), string(kind))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}

	return nil
}

// UpdateReview records a review verdict and returns the updated entry.
func (r *EntryRepository) UpdateReview(ctx context.Context, id string, state domain.ReviewState, note, reviewerID string) (*domain.Entry, error) {
	query := `
		UPDATE entries
		SET review_state = $2, review_note = $3, reviewed_by = $4
		WHERE id = $1
		RETURNING ` + entryColumns

	return scanEntry(r.pool.QueryRow(ctx, query, id, string(state), note, textOrNull(reviewerID)))
}

// Delete removes a single entry.
func (r *EntryRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := r.db(tx).Exec(ctx, `DELETE FROM entries WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}

	return nil
}

// DeleteByLinkedSell removes every child of a sell (cascade).
func (r *EntryRepository) DeleteByLinkedSell(ctx context.Context, tx usecase.Transaction, sellID string) error {
	_, err := r.db(tx).Exec(ctx, `DELETE FROM entries WHERE linked_sell_id = $1`, sellID)

	return err
}

func filterQuery(base string, filter usecase.EntryFilter) (string, []any) {
	query := base + ` WHERE 1=1`

	var args []any
	if filter.LinkedSellID != "" {
		args = append(args, filter.LinkedSellID)
		query += fmt.Sprintf(" AND linked_sell_id = $%d", len(args))
	}

	if filter.Kind != "" {
		args = append(args, string(filter.Kind))
		query += fmt.Sprintf(" AND kind = $%d", len(args))
	}

	if filter.Note != "" {
		args = append(args, filter.Note)
		query += fmt.Sprintf(" AND note = $%d", len(args))
	}

	return query, args
}

func collectEntries(rows pgx.Rows) ([]*domain.Entry, error) {
	defer rows.Close()

	var entries []*domain.Entry
	for rows.Next() {
		entry, err := scanRow(rows)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func scanEntry(row pgx.Row) (*domain.Entry, error) {
	entry, err := scanRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}

		return nil, err
	}

	return entry, nil
}

func scanRow(row pgx.Row) (*domain.Entry, error) {
	var (
		entry          domain.Entry
		kind           string
		totalAmount    pgtype.Numeric
		advance        pgtype.Numeric
		restMoney      pgtype.Numeric
		deliveryCharge pgtype.Numeric
		linkedSellID   pgtype.Text
		completion     string
		reviewState    string
		reviewedBy     pgtype.Text
		profitOrLoss   pgtype.Numeric
		profitKind     string
		createdAt      pgtype.Timestamptz
	)

	err := row.Scan(
		&entry.ID,
		&entry.OrderID,
		&kind,
		&entry.Name,
		&entry.Company,
		&entry.Phone,
		&entry.Note,
		&entry.Address,
		&totalAmount,
		&advance,
		&restMoney,
		&deliveryCharge,
		&linkedSellID,
		&entry.CreatedBy,
		&completion,
		&reviewState,
		&reviewedBy,
		&entry.ReviewNote,
		&profitOrLoss,
		&profitKind,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	entry.Kind = domain.Kind(kind)
	entry.TotalAmount = numericToDecimal(totalAmount)
	entry.Advance = numericToDecimal(advance)
	entry.RestMoney = numericToDecimal(restMoney)
	entry.DeliveryCharge = numericToDecimal(deliveryCharge)
	entry.LinkedSellID = textValue(linkedSellID)
	entry.Completion = domain.CompletionState(completion)
	entry.ReviewState = domain.ReviewState(reviewState)
	entry.ReviewedBy = textValue(reviewedBy)
	entry.ProfitOrLoss = numericToDecimal(profitOrLoss)
	entry.ProfitKind = domain.ProfitKind(profitKind)
	entry.CreatedAt = createdAt.Time

	return &entry, nil
}
