package usecase

import (
	"context"
	"errors"

	"github.com/iho/shopbook/internal/domain"
	"github.com/iho/shopbook/internal/infrastructure/metrics"
)

// ProfitLossResolver computes and stores the profit or loss of a completed
// sell and folds it into the running balance.
//
// Resolve credits the balance unconditionally, so it must run exactly once per
// completion edge. The transition engine reverses the previously credited
// amount before invoking it again for the same sell.
type ProfitLossResolver struct {
	entryRepo   EntryRepository
	balanceRepo BalanceRepository
	metrics     *metrics.Metrics
}

// NewProfitLossResolver creates a new ProfitLossResolver. metrics may be nil.
func NewProfitLossResolver(entryRepo EntryRepository, balanceRepo BalanceRepository, m *metrics.Metrics) *ProfitLossResolver {
	return &ProfitLossResolver{
		entryRepo:   entryRepo,
		balanceRepo: balanceRepo,
		metrics:     m,
	}
}

// Resolve recomputes the sell's profit/loss from its linked purchases and
// self-funded deliveries, persists it and credits the balance by it.
// A missing sell is a no-op.
func (r *ProfitLossResolver) Resolve(ctx context.Context, tx Transaction, sellID string) error {
	sell, err := r.entryRepo.GetByIDForUpdate(ctx, tx, sellID)
	if err != nil {
		if errors.Is(err, domain.ErrEntryNotFound) {
			return nil
		}

		return err
	}

	purchaseSum, err := r.entryRepo.SumByFilter(ctx, tx, EntryFilter{
		LinkedSellID: sellID,
		Kind:         domain.KindPurchase,
	})
	if err != nil {
		return err
	}

	ownDeliverySum, err := r.entryRepo.SumByFilter(ctx, tx, EntryFilter{
		LinkedSellID: sellID,
		Kind:         domain.KindDelivery,
		Note:         domain.NoteDeliveryOwn,
	})
	if err != nil {
		return err
	}

	profit := sell.TotalAmount.Sub(purchaseSum).Sub(ownDeliverySum)
	kind := domain.ClassifyProfit(profit)

	if err := r.entryRepo.UpdateProfit(ctx, tx, sellID, profit, kind); err != nil {
		return err
	}

	if err := r.balanceRepo.Adjust(ctx, tx, profit); err != nil {
		return err
	}

	if r.metrics != nil {
		r.metrics.ProfitResolutions.Inc()
		r.metrics.ProfitResolved.Observe(profit.InexactFloat64())
	}

	return nil
}
