package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/iho/shopbook/internal/domain"
)

// StatsUseCase serves dashboard aggregates: per-kind totals over the all-time,
// today and this-month windows plus the current balance. Results are cached
// briefly since the dashboard polls.
type StatsUseCase struct {
	statsRepo   StatsRepository
	balanceRepo BalanceRepository
	cache       Cache
	now         func() time.Time
}

// NewStatsUseCase creates a new StatsUseCase. cache may be nil.
func NewStatsUseCase(statsRepo StatsRepository, balanceRepo BalanceRepository, cache Cache) *StatsUseCase {
	return &StatsUseCase{
		statsRepo:   statsRepo,
		balanceRepo: balanceRepo,
		cache:       cache,
		now:         time.Now,
	}
}

const statsCacheKey = "stats:dashboard"

// GetStats returns the dashboard aggregate.
func (uc *StatsUseCase) GetStats(ctx context.Context) (*domain.Stats, error) {
	if uc.cache != nil {
		if cached, err := uc.cache.Get(ctx, statsCacheKey); err == nil {
			var stats domain.Stats
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return &stats, nil
			}
		}
	}

	now := uc.now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	allTime, err := uc.statsRepo.TotalsByKind(ctx, time.Time{}, now)
	if err != nil {
		return nil, err
	}

	today, err := uc.statsRepo.TotalsByKind(ctx, dayStart, now)
	if err != nil {
		return nil, err
	}

	thisMonth, err := uc.statsRepo.TotalsByKind(ctx, monthStart, now)
	if err != nil {
		return nil, err
	}

	balance, err := uc.balanceRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	stats := &domain.Stats{
		AllTime:   *allTime,
		Today:     *today,
		ThisMonth: *thisMonth,
		Balance:   balance.Amount,
	}

	if uc.cache != nil {
		if payload, err := json.Marshal(stats); err == nil {
			_ = uc.cache.Set(ctx, statsCacheKey, string(payload), StatsCacheTTL)
		}
	}

	return stats, nil
}

// InvalidateCache drops the cached dashboard aggregate, called after any
// ledger transition.
func (uc *StatsUseCase) InvalidateCache(ctx context.Context) {
	if uc.cache != nil {
		_ = uc.cache.Delete(ctx, statsCacheKey)
	}
}
