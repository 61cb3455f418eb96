package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/iho/shopbook/internal/domain"
	"github.com/iho/shopbook/internal/usecase"
	"github.com/iho/shopbook/internal/usecase/mocks"
)

func TestGetStatsAggregatesWindows(t *testing.T) {
	statsRepo := mocks.NewMockStatsRepository()
	balanceRepo := mocks.NewMockBalanceRepository()

	var windows []time.Time
	statsRepo.TotalsByKindFunc = func(ctx context.Context, since, until time.Time) (*domain.KindTotals, error) {
		windows = append(windows, since)
		return &domain.KindTotals{SellTotal: d("100")}, nil
	}

	if err := balanceRepo.Adjust(context.Background(), nil, d("42")); err != nil {
		t.Fatalf("failed to seed balance: %v", err)
	}

	uc := usecase.NewStatsUseCase(statsRepo, balanceRepo, nil)

	stats, err := uc.GetStats(context.Background())
	if err != nil {
		t.Fatalf("failed to get stats: %v", err)
	}

	if len(windows) != 3 {
		t.Fatalf("expected all-time, today and this-month queries, got %d", len(windows))
	}

	if !windows[0].IsZero() {
		t.Fatalf("all-time window must start at the zero time, got %v", windows[0])
	}

	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	if !windows[1].Equal(dayStart) {
		t.Fatalf("expected today window to start at %v, got %v", dayStart, windows[1])
	}

	if !windows[2].Equal(monthStart) {
		t.Fatalf("expected month window to start at %v, got %v", monthStart, windows[2])
	}

	if !stats.AllTime.SellTotal.Equal(d("100")) {
		t.Fatalf("expected sell total 100, got %s", stats.AllTime.SellTotal)
	}

	if !stats.Balance.Equal(d("42")) {
		t.Fatalf("expected balance 42, got %s", stats.Balance)
	}
}

func TestGetStatsUsesCache(t *testing.T) {
	statsRepo := mocks.NewMockStatsRepository()
	balanceRepo := mocks.NewMockBalanceRepository()
	cache := mocks.NewMockCache()

	var calls int
	statsRepo.TotalsByKindFunc = func(ctx context.Context, since, until time.Time) (*domain.KindTotals, error) {
		calls++
		return &domain.KindTotals{ExpenseTotal: d("7")}, nil
	}

	uc := usecase.NewStatsUseCase(statsRepo, balanceRepo, cache)

	if _, err := uc.GetStats(context.Background()); err != nil {
		t.Fatalf("failed to get stats: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 repo calls on a cold cache, got %d", calls)
	}

	stats, err := uc.GetStats(context.Background())
	if err != nil {
		t.Fatalf("failed to get cached stats: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected the second read to hit the cache, got %d repo calls", calls)
	}
	if !stats.ThisMonth.ExpenseTotal.Equal(d("7")) {
		t.Fatalf("cached stats lost data, got %s", stats.ThisMonth.ExpenseTotal)
	}

	uc.InvalidateCache(context.Background())

	if _, err := uc.GetStats(context.Background()); err != nil {
		t.Fatalf("failed to get stats after invalidation: %v", err)
	}
	if calls != 6 {
		t.Fatalf("expected a fresh query after invalidation, got %d repo calls", calls)
	}
}
