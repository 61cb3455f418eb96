package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/iho/shopbook/internal/domain"
	"github.com/iho/shopbook/internal/usecase"
	"github.com/iho/shopbook/internal/usecase/mocks"
)

func TestResolveComputesProfitFromCostBasis(t *testing.T) {
	entryRepo := mocks.NewMockEntryRepository()
	balanceRepo := mocks.NewMockBalanceRepository()
	resolver := usecase.NewProfitLossResolver(entryRepo, balanceRepo, nil)
	tx := &mocks.MockTransaction{}
	ctx := context.Background()

	seed := []*domain.Entry{
		{ID: "sell-1", Kind: domain.KindSell, TotalAmount: d("1000"), Completion: domain.CompletionCompleted},
		{ID: "p-1", Kind: domain.KindPurchase, LinkedSellID: "sell-1", TotalAmount: d("300")},
		{ID: "p-2", Kind: domain.KindPurchase, LinkedSellID: "sell-1", TotalAmount: d("100")},
		{ID: "d-1", Kind: domain.KindDelivery, LinkedSellID: "sell-1", TotalAmount: d("50"), Note: domain.NoteDeliveryOwn},
		{ID: "d-2", Kind: domain.KindDelivery, LinkedSellID: "sell-1", TotalAmount: d("80"), Note: domain.NoteDeliveryCustomer},
	}
	for _, e := range seed {
		e.CreatedAt = time.Now()
		if err := entryRepo.Create(ctx, tx, e); err != nil {
			t.Fatalf("failed to seed entry %s: %v", e.ID, err)
		}
	}

	if err := resolver.Resolve(ctx, tx, "sell-1"); err != nil {
		t.Fatalf("failed to resolve: %v", err)
	}

	sell, err := entryRepo.GetByID(ctx, "sell-1")
	if err != nil {
		t.Fatalf("failed to reload sell: %v", err)
	}

	// 1000 - 400 purchases - 50 own delivery; the customer delivery is not
	// part of the cost basis.
	if !sell.ProfitOrLoss.Equal(d("550")) || sell.ProfitKind != domain.ProfitKindProfit {
		t.Fatalf("expected profit 550, got %s %s", sell.ProfitKind, sell.ProfitOrLoss)
	}

	if !balanceRepo.Amount().Equal(d("550")) {
		t.Fatalf("expected balance credited by 550, got %s", balanceRepo.Amount())
	}
}

func TestResolveClassifiesLoss(t *testing.T) {
	entryRepo := mocks.NewMockEntryRepository()
	balanceRepo := mocks.NewMockBalanceRepository()
	resolver := usecase.NewProfitLossResolver(entryRepo, balanceRepo, nil)
	tx := &mocks.MockTransaction{}
	ctx := context.Background()

	seed := []*domain.Entry{
		{ID: "sell-1", Kind: domain.KindSell, TotalAmount: d("200"), Completion: domain.CompletionCompleted},
		{ID: "p-1", Kind: domain.KindPurchase, LinkedSellID: "sell-1", TotalAmount: d("350")},
	}
	for _, e := range seed {
		if err := entryRepo.Create(ctx, tx, e); err != nil {
			t.Fatalf("failed to seed entry %s: %v", e.ID, err)
		}
	}

	if err := resolver.Resolve(ctx, tx, "sell-1"); err != nil {
		t.Fatalf("failed to resolve: %v", err)
	}

	sell, err := entryRepo.GetByID(ctx, "sell-1")
	if err != nil {
		t.Fatalf("failed to reload sell: %v", err)
	}

	if !sell.ProfitOrLoss.Equal(d("-150")) || sell.ProfitKind != domain.ProfitKindLoss {
		t.Fatalf("expected loss -150, got %s %s", sell.ProfitKind, sell.ProfitOrLoss)
	}

	if !balanceRepo.Amount().Equal(d("-150")) {
		t.Fatalf("expected balance debited by 150, got %s", balanceRepo.Amount())
	}
}

func TestResolveMissingSellIsNoOp(t *testing.T) {
	entryRepo := mocks.NewMockEntryRepository()
	balanceRepo := mocks.NewMockBalanceRepository()
	resolver := usecase.NewProfitLossResolver(entryRepo, balanceRepo, nil)

	if err := resolver.Resolve(context.Background(), &mocks.MockTransaction{}, "gone"); err != nil {
		t.Fatalf("expected no-op for missing sell, got %v", err)
	}

	if !balanceRepo.Amount().IsZero() {
		t.Fatalf("balance must be untouched, got %s", balanceRepo.Amount())
	}
}
