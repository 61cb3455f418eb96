package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/shopbook/internal/adapter/repository/postgres"
	"github.com/iho/shopbook/internal/domain"
	"github.com/iho/shopbook/internal/usecase"
	"github.com/iho/shopbook/tests/testutil"
)

func newEntryUseCase(testDB *testutil.TestDB) (*usecase.EntryUseCase, *postgres.BalanceRepository) {
	pool := testDB.Pool

	entryRepo := postgres.NewEntryRepository(pool)
	balanceRepo := postgres.NewBalanceRepository(pool)
	resolver := usecase.NewProfitLossResolver(entryRepo, balanceRepo, nil)

	uc := usecase.NewEntryUseCase(
		postgres.NewTxManager(pool),
		entryRepo,
		balanceRepo,
		postgres.NewOrderIDAllocator(pool),
		resolver,
		postgres.NewULIDGenerator(),
		postgres.NewRetrier(zerolog.Nop()),
		nil,
	)

	return uc, balanceRepo
}

func assertBalance(t *testing.T, ctx context.Context, balanceRepo *postgres.BalanceRepository, expected string) {
	t.Helper()

	balance, err := balanceRepo.Get(ctx)
	if err != nil {
		t.Fatalf("failed to read balance: %v", err)
	}

	want, _ := decimal.NewFromString(expected)
	if !balance.Amount.Equal(want) {
		t.Fatalf("expected balance %s, got %s", expected, balance.Amount)
	}
}

func TestSellLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	uc, balanceRepo := newEntryUseCase(testDB)

	t.Run("partial sell completed by rest money", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		user := testDB.CreateTestUser(ctx, "owner@example.com", "Owner")

		sell, err := uc.CreateEntry(ctx, usecase.CreateEntryInput{
			Kind:        domain.KindSell,
			Name:        "Rahim",
			TotalAmount: decimal.NewFromInt(1000),
			Advance:     decimal.NewFromInt(400),
			CreatedBy:   user.ID,
		})
		if err != nil {
			t.Fatalf("failed to create sell: %v", err)
		}

		if sell.Completion != domain.CompletionProcessing {
			t.Fatalf("expected processing, got %s", sell.Completion)
		}
		assertBalance(t, ctx, balanceRepo, "400")

		if _, err := uc.CreateEntry(ctx, usecase.CreateEntryInput{
			Kind:         domain.KindRestMoney,
			RestMoney:    decimal.NewFromInt(600),
			LinkedSellID: sell.ID,
			CreatedBy:    user.ID,
		}); err != nil {
			t.Fatalf("failed to create rest money: %v", err)
		}

		reloaded, err := uc.GetEntry(ctx, sell.ID)
		if err != nil {
			t.Fatalf("failed to reload sell: %v", err)
		}

		if reloaded.Completion != domain.CompletionCompleted {
			t.Fatalf("expected completed, got %s", reloaded.Completion)
		}

		if !reloaded.ProfitOrLoss.Equal(decimal.NewFromInt(1000)) {
			t.Fatalf("expected profit 1000, got %s", reloaded.ProfitOrLoss)
		}

		// 400 advance + 600 rest + 1000 profit.
		assertBalance(t, ctx, balanceRepo, "2000")
	})

	t.Run("costs shrink the resolved profit", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		user := testDB.CreateTestUser(ctx, "owner@example.com", "Owner")

		sell, err := uc.CreateEntry(ctx, usecase.CreateEntryInput{
			Kind:        domain.KindSell,
			TotalAmount: decimal.NewFromInt(1000),
			CreatedBy:   user.ID,
		})
		if err != nil {
			t.Fatalf("failed to create sell: %v", err)
		}

		if _, err := uc.CreateEntry(ctx, usecase.CreateEntryInput{
			Kind:         domain.KindPurchase,
			TotalAmount:  decimal.NewFromInt(400),
			LinkedSellID: sell.ID,
			CreatedBy:    user.ID,
		}); err != nil {
			t.Fatalf("failed to create purchase: %v", err)
		}

		if _, err := uc.CreateEntry(ctx, usecase.CreateEntryInput{
			Kind:           domain.KindDelivery,
			DeliveryType:   domain.DeliveryOwn,
			DeliveryAmount: decimal.NewFromInt(50),
			LinkedSellID:   sell.ID,
			CreatedBy:      user.ID,
		}); err != nil {
			t.Fatalf("failed to create delivery: %v", err)
		}

		if _, err := uc.CreateEntry(ctx, usecase.CreateEntryInput{
			Kind:         domain.KindRestMoney,
			RestMoney:    decimal.NewFromInt(1000),
			LinkedSellID: sell.ID,
			CreatedBy:    user.ID,
		}); err != nil {
			t.Fatalf("failed to create rest money: %v", err)
		}

		reloaded, err := uc.GetEntry(ctx, sell.ID)
		if err != nil {
			t.Fatalf("failed to reload sell: %v", err)
		}

		if !reloaded.ProfitOrLoss.Equal(decimal.NewFromInt(550)) {
			t.Fatalf("expected profit 550, got %s", reloaded.ProfitOrLoss)
		}

		assertBalance(t, ctx, balanceRepo, "1100")
	})

	t.Run("deleting a sell cascades and restores the balance", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		user := testDB.CreateTestUser(ctx, "owner@example.com", "Owner")

		sell, err := uc.CreateEntry(ctx, usecase.CreateEntryInput{
			Kind:        domain.KindSell,
			TotalAmount: decimal.NewFromInt(1000),
			Advance:     decimal.NewFromInt(1000),
			CreatedBy:   user.ID,
		})
		if err != nil {
			t.Fatalf("failed to create sell: %v", err)
		}

		purchase, err := uc.CreateEntry(ctx, usecase.CreateEntryInput{
			Kind:         domain.KindPurchase,
			TotalAmount:  decimal.NewFromInt(300),
			LinkedSellID: sell.ID,
			CreatedBy:    user.ID,
		})
		if err != nil {
			t.Fatalf("failed to create purchase: %v", err)
		}

		if err := uc.DeleteEntry(ctx, sell.ID, user.ID); err != nil {
			t.Fatalf("failed to delete sell: %v", err)
		}

		assertBalance(t, ctx, balanceRepo, "0")

		if _, err := uc.GetEntry(ctx, purchase.ID); !errors.Is(err, domain.ErrEntryNotFound) {
			t.Fatalf("expected purchase deleted with its sell, got %v", err)
		}
	})

	t.Run("customer delivery books two entries with no balance effect", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		user := testDB.CreateTestUser(ctx, "owner@example.com", "Owner")

		sell, err := uc.CreateEntry(ctx, usecase.CreateEntryInput{
			Kind:        domain.KindSell,
			TotalAmount: decimal.NewFromInt(1000),
			Advance:     decimal.NewFromInt(400),
			CreatedBy:   user.ID,
		})
		if err != nil {
			t.Fatalf("failed to create sell: %v", err)
		}

		if _, err := uc.CreateEntry(ctx, usecase.CreateEntryInput{
			Kind:           domain.KindDelivery,
			DeliveryType:   domain.DeliveryCustomer,
			DeliveryAmount: decimal.NewFromInt(80),
			LinkedSellID:   sell.ID,
			CreatedBy:      user.ID,
		}); err != nil {
			t.Fatalf("failed to create delivery: %v", err)
		}

		assertBalance(t, ctx, balanceRepo, "400")

		entries, err := uc.ListEntries(ctx, usecase.ListEntriesInput{})
		if err != nil {
			t.Fatalf("failed to list entries: %v", err)
		}

		if len(entries) != 3 {
			t.Fatalf("expected sell plus two delivery entries, got %d", len(entries))
		}
	})

	t.Run("order ids are sequential with lettered children", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		user := testDB.CreateTestUser(ctx, "owner@example.com", "Owner")

		first, err := uc.CreateEntry(ctx, usecase.CreateEntryInput{
			Kind:        domain.KindSell,
			TotalAmount: decimal.NewFromInt(100),
			CreatedBy:   user.ID,
		})
		if err != nil {
			t.Fatalf("failed to create sell: %v", err)
		}

		second, err := uc.CreateEntry(ctx, usecase.CreateEntryInput{
			Kind:        domain.KindSell,
			TotalAmount: decimal.NewFromInt(100),
			CreatedBy:   user.ID,
		})
		if err != nil {
			t.Fatalf("failed to create sell: %v", err)
		}

		child, err := uc.CreateEntry(ctx, usecase.CreateEntryInput{
			Kind:         domain.KindPurchase,
			TotalAmount:  decimal.NewFromInt(10),
			LinkedSellID: first.ID,
			CreatedBy:    user.ID,
		})
		if err != nil {
			t.Fatalf("failed to create purchase: %v", err)
		}

		if first.OrderID != "#P000001K" || second.OrderID != "#P000002K" {
			t.Fatalf("unexpected root order ids: %s, %s", first.OrderID, second.OrderID)
		}

		if child.OrderID != "#P000001KA" {
			t.Fatalf("unexpected child order id: %s", child.OrderID)
		}
	})

	t.Run("child letters skip siblings and reuse freed ones", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		user := testDB.CreateTestUser(ctx, "owner@example.com", "Owner")

		sell, err := uc.CreateEntry(ctx, usecase.CreateEntryInput{
			Kind:        domain.KindSell,
			TotalAmount: decimal.NewFromInt(1000),
			CreatedBy:   user.ID,
		})
		if err != nil {
			t.Fatalf("failed to create sell: %v", err)
		}

		children := make([]*domain.Entry, 0, 3)
		for i := 0; i < 3; i++ {
			child, err := uc.CreateEntry(ctx, usecase.CreateEntryInput{
				Kind:         domain.KindPurchase,
				TotalAmount:  decimal.NewFromInt(10),
				LinkedSellID: sell.ID,
				CreatedBy:    user.ID,
			})
			if err != nil {
				t.Fatalf("failed to create purchase: %v", err)
			}
			children = append(children, child)
		}

		for i, want := range []string{"#P000001KA", "#P000001KB", "#P000001KC"} {
			if children[i].OrderID != want {
				t.Fatalf("expected child order id %s, got %s", want, children[i].OrderID)
			}
		}

		if err := uc.DeleteEntry(ctx, children[1].ID, user.ID); err != nil {
			t.Fatalf("failed to delete purchase: %v", err)
		}

		refill, err := uc.CreateEntry(ctx, usecase.CreateEntryInput{
			Kind:         domain.KindPurchase,
			TotalAmount:  decimal.NewFromInt(10),
			LinkedSellID: sell.ID,
			CreatedBy:    user.ID,
		})
		if err != nil {
			t.Fatalf("failed to create purchase: %v", err)
		}

		if refill.OrderID != "#P000001KB" {
			t.Fatalf("expected the freed letter B, got %s", refill.OrderID)
		}

		next, err := uc.CreateEntry(ctx, usecase.CreateEntryInput{
			Kind:         domain.KindPurchase,
			TotalAmount:  decimal.NewFromInt(10),
			LinkedSellID: sell.ID,
			CreatedBy:    user.ID,
		})
		if err != nil {
			t.Fatalf("failed to create purchase: %v", err)
		}

		if next.OrderID != "#P000001KD" {
			t.Fatalf("expected letter D past the held A-C, got %s", next.OrderID)
		}
	})

	t.Run("root ids continue past six digits", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		user := testDB.CreateTestUser(ctx, "owner@example.com", "Owner")

		if _, err := testDB.Pool.Exec(ctx, `
			INSERT INTO entries (id, order_id, kind, created_by)
			VALUES ('wide-order-id', '#P1000000K', 'sell', $1)
		`, user.ID); err != nil {
			t.Fatalf("failed to seed entry: %v", err)
		}

		sell, err := uc.CreateEntry(ctx, usecase.CreateEntryInput{
			Kind:        domain.KindSell,
			TotalAmount: decimal.NewFromInt(100),
			CreatedBy:   user.ID,
		})
		if err != nil {
			t.Fatalf("failed to create sell: %v", err)
		}

		if sell.OrderID != "#P1000001K" {
			t.Fatalf("expected #P1000001K, got %s", sell.OrderID)
		}
	})

	t.Run("review verdicts", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		creator := testDB.CreateTestUser(ctx, "creator@example.com", "Creator")
		reviewer := testDB.CreateTestUser(ctx, "reviewer@example.com", "Reviewer")

		expense, err := uc.CreateEntry(ctx, usecase.CreateEntryInput{
			Kind:        domain.KindExpense,
			Name:        "Rent",
			TotalAmount: decimal.NewFromInt(500),
			CreatedBy:   creator.ID,
		})
		if err != nil {
			t.Fatalf("failed to create expense: %v", err)
		}

		if _, err := uc.ReviewEntry(ctx, usecase.ReviewEntryInput{
			EntryID:    expense.ID,
			ReviewerID: creator.ID,
			Status:     domain.ReviewCorrect,
		}); !errors.Is(err, domain.ErrSelfReview) {
			t.Fatalf("expected ErrSelfReview, got %v", err)
		}

		if _, err := uc.ReviewEntry(ctx, usecase.ReviewEntryInput{
			EntryID:    expense.ID,
			ReviewerID: reviewer.ID,
			Status:     domain.ReviewIncorrect,
			Note:       "check the amount",
		}); err != nil {
			t.Fatalf("failed to review: %v", err)
		}

		assigned, err := uc.ListAssigned(ctx, creator.ID)
		if err != nil {
			t.Fatalf("failed to list assigned: %v", err)
		}

		if len(assigned) != 1 || assigned[0].ID != expense.ID {
			t.Fatalf("expected the flagged expense assigned to its creator, got %d entries", len(assigned))
		}
	})
}
