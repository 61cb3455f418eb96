package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/shopbook/internal/domain"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestCompletionFor(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		advance  string
		rest     string
		total    string
		expected domain.CompletionState
	}{
		{"fully paid upfront", "1000", "0", "1000", domain.CompletionCompleted},
		{"paid in two parts", "400", "600", "1000", domain.CompletionCompleted},
		{"partially paid", "400", "0", "1000", domain.CompletionProcessing},
		{"nothing paid", "0", "0", "1000", domain.CompletionProcessing},
		{"overpaid stays open", "400", "700", "1000", domain.CompletionProcessing},
		{"zero total zero paid", "0", "0", "0", domain.CompletionCompleted},
		{"exact with decimals", "99.99", "0.01", "100", domain.CompletionCompleted},
		{"off by a cent", "99.99", "0", "100", domain.CompletionProcessing},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := domain.CompletionFor(d(tc.advance), d(tc.rest), d(tc.total))
			if got != tc.expected {
				t.Fatalf("CompletionFor(%s, %s, %s) = %s, expected %s",
					tc.advance, tc.rest, tc.total, got, tc.expected)
			}
		})
	}
}

func TestClassifyProfit(t *testing.T) {
	t.Parallel()

	if got := domain.ClassifyProfit(d("550")); got != domain.ProfitKindProfit {
		t.Fatalf("expected profit, got %s", got)
	}

	if got := domain.ClassifyProfit(d("-25")); got != domain.ProfitKindLoss {
		t.Fatalf("expected loss, got %s", got)
	}

	if got := domain.ClassifyProfit(decimal.Zero); got != domain.ProfitKindNeutral {
		t.Fatalf("expected neutral, got %s", got)
	}
}

func TestKindValidation(t *testing.T) {
	t.Parallel()

	valid := []domain.Kind{
		domain.KindSell, domain.KindPurchase, domain.KindExpense,
		domain.KindOther, domain.KindRestMoney, domain.KindDelivery,
	}
	for _, k := range valid {
		if !k.IsValid() {
			t.Errorf("expected %s to be valid", k)
		}
	}

	for _, k := range []domain.Kind{"", "giveaway", "Sell", "SELL"} {
		if k.IsValid() {
			t.Errorf("expected %q to be invalid", k)
		}
	}
}

func TestKindRequiresLinkedSell(t *testing.T) {
	t.Parallel()

	linked := map[domain.Kind]bool{
		domain.KindSell:      false,
		domain.KindPurchase:  true,
		domain.KindExpense:   false,
		domain.KindOther:     false,
		domain.KindRestMoney: true,
		domain.KindDelivery:  true,
	}

	for kind, expected := range linked {
		if got := kind.RequiresLinkedSell(); got != expected {
			t.Errorf("RequiresLinkedSell(%s) = %v, expected %v", kind, got, expected)
		}
	}
}

func TestIsOwnDelivery(t *testing.T) {
	t.Parallel()

	own := &domain.Entry{Kind: domain.KindDelivery, Note: domain.NoteDeliveryOwn}
	if !own.IsOwnDelivery() {
		t.Fatal("expected own delivery")
	}

	customer := &domain.Entry{Kind: domain.KindDelivery, Note: domain.NoteDeliveryCustomer}
	if customer.IsOwnDelivery() {
		t.Fatal("customer delivery must not count as own")
	}

	expense := &domain.Entry{Kind: domain.KindExpense, Note: domain.NoteDeliveryOwn}
	if expense.IsOwnDelivery() {
		t.Fatal("non-delivery kinds must not count as own delivery")
	}
}

func TestCostAmount(t *testing.T) {
	t.Parallel()

	entry := &domain.Entry{TotalAmount: d("400"), DeliveryCharge: d("35")}
	if !entry.CostAmount().Equal(d("435")) {
		t.Fatalf("expected cost 435, got %s", entry.CostAmount())
	}
}
