package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind classifies a ledger entry by the kind of money movement it records.
type Kind string

const (
	KindSell      Kind = "sell"
	KindPurchase  Kind = "purchase"
	KindExpense   Kind = "expense"
	KindOther     Kind = "other"
	KindRestMoney Kind = "restMoney"
	KindDelivery  Kind = "delivery"
)

var validKinds = map[Kind]bool{
	KindSell:      true,
	KindPurchase:  true,
	KindExpense:   true,
	KindOther:     true,
	KindRestMoney: true,
	KindDelivery:  true,
}

// IsValid checks if the kind is a known entry kind.
func (k Kind) IsValid() bool {
	return validKinds[k]
}

// RequiresLinkedSell reports whether entries of this kind must reference a sell.
func (k Kind) RequiresLinkedSell() bool {
	return k == KindPurchase || k == KindRestMoney || k == KindDelivery
}

// CompletionState tracks whether a sell has been fully paid.
type CompletionState string

const (
	CompletionProcessing CompletionState = "processing"
	CompletionCompleted  CompletionState = "completed"
)

// ReviewState is the independent review workflow state of an entry.
type ReviewState string

const (
	ReviewPending   ReviewState = "pending"
	ReviewCorrect   ReviewState = "correct"
	ReviewIncorrect ReviewState = "incorrect"
)

// ProfitKind classifies a resolved profit/loss figure.
type ProfitKind string

const (
	ProfitKindProfit  ProfitKind = "profit"
	ProfitKindLoss    ProfitKind = "loss"
	ProfitKindNeutral ProfitKind = "neutral"
)

// DeliveryType distinguishes who absorbs a delivery charge.
type DeliveryType string

const (
	// DeliveryCustomer is collected from and paid out for the customer;
	// balance-neutral.
	DeliveryCustomer DeliveryType = "customer"

	// DeliveryOwn is absorbed by the business; reduces profit and balance.
	DeliveryOwn DeliveryType = "own"
)

// Notes used to mark delivery entries. The own-delivery note doubles as the
// filter the profit/loss resolver uses to find self-funded delivery cost.
const (
	NoteDeliveryOwn             = "Delivery Charge (Own)"
	NoteDeliveryCustomer        = "Delivery Charge (Customer)"
	NoteDeliveryCustomerPaidOut = "Delivery Charge (Customer Paid Out)"
)

// Entry represents a single financial event in the ledger.
type Entry struct {
	ID      string
	OrderID string
	Kind    Kind

	Name    string
	Company string
	Phone   string
	Note    string
	Address string

	TotalAmount    decimal.Decimal
	Advance        decimal.Decimal
	RestMoney      decimal.Decimal
	DeliveryCharge decimal.Decimal

	// LinkedSellID references the owning sell for purchase, restMoney and
	// delivery entries. Empty for root entries. Immutable after creation.
	LinkedSellID string

	CreatedBy string

	Completion CompletionState

	ReviewState ReviewState
	ReviewedBy  string
	ReviewNote  string

	ProfitOrLoss decimal.Decimal
	ProfitKind   ProfitKind

	CreatedAt time.Time
}

// CompletionFor derives the completion state of a sell from its payment
// fields: completed iff advance + rest equals the total exactly.
func CompletionFor(advance, rest, total decimal.Decimal) CompletionState {
	if advance.Add(rest).Equal(total) {
		return CompletionCompleted
	}
	return CompletionProcessing
}

// ClassifyProfit buckets a resolved profit/loss amount.
func ClassifyProfit(amount decimal.Decimal) ProfitKind {
	switch {
	case amount.IsPositive():
		return ProfitKindProfit
	case amount.IsNegative():
		return ProfitKindLoss
	default:
		return ProfitKindNeutral
	}
}

// IsOwnDelivery reports whether the entry records a self-funded delivery cost.
func (e *Entry) IsOwnDelivery() bool {
	return e.Kind == KindDelivery && e.Note == NoteDeliveryOwn
}

// CostAmount is the total balance debit a purchase carries, goods plus any
// delivery charge paid alongside it.
func (e *Entry) CostAmount() decimal.Decimal {
	return e.TotalAmount.Add(e.DeliveryCharge)
}
