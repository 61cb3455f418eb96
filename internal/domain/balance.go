package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is the single running cash position of the business. It is created
// lazily with a zero amount on first access and mutated in place afterwards.
type Balance struct {
	Amount    decimal.Decimal
	UpdatedAt time.Time
}
