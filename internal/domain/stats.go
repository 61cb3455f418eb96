package domain

import "github.com/shopspring/decimal"

// KindTotals aggregates entry amounts over one time window.
type KindTotals struct {
	SellTotal     decimal.Decimal
	PurchaseTotal decimal.Decimal
	ExpenseTotal  decimal.Decimal
	OtherTotal    decimal.Decimal
	ProfitTotal   decimal.Decimal
	LossTotal     decimal.Decimal
}

// Stats is the dashboard aggregate: all-time, today and this-month totals
// plus the current running balance.
type Stats struct {
	AllTime   KindTotals
	Today     KindTotals
	ThisMonth KindTotals
	Balance   decimal.Decimal
}
