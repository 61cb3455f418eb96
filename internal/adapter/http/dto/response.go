package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/shopbook/internal/domain"
)

// EntryResponse represents an entry in API responses.
type EntryResponse struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	Kind    string `json:"kind"`

	Name    string `json:"name,omitempty"`
	Company string `json:"company,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Note    string `json:"note,omitempty"`
	Address string `json:"address,omitempty"`

	TotalAmount    decimal.Decimal `json:"total_amount"`
	Advance        decimal.Decimal `json:"advance"`
	RestMoney      decimal.Decimal `json:"rest_money"`
	DeliveryCharge decimal.Decimal `json:"delivery_charge"`

	LinkedSellID string `json:"linked_sell_id,omitempty"`
	CreatedBy    string `json:"created_by"`

	Completion string `json:"completion,omitempty"`

	ReviewState string `json:"review_state"`
	ReviewedBy  string `json:"reviewed_by,omitempty"`
	ReviewNote  string `json:"review_note,omitempty"`

	ProfitOrLoss decimal.Decimal `json:"profit_or_loss"`
	ProfitKind   string          `json:"profit_kind,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// EntryFromDomain converts a domain entry to a response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	return &EntryResponse{
		ID:             e.ID,
		OrderID:        e.OrderID,
		Kind:           string(e.Kind),
		Name:           e.Name,
		Company:        e.Company,
		Phone:          e.Phone,
		Note:           e.Note,
		Address:        e.Address,
		TotalAmount:    e.TotalAmount,
		Advance:        e.Advance,
		RestMoney:      e.RestMoney,
		DeliveryCharge: e.DeliveryCharge,
		LinkedSellID:   e.LinkedSellID,
		CreatedBy:      e.CreatedBy,
		Completion:     string(e.Completion),
		ReviewState:    string(e.ReviewState),
		ReviewedBy:     e.ReviewedBy,
		ReviewNote:     e.ReviewNote,
		ProfitOrLoss:   e.ProfitOrLoss,
		ProfitKind:     string(e.ProfitKind),
		CreatedAt:      e.CreatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// BalanceResponse represents the running balance in API responses.
type BalanceResponse struct {
	Amount    decimal.Decimal `json:"amount"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// BalanceFromDomain converts a domain balance to a response.
func BalanceFromDomain(b *domain.Balance) *BalanceResponse {
	return &BalanceResponse{
		Amount:    b.Amount,
		UpdatedAt: b.UpdatedAt,
	}
}

// KindTotalsResponse represents totals over one time window.
type KindTotalsResponse struct {
	SellTotal     decimal.Decimal `json:"sell_total"`
	PurchaseTotal decimal.Decimal `json:"purchase_total"`
	ExpenseTotal  decimal.Decimal `json:"expense_total"`
	OtherTotal    decimal.Decimal `json:"other_total"`
	ProfitTotal   decimal.Decimal `json:"profit_total"`
	LossTotal     decimal.Decimal `json:"loss_total"`
}

// StatsResponse represents the dashboard aggregate.
type StatsResponse struct {
	AllTime   KindTotalsResponse `json:"all_time"`
	Today     KindTotalsResponse `json:"today"`
	ThisMonth KindTotalsResponse `json:"this_month"`
	Balance   decimal.Decimal    `json:"balance"`
}

func totalsFromDomain(t domain.KindTotals) KindTotalsResponse {
	return KindTotalsResponse{
		SellTotal:     t.SellTotal,
		PurchaseTotal: t.PurchaseTotal,
		ExpenseTotal:  t.ExpenseTotal,
		OtherTotal:    t.OtherTotal,
		ProfitTotal:   t.ProfitTotal,
		LossTotal:     t.LossTotal,
	}
}

// StatsFromDomain converts domain stats to a response.
func StatsFromDomain(s *domain.Stats) *StatsResponse {
	return &StatsResponse{
		AllTime:   totalsFromDomain(s.AllTime),
		Today:     totalsFromDomain(s.Today),
		ThisMonth: totalsFromDomain(s.ThisMonth),
		Balance:   s.Balance,
	}
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// UserFromDomain converts a domain user to a response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}

// LoginResponse represents a successful login.
type LoginResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
