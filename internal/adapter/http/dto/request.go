package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/shopbook/internal/domain"
	"github.com/iho/shopbook/internal/usecase"
)

// CreateEntryRequest represents a request to record a new entry.
type CreateEntryRequest struct {
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

	DeliveryType   string          `json:"delivery_type,omitempty"`
	DeliveryAmount decimal.Decimal `json:"delivery_amount"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateEntryRequest) ToUseCaseInput(creatorID string) usecase.CreateEntryInput {
	return usecase.CreateEntryInput{
		Kind:           domain.Kind(r.Kind),
		Name:           r.Name,
		Company:        r.Company,
		Phone:          r.Phone,
		Note:           r.Note,
		Address:        r.Address,
		TotalAmount:    r.TotalAmount,
		Advance:        r.Advance,
		RestMoney:      r.RestMoney,
		DeliveryCharge: r.DeliveryCharge,
		LinkedSellID:   r.LinkedSellID,
		DeliveryType:   domain.DeliveryType(r.DeliveryType),
		DeliveryAmount: r.DeliveryAmount,
		CreatedBy:      creatorID,
	}
}

// UpdateEntryRequest represents a partial entry edit. Absent fields keep
// their current values.
type UpdateEntryRequest struct {
	Name    *string `json:"name,omitempty"`
	Company *string `json:"company,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Note    *string `json:"note,omitempty"`
	Address *string `json:"address,omitempty"`

	TotalAmount    *decimal.Decimal `json:"total_amount,omitempty"`
	Advance        *decimal.Decimal `json:"advance,omitempty"`
	RestMoney      *decimal.Decimal `json:"rest_money,omitempty"`
	DeliveryCharge *decimal.Decimal `json:"delivery_charge,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateEntryRequest) ToUseCaseInput(entryID, editorID string) usecase.UpdateEntryInput {
	return usecase.UpdateEntryInput{
		EntryID:        entryID,
		EditorID:       editorID,
		Name:           r.Name,
		Company:        r.Company,
		Phone:          r.Phone,
		Note:           r.Note,
		Address:        r.Address,
		TotalAmount:    r.TotalAmount,
		Advance:        r.Advance,
		RestMoney:      r.RestMoney,
		DeliveryCharge: r.DeliveryCharge,
	}
}

// ReviewEntryRequest represents a review verdict on an entry.
type ReviewEntryRequest struct {
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *ReviewEntryRequest) ToUseCaseInput(entryID, reviewerID string) usecase.ReviewEntryInput {
	return usecase.ReviewEntryInput{
		EntryID:    entryID,
		ReviewerID: reviewerID,
		Status:     domain.ReviewState(r.Status),
		Note:       r.Note,
	}
}

// RegisterRequest represents a request to create a user account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// ToUseCaseInput converts to use case input.
func (r *RegisterRequest) ToUseCaseInput() usecase.RegisterInput {
	return usecase.RegisterInput{
		Email:    r.Email,
		Name:     r.Name,
		Password: r.Password,
	}
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
