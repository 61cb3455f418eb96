package domain

import "errors"

var (
	// Entry errors
	ErrEntryNotFound       = errors.New("entry not found")
	ErrLinkedSellNotFound  = errors.New("linked sell entry not found")
	ErrLinkedSellRequired  = errors.New("entry must link to a sell entry")
	ErrLinkedSellForbidden = errors.New("entry cannot link to a sell entry")
	ErrLinkedSellNotSell   = errors.New("linked entry is not a sell")
	ErrKindImmutable       = errors.New("entry kind cannot be changed")
	ErrLinkImmutable       = errors.New("linked sell cannot be changed")
	ErrInvalidKind         = errors.New("invalid entry kind")
	ErrInvalidAmount       = errors.New("amount must be a valid non-negative number")
	ErrInvalidDelivery     = errors.New("invalid delivery type or amount")
	ErrMissingOrderID      = errors.New("sell entry has no order id")

	// Authorization and user errors
	ErrNotCreator      = errors.New("only the creator may modify this entry")
	ErrSelfReview      = errors.New("cannot review your own entry")
	ErrInvalidReview   = errors.New("review status must be correct or incorrect")
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrInvalidEmail    = errors.New("invalid email format")
	ErrInvalidPassword = errors.New("invalid password")
	ErrBadCredentials  = errors.New("invalid email or password")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidToken    = errors.New("invalid token")
	ErrExpiredToken    = errors.New("token has expired")
)
