package domain

import "errors"

// Validation failures. They are final for the given input.
var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidShareCount  = errors.New("invalid shares")
	ErrUnknownSymbol      = errors.New("invalid symbol")
	ErrInsufficientFunds  = errors.New("not enough cash")
	ErrInsufficientShares = errors.New("not enough shares")
)

// Transient failures. The caller may retry with the same input.
var (
	ErrQuoteUnavailable = errors.New("quote service unavailable")
	ErrStoreUnavailable = errors.New("ledger store unavailable")
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("username already taken")
)

func IsTransient(err error) bool {
	return errors.Is(err, ErrQuoteUnavailable) || errors.Is(err, ErrStoreUnavailable)
}

func IsValidation(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidShareCount),
		errors.Is(err, ErrUnknownSymbol),
		errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrInsufficientShares):
		return true
	}
	return false
}
