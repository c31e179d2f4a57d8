package domain

import "errors"

var (
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUnknownEvent      = errors.New("unknown event")
	ErrCurrencyMismatch  = errors.New("currency mismatch")

	// ErrPersistence marks a failed cart write. The mutation that caused it
	// was not applied.
	ErrPersistence = errors.New("cart not saved")
)
