package service

import "errors"

// Ledger error taxonomy. Handlers map these onto HTTP statuses with
// errors.Is; anything unrecognized is treated as a storage failure.
var (
	ErrValidation        = errors.New("validation failed")
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock remaining")
)
