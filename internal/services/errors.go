package services

import "errors"

// Report lifecycle errors. Handlers match these with errors.Is; wrapped
// errors carry the detail for logs only.
var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("report not found")
	ErrAccessDenied     = errors.New("access denied")
	ErrPaymentRequired  = errors.New("payment required")
	ErrProvider         = errors.New("completion provider failed")
	ErrStore            = errors.New("report store failed")
	ErrAlreadyPaid      = errors.New("report already paid")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// ValidationError carries the rejection reason for an idea text.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation failed: " + e.Reason }

func (e *ValidationError) Unwrap() error { return ErrValidation }
