package services

import "errors"

// Caller-visible failure conditions. Handlers map these to HTTP statuses;
// none of them leaves a booking record partially written.
var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrListingNotFound   = errors.New("listing not found")
	ErrForbidden         = errors.New("you don't have permission to perform this action")
	ErrInvalidTransition = errors.New("booking status cannot change this way")
	ErrInvalidQuantity   = errors.New("quantity must be a positive number of months")
	ErrMissingEvidence   = errors.New("a transaction reference or payment screenshot is required")
	ErrNoEvidence        = errors.New("cannot verify a payment without submitted evidence")
	ErrNotVerified       = errors.New("payment has not been verified")
	ErrAlreadyVerified   = errors.New("payment evidence is frozen once verified")
	ErrUpstream          = errors.New("upstream dependency failed")
)
