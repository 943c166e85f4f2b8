package services

import "errors"

// Error taxonomy surfaced by the booking ledger. Controllers translate these
// to HTTP statuses; the webhook translates them to chat replies.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("invalid input")

	// ErrSlotConflict means the requested interval overlaps a confirmed
	// booking. Distinguishable from validation so clients can re-prompt for
	// a different time.
	ErrSlotConflict = errors.New("slot already booked")

	// ErrForbidden means a cancellation was attempted by a non-owner.
	ErrForbidden = errors.New("forbidden")

	// ErrRegistrationRequired is the chat three-step protocol signal: the
	// external identity has no customer record yet, so the booking was not
	// created and the user must register first.
	ErrRegistrationRequired = errors.New("registration required")

	// ErrIdentityBound means the chat identity is already linked to a
	// different phone-identified customer.
	ErrIdentityBound = errors.New("identity already bound")

	// ErrNotCancellable means the booking has already completed.
	ErrNotCancellable = errors.New("booking cannot be cancelled")
)
