package repository

import "errors"

var (
	// ErrOverlap means a confirmed booking already occupies part of the
	// requested interval.
	ErrOverlap = errors.New("slot_overlapped")

	// ErrDuplicateNumber means the sequencer lost the uniqueness race twice.
	ErrDuplicateNumber = errors.New("duplicate_booking_number")

	// ErrIdentityBound means the external chat identity is already linked to
	// a different phone-identified customer.
	ErrIdentityBound = errors.New("external_identity_already_bound")
)
