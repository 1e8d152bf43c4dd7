package models

import "errors"

// Caller-visible policy errors. Degradable upstream failures never surface
// as errors; they are recovered locally with fallback values.
var (
	// ErrNotFound indicates an unknown intent id or wallet provider
	ErrNotFound = errors.New("not found")

	// ErrInvalidAmount indicates a non-positive, non-finite, or otherwise
	// unusable amount after sanitization
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidAddress indicates a missing or unusable account address in
	// a discovery request. A caller error, never a degradation: it must not
	// be masked by the catalog fallback.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrAllowanceExceeded indicates the account's monthly sponsorship
	// allowance does not cover the requested transfer
	ErrAllowanceExceeded = errors.New("allowance exceeded")
)
