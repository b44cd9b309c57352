package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every failure a component surfaces wraps exactly one of
// these sentinels so the boundary (HTTP handler, CLI) can map it to a single
// user-visible message. Nothing here retries.
var (
	// ErrValidation blocks a submission before any store call is made.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicate is a store-reported uniqueness conflict (document, email).
	ErrDuplicate = errors.New("record already exists")

	// ErrSchemaMissing means the backing store exists but its schema was never
	// installed. Kept distinct so operators can diagnose a broken deployment
	// instead of chasing a generic failure.
	ErrSchemaMissing = errors.New("database schema missing")

	// ErrNotFound covers lookups with no matching record, including failed
	// credential checks (the caller is never told which of the two it was).
	ErrNotFound = errors.New("record not found")

	// ErrPendingApproval is a business-rule block, not a failure: the account
	// exists and the credentials are right, but it has not been approved yet.
	ErrPendingApproval = errors.New("account pending approval")

	// ErrInvalidTransition rejects a status change the lifecycle does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Validationf builds a validation error with a user-facing message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
