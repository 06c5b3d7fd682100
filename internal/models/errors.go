package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for validation.
var (
	ErrMissingID    = errors.New("id is required")
	ErrInvalidKind  = errors.New("kind must be 'person' or 'interest'")
	ErrSeedConflict = errors.New("seed by id and seed all are mutually exclusive")
	ErrInvalidLimit = errors.New("limit must be between 1 and 100")
	ErrEmptyName    = errors.New("name cannot be empty")
	ErrTooLong      = errors.New("exceeds maximum length")
)

// Sentinel errors for graph operations.
var (
	ErrNodeNotFound    = errors.New("node not found")
	ErrKindMismatch    = errors.New("node exists with a different kind")
	ErrSessionNotFound = errors.New("session not found")
	ErrStaleSession    = errors.New("session was reset while expanding")
)

// Sentinel errors for lookups.
var (
	ErrPersonNotFound      = errors.New("person not found")
	ErrInterestNotFound    = errors.New("interest not found")
	ErrProfilesUnavailable = errors.New("profiles not loaded")
)

// ErrFieldTooLong returns an error indicating a field exceeds its maximum length.
func ErrFieldTooLong(field string, maxLen int) error {
	return fmt.Errorf("%s %w of %d", field, ErrTooLong, maxLen)
}

// IsValidation reports whether err is a client input error.
func IsValidation(err error) bool {
	for _, target := range []error{ErrMissingID, ErrInvalidKind, ErrSeedConflict, ErrInvalidLimit, ErrEmptyName, ErrTooLong} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}
