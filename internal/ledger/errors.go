// Package ledger holds the pure document rules: parsing, validation and
// applying queued additions to a ledger snapshot.
package ledger

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports every structural problem found in a payload.
type ValidationError struct {
	Subject  string
	Problems []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Subject, strings.Join(e.Problems, "; "))
}

// IsValidationError reports whether err is, or wraps, a ValidationError.
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

func newValidationError(subject string, problems ...string) *ValidationError {
	return &ValidationError{Subject: subject, Problems: problems}
}
