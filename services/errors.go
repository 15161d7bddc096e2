// services/errors.go
package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrBookingNotFound  = errors.New("booking_not_found")
	ErrPackageNotFound  = errors.New("package_not_found")
	ErrProviderNotFound = errors.New("provider_not_found")
	ErrPermissionDenied = errors.New("permission_denied")

	ErrInvalidTransition = errors.New("invalid_status_transition")
	ErrAlreadyCancelled  = errors.New("booking_already_cancelled")
	ErrBookingCompleted  = errors.New("booking_completed")

	// ErrInsufficientStock aborts an inventory confirmation.
	ErrInsufficientStock = errors.New("insufficient_stock")
	// ErrResourceConflict means another confirmed booking holds the resource.
	ErrResourceConflict = errors.New("resource_conflict")
	// ErrResourceBusy means the resource lock could not be taken in time.
	ErrResourceBusy = errors.New("resource_busy")
)

// ValidationError collects every problem found with a request instead of
// stopping at the first one.
type ValidationError struct {
	fields   map[string][]string
	messages []string
}

func newValidationError() *ValidationError {
	return &ValidationError{fields: map[string][]string{}}
}

func (v *ValidationError) addField(field, msg string) {
	v.fields[field] = append(v.fields[field], msg)
	v.messages = append(v.messages, fmt.Sprintf("%s: %s", field, msg))
}

func (v *ValidationError) add(msg string) {
	v.messages = append(v.messages, msg)
}

func (v *ValidationError) empty() bool {
	return len(v.messages) == 0
}

// Messages returns the collected messages in the order they were found.
func (v *ValidationError) Messages() []string {
	out := make([]string, len(v.messages))
	copy(out, v.messages)
	return out
}

// Fields returns the names of the offending fields, sorted.
func (v *ValidationError) Fields() []string {
	out := make([]string, 0, len(v.fields))
	for f := range v.fields {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func (v *ValidationError) Error() string {
	return "validation failed: " + strings.Join(v.messages, "; ")
}
