package domain

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("not found")

// DuplicateInstanceError: create attempted for an existing
// (hotelID, instanceCode) pair.
type DuplicateInstanceError struct {
	HotelID      string
	InstanceCode string
}

func (e *DuplicateInstanceError) Error() string {
	return fmt.Sprintf("hotel instance %s/%s already exists", e.HotelID, e.InstanceCode)
}

// DateConflictError carries every instance whose range clashes with the
// candidate dates. Nothing is written when this is returned.
type DateConflictError struct {
	HotelID   string
	Conflicts []InstanceRef
}

func (e *DateConflictError) Error() string {
	codes := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		codes = append(codes, c.InstanceCode)
	}
	return fmt.Sprintf("dates overlap instances of hotel %s: %s", e.HotelID, strings.Join(codes, ", "))
}

// ValidationError: malformed input shape (bad date ordering, missing
// upload headers, ...).
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
