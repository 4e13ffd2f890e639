package stored

import (
	"errors"
	"fmt"
)

// ErrInvalidEntry is the sentinel that every entry validation error matches with errors.Is.
var ErrInvalidEntry = errors.New("invalid entry")

// EncodingError is returned when an entry's name cannot be stored as UTF-8 bytes, or is empty.
type EncodingError struct {
	Index int
	Name  string
	// Reason is a short description such as "empty name" or "invalid UTF-8".
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("entry %d (%q): encode name error: %s", e.Index, e.Name, e.Reason)
}

func (e *EncodingError) Is(target error) bool {
	return target == ErrInvalidEntry
}

// FieldOverflowError is returned when a derived value does not fit in its fixed-width ZIP field.
//
// Index is -1 for archive-level fields such as the entry count or the central directory size.
type FieldOverflowError struct {
	Index int
	Name  string
	Field string
	Value uint64
	Max   uint64
}

func (e *FieldOverflowError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("archive: %s overflows: got %d, max %d", e.Field, e.Value, e.Max)
	}

	return fmt.Sprintf("entry %d (%q): %s overflows: got %d, max %d", e.Index, e.Name, e.Field, e.Value, e.Max)
}

func (e *FieldOverflowError) Is(target error) bool {
	return target == ErrInvalidEntry
}

// MethodError is returned when an entry asks for a compression method other than Store.
type MethodError struct {
	Index  int
	Name   string
	Method uint16
}

func (e *MethodError) Error() string {
	return fmt.Sprintf("entry %d (%q): unsupported compression method %d", e.Index, e.Name, e.Method)
}

func (e *MethodError) Is(target error) bool {
	return target == ErrInvalidEntry
}
