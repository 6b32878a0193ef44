package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRecord signals an occurrence record that cannot be parsed.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrInvalidGeometry signals a geometry that cannot be decoded or has no area.
	ErrInvalidGeometry = errors.New("invalid geometry")
	// ErrInvalidConfig signals a configuration value outside its allowed range.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrUnknownSource signals a data source name with no registered reader.
	ErrUnknownSource = errors.New("unknown source")
)

// RecordError wraps ErrInvalidRecord with the offending line number.
type RecordError struct {
	Line int
	Err  error
}

func (e *RecordError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("line %d: %s", e.Line, ErrInvalidRecord.Error())
	}
	return fmt.Sprintf("line %d: %s: %s", e.Line, ErrInvalidRecord.Error(), e.Err.Error())
}

func (e *RecordError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidRecord}
	}
	return []error{ErrInvalidRecord, e.Err}
}

// NewRecordError creates a record error for the given 1-based line.
func NewRecordError(line int, err error) error {
	return &RecordError{Line: line, Err: err}
}
