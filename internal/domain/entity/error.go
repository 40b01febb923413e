package entity

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrVersionConflict = errors.New("entity version conflict")
	ErrUnsupportedType = errors.New("unsupported entity type")
	ErrInvalidPayload  = errors.New("invalid payload")
)

// ApplyError - отказ предметной области применить мутацию.
// В пакетной синхронизации он превращается в failed-действие, на границе HTTP - в 422.
type ApplyError struct {
	Reason string
	Err    error
}

func (e *ApplyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}

func newApplyError(err error, format string, args ...any) *ApplyError {
	return &ApplyError{Reason: fmt.Sprintf(format, args...), Err: err}
}
