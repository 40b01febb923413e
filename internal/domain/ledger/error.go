package ledger

import "errors"

var (
	ErrBatchTooLarge = errors.New("batch too large")
	ErrInvalidStatus = errors.New("invalid status")
	ErrNotFound      = errors.New("action not found")
)
