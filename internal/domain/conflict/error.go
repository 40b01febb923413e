package conflict

import "errors"

var (
	ErrNotFound          = errors.New("conflict not found")
	ErrAlreadyResolved   = errors.New("conflict already resolved")
	ErrInvalidResolution = errors.New("invalid resolution")
	ErrValidation        = errors.New("invalid conflict")
)
