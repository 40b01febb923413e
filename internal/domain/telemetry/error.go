package telemetry

import "errors"

var (
	ErrMissingDevice = errors.New("device id is required")
)
