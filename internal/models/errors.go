package models

import "errors"

// Sentinel errors shared across the service and storage layers. Handlers map
// these to HTTP status codes with errors.Is.
var (
	// ErrLotNotFound indicates a lookup for a lot ID with no stored lot.
	ErrLotNotFound = errors.New("lot not found")

	// ErrInvalidLotState indicates a mutation that would leave a lot in an
	// impossible state, such as selling more shares than remain.
	ErrInvalidLotState = errors.New("invalid lot state")

	// ErrValidation indicates a malformed request rejected before it touched
	// any stored state.
	ErrValidation = errors.New("validation failed")
)
