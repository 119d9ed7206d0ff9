package model

import "errors"

// Failure classes. Every error out of the pipeline wraps one of these so
// callers can tell a bad configuration from a wire-level fault.
var (
	// ErrConfig covers malformed grid/extent configuration detected before
	// any data movement.
	ErrConfig = errors.New("invalid configuration")

	// ErrProtocol covers transfers whose size or tag does not match what the
	// receiver computed. Never recoverable; the run must abort.
	ErrProtocol = errors.New("transfer protocol mismatch")

	// ErrData covers unusable field data (NaN/Inf values, truncated input).
	ErrData = errors.New("bad field data")
)
