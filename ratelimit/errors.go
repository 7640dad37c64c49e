package ratelimit

import "errors"

var (
	// ErrUnavailable reports a transport failure talking to the bucket
	// store. Admission decisions cannot be made while it persists; the
	// caller chooses whether to fail open or closed.
	ErrUnavailable = errors.New("bucket store unavailable")
)
