package runner

import "errors"

var (
	// ErrNotReached marks a UI element that never became available
	ErrNotReached = errors.New("not reached")
	// ErrAborted marks a browser session that can no longer be driven
	ErrAborted = errors.New("browser session aborted")
)
