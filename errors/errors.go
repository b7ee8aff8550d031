package errors

import "fmt"

var (
	ErrWorkerPanic          = fmt.Errorf("worker panic")
	ErrQueueClosed          = fmt.Errorf("persist queue is closed")
	ErrSessionNotFound      = fmt.Errorf("session not found")
	ErrSessionAlreadyExists = fmt.Errorf("session already exists")
	ErrInvalidPage          = fmt.Errorf("page must be >= 0 and size > 0")
	ErrNegativeTokenDelta   = fmt.Errorf("token delta must not be negative")
	ErrMalformedCacheEntry  = fmt.Errorf("malformed cache entry")
	ErrInvalidInput         = fmt.Errorf("invalid input")
)
