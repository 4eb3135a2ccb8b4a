package usecase

import "errors"

// ErrNotRunning is returned when events are dispatched to a stopped coordinator.
var ErrNotRunning = errors.New("call coordinator is not running")
