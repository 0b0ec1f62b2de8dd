package tui

import "errors"

// ErrMissingSessionPool is returned when the session pool is not provided.
var ErrMissingSessionPool = errors.New("tui: session pool is required")
