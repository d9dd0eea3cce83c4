package tui

import "errors"

// ErrMissingRunFunc is returned when no analysis function is provided.
var ErrMissingRunFunc = errors.New("tui: run function is required")
