package commands

import "errors"

// ErrInvalidCommand is returned when a command is rejected before it reaches
// the scheduler.
var ErrInvalidCommand = errors.New("invalid command")
