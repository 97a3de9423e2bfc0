package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned when a step is requested while another is running.
	ErrBusy = errors.New("sim: step already in progress")
	// ErrFailed is returned by every step after a stage has failed.
	ErrFailed = errors.New("sim: simulation failed")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("sim: simulation closed")
)

func stageFailure(stage string, cause error) error {
	return fmt.Errorf("%w: %s stage: %w", ErrFailed, stage, cause)
}
