package vending

import (
	"errors"
	"fmt"
)

// TickError reports a failure around a tick that already advanced the
// machine. The machine state and notifications of the tick remain valid.
type TickError struct {
	// Code identifies the error category.
	Code TickErrorCode

	// Seq is the sequence number of the affected tick.
	Seq int64

	// Event is the event the tick processed.
	Event Event

	Err error
}

// TickErrorCode categorizes tick errors.
type TickErrorCode string

const (
	// ErrCodeRecordFailed indicates the Recorder rejected the tick.
	ErrCodeRecordFailed TickErrorCode = "RECORD_FAILED"

	// ErrCodeRenderFailed indicates the Sink failed to render a notification.
	ErrCodeRenderFailed TickErrorCode = "RENDER_FAILED"
)

func (e *TickError) Error() string {
	return fmt.Sprintf("%s: tick %d (event=%s): %v", e.Code, e.Seq, e.Event, e.Err)
}

func (e *TickError) Unwrap() error {
	return e.Err
}

// IsRecordError returns true if err is a TickError from the Recorder.
func IsRecordError(err error) bool {
	var te *TickError
	if errors.As(err, &te) {
		return te.Code == ErrCodeRecordFailed
	}
	return false
}
