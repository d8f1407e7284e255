package gateway

import (
	"fmt"
	"time"
)

// SubmissionError reports that the single submit attempt failed: connection
// error, non-success status, or a response without a job identifier.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("job submission failed: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// TimeoutError reports that the await timer won the race against the
// notification channel.
type TimeoutError struct {
	JobID   string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("job %s: no result within %s", e.JobID, e.Timeout)
}

// TransportError reports that the notification channel failed before a
// terminal message arrived.
type TransportError struct {
	JobID string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("job %s: notification channel failed: %v", e.JobID, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError reports that the terminal message was not a valid result
// payload. It is treated the same as a transport failure: no retry.
type ParseError struct {
	JobID string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("job %s: invalid result payload: %v", e.JobID, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
