package gateway

// State is a job's position in its lifecycle.
type State string

const (
	// StateComposed is the initial state: graph composed, nothing sent.
	StateComposed State = "composed"
	// StateSubmitted means the intake endpoint accepted the job.
	StateSubmitted State = "submitted"
	// StateAwaiting means the notification channel is open and the timer
	// is running.
	StateAwaiting State = "awaiting_result"
	// StateCompleted is terminal: a result payload arrived.
	StateCompleted State = "completed"
	// StateTimedOut is terminal: the timer fired, or the channel failed,
	// before a result arrived.
	StateTimedOut State = "timed_out"
	// StateAcknowledged is terminal for fire-and-forget jobs.
	StateAcknowledged State = "fire_and_forget_acknowledged"
	// StateSubmissionFailed is terminal: the single submit attempt failed.
	StateSubmissionFailed State = "submission_failed"
)

// Job is one submitted unit of execution. A job is owned by a single
// goroutine from submission to terminal state; the gateway owns durable job
// state beyond that point.
type Job struct {
	// ID is the gateway-assigned job identifier, empty until submission
	// succeeds.
	ID string

	state State
}

// State returns the job's current lifecycle state.
func (j *Job) State() State {
	return j.state
}
