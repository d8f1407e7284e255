package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/comfygate/comfygate/internal/ctxlog"
)

// Outcome is the terminal product of one job lifecycle. Job is always set;
// exactly one of Ack (fire-and-forget) or Payload (awaited) is set on
// success.
type Outcome struct {
	Job     *Job
	Ack     *Acknowledgment
	Payload *Payload
}

// Submit sends the composed graph to the gateway's intake endpoint. It is
// the single submit attempt: any failure, including a malformed response,
// surfaces as a SubmissionError and the returned job is terminal.
func (c *Client) Submit(ctx context.Context, req *SubmitRequest) (*Job, error) {
	logger := ctxlog.FromContext(ctx)
	job := &Job{state: StateComposed}

	var result submitResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		Post("/execute")
	if err != nil {
		job.state = StateSubmissionFailed
		return job, &SubmissionError{Err: err}
	}
	if !resp.IsSuccess() {
		job.state = StateSubmissionFailed
		return job, &SubmissionError{Err: fmt.Errorf("gateway returned %s", resp.Status())}
	}
	if result.JobID == "" {
		job.state = StateSubmissionFailed
		return job, &SubmissionError{Err: fmt.Errorf("gateway response carried no job_id")}
	}

	job.ID = result.JobID
	job.state = StateSubmitted
	logger.Debug("Job submitted.", "job_id", job.ID, "callback_type", req.CallbackType)
	return job, nil
}

// Await opens the push-notification channel for a submitted job and blocks
// until the first terminal message or the configured timeout, whichever
// comes first. The channel is actively closed on every exit path.
func (c *Client) Await(ctx context.Context, job *Job) (*Payload, error) {
	logger := ctxlog.FromContext(ctx)

	if job.State() != StateSubmitted {
		return nil, fmt.Errorf("cannot await job in state %q", job.State())
	}

	conn, resp, err := c.dialer.DialContext(ctx, c.notificationURL(job.ID), nil)
	if err != nil {
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		job.state = StateTimedOut
		return nil, &TransportError{JobID: job.ID, Err: err}
	}
	job.state = StateAwaiting
	logger.Debug("Awaiting result.", "job_id", job.ID, "timeout", c.awaitTimeout)

	// Exactly one terminal message is expected; the reader goroutine exits
	// as soon as the first read returns, which closing the connection also
	// forces.
	type readOutcome struct {
		data []byte
		err  error
	}
	received := make(chan readOutcome, 1)
	go func() {
		_, data, err := conn.ReadMessage()
		received <- readOutcome{data: data, err: err}
	}()

	timer := time.NewTimer(c.awaitTimeout)
	defer timer.Stop()

	select {
	case <-timer.C:
		conn.Close()
		job.state = StateTimedOut
		logger.Warn("Await timed out.", "job_id", job.ID, "timeout", c.awaitTimeout)
		return nil, &TimeoutError{JobID: job.ID, Timeout: c.awaitTimeout}

	case <-ctx.Done():
		conn.Close()
		job.state = StateTimedOut
		return nil, &TransportError{JobID: job.ID, Err: ctx.Err()}

	case out := <-received:
		conn.Close()
		if out.err != nil {
			job.state = StateTimedOut
			return nil, &TransportError{JobID: job.ID, Err: out.err}
		}
		payload, err := ParsePayload(out.data)
		if err != nil {
			job.state = StateTimedOut
			return nil, &ParseError{JobID: job.ID, Err: err}
		}
		job.state = StateCompleted
		logger.Debug("Result received.", "job_id", job.ID, "batch", payload.Batch, "records", len(payload.Records))
		return payload, nil
	}
}

// Execute runs the full lifecycle for one request: submit, then either
// acknowledge (webhook callback) or await the result (websocket callback).
func (c *Client) Execute(ctx context.Context, req *SubmitRequest) (*Outcome, error) {
	job, err := c.Submit(ctx, req)
	if err != nil {
		return &Outcome{Job: job}, err
	}

	if req.CallbackType == CallbackWebhook {
		job.state = StateAcknowledged
		return &Outcome{
			Job: job,
			Ack: &Acknowledgment{Status: "submitted", JobID: job.ID},
		}, nil
	}

	payload, err := c.Await(ctx, job)
	if err != nil {
		return &Outcome{Job: job}, err
	}
	return &Outcome{Job: job, Payload: payload}, nil
}
