// Package gateway is the client for the remote queueing service that sits
// in front of the graph execution engine.
//
// The protocol is small and strict: one HTTP POST submits a composed graph
// and yields a job identifier; for awaited jobs, one WebSocket channel
// scoped to that identifier delivers exactly one terminal result message,
// racing a bounded wall-clock timer. There are no retries anywhere in this
// package: exactly one submit attempt, one notification channel, one
// timer. Retry and backoff policy, if wanted, belongs to the caller.
package gateway
