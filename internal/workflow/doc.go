// Package workflow models the node-graph document that templates carry and
// that the gateway ultimately executes. A document maps node identifiers to
// node records; the records themselves are kept as plain decoded JSON so
// that class metadata and input fields this client does not understand pass
// through untouched.
package workflow
