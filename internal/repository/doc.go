// Package repository discovers and loads workflow templates from a root
// directory. Each template lives in a subdirectory named after its slug and
// owns exactly two documents: the graph document (workflow.json) and the
// parameter schema document (ui_inputs.hcl).
//
// The reader is deliberately strict: an empty repository is a hard error,
// and a present-but-unparseable document is never papered over with an
// invented default. A broken template is excluded from a full scan (the
// rest of the repository stays usable) but is fatal when loaded directly.
package repository
