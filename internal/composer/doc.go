// Package composer applies caller-supplied parameter values onto a copy of
// a template's graph document. Compose is a pure function: it performs no
// I/O, never mutates the source graph, and produces byte-identical output
// for identical inputs.
package composer
