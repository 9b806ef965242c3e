// Package json0 implements the JSON0 operational-transform type (with
// the TEXT0 subtype embedded for string edits) against the value
// package's JSON model: apply a list of operations to produce a new
// value, invert a list for rollback, and append operations for local
// queue compaction. See SPEC_FULL.md §4.2 for the operation table
// this package implements verbatim.
package json0
