// Package value implements the untyped JSON value model the JSON0
// transformer operates on: a recursive sum of null, bool, integer,
// decimal, string, array and object, plus a sentinel for a missing
// child returned by path lookups. Containers are plain Go maps and
// slices so callers can build and inspect documents with ordinary Go
// literals; the package only adds the path-addressing and kind-aware
// numeric handling JSON0 needs on top.
package value
