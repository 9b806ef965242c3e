// Package sharedb implements the client-side core of a ShareDB-protocol
// real-time collaborative document system: the Connection state
// machine and message multiplexer, the per-document state machine and
// inflight/queue discipline, and query-collection list subscriptions.
// The JSON0/TEXT0 operational transform engine itself lives in
// package json0; this package drives it against a wire transport.
package sharedb
