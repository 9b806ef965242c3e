package sharedb

import "fmt"

// ErrStateEvent is returned when an event is applied to a Document in
// a state that does not accept it, per the transition table in
// SPEC_FULL.md §4.5. The state machine never mutates state on a
// rejected transition.
type ErrStateEvent struct {
	DocumentID DocumentID
	State      State
	Event      string
}

func (e ErrStateEvent) Error() string {
	return fmt.Sprintf("document %s: event %q not valid in state %s", e.DocumentID, e.Event, e.State)
}

// ErrUnknownDocument is returned when an inbound frame references a
// (collection, document) pair with no registered Document.
type ErrUnknownDocument struct {
	DocumentID DocumentID
}

func (e ErrUnknownDocument) Error() string {
	return fmt.Sprintf("unknown document %s", e.DocumentID)
}

// ErrUnknownQuery is returned when an inbound qs/q frame references a
// query id with no registered QueryCollection.
type ErrUnknownQuery struct {
	QueryID uint64
}

func (e ErrUnknownQuery) Error() string {
	return fmt.Sprintf("unknown query id %d", e.QueryID)
}

// ErrUnsupportedType is returned when a handshake frame names a
// default OT type this client does not implement.
type ErrUnsupportedType struct {
	Type string
}

func (e ErrUnsupportedType) Error() string {
	return fmt.Sprintf("unsupported OT type %q", e.Type)
}

// ErrDocumentEntityType is returned by get_document when a caller asks
// for an already-registered DocumentID under a different entity type
// parameter than the one it was first created with.
type ErrDocumentEntityType struct {
	DocumentID DocumentID
	Want       string
	Have       string
}

func (e ErrDocumentEntityType) Error() string {
	return fmt.Sprintf("document %s: entity type mismatch, registered as %s, requested as %s", e.DocumentID, e.Have, e.Want)
}

// ErrAlreadySubscribed is returned by Document.Subscribe when called a
// second time on a Document already past the Blank state.
type ErrAlreadySubscribed struct {
	DocumentID DocumentID
}

func (e ErrAlreadySubscribed) Error() string {
	return fmt.Sprintf("document %s: already subscribed", e.DocumentID)
}

// ErrSequenceExhausted is returned by send when the outbound seq
// counter has wrapped, whether or not reconnect is configured; with
// reconnect configured a background reconnect is also started
// (SPEC_FULL.md §10 decision 2).
type ErrSequenceExhausted struct{}

func (e ErrSequenceExhausted) Error() string {
	return "outbound sequence counter exhausted"
}

// ErrNotConnected is returned by send paths when no socket is attached
// to the connection (never dialed, or between reconnect attempts).
type ErrNotConnected struct{}

func (e ErrNotConnected) Error() string {
	return "connection has no attached socket"
}
