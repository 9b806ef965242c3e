package wire

import (
	"encoding/json"

	"github.com/homveloper/sharedb-client/json0"
)

// Action is the wire frame discriminator carried in the "a" field.
type Action string

const (
	ActionHandshake     Action = "hs"
	ActionSubscribe     Action = "s"
	ActionOperation     Action = "op"
	ActionQuerySub      Action = "qs"
	ActionQueryDiff     Action = "q"
)

// Envelope is the minimal shape every frame satisfies, used to peek
// the action and any accompanying error before decoding the full
// frame for that action.
type Envelope struct {
	A     Action     `json:"a"`
	Error *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo is the error payload a server may attach to any frame.
type ErrorInfo struct {
	Code    ServerErrorCode `json:"code"`
	Message string          `json:"message"`
}

func (e ErrorInfo) Error() string {
	if e.Message != "" {
		return string(e.Code) + ": " + e.Message
	}
	return string(e.Code)
}

// Handshake is the `hs` frame in both directions. Protocol/ProtocolMinor
// are only meaningful on the client->server request; the server's
// reply carries ID (assigned/echoed clientID) and optionally Type
// (the default OT type URL).
type Handshake struct {
	A             Action     `json:"a"`
	ID            string     `json:"id,omitempty"`
	Protocol      int        `json:"protocol,omitempty"`
	ProtocolMinor int        `json:"protocolMinor,omitempty"`
	Type          string     `json:"type,omitempty"`
	Error         *ErrorInfo `json:"error,omitempty"`
}

// NewHandshakeRequest builds the client->server `hs` frame. id is the
// retained clientID on reconnect, or empty on first connect.
func NewHandshakeRequest(id string) Handshake {
	return Handshake{A: ActionHandshake, ID: id, Protocol: 1, ProtocolMinor: 1}
}

// Subscribe is the `s` frame. Client requests carry V only when
// resubscribing from a known version; server replies carry Data.
type Subscribe struct {
	A     Action         `json:"a"`
	C     string         `json:"c"`
	D     string         `json:"d"`
	V     *uint64        `json:"v,omitempty"`
	Data  *SubscribeData `json:"data,omitempty"`
	Error *ErrorInfo     `json:"error,omitempty"`
}

// SubscribeData is the snapshot a subscribe response carries. A
// present envelope with both Data and Type absent (or Data explicitly
// null) signals the document does not exist server-side.
type SubscribeData struct {
	V    uint64          `json:"v"`
	Data json.RawMessage `json:"data,omitempty"`
	Type string          `json:"type,omitempty"`
}

// NewSubscribeRequest builds the client->server `s` frame.
func NewSubscribeRequest(collection, document string) Subscribe {
	return Subscribe{A: ActionSubscribe, C: collection, D: document}
}

// CreateData is the `create` payload of an Operation frame.
type CreateData struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Operation is the `op` frame. Exactly one of Create, Op or Del is
// present, mirroring the spec's OperationData tagged variant.
type Operation struct {
	A     Action          `json:"a"`
	C     string          `json:"c"`
	D     string          `json:"d"`
	Src   string          `json:"src,omitempty"`
	Seq   uint64          `json:"seq,omitempty"`
	V     *uint64         `json:"v,omitempty"`
	Create *CreateData    `json:"create,omitempty"`
	Op    []json0.Op      `json:"op,omitempty"`
	Del   *bool           `json:"del,omitempty"`
	Error *ErrorInfo      `json:"error,omitempty"`
}

// OperationKind identifies which variant of an Operation frame is
// populated.
type OperationKind int

const (
	OperationInvalid OperationKind = iota
	OperationCreate
	OperationUpdate
	OperationDeleteKind
)

// Kind classifies which of Create/Op/Del is populated.
func (m Operation) Kind() OperationKind {
	switch {
	case m.Create != nil:
		return OperationCreate
	case m.Op != nil:
		return OperationUpdate
	case m.Del != nil:
		return OperationDeleteKind
	default:
		return OperationInvalid
	}
}

// QuerySubscribe is the `qs` frame.
type QuerySubscribe struct {
	A     Action          `json:"a"`
	ID    uint64          `json:"id"`
	Q     json.RawMessage `json:"q,omitempty"`
	C     string          `json:"c"`
	Data  []QueryDoc      `json:"data,omitempty"`
	Error *ErrorInfo      `json:"error,omitempty"`
}

// QueryDoc is one document reference in a query snapshot or diff
// insert, addressed by (document, version) with an optional inline
// snapshot.
type QueryDoc struct {
	D    string          `json:"d"`
	V    uint64          `json:"v"`
	Data json.RawMessage `json:"data,omitempty"`
	Type string          `json:"type,omitempty"`
}

// QueryDiff is the `q` frame.
type QueryDiff struct {
	A     Action          `json:"a"`
	ID    uint64          `json:"id"`
	Diff  []QueryDiffEntry `json:"diff"`
	Error *ErrorInfo      `json:"error,omitempty"`
}

// QueryDiffEntry is one tagged diff entry: move/insert/remove.
type QueryDiffEntry struct {
	Type    string     `json:"type"`
	From    int        `json:"from,omitempty"`
	To      int        `json:"to,omitempty"`
	HowMany int        `json:"howMany,omitempty"`
	Index   int        `json:"index,omitempty"`
	Values  []QueryDoc `json:"values,omitempty"`
}
