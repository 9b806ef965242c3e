package sharedb

import "encoding/json"

// docRouter is the type-erased face of Document[E] the Connection
// dispatches inbound frames against. Connection stores one per
// DocumentID regardless of E; GetDocument recovers the concrete
// *Document[E] with a type assertion guarded by entityTypeName.
type docRouter interface {
	documentID() DocumentID
	entityTypeName() string

	// put installs a subscribe/create snapshot: data is the raw JSON
	// snapshot (empty data installs an empty object), v the version,
	// otType the OT type URL if the server supplied one.
	put(data json.RawMessage, v uint64, otType string) error
	setNotCreated() error
	fail(err error) error
	pause() error
	resume() error
	ack(v uint64, seq uint64) error
	// sync applies a remote OperationData at version v (Update), or
	// delegates to put/delete (Create/Delete), per Document.sync.
	sync(op OperationData, v uint64) error
	// kick attempts to send the head of the queue if the document is
	// currently eligible (clientID known, version set, no inflight).
	kick()
	// dropInflight discards the op the document believes is inflight
	// without applying it, for a server error that means it will never
	// be acked (already created, submit rejected). It does not itself
	// attempt to send the next queued op; callers follow it with kick.
	dropInflight()
}
