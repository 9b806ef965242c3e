package sharedb

import (
	"encoding/json"

	"github.com/homveloper/sharedb-client/json0"
	"github.com/homveloper/sharedb-client/sdlog"
	"github.com/homveloper/sharedb-client/value"
	"github.com/homveloper/sharedb-client/wire"
)

// Document is the per-document state machine of SPEC_FULL.md §4.5: it
// tracks version, the current JSON value and its decoded entity view,
// the inflight/queue discipline for local edits, and publishes every
// successful update on a ValueStream. All methods are safe to call
// from any goroutine; they are serialized onto the document's own
// actor goroutine (§5), so two concurrent Change calls never race.
type Document[E Cloner[E]] struct {
	id   DocumentID
	conn *Connection

	cmds   chan actorCmd
	closed chan struct{}

	otType  string
	version *uint64
	value   interface{}
	entity  E
	state   State
	lastErr error

	inflight *OperationData
	queue    []OperationData

	stream *ValueStream[E]
}

type actorCmd struct {
	run  func()
	done chan struct{}
}

func newDocument[E Cloner[E]](conn *Connection, id DocumentID) *Document[E] {
	d := &Document[E]{
		id:     id,
		conn:   conn,
		cmds:   make(chan actorCmd, 32),
		closed: make(chan struct{}),
		state:  StateBlank,
	}
	d.stream = NewValueStream[E](func(dropped E) {
		conn.config.logger().Warn("dropped value stream update for slow subscriber",
			sdlog.String("document_id", id.String()))
	})
	go d.runLoop()
	return d
}

func (d *Document[E]) runLoop() {
	for {
		select {
		case c := <-d.cmds:
			c.run()
			close(c.done)
		case <-d.closed:
			return
		}
	}
}

// do serializes fn onto the document's actor goroutine and blocks
// until it has run, giving every exported method a synchronous,
// data-race-free view of the document's fields.
func (d *Document[E]) do(fn func()) {
	done := make(chan struct{})
	select {
	case d.cmds <- actorCmd{run: fn, done: done}:
		<-done
	case <-d.closed:
	}
}

// Stop terminates the document's actor goroutine. Callers that drop a
// Document's owning reference without calling Stop leak the goroutine
// until the process exits; Connection.Disconnect does not call Stop,
// matching spec.md §5's "dropping a reference does not cancel inflight
// ops" cancellation policy.
func (d *Document[E]) Stop() {
	select {
	case <-d.closed:
	default:
		close(d.closed)
	}
	d.stream.Close()
}

// ID returns the document's (collection, key) identity.
func (d *Document[E]) ID() DocumentID { return d.id }

// State returns the document's current state machine position.
func (d *Document[E]) State() State {
	var s State
	d.do(func() { s = d.state })
	return s
}

// Version returns the document's version, or nil if unset (no
// put/create has happened yet).
func (d *Document[E]) Version() *uint64 {
	var v *uint64
	d.do(func() {
		if d.version != nil {
			cp := *d.version
			v = &cp
		}
	})
	return v
}

// Entity returns a clone of the document's current decoded entity
// view, safe for the caller to mutate without affecting the document.
func (d *Document[E]) Entity() E {
	var e E
	d.do(func() { e = d.entity.Clone() })
	return e
}

// Stream returns the document's value-stream broadcaster.
func (d *Document[E]) Stream() *ValueStream[E] { return d.stream }

// Subscribe requires the document be Blank; it sends a Subscribe
// frame and transitions via the fetch event on a successful write, or
// via the fail event (surfacing the write error) on failure. A second
// call on an already-subscribed document fails with
// ErrAlreadySubscribed rather than a generic ErrStateEvent, since this
// specific misuse is common enough to name.
func (d *Document[E]) Subscribe() error {
	var result error
	d.do(func() {
		if d.state != StateBlank {
			result = ErrAlreadySubscribed{DocumentID: d.id}
			return
		}
		msg := wire.NewSubscribeRequest(d.id.Collection, d.id.Key)
		if d.version != nil {
			v := *d.version
			msg.V = &v
		}
		if err := d.conn.send(msg); err != nil {
			d.state, _ = transition(d.id, d.state, "fail")
			d.lastErr = err
			result = err
			return
		}
		newState, err := transition(d.id, d.state, "fetch")
		if err != nil {
			result = err
			return
		}
		d.state = newState
	})
	return result
}

// Create requires NotCreated or Blank. It encodes entity, installs it
// locally via put(value, version=0, otType), then sends a Create
// operation through the same inflight/queue discipline as Change.
func (d *Document[E]) Create(entity E, otType string) error {
	var result error
	d.do(func() {
		if d.state != StateNotCreated && d.state != StateBlank {
			result = ErrStateEvent{DocumentID: d.id, State: d.state, Event: "create"}
			return
		}
		raw, err := json.Marshal(entity)
		if err != nil {
			result = err
			return
		}
		val, err := value.Decode(raw)
		if err != nil {
			result = err
			return
		}
		prev := d.state
		if d.state == StateNotCreated {
			// put does not accept NotCreated; create installs as from Blank.
			d.state = StateBlank
		}
		if err := d.installPut(val, 0, otType); err != nil {
			d.state = prev
			result = err
			return
		}
		d.enqueueSend(OperationData{Kind: OpCreate, CreateType: otType, CreateData: val})
	})
	return result
}

// Delete triggers the delete event and sends a Delete operation.
func (d *Document[E]) Delete() error {
	var result error
	d.do(func() {
		newState, err := transition(d.id, d.state, "delete")
		if err != nil {
			result = err
			return
		}
		d.state = newState
		d.enqueueSend(OperationData{Kind: OpDelete, IsDeleted: true})
	})
	return result
}

// Change requires a non-nil local value. fn receives a Proxy rooted at
// the document's current snapshot; every mutating call on it enqueues
// a JSON0 op on a shared Transaction. If the transaction is empty,
// Change returns nil without touching state or the network. Otherwise
// the ops are applied locally first — a failure here (a precondition
// violation the proxy didn't itself catch) aborts before anything is
// sent — and only then handed to the inflight/queue discipline as an
// Update.
func (d *Document[E]) Change(fn func(*Proxy)) error {
	var result error
	d.do(func() {
		if d.value == nil {
			result = ErrStateEvent{DocumentID: d.id, State: d.state, Event: "change"}
			return
		}
		txn := &Transaction{}
		fn(newProxy(d.value, txn))
		if len(txn.ops) == 0 {
			return
		}
		newVal, err := json0.Apply(txn.ops, d.value)
		if err != nil {
			result = err
			return
		}
		newState, err := transition(d.id, d.state, "apply")
		if err != nil {
			result = err
			return
		}
		entity, err := decodeEntity[E](newVal)
		if err != nil {
			result = err
			return
		}
		d.state = newState
		d.value = newVal
		d.entity = entity
		d.stream.Publish(entity.Clone())
		d.enqueueSend(OperationData{Kind: OpUpdate, Ops: txn.ops})
	})
	return result
}

// installPut runs the "put" transition: it installs val as the
// document's snapshot at version v, re-derives the entity, and
// publishes it. Must be called from within the actor (d.do).
func (d *Document[E]) installPut(val interface{}, v uint64, otType string) error {
	newState, err := transition(d.id, d.state, "put")
	if err != nil {
		return err
	}
	entity, err := decodeEntity[E](val)
	if err != nil {
		return err
	}
	d.state = newState
	d.version = &v
	d.value = val
	if otType != "" {
		d.otType = otType
	}
	d.entity = entity
	d.stream.Publish(entity.Clone())
	return nil
}

// enqueueSend is Document.send from SPEC_FULL.md §4.5: queued at the
// tail (FIFO, per §10 decision 1) whenever the document isn't yet
// eligible to send (no clientID, no version, or an op already
// inflight); otherwise attempted immediately.
func (d *Document[E]) enqueueSend(op OperationData) {
	if d.conn.clientIDSnapshot() == "" || d.version == nil || d.inflight != nil {
		d.queue = append(d.queue, op)
		return
	}
	d.trySend(op)
}

// trySend writes op as an operation frame at the document's current
// version. On success it becomes the inflight op; on failure it is
// pushed back to the front of the queue (it was already next in line)
// and inflight is left clear, matching send's write-failure contract.
func (d *Document[E]) trySend(op OperationData) {
	v := *d.version
	msg, err := buildOperationFrame(d.id, d.conn.clientIDSnapshot(), v, op)
	if err != nil {
		d.conn.config.logger().Error("failed to build operation frame",
			sdlog.String("document_id", d.id.String()), sdlog.Err(err))
		return
	}
	if err := d.conn.send(msg); err != nil {
		d.conn.config.logger().Warn("operation frame write failed, requeued",
			sdlog.String("document_id", d.id.String()), sdlog.Err(err))
		d.queue = append([]OperationData{op}, d.queue...)
		return
	}
	stored := op
	d.inflight = &stored
}

// kick attempts to send the head of the queue if the document is
// currently eligible. Connection calls this after the handshake
// assigns a clientID, after a subscribe snapshot is installed, and
// after a server error on the document, so ops queued only because a
// precondition wasn't yet met get sent as soon as it is. An ack
// drains the queue itself without going through kick.
func (d *Document[E]) kick() {
	d.do(func() {
		if d.inflight != nil || d.version == nil || d.conn.clientIDSnapshot() == "" {
			return
		}
		if len(d.queue) == 0 {
			return
		}
		op := d.queue[0]
		d.queue = d.queue[1:]
		d.trySend(op)
	})
}

// dropInflight discards the op currently marked inflight without
// applying it. Used when a server error means it will never be acked;
// callers follow this with kick to start draining the queue again.
func (d *Document[E]) dropInflight() {
	d.do(func() {
		d.inflight = nil
	})
}

func (d *Document[E]) documentID() DocumentID { return d.id }
func (d *Document[E]) entityTypeName() string { return entityTypeName[E]() }

func (d *Document[E]) put(data json.RawMessage, v uint64, otType string) error {
	var result error
	d.do(func() {
		val := interface{}(map[string]interface{}{})
		if len(data) > 0 {
			decoded, err := value.Decode(data)
			if err != nil {
				result = err
				return
			}
			val = decoded
		}
		if err := d.installPut(val, v, otType); err != nil {
			result = err
		}
	})
	return result
}

func (d *Document[E]) setNotCreated() error {
	var result error
	d.do(func() {
		newState, err := transition(d.id, d.state, "setNotCreated")
		if err != nil {
			result = err
			return
		}
		d.state = newState
	})
	return result
}

func (d *Document[E]) fail(cause error) error {
	var result error
	d.do(func() {
		newState, err := transition(d.id, d.state, "fail")
		if err != nil {
			result = err
			return
		}
		d.state = newState
		d.lastErr = cause
	})
	return result
}

func (d *Document[E]) pause() error {
	var result error
	d.do(func() {
		newState, err := transition(d.id, d.state, "pause")
		if err != nil {
			result = err
			return
		}
		d.state = newState
		if d.inflight != nil {
			d.queue = append([]OperationData{*d.inflight}, d.queue...)
			d.inflight = nil
		}
	})
	return result
}

func (d *Document[E]) resume() error {
	var result error
	d.do(func() {
		newState, err := transition(d.id, d.state, "resume")
		if err != nil {
			result = err
			return
		}
		d.state = newState
		if len(d.queue) > 0 && d.inflight == nil {
			op := d.queue[0]
			d.queue = d.queue[1:]
			d.trySend(op)
		}
	})
	return result
}

func (d *Document[E]) ack(v uint64, _ uint64) error {
	var result error
	d.do(func() {
		if d.inflight == nil {
			result = ErrStateEvent{DocumentID: d.id, State: d.state, Event: "ack"}
			return
		}
		// v is the version the acked op was submitted against (the same
		// convention sync uses), so the result must be exactly prior+1;
		// anything else is a stale or out-of-order echo.
		if d.version == nil || v != *d.version {
			result = ErrStateEvent{DocumentID: d.id, State: d.state, Event: "ack"}
			return
		}
		newVersion := v + 1
		d.version = &newVersion
		d.inflight = nil
		if len(d.queue) > 0 {
			op := d.queue[0]
			d.queue = d.queue[1:]
			d.trySend(op)
		}
	})
	return result
}

func (d *Document[E]) sync(op OperationData, v uint64) error {
	var result error
	d.do(func() {
		switch op.Kind {
		case OpUpdate:
			// v is the version the op was submitted against (the same
			// convention ack uses), so the resulting version is v+1;
			// requiring it to match the document's current version
			// catches an op arriving out of order.
			if d.version == nil || v != *d.version {
				result = ErrStateEvent{DocumentID: d.id, State: d.state, Event: "sync"}
				return
			}
			newVal, err := json0.Apply(op.Ops, d.value)
			if err != nil {
				result = err
				return
			}
			newState, err := transition(d.id, d.state, "apply")
			if err != nil {
				result = err
				return
			}
			entity, err := decodeEntity[E](newVal)
			if err != nil {
				result = err
				return
			}
			newVersion := v + 1
			d.state = newState
			d.version = &newVersion
			d.value = newVal
			d.entity = entity
			d.stream.Publish(entity.Clone())
		case OpCreate:
			if err := d.installPut(op.CreateData, v, op.CreateType); err != nil {
				result = err
			}
		case OpDelete:
			newState, err := transition(d.id, d.state, "delete")
			if err != nil {
				result = err
				return
			}
			d.state = newState
		}
	})
	return result
}

// buildOperationFrame converts an OperationData into the wire
// Operation frame carrying it, stamping collection/document/src/v.
// Seq is assigned by Connection.send.
func buildOperationFrame(id DocumentID, src string, v uint64, op OperationData) (wire.Operation, error) {
	msg := wire.Operation{
		A:   wire.ActionOperation,
		C:   id.Collection,
		D:   id.Key,
		Src: src,
		V:   &v,
	}
	switch op.Kind {
	case OpCreate:
		raw, err := value.Encode(op.CreateData)
		if err != nil {
			return wire.Operation{}, err
		}
		msg.Create = &wire.CreateData{Type: op.CreateType, Data: raw}
	case OpUpdate:
		msg.Op = op.Ops
	case OpDelete:
		del := op.IsDeleted
		msg.Del = &del
	}
	return msg, nil
}
