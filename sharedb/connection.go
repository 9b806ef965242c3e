package sharedb

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/homveloper/sharedb-client/sdlog"
	"github.com/homveloper/sharedb-client/value"
	"github.com/homveloper/sharedb-client/wire"
)

// connNodeCounter hands each Connection in this process a distinct
// snowflake node id, so two Connections allocating query ids
// concurrently never collide even though each node also encodes a
// timestamp component.
var connNodeCounter int64

func nextNodeID() int64 {
	return atomic.AddInt64(&connNodeCounter, 1) % 1024
}

// jsonType is the only OT type URL this client recognizes, matching
// the embedded TEXT0 subtype json0 implements at string leaves.
const jsonType = "http://sharejs.org/types/JSONv0"

// Connection owns the socket, performs the handshake, assigns
// outbound sequence numbers, routes inbound frames to documents and
// query collections, and coordinates reconnect. Inbound dispatch
// happens on the connection's own read-loop goroutine; the document
// and query registries are guarded by mu, a reader-writer lock, so
// exported functions that look up or register entries are safe to
// call from caller goroutines.
type Connection struct {
	mu sync.RWMutex

	clientID  string
	defaultOT string
	documents map[DocumentID]docRouter
	queries   map[uint64]anyQueryCollection
	seq       uint64
	queryIDs  *snowflake.Node

	socket Socket
	dial   func() (Socket, error)
	config Config
	log    *sdlog.Logger

	closed    chan struct{}
	closeOnce sync.Once
}

// Connect performs the initial handshake over socket and starts the
// connection's read loop. dial, if non-nil, is used to re-open the
// socket on reconnect; a nil dial disables reconnect regardless of
// cfg.Reconnect.
func Connect(socket Socket, dial func() (Socket, error), cfg Config) (*Connection, error) {
	node, err := snowflake.NewNode(nextNodeID())
	if err != nil {
		return nil, fmt.Errorf("sharedb: allocate query-id node: %w", err)
	}
	c := &Connection{
		documents: make(map[DocumentID]docRouter),
		queries:   make(map[uint64]anyQueryCollection),
		seq:       1,
		queryIDs:  node,
		socket:    socket,
		dial:      dial,
		config:    cfg,
		log:       cfg.logger(),
		closed:    make(chan struct{}),
	}
	if err := c.sendHandshake(); err != nil {
		return nil, err
	}
	go c.readLoop()
	return c, nil
}

func (c *Connection) sendHandshake() error {
	c.mu.RLock()
	id := c.clientID
	c.mu.RUnlock()
	return c.writeRaw(mustEncode(wire.NewHandshakeRequest(id)))
}

func mustEncode(msg interface{}) []byte {
	raw, err := wire.Encode(msg)
	if err != nil {
		panic(fmt.Sprintf("sharedb: encoding a request we built ourselves failed: %v", err))
	}
	return raw
}

func (c *Connection) clientIDSnapshot() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.clientID
}

// nextSeq returns the next outbound op sequence, or ErrSequenceExhausted
// once the counter has wrapped to zero. On wraparound with reconnect
// configured, a reconnect is triggered in the background; the counter
// resets to 1 when reconnect attaches the new socket, before the
// handshake is re-sent (see reconnect).
func (c *Connection) nextSeq() (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seq == 0 {
		if c.config.Reconnect && c.dial != nil {
			go c.reconnect()
		}
		return 0, ErrSequenceExhausted{}
	}
	seq := c.seq
	c.seq++
	return seq, nil
}

// send serializes msg, stamping the next outbound seq if it is an
// Operation frame, and writes it to the socket.
func (c *Connection) send(msg interface{}) error {
	switch m := msg.(type) {
	case wire.Operation:
		seq, err := c.nextSeq()
		if err != nil {
			return err
		}
		m.Seq = seq
		msg = m
	}
	raw, err := wire.Encode(msg)
	if err != nil {
		return err
	}
	return c.writeRaw(raw)
}

func (c *Connection) writeRaw(raw []byte) error {
	c.mu.RLock()
	socket := c.socket
	c.mu.RUnlock()
	if socket == nil {
		return ErrNotConnected{}
	}
	return socket.WriteMessage(raw)
}

// GetDocument returns the registered Document[E] for (collection, key)
// if present, checking that it was registered under the same E
// (ErrDocumentEntityType otherwise); else it creates and registers a
// fresh Blank Document[E].
func GetDocument[E Cloner[E]](conn *Connection, collection, key string) (*Document[E], error) {
	id := DocumentID{Collection: collection, Key: key}
	wantType := entityTypeName[E]()

	conn.mu.Lock()
	defer conn.mu.Unlock()
	if existing, ok := conn.documents[id]; ok {
		doc, ok := existing.(*Document[E])
		if !ok {
			return nil, ErrDocumentEntityType{DocumentID: id, Want: wantType, Have: existing.entityTypeName()}
		}
		return doc, nil
	}
	doc := newDocument[E](conn, id)
	conn.documents[id] = doc
	return doc, nil
}

// SubscribeDocument obtains the document and sends a Subscribe frame,
// blocking until the frame is written (not until the response
// arrives).
func SubscribeDocument[E Cloner[E]](conn *Connection, collection, key string) (*Document[E], error) {
	doc, err := GetDocument[E](conn, collection, key)
	if err != nil {
		return nil, err
	}
	if err := doc.Subscribe(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Create generates a fresh unique key, obtains a Document[E] for it,
// and invokes its create path with entity and the connection's
// default OT type.
func Create[E Cloner[E]](conn *Connection, collection string, entity E) (*Document[E], error) {
	key := uuid.NewString()
	doc, err := GetDocument[E](conn, collection, key)
	if err != nil {
		return nil, err
	}
	otType := conn.defaultType()
	if err := doc.Create(entity, otType); err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *Connection) defaultType() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.defaultOT != "" {
		return c.defaultOT
	}
	return jsonType
}

// SubscribeQuery allocates a fresh query id, creates and registers a
// QueryCollection[E], and sends a qs frame.
func SubscribeQuery[E Cloner[E]](conn *Connection, collection string, query interface{}) (*QueryCollection[E], error) {
	raw, err := value.Encode(query)
	if err != nil {
		return nil, err
	}

	id := uint64(conn.queryIDs.Generate().Int64())

	conn.mu.Lock()
	qc := newQueryCollection[E](conn, id, collection)
	conn.queries[id] = qc
	conn.mu.Unlock()

	msg := wire.QuerySubscribe{A: wire.ActionQuerySub, ID: id, C: collection, Q: raw}
	if err := conn.send(msg); err != nil {
		return nil, err
	}
	return qc, nil
}

// Disconnect pauses every registered document, per spec.md §4.4.
func (c *Connection) Disconnect() error {
	c.mu.RLock()
	docs := make([]docRouter, 0, len(c.documents))
	for _, d := range c.documents {
		docs = append(docs, d)
	}
	c.mu.RUnlock()

	var errs error
	for _, d := range docs {
		if err := d.pause(); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// Close tears down the connection permanently: it pauses every
// document and closes the socket without attempting reconnect.
func (c *Connection) Close() error {
	var errs error
	c.closeOnce.Do(func() {
		close(c.closed)
		errs = multierr.Append(errs, c.Disconnect())
		c.mu.RLock()
		socket := c.socket
		c.mu.RUnlock()
		if socket != nil {
			errs = multierr.Append(errs, socket.Close())
		}
	})
	return errs
}

func (c *Connection) readLoop() {
	for {
		c.mu.RLock()
		socket := c.socket
		c.mu.RUnlock()
		if socket == nil {
			return
		}
		raw, err := socket.ReadMessage()
		if err != nil {
			c.log.Warn("socket read failed", sdlog.Err(err))
			c.onSocketClosed()
			return
		}
		c.handleInbound(raw)
	}
}

func (c *Connection) onSocketClosed() {
	select {
	case <-c.closed:
		return
	default:
	}
	if !c.config.Reconnect || c.dial == nil {
		return
	}
	go c.reconnect()
}

func (c *Connection) reconnect() {
	if err := c.Disconnect(); err != nil {
		c.log.Warn("pausing documents before reconnect reported errors", sdlog.Err(err))
	}
	for attempt := 0; ; attempt++ {
		select {
		case <-c.closed:
			return
		default:
		}
		socket, err := c.dial()
		if err != nil {
			c.log.Warn("reconnect dial failed", sdlog.Err(err))
			time.Sleep(c.config.ReconnectBackoff.Next(attempt))
			continue
		}
		c.mu.Lock()
		c.socket = socket
		c.seq = 1
		c.mu.Unlock()
		if err := c.sendHandshake(); err != nil {
			c.log.Warn("reconnect handshake failed", sdlog.Err(err))
			socket.Close()
			time.Sleep(c.config.ReconnectBackoff.Next(attempt))
			continue
		}
		go c.readLoop()
		return
	}
}

func (c *Connection) handleInbound(raw []byte) {
	env, err := wire.DecodeEnvelope(raw)
	if err != nil {
		c.log.Warn("failed to decode inbound frame", sdlog.Err(err))
		return
	}
	switch env.A {
	case wire.ActionHandshake:
		c.handleHandshake(raw)
	case wire.ActionSubscribe:
		c.handleSubscribe(raw)
	case wire.ActionQuerySub:
		c.handleQuerySubscribe(raw)
	case wire.ActionQueryDiff:
		c.handleQueryDiff(raw)
	case wire.ActionOperation:
		c.handleOperation(raw)
	default:
		c.log.Warn("unrecognized frame action", sdlog.String("action", string(env.A)))
	}
}

func (c *Connection) handleHandshake(raw []byte) {
	msg, err := wire.DecodeHandshake(raw)
	if err != nil {
		c.log.Warn("failed to decode handshake frame", sdlog.Err(err))
		return
	}
	if msg.Error != nil {
		c.log.Error("handshake rejected", sdlog.Err(*msg.Error))
		return
	}
	c.mu.Lock()
	c.clientID = msg.ID
	if msg.Type != "" {
		if msg.Type == jsonType {
			c.defaultOT = msg.Type
		} else {
			c.mu.Unlock()
			c.log.Error("handshake named an unsupported default OT type",
				sdlog.Err(ErrUnsupportedType{Type: msg.Type}))
			return
		}
	}
	docs := make([]docRouter, 0, len(c.documents))
	for _, d := range c.documents {
		docs = append(docs, d)
	}
	c.mu.Unlock()

	c.log.Debug("handshake complete", sdlog.String("client_id", msg.ID))
	for _, d := range docs {
		d.kick()
	}
}

func (c *Connection) findDocument(collection, document string) (docRouter, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.documents[DocumentID{Collection: collection, Key: document}]
	return d, ok
}

func (c *Connection) findQuery(id uint64) (anyQueryCollection, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.queries[id]
	return q, ok
}

func (c *Connection) handleSubscribe(raw []byte) {
	msg, err := wire.DecodeSubscribe(raw)
	if err != nil {
		c.log.Warn("failed to decode subscribe frame", sdlog.Err(err))
		return
	}
	d, ok := c.findDocument(msg.C, msg.D)
	if !ok {
		c.log.Warn("subscribe frame for unknown document", sdlog.Err(ErrUnknownDocument{DocumentID: DocumentID{Collection: msg.C, Key: msg.D}}))
		return
	}
	if msg.Error != nil {
		c.handleServerError(d, *msg.Error)
		return
	}
	if msg.Data == nil || string(msg.Data.Data) == "null" || (len(msg.Data.Data) == 0 && msg.Data.Type == "") {
		if err := d.setNotCreated(); err != nil {
			c.log.Warn("setNotCreated failed", sdlog.Err(err))
		}
		return
	}
	if err := d.put(msg.Data.Data, msg.Data.V, msg.Data.Type); err != nil {
		c.log.Warn("put failed", sdlog.Err(err))
		return
	}
	d.kick()
}

func (c *Connection) handleOperation(raw []byte) {
	msg, err := wire.DecodeOperation(raw)
	if err != nil {
		c.log.Warn("failed to decode operation frame", sdlog.Err(err))
		return
	}
	d, ok := c.findDocument(msg.C, msg.D)
	if !ok {
		c.log.Warn("operation frame for unknown document", sdlog.Err(ErrUnknownDocument{DocumentID: DocumentID{Collection: msg.C, Key: msg.D}}))
		return
	}
	if msg.Error != nil {
		c.handleServerError(d, *msg.Error)
		return
	}
	if msg.Src != "" && msg.Src == c.clientIDSnapshot() {
		var v uint64
		if msg.V != nil {
			v = *msg.V
		}
		if err := d.ack(v, msg.Seq); err != nil {
			c.log.Warn("ack failed", sdlog.Err(err))
		}
		return
	}

	op, err := operationDataFromWire(msg)
	if err != nil {
		c.log.Warn("malformed operation frame", sdlog.Err(err))
		return
	}
	var v uint64
	if msg.V != nil {
		v = *msg.V
	}
	if err := d.sync(op, v); err != nil {
		c.log.Warn("sync failed", sdlog.Err(err))
	}
}

func operationDataFromWire(msg wire.Operation) (OperationData, error) {
	switch msg.Kind() {
	case wire.OperationCreate:
		var val interface{}
		if len(msg.Create.Data) > 0 {
			decoded, err := value.Decode(msg.Create.Data)
			if err != nil {
				return OperationData{}, err
			}
			val = decoded
		}
		return OperationData{Kind: OpCreate, CreateType: msg.Create.Type, CreateData: val}, nil
	case wire.OperationUpdate:
		return OperationData{Kind: OpUpdate, Ops: msg.Op}, nil
	case wire.OperationDeleteKind:
		return OperationData{Kind: OpDelete, IsDeleted: msg.Del != nil && *msg.Del}, nil
	default:
		return OperationData{}, fmt.Errorf("operation frame carries none of create/op/del")
	}
}

// handleServerError applies the §7 server-error-code policy table.
func (c *Connection) handleServerError(d docRouter, errInfo wire.ErrorInfo) {
	switch errInfo.Code {
	case wire.ErrDocAlreadyCreated:
		c.log.Debug("create rejected, another client created first", sdlog.String("document_id", d.documentID().String()))
		d.dropInflight()
		d.kick()
	case wire.ErrDocWasDeleted:
		_ = d.fail(errInfo)
	case wire.ErrDocTypeNotRecognized:
		c.log.Warn("document type not recognized, treating as deleted", sdlog.Err(errInfo))
		if err := d.sync(OperationData{Kind: OpDelete, IsDeleted: true}, 0); err != nil {
			_ = d.fail(errInfo)
		}
	case wire.ErrOpSubmitRejected, wire.ErrPendingOpRemovedBySubmitReject:
		c.log.Warn("operation submit rejected, dropping inflight", sdlog.Err(errInfo))
		d.dropInflight()
		d.kick()
	default:
		c.log.Warn("server error on document", sdlog.Err(errInfo))
		d.kick()
	}
}

func (c *Connection) handleQuerySubscribe(raw []byte) {
	msg, err := wire.DecodeQuerySubscribe(raw)
	if err != nil {
		c.log.Warn("failed to decode query subscribe frame", sdlog.Err(err))
		return
	}
	q, ok := c.findQuery(msg.ID)
	if !ok {
		c.log.Warn("qs frame for unknown query", sdlog.Err(ErrUnknownQuery{QueryID: msg.ID}))
		return
	}
	if msg.Error != nil {
		c.log.Warn("query subscribe rejected", sdlog.Err(*msg.Error))
		return
	}
	if err := q.put(msg.Data); err != nil {
		c.log.Warn("query put failed", sdlog.Err(err))
	}
}

func (c *Connection) handleQueryDiff(raw []byte) {
	msg, err := wire.DecodeQueryDiff(raw)
	if err != nil {
		c.log.Warn("failed to decode query diff frame", sdlog.Err(err))
		return
	}
	q, ok := c.findQuery(msg.ID)
	if !ok {
		c.log.Warn("q frame for unknown query", sdlog.Err(ErrUnknownQuery{QueryID: msg.ID}))
		return
	}
	if msg.Error != nil {
		c.log.Warn("query diff carried an error", sdlog.Err(*msg.Error))
		return
	}
	if err := q.sync(msg.Diff); err != nil {
		c.log.Warn("query sync failed", sdlog.Err(err))
	}
}
