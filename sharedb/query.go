package sharedb

import (
	"sync"

	"github.com/homveloper/sharedb-client/wire"
)

// anyQueryCollection is the type-erased face of QueryCollection[E]
// Connection dispatches qs/q frames against.
type anyQueryCollection interface {
	put(initial []wire.QueryDoc) error
	sync(diffs []wire.QueryDiffEntry) error
}

// QueryCollection is a list-of-documents subscription driven by
// server diffs (spec.md §4.6). It obtains and subscribes each member
// Document through the owning Connection and republishes the ordered
// sequence of entities as it changes.
type QueryCollection[E Cloner[E]] struct {
	mu         sync.Mutex
	conn       *Connection
	id         uint64
	collection string
	docs       []*Document[E]
	stream     *ValueStream[[]E]
}

func newQueryCollection[E Cloner[E]](conn *Connection, id uint64, collection string) *QueryCollection[E] {
	return &QueryCollection[E]{
		conn:       conn,
		id:         id,
		collection: collection,
		stream: NewValueStream[[]E](func(dropped []E) {
			conn.config.logger().Warn("dropped query collection update for slow subscriber")
		}),
	}
}

// ID returns the allocated query id.
func (q *QueryCollection[E]) ID() uint64 { return q.id }

// Stream returns the broadcaster of the collection's published
// entity sequence.
func (q *QueryCollection[E]) Stream() *ValueStream[[]E] { return q.stream }

// put installs the initial snapshot: for each entry, obtain the
// Document, subscribe it if it is still Blank, install its snapshot,
// and publish the resulting sequence.
func (q *QueryCollection[E]) put(initial []wire.QueryDoc) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	docs := make([]*Document[E], 0, len(initial))
	for _, entry := range initial {
		doc, err := q.obtain(entry)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}
	q.docs = docs
	q.publish()
	return nil
}

func (q *QueryCollection[E]) obtain(entry wire.QueryDoc) (*Document[E], error) {
	doc, err := GetDocument[E](q.conn, q.collection, entry.D)
	if err != nil {
		return nil, err
	}
	if doc.State() == StateBlank {
		_ = doc.Subscribe()
	}
	if err := doc.put(entry.Data, entry.V, entry.Type); err != nil {
		return nil, err
	}
	return doc, nil
}

// sync applies an ordered diff list: move splices howMany entries from
// `from` to `to`; insert obtains each named document and splices it in
// at `index`; remove drops a range at `index`.
func (q *QueryCollection[E]) sync(diffs []wire.QueryDiffEntry) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, diff := range diffs {
		switch diff.Type {
		case "move":
			moved := make([]*Document[E], diff.HowMany)
			copy(moved, q.docs[diff.From:diff.From+diff.HowMany])
			rest := append([]*Document[E]{}, q.docs[:diff.From]...)
			rest = append(rest, q.docs[diff.From+diff.HowMany:]...)
			out := make([]*Document[E], 0, len(q.docs))
			out = append(out, rest[:diff.To]...)
			out = append(out, moved...)
			out = append(out, rest[diff.To:]...)
			q.docs = out
		case "insert":
			inserted := make([]*Document[E], 0, len(diff.Values))
			for _, entry := range diff.Values {
				doc, err := q.obtain(entry)
				if err != nil {
					return err
				}
				inserted = append(inserted, doc)
			}
			out := make([]*Document[E], 0, len(q.docs)+len(inserted))
			out = append(out, q.docs[:diff.Index]...)
			out = append(out, inserted...)
			out = append(out, q.docs[diff.Index:]...)
			q.docs = out
		case "remove":
			out := make([]*Document[E], 0, len(q.docs)-diff.HowMany)
			out = append(out, q.docs[:diff.Index]...)
			out = append(out, q.docs[diff.Index+diff.HowMany:]...)
			q.docs = out
		}
	}
	q.publish()
	return nil
}

func (q *QueryCollection[E]) publish() {
	entities := make([]E, len(q.docs))
	for i, d := range q.docs {
		entities[i] = d.Entity()
	}
	q.stream.Publish(entities)
}
