package sharedb

import (
	"github.com/homveloper/sharedb-client/json0"
	"github.com/homveloper/sharedb-client/value"
)

// Transaction accumulates the JSON0 ops a single Change closure
// produces, in call order. Document.Change applies Ops() locally and,
// if non-empty, sends them as an Update.
type Transaction struct {
	ops []json0.Op
}

// Ops returns the accumulated operation list.
func (t *Transaction) Ops() []json0.Op { return t.ops }

// Proxy is a path-addressed view over a Document's snapshot, handed to
// a Change closure. Descendants are obtained with Key/Index, which
// append to the receiver's path; mutating calls enqueue an operation
// on the shared Transaction instead of touching the snapshot
// directly — the snapshot is only ever read, never written, by the
// proxy itself.
type Proxy struct {
	root interface{}
	path json0.Path
	txn  *Transaction
}

func newProxy(root interface{}, txn *Transaction) *Proxy {
	return &Proxy{root: root, txn: txn}
}

// Key returns the descendant proxy addressed by appending key to the
// receiver's path.
func (p *Proxy) Key(key string) *Proxy {
	return &Proxy{root: p.root, path: p.path.Child(key), txn: p.txn}
}

// Index returns the descendant proxy addressed by appending idx to
// the receiver's path.
func (p *Proxy) Index(idx int) *Proxy {
	return &Proxy{root: p.root, path: p.path.Child(idx), txn: p.txn}
}

// Path reports the proxy's current path, for callers building ops by
// hand (e.g. list/string splices addressed at a child offset).
func (p *Proxy) Path() json0.Path { return p.path }

// Get returns the current snapshot value at the proxy's path,
// value.Undefined if the slot does not exist.
func (p *Proxy) Get() (interface{}, error) {
	return value.Get(p.root, p.path)
}

// Set enqueues an object/list replace-or-insert op for the proxy's
// path: oi+od if a value is already present at that path, oi-only if
// the slot is undefined. The op never fires unless the proxy's read
// of the current value matches what json0.Apply will itself see,
// since both read the same snapshot.
func (p *Proxy) Set(newValue interface{}) error {
	current, err := p.Get()
	if err != nil {
		return err
	}
	op := json0.Op{P: p.path, HasOI: true, OI: newValue}
	if !value.IsUndefined(current) {
		op.HasOD, op.OD = true, current
	}
	p.txn.ops = append(p.txn.ops, op)
	return nil
}

// Delete enqueues an object-delete (od) op for the proxy's path; the
// precondition is whatever value.Get currently returns there.
func (p *Proxy) Delete() error {
	current, err := p.Get()
	if err != nil {
		return err
	}
	p.txn.ops = append(p.txn.ops, json0.Op{P: p.path, HasOD: true, OD: current})
	return nil
}

// Add enqueues a numeric-add (na) op. delta must be the same numeric
// kind (int64 or float64) as the current value, per json0's na
// precondition; a kind mismatch surfaces as ErrInvalidJSONData when
// the transaction is applied.
func (p *Proxy) Add(delta interface{}) {
	p.txn.ops = append(p.txn.ops, json0.Op{P: p.path, HasNA: true, NA: delta})
}

// InsertListItem enqueues a list-insert (li) op at idx under the
// proxy's path.
func (p *Proxy) InsertListItem(idx int, v interface{}) {
	p.txn.ops = append(p.txn.ops, json0.Op{P: p.path.Child(idx), HasLI: true, LI: v})
}

// RemoveListItem enqueues a list-delete (ld) op at idx under the
// proxy's path; old must equal the current element.
func (p *Proxy) RemoveListItem(idx int, old interface{}) {
	p.txn.ops = append(p.txn.ops, json0.Op{P: p.path.Child(idx), HasLD: true, LD: old})
}

// InsertString enqueues a string-insert (si) op at offset (UTF-16
// code units) under the proxy's path.
func (p *Proxy) InsertString(offset int, s string) {
	p.txn.ops = append(p.txn.ops, json0.Op{P: p.path.Child(offset), HasSI: true, SI: s})
}

// DeleteString enqueues a string-delete (sd) op at offset.
func (p *Proxy) DeleteString(offset int, s string) {
	p.txn.ops = append(p.txn.ops, json0.Op{P: p.path.Child(offset), HasSD: true, SD: s})
}
