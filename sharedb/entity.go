package sharedb

import (
	"encoding/json"
	"reflect"

	"github.com/homveloper/sharedb-client/value"
)

// Cloner is the constraint a Document's decoded entity type must
// satisfy: every update re-derives the entity from the JSON value and
// hands the caller its own copy, so no subscriber can mutate state
// shared with the document's snapshot. Adapted directly from
// nodestorage/v2.Cachable[T any]'s Copy() method, generalized from
// cache-entry copying to value-stream snapshot isolation.
type Cloner[E any] interface {
	Clone() E
}

// DocumentID is the pair (collection, key) that globally identifies a
// Document within a Connection.
type DocumentID struct {
	Collection string
	Key        string
}

func (id DocumentID) String() string {
	return id.Collection + "/" + id.Key
}

// entityTypeName identifies E for the registry's mismatched-entity-
// type check (get_document called twice with different E for the
// same DocumentID).
func entityTypeName[E any]() string {
	var zero E
	return reflect.TypeOf(&zero).Elem().String()
}

// decodeEntity derives E from a decoded JSON value by round-tripping
// it through encoding/json: marshal the value model back to bytes,
// then unmarshal into a fresh E. This keeps Document generic over any
// E without requiring a hand-written decoder per entity type.
func decodeEntity[E any](val interface{}) (E, error) {
	var zero E
	raw, err := value.Encode(val)
	if err != nil {
		return zero, err
	}
	var e E
	if err := json.Unmarshal(raw, &e); err != nil {
		return zero, err
	}
	return e, nil
}
