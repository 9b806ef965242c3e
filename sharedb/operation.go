package sharedb

import "github.com/homveloper/sharedb-client/json0"

// OperationKind tags which variant of OperationData is populated.
type OperationKind int

const (
	OpInvalid OperationKind = iota
	OpCreate
	OpUpdate
	OpDelete
)

// OperationData is the tagged variant spec.md §3 describes: exactly
// one of Create{type,data}, Update{ops}, Delete{isDeleted} at a time.
// Values are held in the value model (interface{}), not a caller's
// entity type, since this is what crosses the wire and what json0
// applies against.
type OperationData struct {
	Kind OperationKind

	CreateType string
	CreateData interface{}

	Ops []json0.Op

	IsDeleted bool
}
