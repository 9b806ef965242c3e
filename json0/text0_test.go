package json0

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textOps(t *testing.T, ops ...TextOp) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(ops)
	require.NoError(t, err)
	return raw
}

func TestTEXT0ApplyInsertThenDelete(t *testing.T) {
	sub := TEXT0{}
	out, err := sub.Apply(textOps(t, TextOp{P: Path{3}, I: " world"}), "foo")
	require.NoError(t, err)
	assert.Equal(t, "foo world", out)

	out2, err := sub.Apply(textOps(t, TextOp{P: Path{3}, D: " world"}), out)
	require.NoError(t, err)
	assert.Equal(t, "foo", out2)
}

func TestTEXT0InverseSwapsInsertDelete(t *testing.T) {
	sub := TEXT0{}
	ops := textOps(t, TextOp{P: Path{0}, I: "hi"})
	inv, err := sub.Inverse(ops)
	require.NoError(t, err)

	var decoded []TextOp
	require.NoError(t, json.Unmarshal(inv, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "hi", decoded[0].D)
	assert.Empty(t, decoded[0].I)
}

func TestTEXT0DeleteMismatchFails(t *testing.T) {
	sub := TEXT0{}
	_, err := sub.Apply(textOps(t, TextOp{P: Path{0}, D: "zzz"}), "abc")
	require.Error(t, err)
	var mismatch ErrOldDataMismatch
	assert.ErrorAs(t, err, &mismatch)
}

func TestApplySubtypeDispatch(t *testing.T) {
	v := mustDecode(t, `{"s":"foo"}`)
	op := Op{P: Path{"s"}, T: "text0", O: textOps(t, TextOp{P: Path{3}, I: "!"})}
	out, err := Apply([]Op{op}, v)
	require.NoError(t, err)
	assert.Equal(t, "foo!", out.(map[string]interface{})["s"])
}

func TestApplyUnknownSubtypeFails(t *testing.T) {
	v := mustDecode(t, `{"s":"foo"}`)
	op := Op{P: Path{"s"}, T: "rich-text9000", O: json.RawMessage(`[]`)}
	_, err := Apply([]Op{op}, v)
	require.Error(t, err)
	var unsupported ErrUnsupportedSubtype
	assert.ErrorAs(t, err, &unsupported)
}
