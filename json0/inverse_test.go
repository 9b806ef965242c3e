package json0

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homveloper/sharedb-client/value"
)

func TestInverseApplyRoundTrip(t *testing.T) {
	original := mustDecode(t, `{"numClicks":5,"tags":["a","b"],"s":"hello"}`)
	ops := []Op{
		{P: Path{"numClicks"}, HasNA: true, NA: int64(3)},
		{P: Path{"tags", 2}, HasLI: true, LI: "c"},
		{P: Path{"s", 5}, HasSI: true, SI: " world"},
	}

	applied, err := Apply(ops, original)
	require.NoError(t, err)

	inv, err := Inverse(ops)
	require.NoError(t, err)

	restored, err := Apply(inv, applied)
	require.NoError(t, err)

	assert.True(t, value.Equal(original, restored))
}

func TestInverseOfInverseIsOriginal(t *testing.T) {
	ops := []Op{
		{P: Path{"a"}, HasOI: true, OI: int64(1)},
		{P: Path{"b", 0}, HasLD: true, LD: "x"},
	}

	once, err := Inverse(ops)
	require.NoError(t, err)
	twice, err := Inverse(once)
	require.NoError(t, err)

	require.Len(t, twice, len(ops))
	for i := range ops {
		assert.Equal(t, ops[i].P, twice[i].P)
		assert.Equal(t, ops[i].Kind(), twice[i].Kind())
	}
}

func TestApplyNoopsIsIdentity(t *testing.T) {
	original := mustDecode(t, `{"a":1,"b":[1,2,3]}`)
	out, err := Apply(nil, original)
	require.NoError(t, err)
	assert.True(t, value.Equal(original, out))
}

func TestAppendConcatenates(t *testing.T) {
	list := []Op{{P: Path{"a"}, HasOI: true, OI: int64(1)}}
	combined := Append(Op{P: Path{"b"}, HasOI: true, OI: int64(2)}, list)
	require.Len(t, combined, 2)
	assert.Equal(t, Path{"a"}, combined[0].P)
	assert.Equal(t, Path{"b"}, combined[1].P)
	// original list untouched
	assert.Len(t, list, 1)
}
