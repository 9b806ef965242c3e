package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeClassifiesNumericKind(t *testing.T) {
	v, err := Decode([]byte(`{"count":5,"ratio":5.5,"name":"a"}`))
	require.NoError(t, err)

	m := v.(map[string]interface{})
	assert.Equal(t, KindInt, KindOf(m["count"]))
	assert.Equal(t, KindDecimal, KindOf(m["ratio"]))
	assert.Equal(t, KindString, KindOf(m["name"]))
}

func TestEqualDistinguishesIntFromDecimal(t *testing.T) {
	assert.False(t, Equal(int64(5), float64(5)))
	assert.True(t, Equal(int64(5), int64(5)))
	assert.True(t, Equal(float64(5), float64(5)))
}

func TestCloneIsDeepAndIndependent(t *testing.T) {
	original := map[string]interface{}{
		"numbers": []interface{}{int64(1), int64(2)},
	}
	cloned := Clone(original).(map[string]interface{})
	cloned["numbers"].([]interface{})[0] = int64(99)

	assert.Equal(t, int64(1), original["numbers"].([]interface{})[0])
	assert.Equal(t, int64(99), cloned["numbers"].([]interface{})[0])
}

func TestEncodeRoundTrip(t *testing.T) {
	v, err := Decode([]byte(`{"a":1,"b":[1,2,"x"],"c":null}`))
	require.NoError(t, err)

	out, err := Encode(v)
	require.NoError(t, err)

	back, err := Decode(out)
	require.NoError(t, err)
	assert.True(t, Equal(v, back))
}

func TestIsUndefined(t *testing.T) {
	assert.True(t, IsUndefined(Undefined))
	assert.False(t, IsUndefined(nil))
	assert.False(t, IsUndefined("undefined"))
}
