package sharedb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homveloper/sharedb-client/sdlog"
)

// Counter is the entity type the end-to-end scenarios in
// SPEC_FULL.md §8 are built around.
type Counter struct {
	NumClicks int64 `json:"numClicks"`
}

func (c Counter) Clone() Counter { return c }

func testConfig() Config {
	return Config{Logger: sdlog.NewNop()}
}

func TestScenario1HandshakeThenSubscribe(t *testing.T) {
	sock := newFakeSocket()
	defer sock.Close()

	conn, err := Connect(sock, nil, testConfig())
	require.NoError(t, err)
	require.Equal(t, 1, sock.count())
	assert.JSONEq(t, `{"a":"hs","protocol":1,"protocolMinor":1}`, string(sock.frame(0)))

	conn.handleInbound([]byte(`{"a":"hs","id":"c1"}`))
	assert.Equal(t, "c1", conn.clientIDSnapshot())

	doc, err := SubscribeDocument[Counter](conn, "examples", "counter")
	require.NoError(t, err)
	assert.Equal(t, StatePending, doc.State())
	require.Equal(t, 2, sock.count())
	assert.JSONEq(t, `{"a":"s","c":"examples","d":"counter"}`, string(sock.frame(1)))

	conn.handleInbound([]byte(`{"a":"s","c":"examples","d":"counter","data":{"v":3,"data":{"numClicks":5}}}`))
	assert.Equal(t, StateReady, doc.State())
	assert.Equal(t, int64(5), doc.Entity().NumClicks)
	require.NotNil(t, doc.Version())
	assert.Equal(t, uint64(3), *doc.Version())
}

// setupReadyCounter drives scenario 1 and returns a document parked at
// v=3, numClicks=5, Ready, clientID "c1".
func setupReadyCounter(t *testing.T) (*Connection, *Document[Counter], *fakeSocket) {
	t.Helper()
	sock := newFakeSocket()
	conn, err := Connect(sock, nil, testConfig())
	require.NoError(t, err)
	conn.handleInbound([]byte(`{"a":"hs","id":"c1"}`))

	doc, err := SubscribeDocument[Counter](conn, "examples", "counter")
	require.NoError(t, err)
	conn.handleInbound([]byte(`{"a":"s","c":"examples","d":"counter","data":{"v":3,"data":{"numClicks":5}}}`))
	return conn, doc, sock
}

func TestScenario2LocalIncrement(t *testing.T) {
	conn, doc, sock := setupReadyCounter(t)
	defer sock.Close()

	err := doc.Change(func(p *Proxy) {
		require.NoError(t, p.Key("numClicks").Set(int64(6)))
	})
	require.NoError(t, err)
	assert.Equal(t, int64(6), doc.Entity().NumClicks)

	require.Equal(t, 3, sock.count())
	assert.JSONEq(t,
		`{"a":"op","c":"examples","d":"counter","src":"c1","seq":1,"v":3,"op":[{"p":["numClicks"],"oi":6,"od":5}]}`,
		string(sock.frame(2)))

	_ = conn
}

func TestScenario3Ack(t *testing.T) {
	conn, doc, sock := setupReadyCounter(t)
	defer sock.Close()

	err := doc.Change(func(p *Proxy) {
		require.NoError(t, p.Key("numClicks").Set(int64(6)))
	})
	require.NoError(t, err)

	conn.handleInbound([]byte(`{"a":"op","c":"examples","d":"counter","src":"c1","seq":1,"v":3,` +
		`"op":[{"p":["numClicks"],"oi":6,"od":5}]}`))
	require.NotNil(t, doc.Version())
	assert.Equal(t, uint64(4), *doc.Version())
}

func TestScenario4ConcurrentRemoteOpWhileInflight(t *testing.T) {
	conn, doc, sock := setupReadyCounter(t)
	defer sock.Close()

	err := doc.Change(func(p *Proxy) {
		require.NoError(t, p.Key("numClicks").Set(int64(6)))
	})
	require.NoError(t, err)

	conn.handleInbound([]byte(`{"a":"op","c":"examples","d":"counter","src":"other","v":3,` +
		`"op":[{"p":["numClicks"],"na":2}]}`))
	assert.Equal(t, int64(8), doc.Entity().NumClicks)
	require.NotNil(t, doc.Version())
	assert.Equal(t, uint64(4), *doc.Version())

	conn.handleInbound([]byte(`{"a":"op","c":"examples","d":"counter","src":"c1","seq":1,"v":4,` +
		`"op":[{"p":["numClicks"],"oi":6,"od":5}]}`))
	require.NotNil(t, doc.Version())
	assert.Equal(t, uint64(5), *doc.Version())
}

func TestStaleAckIsRejectedNotAppliedToVersion(t *testing.T) {
	conn, doc, sock := setupReadyCounter(t)
	defer sock.Close()

	require.NoError(t, doc.Change(func(p *Proxy) {
		require.NoError(t, p.Key("numClicks").Set(int64(6)))
	}))

	// Echoes a v that does not match the document's current version
	// (3): this ack must be rejected rather than silently moving the
	// version.
	conn.handleInbound([]byte(`{"a":"op","c":"examples","d":"counter","src":"c1","seq":1,"v":9,` +
		`"op":[{"p":["numClicks"],"oi":6,"od":5}]}`))
	require.NotNil(t, doc.Version())
	assert.Equal(t, uint64(3), *doc.Version())
}

func TestHandshakeUnsupportedDefaultTypeLeavesDefaultUnset(t *testing.T) {
	sock := newFakeSocket()
	defer sock.Close()
	conn, err := Connect(sock, nil, testConfig())
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		conn.handleInbound([]byte(`{"a":"hs","id":"c1","type":"some-other-ot-type"}`))
	})
	// clientID is still assigned before the type check fails.
	assert.Equal(t, "c1", conn.clientIDSnapshot())
	assert.Equal(t, jsonType, conn.defaultType())
}

func TestScenario5RejectedCreate(t *testing.T) {
	sock := newFakeSocket()
	defer sock.Close()
	conn, err := Connect(sock, nil, testConfig())
	require.NoError(t, err)
	conn.handleInbound([]byte(`{"a":"hs","id":"c1"}`))

	doc, err := GetDocument[Counter](conn, "examples", "x")
	require.NoError(t, err)
	require.NoError(t, doc.Create(Counter{}, jsonType))
	assert.Equal(t, StateReady, doc.State())

	conn.handleInbound([]byte(`{"a":"op","c":"examples","d":"x","src":"c1","seq":1,` +
		`"create":{"type":"http://sharejs.org/types/JSONv0","data":{}},` +
		`"error":{"code":"ERR_DOC_ALREADY_CREATED","message":"exists"}}`))
	assert.Equal(t, StateReady, doc.State())

	require.NoError(t, doc.put([]byte(`{"numClicks":0}`), 1, jsonType))
	assert.Equal(t, StateReady, doc.State())
	require.NotNil(t, doc.Version())
	assert.Equal(t, uint64(1), *doc.Version())
}

func TestUnknownDocumentFrameIsLoggedNotFatal(t *testing.T) {
	sock := newFakeSocket()
	defer sock.Close()
	conn, err := Connect(sock, nil, testConfig())
	require.NoError(t, err)
	conn.handleInbound([]byte(`{"a":"hs","id":"c1"}`))

	assert.NotPanics(t, func() {
		conn.handleInbound([]byte(`{"a":"s","c":"examples","d":"ghost","data":{"v":1,"data":{}}}`))
	})
}

func TestMalformedFrameIsLoggedNotFatal(t *testing.T) {
	sock := newFakeSocket()
	defer sock.Close()
	conn, err := Connect(sock, nil, testConfig())
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		conn.handleInbound([]byte(`not json`))
	})
}
