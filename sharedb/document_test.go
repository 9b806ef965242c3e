package sharedb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeTwiceFailsAlreadySubscribed(t *testing.T) {
	sock := newFakeSocket()
	defer sock.Close()
	conn, err := Connect(sock, nil, testConfig())
	require.NoError(t, err)

	doc, err := GetDocument[Counter](conn, "examples", "counter")
	require.NoError(t, err)
	require.NoError(t, doc.Subscribe())

	err = doc.Subscribe()
	require.Error(t, err)
	var already ErrAlreadySubscribed
	assert.ErrorAs(t, err, &already)
}

func TestResumeOnBlankFailsStateEvent(t *testing.T) {
	sock := newFakeSocket()
	defer sock.Close()
	conn, err := Connect(sock, nil, testConfig())
	require.NoError(t, err)

	doc, err := GetDocument[Counter](conn, "examples", "counter")
	require.NoError(t, err)

	err = doc.resume()
	require.Error(t, err)
	var stateErr ErrStateEvent
	assert.ErrorAs(t, err, &stateErr)
	assert.Equal(t, StateBlank, doc.State())
}

func TestChangeOnUnsubscribedDocumentFails(t *testing.T) {
	sock := newFakeSocket()
	defer sock.Close()
	conn, err := Connect(sock, nil, testConfig())
	require.NoError(t, err)

	doc, err := GetDocument[Counter](conn, "examples", "counter")
	require.NoError(t, err)

	err = doc.Change(func(p *Proxy) {
		require.NoError(t, p.Key("numClicks").Set(int64(1)))
	})
	require.Error(t, err)
}

func TestChangeWithNoOpsSendsNothing(t *testing.T) {
	_, doc, sock := setupReadyCounter(t)
	defer sock.Close()

	before := sock.count()
	err := doc.Change(func(p *Proxy) {})
	require.NoError(t, err)
	assert.Equal(t, before, sock.count())
}

// Other is a second Cloner entity type, distinct from Counter, used
// only to exercise the entity-type mismatch path: GetDocument must be
// instantiated with a type satisfying Cloner, so the mismatch case
// cannot be tested with a bare struct.
type Other struct{ X int }

func (o Other) Clone() Other { return o }

func TestGetDocumentEntityTypeMismatch(t *testing.T) {
	sock := newFakeSocket()
	defer sock.Close()
	conn, err := Connect(sock, nil, testConfig())
	require.NoError(t, err)

	_, err = GetDocument[Counter](conn, "examples", "counter")
	require.NoError(t, err)

	_, err = GetDocument[Other](conn, "examples", "counter")
	require.Error(t, err)
	var mismatch ErrDocumentEntityType
	assert.ErrorAs(t, err, &mismatch)
}

func TestQueueDrainsFIFOOnceClientIDArrives(t *testing.T) {
	sock := newFakeSocket()
	defer sock.Close()
	conn, err := Connect(sock, nil, testConfig())
	require.NoError(t, err)

	doc, err := GetDocument[Counter](conn, "examples", "counter")
	require.NoError(t, err)
	require.NoError(t, doc.put([]byte(`{"numClicks":0}`), 0, jsonType))

	// No clientID yet: both changes queue instead of sending.
	require.NoError(t, doc.Change(func(p *Proxy) {
		require.NoError(t, p.Key("numClicks").Set(int64(1)))
	}))
	require.NoError(t, doc.Change(func(p *Proxy) {
		require.NoError(t, p.Key("numClicks").Set(int64(2)))
	}))
	baseline := sock.count()

	conn.handleInbound([]byte(`{"a":"hs","id":"c1"}`))
	// Only the head of the queue is sent; the second stays queued
	// behind the first's inflight slot.
	assert.Equal(t, baseline+1, sock.count())
	assert.Contains(t, string(sock.frame(sock.count()-1)), `"oi":1`)

	// Acking the first frees the actor to send the second, in order.
	conn.handleInbound([]byte(`{"a":"op","c":"examples","d":"counter","src":"c1","seq":1,"v":0,` +
		`"op":[{"p":["numClicks"],"oi":1,"od":0}]}`))
	assert.Equal(t, baseline+2, sock.count())
	assert.Contains(t, string(sock.frame(sock.count()-1)), `"oi":2`)
}

func TestPauseMovesInflightBackToQueueHead(t *testing.T) {
	conn, doc, sock := setupReadyCounter(t)
	defer sock.Close()
	_ = conn

	require.NoError(t, doc.Change(func(p *Proxy) {
		require.NoError(t, p.Key("numClicks").Set(int64(6)))
	}))

	require.NoError(t, doc.pause())
	assert.Equal(t, StatePaused, doc.State())

	require.NoError(t, doc.resume())
	assert.Equal(t, StateReady, doc.State())
	// resume re-sends the op that pause pulled back off inflight.
	assert.Contains(t, string(sock.frame(sock.count()-1)), `"oi":6`)
}

// TestRejectedCreateDropsInflightAndDrainsQueue guards against a
// document wedging forever: a create rejected with ERR_DOC_ALREADY_CREATED
// will never be acked, so the client must discard it from inflight
// itself rather than waiting on an ack that is never coming.
func TestRejectedCreateDropsInflightAndDrainsQueue(t *testing.T) {
	sock := newFakeSocket()
	defer sock.Close()
	conn, err := Connect(sock, nil, testConfig())
	require.NoError(t, err)
	conn.handleInbound([]byte(`{"a":"hs","id":"c1"}`))

	doc, err := GetDocument[Counter](conn, "examples", "x")
	require.NoError(t, err)
	require.NoError(t, doc.Create(Counter{}, jsonType))

	// A second local change queues behind the still-inflight create.
	require.NoError(t, doc.Change(func(p *Proxy) {
		require.NoError(t, p.Key("numClicks").Set(int64(1)))
	}))
	beforeRejection := sock.count()

	conn.handleInbound([]byte(`{"a":"op","c":"examples","d":"x","src":"c1","seq":1,` +
		`"create":{"type":"http://sharejs.org/types/JSONv0","data":{}},` +
		`"error":{"code":"ERR_DOC_ALREADY_CREATED","message":"exists"}}`))

	// The queued update should now have been sent: the rejection
	// cleared inflight instead of leaving the document stuck.
	assert.Equal(t, beforeRejection+1, sock.count())
	assert.Contains(t, string(sock.frame(sock.count()-1)), `"oi":1`)
}
