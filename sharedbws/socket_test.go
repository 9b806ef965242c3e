package sharedbws

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoServer upgrades every request and echoes back whatever text
// frames it receives, until the client closes.
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(mt, data); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + srv.URL[len("http"):]
}

func TestDialWriteReadRoundTrip(t *testing.T) {
	srv := echoServer(t)

	sock, err := Dial(wsURL(srv), time.Second)
	require.NoError(t, err)
	defer sock.Close()

	require.NoError(t, sock.WriteMessage([]byte(`{"a":"hs"}`)))
	raw, err := sock.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, `{"a":"hs"}`, string(raw))
}

func TestWriteAfterCloseFails(t *testing.T) {
	srv := echoServer(t)

	sock, err := Dial(wsURL(srv), time.Second)
	require.NoError(t, err)

	require.NoError(t, sock.Close())
	err = sock.WriteMessage([]byte(`{"a":"hs"}`))
	assert.Error(t, err)
}

func TestReadAfterServerCloseReturnsError(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close()
	}))
	t.Cleanup(srv.Close)

	sock, err := Dial(wsURL(srv), time.Second)
	require.NoError(t, err)
	defer sock.Close()

	_, err = sock.ReadMessage()
	assert.Error(t, err)
}

func TestDialInvalidURLFails(t *testing.T) {
	_, err := Dial("ws://127.0.0.1:0", time.Millisecond)
	assert.Error(t, err)
}
