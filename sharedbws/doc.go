// Package sharedbws is the reference sharedb.Socket transport adapter
// over github.com/gorilla/websocket, modeled on the teacher's
// eventsync.WebSocketClient: a dedicated receive loop goroutine, a
// mutex-guarded write path, and context cancellation on Close.
package sharedbws
