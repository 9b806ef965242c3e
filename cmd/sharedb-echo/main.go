// Command sharedb-echo is a minimal demo: it connects to a ShareDB
// server, subscribes to one document, and prints every entity update
// to stdout until interrupted.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/homveloper/sharedb-client/sdlog"
	"github.com/homveloper/sharedb-client/sharedb"
	"github.com/homveloper/sharedb-client/sharedbws"
	"github.com/homveloper/sharedb-client/value"
)

// Entity is the minimal echoed document shape: an open JSON object.
// It implements sharedb.Cloner by deep-copying its map.
type Entity struct {
	Fields map[string]interface{}
}

func (e Entity) Clone() Entity {
	return Entity{Fields: value.Clone(e.Fields).(map[string]interface{})}
}

func (e Entity) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Fields)
}

func (e *Entity) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &e.Fields)
}

func main() {
	url := flag.String("url", "ws://localhost:8080", "ShareDB WebSocket URL")
	collection := flag.String("collection", "examples", "collection name")
	document := flag.String("document", "counter", "document key")
	flag.Parse()

	logger := sdlog.NewDevelopment()

	dial := func() (sharedb.Socket, error) {
		return sharedbws.Dial(*url, 0)
	}
	socket, err := dial()
	if err != nil {
		fmt.Fprintln(os.Stderr, "dial:", err)
		os.Exit(1)
	}

	conn, err := sharedb.Connect(socket, dial, sharedb.Config{
		Reconnect:        true,
		ReconnectBackoff: sharedb.DefaultReconnectBackoff,
		Logger:           logger,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect:", err)
		os.Exit(1)
	}
	defer conn.Close()

	doc, err := sharedb.SubscribeDocument[Entity](conn, *collection, *document)
	if err != nil {
		fmt.Fprintln(os.Stderr, "subscribe:", err)
		os.Exit(1)
	}

	updates, unsubscribe := doc.Stream().Subscribe()
	defer unsubscribe()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case entity, ok := <-updates:
			if !ok {
				return
			}
			fmt.Printf("%s/%s: %v\n", *collection, *document, entity.Fields)
		case <-sigc:
			return
		}
	}
}
