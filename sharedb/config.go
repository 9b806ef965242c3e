package sharedb

import (
	"time"

	"github.com/homveloper/sharedb-client/sdlog"
)

// ReconnectBackoff configures the exponential backoff between dial
// attempts. It mirrors the min/max/factor shape of the
// cenkalti/backoff-style configs the pack favors, reimplemented with
// plain fields so this module does not need a dependency the
// teacher's go.mod never carried directly.
type ReconnectBackoff struct {
	Min    time.Duration
	Max    time.Duration
	Factor float64
}

// Next returns the backoff duration for the given attempt (0-based),
// capped at Max.
func (b ReconnectBackoff) Next(attempt int) time.Duration {
	if b.Min <= 0 {
		return 0
	}
	d := b.Min
	for i := 0; i < attempt; i++ {
		d = time.Duration(float64(d) * b.Factor)
		if d >= b.Max {
			return b.Max
		}
	}
	return d
}

// DefaultReconnectBackoff is a reasonable default: 200ms, doubling, up
// to 10s.
var DefaultReconnectBackoff = ReconnectBackoff{
	Min:    200 * time.Millisecond,
	Max:    10 * time.Second,
	Factor: 2,
}

// Config carries the ambient, non-protocol settings a Connection
// needs: whether to reconnect automatically on socket close, the
// backoff schedule between attempts, and the logger every layer of
// this module writes through.
type Config struct {
	Reconnect        bool
	ReconnectBackoff ReconnectBackoff
	Logger           *sdlog.Logger
}

// DefaultConfig matches spec.md §6: reconnect enabled by default.
func DefaultConfig() Config {
	return Config{
		Reconnect:        true,
		ReconnectBackoff: DefaultReconnectBackoff,
		Logger:           sdlog.NewNop(),
	}
}

func (c Config) logger() *sdlog.Logger {
	if c.Logger == nil {
		return sdlog.NewNop()
	}
	return c.Logger
}
