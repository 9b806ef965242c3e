package sharedb

import "sync"

// fakeSocket is an in-memory Socket double. WriteMessage records every
// outbound frame for assertions; ReadMessage blocks until Close so the
// automatic read loop never races with a test driving handleInbound
// directly.
type fakeSocket struct {
	mu     sync.Mutex
	outbox [][]byte
	block  chan struct{}
	once   sync.Once
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{block: make(chan struct{})}
}

func (f *fakeSocket) WriteMessage(raw []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := append([]byte(nil), raw...)
	f.outbox = append(f.outbox, cp)
	return nil
}

func (f *fakeSocket) ReadMessage() ([]byte, error) {
	<-f.block
	return nil, errClosedFakeSocket{}
}

func (f *fakeSocket) Close() error {
	f.once.Do(func() { close(f.block) })
	return nil
}

func (f *fakeSocket) frame(i int) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.outbox[i]
}

func (f *fakeSocket) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.outbox)
}

type errClosedFakeSocket struct{}

func (errClosedFakeSocket) Error() string { return "fakeSocket: closed" }
