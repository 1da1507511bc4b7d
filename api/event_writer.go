package api

import (
	"bytes"
	"io"
	"sync"
)

// eventWriter is an io.Writer that buffers everything written to it
// (for the console-output endpoint) while also broadcasting each
// write as an output event to subscribed WebSocket clients.
type eventWriter struct {
	broadcaster *Broadcaster
	sessionID   string
	buffer      bytes.Buffer
	mu          sync.Mutex
}

func newEventWriter(b *Broadcaster, sessionID string) *eventWriter {
	return &eventWriter{broadcaster: b, sessionID: sessionID}
}

func (w *eventWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.buffer.Write(p)
	if err == nil && n > 0 && w.broadcaster != nil {
		w.broadcaster.BroadcastOutput(w.sessionID, string(p))
	}
	return n, err
}

func (w *eventWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buffer.String()
}

var _ io.Writer = (*eventWriter)(nil)
