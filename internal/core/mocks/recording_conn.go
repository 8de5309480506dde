package mocks

import (
	"encoding/json"
	"sync"

	"github.com/dkeye/LivePoll/internal/core"
)

// DecodedEvent is a received frame with its data left raw.
type DecodedEvent struct {
	Type  core.EventType  `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

// RecordingConn is a core.Connection that keeps every frame it accepts.
// Set Full to simulate a slow consumer.
type RecordingConn struct {
	mu     sync.Mutex
	frames []core.Frame
	closed int
	full   bool
}

func NewRecordingConn() *RecordingConn {
	return &RecordingConn{}
}

func (c *RecordingConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed > 0 {
		return core.ErrConnClosed
	}
	if c.full {
		return core.ErrBackpressure
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *RecordingConn) Close() {
	c.mu.Lock()
	c.closed++
	c.mu.Unlock()
}

func (c *RecordingConn) SetFull(full bool) {
	c.mu.Lock()
	c.full = full
	c.mu.Unlock()
}

// CloseCount reports how many times Close was called.
func (c *RecordingConn) CloseCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *RecordingConn) Events() []DecodedEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]DecodedEvent, 0, len(c.frames))
	for _, f := range c.frames {
		var ev DecodedEvent
		if err := json.Unmarshal(f, &ev); err != nil {
			continue
		}
		out = append(out, ev)
	}
	return out
}

func (c *RecordingConn) Types() []core.EventType {
	evs := c.Events()
	out := make([]core.EventType, len(evs))
	for i, ev := range evs {
		out[i] = ev.Type
	}
	return out
}

// Of returns the received events of type t, oldest first.
func (c *RecordingConn) Of(t core.EventType) []DecodedEvent {
	var out []DecodedEvent
	for _, ev := range c.Events() {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}
