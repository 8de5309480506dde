package app

import (
	"context"
	"sync"

	"github.com/dkeye/LivePoll/internal/core"
	"github.com/dkeye/LivePoll/internal/metrics"
	"github.com/rs/zerolog/log"
)

// PublishResult reports delivery stats for one event.
type PublishResult struct {
	SentTo  int
	Dropped []core.ConnID
}

type deliveryKind int

const (
	deliverAll deliveryKind = iota
	deliverOne
	deliverKick
)

type delivery struct {
	kind  deliveryKind
	to    core.ConnID
	event core.Event
}

// Hub fans events out to the subscriber set. Publishing only queues the
// event; Run delivers in publish order, so a mutation is complete and
// observable before any client sees it. Delivery is best effort.
type Hub struct {
	policy  Policy
	metrics *metrics.Metrics

	mu    sync.Mutex
	subs  map[core.ConnID]core.Connection
	queue []delivery
	wake  chan struct{}
}

func NewHub(policy Policy, m *metrics.Metrics) *Hub {
	if policy == nil {
		policy = SimplePolicy{Action: Disconnect}
	}
	return &Hub{
		policy:  policy,
		metrics: m,
		subs:    make(map[core.ConnID]core.Connection),
		wake:    make(chan struct{}, 1),
	}
}

func (h *Hub) Subscribe(id core.ConnID, c core.Connection) {
	h.mu.Lock()
	h.subs[id] = c
	n := len(h.subs)
	h.mu.Unlock()
	log.Debug().Str("module", "app.hub").Str("conn", string(id)).Int("subscribers", n).Msg("subscribed")
}

// Unsubscribe removes id from the subscriber set without closing it; the
// adapter owns the transport.
func (h *Hub) Unsubscribe(id core.ConnID) {
	h.mu.Lock()
	delete(h.subs, id)
	h.mu.Unlock()
	log.Debug().Str("module", "app.hub").Str("conn", string(id)).Msg("unsubscribed")
}

// remove reports whether id was still subscribed.
func (h *Hub) remove(id core.ConnID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.subs[id]
	delete(h.subs, id)
	return ok
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) BroadcastAll(ev core.Event) {
	h.enqueue(delivery{kind: deliverAll, event: ev})
}

func (h *Hub) SendTo(id core.ConnID, ev core.Event) {
	h.enqueue(delivery{kind: deliverOne, to: id, event: ev})
}

// Kick delivers ev to id, then unsubscribes and closes the connection.
func (h *Hub) Kick(id core.ConnID, ev core.Event) {
	h.enqueue(delivery{kind: deliverKick, to: id, event: ev})
}

func (h *Hub) enqueue(d delivery) {
	h.mu.Lock()
	h.queue = append(h.queue, d)
	h.mu.Unlock()
	select {
	case h.wake <- struct{}{}:
	default:
	}
}

// Run delivers queued events until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	log.Info().Str("module", "app.hub").Msg("hub started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.hub").Msg("hub stopped")
			return
		case <-h.wake:
			h.Flush()
		}
	}
}

// Flush delivers everything queued so far on the calling goroutine. It
// must not run concurrently with Run.
func (h *Hub) Flush() {
	for {
		h.mu.Lock()
		batch := h.queue
		h.queue = nil
		h.mu.Unlock()
		if len(batch) == 0 {
			return
		}
		for _, d := range batch {
			h.deliver(d)
		}
	}
}

func (h *Hub) deliver(d delivery) {
	frame, err := d.event.Encode()
	if err != nil {
		log.Error().Err(err).Str("module", "app.hub").Str("event", string(d.event.Type)).Msg("encode event")
		return
	}

	targets := h.targets(d)
	res := PublishResult{}
	for id, c := range targets {
		if err := c.TrySend(frame); err != nil {
			res.Dropped = append(res.Dropped, id)
			h.onDropped(id, c, err)
			continue
		}
		res.SentTo++
	}
	if h.metrics != nil {
		h.metrics.Frames.WithLabelValues("sent").Add(float64(res.SentTo))
		h.metrics.Frames.WithLabelValues("dropped").Add(float64(len(res.Dropped)))
	}

	if d.kind == deliverKick {
		if c, ok := targets[d.to]; ok && h.remove(d.to) {
			c.Close()
		}
	}
	log.Debug().Str("module", "app.hub").Str("event", string(d.event.Type)).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
}

func (h *Hub) targets(d delivery) map[core.ConnID]core.Connection {
	h.mu.Lock()
	defer h.mu.Unlock()
	if d.kind == deliverAll {
		out := make(map[core.ConnID]core.Connection, len(h.subs))
		for id, c := range h.subs {
			out[id] = c
		}
		return out
	}
	c, ok := h.subs[d.to]
	if !ok {
		return nil
	}
	return map[core.ConnID]core.Connection{d.to: c}
}

func (h *Hub) onDropped(id core.ConnID, c core.Connection, err error) {
	switch h.policy.OnBackPressure(id, err) {
	case Disconnect:
		if h.remove(id) {
			log.Warn().Err(err).Str("module", "app.hub").Str("conn", string(id)).Msg("disconnecting slow consumer")
			c.Close()
		}
	case DropFrame, NoAction:
	}
}
