package export

import (
	"context"
	"time"

	"github.com/dkeye/LivePoll/internal/domain"
	"github.com/rs/zerolog/log"
)

const publishTimeout = 5 * time.Second

// Exporter decouples the session from the sink: Archive only queues, Run
// publishes. When the queue is full the entry is dropped and logged.
type Exporter struct {
	sink  Sink
	queue chan domain.HistoryEntry
}

func NewExporter(sink Sink, buffer int) *Exporter {
	if buffer <= 0 {
		buffer = 64
	}
	return &Exporter{sink: sink, queue: make(chan domain.HistoryEntry, buffer)}
}

func (e *Exporter) Archive(entry domain.HistoryEntry) {
	select {
	case e.queue <- entry:
	default:
		log.Warn().Str("module", "export").Str("poll", string(entry.ID)).Msg("export queue full, entry dropped")
	}
}

// Run publishes queued entries until ctx is done, then drains what is left
// with a fresh deadline.
func (e *Exporter) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			e.drain()
			return
		case entry := <-e.queue:
			e.publish(ctx, entry)
		}
	}
}

func (e *Exporter) drain() {
	for {
		select {
		case entry := <-e.queue:
			e.publish(context.Background(), entry)
		default:
			return
		}
	}
}

func (e *Exporter) publish(ctx context.Context, entry domain.HistoryEntry) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := e.sink.Publish(ctx, entry); err != nil {
		log.Error().Err(err).Str("module", "export").Str("poll", string(entry.ID)).Msg("publish history entry")
		return
	}
	log.Debug().Str("module", "export").Str("poll", string(entry.ID)).Msg("history entry exported")
}
