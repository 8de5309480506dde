package export

import (
	"context"

	"github.com/dkeye/LivePoll/internal/domain"
)

// Sink writes one completed poll somewhere outside the process.
type Sink interface {
	Publish(ctx context.Context, entry domain.HistoryEntry) error
	Close() error
}
