package app

import (
	"fmt"
	"time"

	"github.com/dkeye/LivePoll/internal/domain"
	"github.com/rs/zerolog/log"
)

// PollStore owns every created poll and the append-only history of
// completed runs. Not safe for concurrent use.
type PollStore struct {
	polls   map[domain.PollID]*domain.PollState
	order   []domain.PollID
	history []domain.HistoryEntry
}

func NewPollStore() *PollStore {
	return &PollStore{polls: make(map[domain.PollID]*domain.PollState)}
}

func (s *PollStore) Create(question string, options []string, duration time.Duration, createdBy domain.UserID, now time.Time) (domain.Poll, error) {
	p, err := domain.NewPoll(question, options, duration, createdBy, now)
	if err != nil {
		return domain.Poll{}, fmt.Errorf("create poll: %w", err)
	}
	s.polls[p.ID] = domain.NewPollState(p)
	s.order = append(s.order, p.ID)
	log.Info().Str("module", "app.polls").Str("poll", string(p.ID)).Int("options", len(p.Options)).Msg("poll created")
	return p.Clone(), nil
}

// Get returns the live state owned by the store. Callers must not retain
// it outside the coordinator.
func (s *PollStore) Get(id domain.PollID) (*domain.PollState, bool) {
	st, ok := s.polls[id]
	return st, ok
}

// List returns poll definitions with their current tallies, oldest first.
func (s *PollStore) List() []domain.Poll {
	out := make([]domain.Poll, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.polls[id].Poll.Clone())
	}
	return out
}

func (s *PollStore) AppendHistory(e domain.HistoryEntry) {
	s.history = append(s.history, e)
}

func (s *PollStore) History() []domain.HistoryEntry {
	out := make([]domain.HistoryEntry, len(s.history))
	for i, e := range s.history {
		out[i] = e.Clone()
	}
	return out
}
