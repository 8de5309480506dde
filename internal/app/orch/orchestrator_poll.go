package orch

import (
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/LivePoll/internal/core"
	"github.com/dkeye/LivePoll/internal/domain"
	"github.com/rs/zerolog/log"
)

// ListPolls returns every created poll, oldest first.
func (o *Orchestrator) ListPolls() []domain.Poll {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Polls.List()
}

// CurrentPoll returns a snapshot of the current poll or nil. It never
// waits for a transition in progress.
func (o *Orchestrator) CurrentPoll() *domain.PollState {
	cur := o.current.Load()
	if cur == nil {
		return nil
	}
	return cur.Clone()
}

func (o *Orchestrator) History() []domain.HistoryEntry {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Polls.History()
}

// CreatePoll stores a new inactive poll. A zero duration means the
// configured default.
func (o *Orchestrator) CreatePoll(question string, options []string, durationSeconds int, createdBy domain.UserID) (domain.Poll, error) {
	d := o.opts.DefaultDuration
	if durationSeconds != 0 {
		// Bound the seconds before converting so huge values cannot wrap.
		if durationSeconds < 1 || int64(durationSeconds) > int64(o.opts.MaxDuration/time.Second) {
			return domain.Poll{}, fmt.Errorf("duration %ds: %w", durationSeconds, domain.ErrInvalidDuration)
		}
		d = time.Duration(durationSeconds) * time.Second
	}
	if d < time.Second || d > o.opts.MaxDuration {
		return domain.Poll{}, fmt.Errorf("duration %s: %w", d, domain.ErrInvalidDuration)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Polls.Create(question, options, d, createdBy, o.opts.Now())
}

// StartPoll makes id the current poll, force-ending any poll that was
// current before.
func (o *Orchestrator) StartPoll(id domain.PollID) (*domain.PollState, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	started, ended, err := o.Machine.Start(id, o.opts.Now())
	if err != nil {
		return nil, err
	}
	if ended != nil {
		o.archive(*ended)
		o.Hub.BroadcastAll(core.NewEvent(core.EventPollEnded, ended.PollState.Clone()))
	}
	o.Metrics.PollsStarted.Inc()
	o.refreshCurrent()
	snap := started.Clone()
	o.Hub.BroadcastAll(core.NewEvent(core.EventPollStarted, snap))
	return snap, nil
}

// EndPoll force-ends id if it is the current poll.
func (o *Orchestrator) EndPoll(id domain.PollID) (*domain.HistoryEntry, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	entry, err := o.Machine.End(id, o.opts.Now())
	if err != nil {
		return nil, err
	}
	o.finishBroadcast(entry)
	out := entry.Clone()
	return &out, nil
}

// expire runs on the timer goroutine and funnels through mu like every
// other transition.
func (o *Orchestrator) expire(id domain.PollID, run uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	entry, ok := o.Machine.Expire(id, run, o.opts.Now())
	if !ok {
		return
	}
	o.finishBroadcast(entry)
}

func (o *Orchestrator) finishBroadcast(entry domain.HistoryEntry) {
	o.archive(entry)
	o.refreshCurrent()
	o.Hub.BroadcastAll(core.NewEvent(core.EventPollEnded, entry.PollState.Clone()))
}

// Vote casts or revises userID's vote on the current poll.
func (o *Orchestrator) Vote(pollID domain.PollID, userID domain.UserID, option int) (*domain.PollState, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	st, err := o.Tally.Cast(pollID, userID, option)
	if err != nil {
		o.Metrics.Votes.WithLabelValues(voteOutcome(err)).Inc()
		log.Warn().Err(err).Str("module", "orch").Str("poll", string(pollID)).Str("user", string(userID)).Msg("vote rejected")
		return nil, err
	}
	o.Metrics.Votes.WithLabelValues("accepted").Inc()
	o.refreshCurrent()
	snap := st.Clone()
	o.Hub.BroadcastAll(core.NewEvent(core.EventPollResults, snap))
	return snap, nil
}

func voteOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrPollNotActive):
		return "not_active"
	case errors.Is(err, domain.ErrInvalidOption):
		return "invalid_option"
	default:
		return "not_found"
	}
}
