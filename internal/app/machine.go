package app

import (
	"fmt"
	"time"

	"github.com/dkeye/LivePoll/internal/domain"
	"github.com/rs/zerolog/log"
)

// Timer is the cancellable handle of a scheduled expiry.
type Timer interface {
	Stop() bool
}

// Scheduler arms expiry callbacks. *time.Timer satisfies Timer.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type systemScheduler struct{}

func (systemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

var SystemScheduler Scheduler = systemScheduler{}

// ExpiryFunc is invoked from the timer goroutine. It must funnel back into
// the coordinator before calling Machine.Expire.
type ExpiryFunc func(id domain.PollID, run uint64)

// Machine owns the single current-poll slot: Idle when current is nil,
// Active otherwise. Every run gets a sequence number so that a timer armed
// for an earlier run, even of the same poll, can never end a later one.
//
// Not safe for concurrent use.
type Machine struct {
	store    *PollStore
	sched    Scheduler
	onExpire ExpiryFunc

	current *domain.PollState
	run     uint64
	timer   Timer
}

func NewMachine(store *PollStore, sched Scheduler, onExpire ExpiryFunc) *Machine {
	if sched == nil {
		sched = SystemScheduler
	}
	return &Machine{store: store, sched: sched, onExpire: onExpire}
}

// Start activates id. A poll that is already current is force-ended first
// and returned as ended.
func (m *Machine) Start(id domain.PollID, now time.Time) (*domain.PollState, *domain.HistoryEntry, error) {
	st, ok := m.store.Get(id)
	if !ok {
		return nil, nil, fmt.Errorf("poll %s: %w", id, domain.ErrNotFound)
	}
	var ended *domain.HistoryEntry
	if m.current != nil {
		e := m.finish(now, domain.EndSuperseded)
		ended = &e
	}
	st.Activate(now)
	m.current = st
	m.run++
	m.arm(st.ID, m.run, st.Duration())
	log.Info().Str("module", "app.machine").Str("poll", string(id)).Uint64("run", m.run).Int("duration", st.DurationSeconds).Msg("poll started")
	return st, ended, nil
}

// Expire ends the current poll when the timer of (id, run) fires. A timer
// whose target is no longer current is a no-op.
func (m *Machine) Expire(id domain.PollID, run uint64, now time.Time) (domain.HistoryEntry, bool) {
	if m.current == nil || m.current.ID != id || m.run != run {
		log.Debug().Str("module", "app.machine").Str("poll", string(id)).Uint64("run", run).Msg("stale timer ignored")
		return domain.HistoryEntry{}, false
	}
	return m.finish(now, domain.EndExpired), true
}

// End force-ends id if it is the current poll.
func (m *Machine) End(id domain.PollID, now time.Time) (domain.HistoryEntry, error) {
	if m.current == nil || m.current.ID != id {
		return domain.HistoryEntry{}, fmt.Errorf("poll %s: %w", id, domain.ErrPollNotActive)
	}
	return m.finish(now, domain.EndManual), nil
}

// Current returns the live current poll or nil.
func (m *Machine) Current() *domain.PollState {
	return m.current
}

func (m *Machine) finish(now time.Time, reason domain.EndReason) domain.HistoryEntry {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	cur := m.current
	cur.Deactivate(now)
	entry := domain.NewHistoryEntry(cur, reason)
	m.store.AppendHistory(entry)
	m.current = nil
	log.Info().Str("module", "app.machine").Str("poll", string(cur.ID)).Str("reason", string(reason)).Msg("poll ended")
	return entry
}

func (m *Machine) arm(id domain.PollID, run uint64, d time.Duration) {
	if m.onExpire == nil {
		return
	}
	m.timer = m.sched.AfterFunc(d, func() { m.onExpire(id, run) })
}
