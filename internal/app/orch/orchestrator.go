package orch

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/dkeye/LivePoll/internal/app"
	"github.com/dkeye/LivePoll/internal/core"
	"github.com/dkeye/LivePoll/internal/domain"
	"github.com/dkeye/LivePoll/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Archiver receives every history entry once. It must not block.
type Archiver interface {
	Archive(domain.HistoryEntry)
}

type Options struct {
	DefaultDuration time.Duration
	MaxDuration     time.Duration
	ChatCapacity    int
	MaxMessageLen   int
	ChatRateLimit   int
	ChatRateWindow  time.Duration

	Now       func() time.Time
	Scheduler app.Scheduler
}

func (o *Options) withDefaults() {
	if o.DefaultDuration <= 0 {
		o.DefaultDuration = 60 * time.Second
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = time.Hour
	}
	if o.ChatCapacity <= 0 {
		o.ChatCapacity = app.DefaultChatCapacity
	}
	if o.MaxMessageLen <= 0 {
		o.MaxMessageLen = domain.MaxMessageLen
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Orchestrator is the single coordination point of the session. Every
// transition, including timer expiry, runs under mu, and events are queued
// on the hub before mu is released so clients observe them in transition
// order.
type Orchestrator struct {
	mu   sync.Mutex
	opts Options

	Registry *app.Registry
	Polls    *app.PollStore
	Machine  *app.Machine
	Tally    *app.Tally
	Chat     *app.ChatLog
	Limiter  *app.RateLimiter
	Hub      *app.Hub
	Metrics  *metrics.Metrics
	Archive  Archiver

	// current is a clone of the current poll refreshed after every
	// transition, read without taking mu.
	current atomic.Pointer[domain.PollState]
}

func New(hub *app.Hub, m *metrics.Metrics, archive Archiver, opts Options) *Orchestrator {
	opts.withDefaults()
	if m == nil {
		m = metrics.New()
	}
	if hub == nil {
		hub = app.NewHub(nil, m)
	}
	o := &Orchestrator{
		opts:     opts,
		Registry: app.NewRegistry(opts.Now),
		Polls:    app.NewPollStore(),
		Chat:     app.NewChatLog(opts.ChatCapacity),
		Limiter:  app.NewRateLimiter(opts.ChatRateLimit, opts.ChatRateWindow, opts.Now),
		Hub:      hub,
		Metrics:  m,
		Archive:  archive,
	}
	o.Machine = app.NewMachine(o.Polls, opts.Scheduler, o.expire)
	o.Tally = app.NewTally(o.Machine)
	return o
}

// refreshCurrent must run under mu after anything that touches the
// current poll.
func (o *Orchestrator) refreshCurrent() {
	if cur := o.Machine.Current(); cur != nil {
		o.current.Store(cur.Clone())
		return
	}
	o.current.Store(nil)
}

func (o *Orchestrator) publishPresence() {
	online := o.Registry.Online()
	o.Metrics.OnlineUsers.Set(float64(len(online)))
	o.Hub.BroadcastAll(core.NewEvent(core.EventUsersUpdated, online))
}

func (o *Orchestrator) archive(e domain.HistoryEntry) {
	o.Metrics.PollsEnded.WithLabelValues(string(e.Reason)).Inc()
	if o.Archive != nil {
		o.Archive.Archive(e.Clone())
	}
}

// ListUsers returns every known user.
func (o *Orchestrator) ListUsers() []domain.User {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Registry.List()
}

// RegisterUser allocates a new participant, online from the start.
func (o *Orchestrator) RegisterUser(name, role string) (domain.User, error) {
	r, err := domain.ParseRole(role)
	if err != nil {
		return domain.User{}, err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	u, err := o.Registry.Register(name, r)
	if err != nil {
		return domain.User{}, err
	}
	log.Info().Str("module", "orch").Str("user", string(u.ID)).Msg("user registered")
	return u, nil
}

// RecentMessages returns the chat buffer oldest first.
func (o *Orchestrator) RecentMessages() []domain.ChatMessage {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Chat.Messages()
}
