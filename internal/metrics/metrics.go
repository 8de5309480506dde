package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

/*
Collectors live on a private registry instead of the global default one,
so every session (and every test) can build its own set without tripping
duplicate registration panics. The HTTP adapter serves Registry at /metrics.

- PollsStarted / PollsEnded: lifecycle transitions, ended split by reason
  (expired, superseded, ended).
- Votes: vote attempts split by outcome (accepted, not_active,
  invalid_option, not_found).
- OnlineUsers: size of the latest presence broadcast.
- ChatMessages: accepted chat messages.
- Frames: per-connection deliveries split by outcome (sent, dropped).
*/

const namespace = "livepoll"

type Metrics struct {
	Registry *prometheus.Registry

	PollsStarted prometheus.Counter
	PollsEnded   *prometheus.CounterVec
	Votes        *prometheus.CounterVec
	OnlineUsers  prometheus.Gauge
	ChatMessages prometheus.Counter
	Frames       *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		PollsStarted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "polls_started_total",
			Help:      "Total number of polls started",
		}),
		PollsEnded: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "session",
				Name:      "polls_ended_total",
				Help:      "Total number of polls that stopped being current, by reason",
			},
			[]string{"reason"},
		),
		Votes: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "session",
				Name:      "votes_total",
				Help:      "Total number of vote attempts, by outcome",
			},
			[]string{"outcome"},
		),
		OnlineUsers: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "online_users",
			Help:      "Number of participants currently online",
		}),
		ChatMessages: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "messages_total",
			Help:      "Total number of chat messages accepted",
		}),
		Frames: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "hub",
				Name:      "frames_total",
				Help:      "Per-connection frame deliveries, by outcome",
			},
			[]string{"outcome"},
		),
	}
}
