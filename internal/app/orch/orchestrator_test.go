package orch_test

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/LivePoll/internal/app/apptest"
	"github.com/dkeye/LivePoll/internal/app/orch"
	"github.com/dkeye/LivePoll/internal/core"
	"github.com/dkeye/LivePoll/internal/core/mocks"
	"github.com/dkeye/LivePoll/internal/domain"
	"github.com/stretchr/testify/require"
)

type recordingArchive struct {
	mu      sync.Mutex
	entries []domain.HistoryEntry
}

func (a *recordingArchive) Archive(e domain.HistoryEntry) {
	a.mu.Lock()
	a.entries = append(a.entries, e)
	a.mu.Unlock()
}

func (a *recordingArchive) Entries() []domain.HistoryEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.HistoryEntry(nil), a.entries...)
}

type session struct {
	*orch.Orchestrator
	clock   *apptest.Clock
	sched   *apptest.Scheduler
	archive *recordingArchive
}

func newSession(t *testing.T, mutate ...func(*orch.Options)) *session {
	t.Helper()
	s := &session{
		clock:   apptest.NewClock(),
		sched:   apptest.NewScheduler(),
		archive: &recordingArchive{},
	}
	opts := orch.Options{Now: s.clock.Now, Scheduler: s.sched}
	for _, f := range mutate {
		f(&opts)
	}
	s.Orchestrator = orch.New(nil, nil, s.archive, opts)
	return s
}

// join opens a connection for a user and drains the hub.
func (s *session) join(t *testing.T, conn core.ConnID, id domain.UserID, name, role string) *mocks.RecordingConn {
	t.Helper()
	rc := mocks.NewRecordingConn()
	s.OnConnect(conn, rc)
	_, err := s.OnUserJoined(conn, id, name, role)
	require.NoError(t, err)
	s.Hub.Flush()
	return rc
}

func (s *session) createPoll(t *testing.T, question string, options ...string) domain.Poll {
	t.Helper()
	p, err := s.CreatePoll(question, options, 60, "M")
	require.NoError(t, err)
	return p
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func userIDs(users []domain.User) []domain.UserID {
	out := make([]domain.UserID, len(users))
	for i, u := range users {
		out[i] = u.ID
	}
	return out
}

func votesOf(st *domain.PollState) []int {
	out := make([]int, len(st.Options))
	for i, o := range st.Options {
		out[i] = o.Votes
	}
	return out
}

var minute = time.Minute
