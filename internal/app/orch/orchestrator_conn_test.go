package orch_test

import (
	"testing"
	"time"

	"github.com/dkeye/LivePoll/internal/app/orch"
	"github.com/dkeye/LivePoll/internal/core"
	"github.com/dkeye/LivePoll/internal/core/mocks"
	"github.com/dkeye/LivePoll/internal/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterUsersScenario(t *testing.T) {
	s := newSession(t)

	alice, err := s.RegisterUser("Alice", "moderator")
	require.NoError(t, err)
	bob, err := s.RegisterUser("Bob", "")
	require.NoError(t, err)

	users := s.ListUsers()
	require.Len(t, users, 2)
	assert.NotEqual(t, alice.ID, bob.ID)
	assert.Equal(t, domain.RoleVoter, bob.Role)
	for _, u := range users {
		assert.True(t, u.Online)
	}

	_, err = s.RegisterUser("Eve", "admin")
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
	_, err = s.RegisterUser("", "voter")
	assert.ErrorIs(t, err, domain.ErrUsernameEmpty)
}

func TestJoinSendsRecordAndActivePoll(t *testing.T) {
	s := newSession(t)
	p := s.createPoll(t, "Q?", "A", "B")
	_, err := s.StartPoll(p.ID)
	require.NoError(t, err)
	s.Hub.Flush()

	v := s.join(t, "c1", "", "Vic", "student")
	types := v.Types()
	require.Len(t, types, 3)
	assert.Equal(t, []core.EventType{core.EventJoined, core.EventPollStarted, core.EventUsersUpdated}, types)

	joined := decode[domain.User](t, v.Of(core.EventJoined)[0].Data)
	assert.NotEmpty(t, joined.ID)
	assert.Equal(t, domain.RoleVoter, joined.Role)
	assert.True(t, joined.Online)

	u, ok := s.UserOf("c1")
	require.True(t, ok)
	assert.Equal(t, joined.ID, u.ID)
}

func TestJoinWithoutActivePoll(t *testing.T) {
	s := newSession(t)
	v := s.join(t, "c1", "V", "Vic", "voter")
	assert.Equal(t, []core.EventType{core.EventJoined, core.EventUsersUpdated}, v.Types())
	assert.InDelta(t, 1, testutil.ToFloat64(s.Metrics.OnlineUsers), 0)
}

func TestJoinInvalid(t *testing.T) {
	s := newSession(t)
	_, err := s.OnUserJoined("c1", "V", "Vic", "owner")
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
	_, err = s.OnUserJoined("c1", "V", "", "voter")
	assert.ErrorIs(t, err, domain.ErrUsernameEmpty)
	assert.Empty(t, s.ListUsers())
}

func TestKickScenario(t *testing.T) {
	s := newSession(t)
	m := s.join(t, "cm", "M", "Mia", "moderator")
	v := s.join(t, "cv", "V", "Vic", "voter")

	require.NoError(t, s.OnKickRequest("M", "V"))
	s.Hub.Flush()

	kicked := v.Of(core.EventKicked)
	require.Len(t, kicked, 1)
	notice := decode[orch.KickNotice](t, kicked[0].Data)
	assert.Equal(t, domain.UserID("M"), notice.KickedBy)
	assert.Equal(t, "Mia", notice.Name)
	assert.Equal(t, 1, v.CloseCount())
	assert.Equal(t, core.EventKicked, v.Types()[len(v.Types())-1])

	updates := m.Of(core.EventUsersUpdated)
	online := decode[[]domain.User](t, updates[len(updates)-1].Data)
	assert.Equal(t, []domain.UserID{"M"}, userIDs(online))

	// The kicked user stays known but offline, and gets nothing further.
	p := s.createPoll(t, "Q?", "A", "B")
	_, err := s.StartPoll(p.ID)
	require.NoError(t, err)
	s.Hub.Flush()
	assert.Len(t, v.Of(core.EventKicked), 1)
	assert.Empty(t, v.Of(core.EventPollStarted))
	assert.Len(t, s.ListUsers(), 2)
	assert.Equal(t, 1, s.Hub.Len())
}

func TestKickRejections(t *testing.T) {
	s := newSession(t)
	s.join(t, "cm", "M", "Mia", "teacher")
	v := s.join(t, "cv", "V", "Vic", "voter")
	s.join(t, "cw", "W", "Wes", "voter")

	tests := []struct {
		name      string
		requester domain.UserID
		target    domain.UserID
		want      error
	}{
		{"voter requester", "W", "V", domain.ErrForbidden},
		{"unknown requester", "ghost", "V", domain.ErrForbidden},
		{"self kick", "M", "M", domain.ErrForbidden},
		{"unknown target", "M", "ghost", domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, s.OnKickRequest(tt.requester, tt.target), tt.want)
		})
	}

	s.Hub.Flush()
	assert.Empty(t, v.Of(core.EventKicked))
	assert.Zero(t, v.CloseCount())
	assert.Equal(t, 3, s.Hub.Len())
}

func TestKickOfflineUser(t *testing.T) {
	s := newSession(t)
	s.join(t, "cm", "M", "Mia", "moderator")
	s.join(t, "cv", "V", "Vic", "voter")
	s.OnDisconnect("cv")

	require.NoError(t, s.OnKickRequest("M", "V"))
	u, ok := s.Registry.Get("V")
	require.True(t, ok)
	assert.False(t, u.Online)
}

func TestChatScenario(t *testing.T) {
	s := newSession(t, func(o *orch.Options) {
		o.ChatRateLimit = 2
		o.ChatRateWindow = time.Second
	})
	m := s.join(t, "cm", "M", "Mia", "moderator")
	s.join(t, "cv", "V", "Vic", "voter")

	msg, err := s.OnMessage("V", "  hi all  ")
	require.NoError(t, err)
	assert.Equal(t, "hi all", msg.Message)
	assert.Equal(t, "Vic", msg.UserName)
	assert.Equal(t, domain.RoleVoter, msg.UserRole)
	s.Hub.Flush()

	got := m.Of(core.EventNewMessage)
	require.Len(t, got, 1)
	assert.Equal(t, msg.ID, decode[domain.ChatMessage](t, got[0].Data).ID)

	_, err = s.OnMessage("V", "two")
	require.NoError(t, err)
	_, err = s.OnMessage("V", "three")
	assert.ErrorIs(t, err, domain.ErrRateLimited)

	_, err = s.OnMessage("V", "   ")
	assert.ErrorIs(t, err, domain.ErrMessageEmpty)
	_, err = s.OnMessage("ghost", "hello")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	s.clock.Advance(time.Second)
	_, err = s.OnMessage("V", "three")
	require.NoError(t, err)

	assert.Len(t, s.RecentMessages(), 3)
	assert.InDelta(t, 3, testutil.ToFloat64(s.Metrics.ChatMessages), 0)
}

func TestChatBufferBounded(t *testing.T) {
	s := newSession(t)
	s.join(t, "cv", "V", "Vic", "voter")
	for range 105 {
		_, err := s.OnMessage("V", "spam")
		require.NoError(t, err)
	}
	assert.Len(t, s.RecentMessages(), 100)
}

func TestHistoryRequestGoesToRequesterOnly(t *testing.T) {
	s := newSession(t)
	a := s.join(t, "ca", "A", "Ann", "voter")
	b := s.join(t, "cb", "B", "Ben", "voter")
	p := s.createPoll(t, "Q?", "A", "B")
	_, err := s.StartPoll(p.ID)
	require.NoError(t, err)
	_, err = s.EndPoll(p.ID)
	require.NoError(t, err)

	s.OnHistoryRequest("ca")
	s.Hub.Flush()

	hist := a.Of(core.EventPollHistoryData)
	require.Len(t, hist, 1)
	entries := decode[[]domain.HistoryEntry](t, hist[0].Data)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.EndManual, entries[0].Reason)
	assert.Empty(t, b.Of(core.EventPollHistoryData))
}

func TestSendToUser(t *testing.T) {
	s := newSession(t)
	a := s.join(t, "ca", "A", "Ann", "voter")

	assert.True(t, s.SendTo("A", core.NewEvent(core.EventPong, nil)))
	assert.False(t, s.SendTo("ghost", core.NewEvent(core.EventPong, nil)))
	s.Hub.Flush()
	assert.Len(t, a.Of(core.EventPong), 1)
}

func TestDisconnectScenario(t *testing.T) {
	s := newSession(t)
	a := s.join(t, "ca", "A", "Ann", "voter")
	s.join(t, "cb", "B", "Ben", "voter")

	s.OnDisconnect("cb")
	s.Hub.Flush()

	updates := a.Of(core.EventUsersUpdated)
	online := decode[[]domain.User](t, updates[len(updates)-1].Data)
	assert.Equal(t, []domain.UserID{"A"}, userIDs(online))
	assert.Len(t, s.ListUsers(), 2)
	assert.Equal(t, 1, s.Hub.Len())

	// Reconnecting restores the same record.
	b := s.join(t, "cb2", "B", "Other", "moderator")
	joined := decode[domain.User](t, b.Of(core.EventJoined)[0].Data)
	assert.Equal(t, "Ben", joined.Username)
	assert.Equal(t, domain.RoleVoter, joined.Role)

	// Closing a connection that never joined changes nothing.
	before := len(a.Of(core.EventUsersUpdated))
	s.OnConnect("anon", mocks.NewRecordingConn())
	s.OnDisconnect("anon")
	s.Hub.Flush()
	assert.Len(t, a.Of(core.EventUsersUpdated), before)
}
