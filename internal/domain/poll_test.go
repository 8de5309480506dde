package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func TestNewPollValidation(t *testing.T) {
	cases := []struct {
		name     string
		question string
		options  []string
		duration time.Duration
		want     error
	}{
		{"empty question", "  ", []string{"A", "B"}, time.Minute, ErrQuestionEmpty},
		{"long question", strings.Repeat("q", MaxQuestionLen+1), []string{"A", "B"}, time.Minute, ErrQuestionTooLong},
		{"one option", "Pick", []string{"A"}, time.Minute, ErrTooFewOptions},
		{"too many options", "Pick", make([]string, MaxOptions+1), time.Minute, ErrTooManyOptions},
		{"blank option", "Pick", []string{"A", " "}, time.Minute, ErrOptionEmpty},
		{"long option", "Pick", []string{"A", strings.Repeat("o", MaxOptionTextLen+1)}, time.Minute, ErrOptionTooLong},
		{"sub-second duration", "Pick", []string{"A", "B"}, 10 * time.Millisecond, ErrInvalidDuration},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPoll(tc.question, tc.options, tc.duration, "u1", t0)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestNewPoll(t *testing.T) {
	p, err := NewPoll(" Pick one ", []string{"A", " B "}, 90*time.Second, "creator", t0)
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Pick one", p.Question)
	assert.Equal(t, 90, p.DurationSeconds)
	assert.Equal(t, 90*time.Second, p.Duration())
	require.Len(t, p.Options, 2)
	assert.Equal(t, "B", p.Options[1].Text)
	assert.Zero(t, p.Options[0].Votes)
	assert.NotNil(t, p.Options[0].Voters)
}

func TestRevokeThenApply(t *testing.T) {
	p, err := NewPoll("Pick one", []string{"A", "B", "C"}, time.Minute, "creator", t0)
	require.NoError(t, err)
	st := NewPollState(p)
	st.Activate(t0)

	st.Revoke("v1")
	st.Apply("v1", 0)
	st.Revoke("v1")
	st.Apply("v1", 2)

	assert.Equal(t, 0, st.Options[0].Votes)
	assert.Empty(t, st.Options[0].Voters)
	assert.Equal(t, 1, st.Options[2].Votes)
	assert.True(t, st.Options[2].HasVoter("v1"))
	assert.Equal(t, 2, st.Responses["v1"])

	assert.True(t, st.Revoke("v1"))
	assert.False(t, st.Revoke("v1"))
	assert.NotContains(t, st.Responses, UserID("v1"))
}

func TestCloneIsDeep(t *testing.T) {
	p, err := NewPoll("Pick one", []string{"A", "B"}, time.Minute, "creator", t0)
	require.NoError(t, err)
	st := NewPollState(p)
	st.Activate(t0)
	st.Apply("v1", 1)

	c := st.Clone()
	st.Revoke("v1")
	st.Apply("v2", 0)
	st.Deactivate(t0.Add(time.Minute))

	assert.True(t, c.IsActive)
	assert.Nil(t, c.EndedAt)
	assert.Equal(t, 1, c.Options[1].Votes)
	assert.Equal(t, []UserID{"v1"}, c.Options[1].Voters)
	assert.Equal(t, map[UserID]int{"v1": 1}, c.Responses)
}

func TestHistoryEntryFrozen(t *testing.T) {
	p, err := NewPoll("Pick one", []string{"A", "B"}, time.Minute, "creator", t0)
	require.NoError(t, err)
	st := NewPollState(p)
	st.Activate(t0)
	st.Apply("v1", 0)
	st.Deactivate(t0.Add(time.Minute))

	e := NewHistoryEntry(st, EndExpired)
	st.Apply("v2", 1)

	assert.Equal(t, EndExpired, e.Reason)
	assert.False(t, e.IsActive)
	require.NotNil(t, e.EndedAt)
	assert.Equal(t, t0.Add(time.Minute), *e.EndedAt)
	assert.Zero(t, e.Options[1].Votes)
}
