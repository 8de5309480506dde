package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for in, want := range map[string]Role{
		"moderator": RoleModerator,
		"Teacher":   RoleModerator,
		"voter":     RoleVoter,
		"student":   RoleVoter,
		"":          RoleVoter,
	} {
		got, err := ParseRole(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseRole("admin")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestNewUser(t *testing.T) {
	u, err := NewUser("", " Alice ", RoleModerator, t0)
	require.NoError(t, err)
	assert.Len(t, string(u.ID), 36)
	assert.Equal(t, "Alice", u.Username)
	assert.True(t, u.IsModerator())
	assert.False(t, u.Online)

	kept, err := NewUser("fixed-id", "Bob", RoleVoter, t0)
	require.NoError(t, err)
	assert.Equal(t, UserID("fixed-id"), kept.ID)

	_, err = NewUser("", "", RoleVoter, t0)
	assert.ErrorIs(t, err, ErrUsernameEmpty)
	_, err = NewUser("", strings.Repeat("x", MaxUsernameLen+1), RoleVoter, t0)
	assert.ErrorIs(t, err, ErrUsernameTooLong)
	_, err = NewUser(UserID(strings.Repeat("x", MaxUserIDLen+1)), "Bob", RoleVoter, t0)
	assert.ErrorIs(t, err, ErrUserIDTooLong)
}

func TestSetUsername(t *testing.T) {
	u := &User{ID: "u1", Username: "old"}
	require.NoError(t, u.SetUsername("new"))
	assert.Equal(t, "new", u.Username)
	assert.ErrorIs(t, u.SetUsername(" "), ErrUsernameEmpty)
	assert.Equal(t, "new", u.Username)
}
