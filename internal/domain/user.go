// Package domain contains entities without transport, just state and validation.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MaxUserIDLen   = 36
	MaxUsernameLen = 36
)

type UserID string

type Role string

const (
	RoleModerator Role = "moderator"
	RoleVoter     Role = "voter"
)

// ParseRole accepts the canonical role names and the classroom aliases
// older clients still send.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "moderator", "teacher":
		return RoleModerator, nil
	case "voter", "student", "":
		return RoleVoter, nil
	}
	return "", ErrInvalidRole
}

// User is a participant of the session. Connection state lives in the
// registry, not here.
type User struct {
	ID       UserID    `json:"id"`
	Username string    `json:"name"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
	Online   bool      `json:"isOnline"`
}

func NewUserID() UserID {
	return UserID(uuid.NewString())
}

// NewUser is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewUser(id UserID, username string, role Role, now time.Time) (*User, error) {
	if len(id) == 0 {
		id = NewUserID()
	}
	if len(id) > MaxUserIDLen {
		return nil, ErrUserIDTooLong
	}
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	return &User{ID: id, Username: strings.TrimSpace(username), Role: role, JoinedAt: now}, nil
}

func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if len(username) == 0 {
		return ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	return nil
}

func (u *User) SetUsername(username string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	u.Username = strings.TrimSpace(username)
	return nil
}

func (u *User) IsModerator() bool { return u.Role == RoleModerator }
