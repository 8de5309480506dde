package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const MaxMessageLen = 1000

type MessageID string

type ChatMessage struct {
	ID        MessageID `json:"id"`
	UserID    UserID    `json:"userId"`
	UserName  string    `json:"userName"`
	UserRole  Role      `json:"userRole"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChatMessage stamps author details at send time so later renames do not
// rewrite history.
func NewChatMessage(author *User, text string, maxLen int, now time.Time) (*ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrMessageEmpty
	}
	if maxLen <= 0 {
		maxLen = MaxMessageLen
	}
	if len(text) > maxLen {
		return nil, ErrMessageTooLong
	}
	return &ChatMessage{
		ID:        MessageID(uuid.NewString()),
		UserID:    author.ID,
		UserName:  author.Username,
		UserRole:  author.Role,
		Message:   text,
		Timestamp: now,
	}, nil
}
