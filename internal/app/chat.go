package app

import "github.com/dkeye/LivePoll/internal/domain"

const DefaultChatCapacity = 100

// ChatLog keeps the most recent messages in a fixed ring. When full, the
// oldest message is evicted first.
type ChatLog struct {
	buf   []domain.ChatMessage
	start int
	size  int
}

func NewChatLog(capacity int) *ChatLog {
	if capacity <= 0 {
		capacity = DefaultChatCapacity
	}
	return &ChatLog{buf: make([]domain.ChatMessage, capacity)}
}

func (c *ChatLog) Append(m domain.ChatMessage) {
	if c.size < len(c.buf) {
		c.buf[(c.start+c.size)%len(c.buf)] = m
		c.size++
		return
	}
	c.buf[c.start] = m
	c.start = (c.start + 1) % len(c.buf)
}

// Messages returns the buffered messages oldest first.
func (c *ChatLog) Messages() []domain.ChatMessage {
	out := make([]domain.ChatMessage, c.size)
	for i := range c.size {
		out[i] = c.buf[(c.start+i)%len(c.buf)]
	}
	return out
}

func (c *ChatLog) Len() int { return c.size }
