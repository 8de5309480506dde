package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MinOptions       = 2
	MaxOptions       = 20
	MaxQuestionLen   = 500
	MaxOptionTextLen = 200
)

type PollID string

func NewPollID() PollID {
	return PollID(uuid.NewString())
}

// Option is one answer of a poll. Votes always equals len(Voters).
type Option struct {
	Text   string   `json:"text"`
	Votes  int      `json:"votes"`
	Voters []UserID `json:"voters"`
}

func (o *Option) HasVoter(id UserID) bool {
	return slices.Contains(o.Voters, id)
}

func (o *Option) addVoter(id UserID) {
	o.Voters = append(o.Voters, id)
	o.Votes++
}

func (o *Option) removeVoter(id UserID) bool {
	i := slices.Index(o.Voters, id)
	if i < 0 {
		return false
	}
	o.Voters = slices.Delete(o.Voters, i, i+1)
	o.Votes--
	return true
}

// Poll is the definition of a poll: question and options are fixed after
// creation, only the option tallies move.
type Poll struct {
	ID              PollID    `json:"id"`
	Question        string    `json:"question"`
	Options         []Option  `json:"options"`
	DurationSeconds int       `json:"duration"`
	CreatedBy       UserID    `json:"createdBy"`
	CreatedAt       time.Time `json:"createdAt"`
}

func (p *Poll) Duration() time.Duration {
	return time.Duration(p.DurationSeconds) * time.Second
}

// NewPoll validates the question and options and builds a poll with empty
// tallies. duration must already be resolved against configured bounds.
func NewPoll(question string, options []string, duration time.Duration, createdBy UserID, now time.Time) (*Poll, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrQuestionEmpty
	}
	if len(question) > MaxQuestionLen {
		return nil, ErrQuestionTooLong
	}
	if len(options) < MinOptions {
		return nil, ErrTooFewOptions
	}
	if len(options) > MaxOptions {
		return nil, ErrTooManyOptions
	}
	if duration < time.Second {
		return nil, ErrInvalidDuration
	}
	opts := make([]Option, 0, len(options))
	for _, text := range options {
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, ErrOptionEmpty
		}
		if len(text) > MaxOptionTextLen {
			return nil, ErrOptionTooLong
		}
		opts = append(opts, Option{Text: text, Voters: []UserID{}})
	}
	return &Poll{
		ID:              NewPollID(),
		Question:        question,
		Options:         opts,
		DurationSeconds: int(duration / time.Second),
		CreatedBy:       createdBy,
		CreatedAt:       now,
	}, nil
}

func (p Poll) Clone() Poll {
	out := p
	out.Options = make([]Option, len(p.Options))
	for i, o := range p.Options {
		out.Options[i] = Option{Text: o.Text, Votes: o.Votes, Voters: slices.Clone(o.Voters)}
	}
	return out
}

// PollState is the runtime wrapper around a poll definition.
// While IsActive, every key of Responses appears in exactly one option's
// Voters and nowhere else.
type PollState struct {
	Poll
	IsActive  bool           `json:"isActive"`
	StartedAt *time.Time     `json:"startedAt,omitempty"`
	EndedAt   *time.Time     `json:"endedAt,omitempty"`
	Responses map[UserID]int `json:"responses"`
}

func NewPollState(p *Poll) *PollState {
	return &PollState{Poll: *p, Responses: make(map[UserID]int)}
}

func (s *PollState) Clone() *PollState {
	out := &PollState{
		Poll:      s.Poll.Clone(),
		IsActive:  s.IsActive,
		Responses: make(map[UserID]int, len(s.Responses)),
	}
	if s.StartedAt != nil {
		t := *s.StartedAt
		out.StartedAt = &t
	}
	if s.EndedAt != nil {
		t := *s.EndedAt
		out.EndedAt = &t
	}
	for k, v := range s.Responses {
		out.Responses[k] = v
	}
	return out
}

// Activate marks the state as the current poll.
func (s *PollState) Activate(now time.Time) {
	s.IsActive = true
	s.StartedAt = &now
	s.EndedAt = nil
}

// Deactivate marks the state as no longer current.
func (s *PollState) Deactivate(now time.Time) {
	s.IsActive = false
	s.EndedAt = &now
}

// Revoke removes any vote held by voter. It reports whether one existed.
func (s *PollState) Revoke(voter UserID) bool {
	removed := false
	for i := range s.Options {
		if s.Options[i].removeVoter(voter) {
			removed = true
		}
	}
	delete(s.Responses, voter)
	return removed
}

// Apply records voter's choice. Callers revoke first.
func (s *PollState) Apply(voter UserID, option int) {
	s.Options[option].addVoter(voter)
	s.Responses[voter] = option
}

func (s *PollState) ValidOption(option int) bool {
	return option >= 0 && option < len(s.Options)
}

type EndReason string

const (
	EndExpired    EndReason = "expired"
	EndSuperseded EndReason = "superseded"
	EndManual     EndReason = "ended"
)

// HistoryEntry is a frozen copy of a poll at the moment it stopped being
// current. It is never mutated after insertion.
type HistoryEntry struct {
	PollState
	Reason EndReason `json:"endReason"`
}

func NewHistoryEntry(s *PollState, reason EndReason) HistoryEntry {
	return HistoryEntry{PollState: *s.Clone(), Reason: reason}
}

func (h HistoryEntry) Clone() HistoryEntry {
	return HistoryEntry{PollState: *h.PollState.Clone(), Reason: h.Reason}
}
