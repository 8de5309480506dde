package app

import (
	"fmt"

	"github.com/dkeye/LivePoll/internal/domain"
)

// Tally applies votes against the machine's current poll.
type Tally struct {
	machine *Machine
}

func NewTally(m *Machine) *Tally {
	return &Tally{machine: m}
}

// Cast records voter's choice with revoke-then-apply semantics: any prior
// vote is removed before the new one lands, so each option's Votes stays
// equal to len(Voters) and a voter sits in at most one option.
func (t *Tally) Cast(pollID domain.PollID, voter domain.UserID, option int) (*domain.PollState, error) {
	cur := t.machine.Current()
	if cur == nil || cur.ID != pollID || !cur.IsActive {
		return nil, fmt.Errorf("poll %s: %w", pollID, domain.ErrPollNotActive)
	}
	if voter == "" {
		return nil, fmt.Errorf("voter: %w", domain.ErrNotFound)
	}
	if !cur.ValidOption(option) {
		return nil, fmt.Errorf("option %d of %d: %w", option, len(cur.Options), domain.ErrInvalidOption)
	}
	cur.Revoke(voter)
	cur.Apply(voter, option)
	return cur, nil
}
