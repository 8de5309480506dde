package app

import (
	"errors"
	"strings"

	"github.com/dkeye/LivePoll/internal/core"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	Disconnect
)

// Policy decides what happens to a connection that could not take a frame.
type Policy interface {
	OnBackPressure(conn core.ConnID, err error) BackpressureAction
}

// SimplePolicy applies one action to slow consumers. Closed connections
// are always disconnected.
type SimplePolicy struct {
	Action BackpressureAction
}

func (p SimplePolicy) OnBackPressure(_ core.ConnID, err error) BackpressureAction {
	if errors.Is(err, core.ErrConnClosed) {
		return Disconnect
	}
	return p.Action
}

// ParsePolicy maps the config value to a policy; unknown values disconnect.
func ParsePolicy(name string) Policy {
	switch strings.ToLower(name) {
	case "drop":
		return SimplePolicy{Action: DropFrame}
	default:
		return SimplePolicy{Action: Disconnect}
	}
}
