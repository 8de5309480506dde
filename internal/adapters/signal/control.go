package signal

import "github.com/dkeye/LivePoll/internal/core"

func (ctl *SignalWSController) handlePing(
	c *WsSignalConn,
) {
	ctl.sendJSON(c, core.NewEvent(core.EventPong, nil))
}

func (ctl *SignalWSController) handleHistory(
	c *WsSignalConn,
) {
	ctl.Orch.OnHistoryRequest(c.id)
}
