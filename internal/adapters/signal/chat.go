package signal

import (
	"encoding/json"

	"github.com/dkeye/LivePoll/internal/domain"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleMessage(
	c *WsSignalConn,
	data []byte,
) {
	type messagePayload struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	var p messagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad message payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	author, ok := ctl.Orch.UserOf(c.id)
	if !ok {
		ctl.sendError(c, "not_joined")
		return
	}
	if _, err := ctl.Orch.OnMessage(author.ID, p.Message); err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("user", string(author.ID)).Msg("message rejected")
		ctl.sendError(c, domain.Code(err))
	}
}
