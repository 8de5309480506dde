package signal

import (
	"encoding/json"

	"github.com/dkeye/LivePoll/internal/domain"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleJoin(
	c *WsSignalConn,
	data []byte,
) {
	type joinPayload struct {
		Type   string `json:"type"`
		UserID string `json:"userId"`
		Name   string `json:"name"`
		Role   string `json:"role"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	id := domain.UserID(p.UserID)
	if id == "" {
		id = c.fallback
	}

	if _, err := ctl.Orch.OnUserJoined(c.id, id, p.Name, p.Role); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("join rejected")
		ctl.sendError(c, domain.Code(err))
	}
}

func (ctl *SignalWSController) handleKick(
	c *WsSignalConn,
	data []byte,
) {
	type kickPayload struct {
		Type         string `json:"type"`
		TargetUserID string `json:"targetUserId"`
	}
	var p kickPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad kick payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	requester, ok := ctl.Orch.UserOf(c.id)
	if !ok {
		ctl.sendError(c, "not_joined")
		return
	}
	if err := ctl.Orch.OnKickRequest(requester.ID, domain.UserID(p.TargetUserID)); err != nil {
		ctl.sendError(c, domain.Code(err))
	}
}
