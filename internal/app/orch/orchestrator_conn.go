package orch

import (
	"fmt"

	"github.com/dkeye/LivePoll/internal/core"
	"github.com/dkeye/LivePoll/internal/domain"
	"github.com/rs/zerolog/log"
)

// KickNotice is the payload of a kicked event.
type KickNotice struct {
	KickedBy domain.UserID `json:"kickedBy"`
	Name     string        `json:"kickedByName"`
}

// OnConnect adds a fresh connection to the broadcast set. It is not bound
// to any user until OnUserJoined.
func (o *Orchestrator) OnConnect(conn core.ConnID, c core.Connection) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Hub.Subscribe(conn, c)
	log.Info().Str("module", "orch").Str("conn", string(conn)).Msg("connection opened")
}

// OnUserJoined binds conn to userID, creating the user when unknown. An
// empty userID allocates a new one. The joining connection gets its own
// record and, when a poll is running, that poll.
func (o *Orchestrator) OnUserJoined(conn core.ConnID, userID domain.UserID, name, role string) (domain.User, error) {
	r, err := domain.ParseRole(role)
	if err != nil {
		return domain.User{}, err
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	u, err := o.Registry.Connect(userID, name, r, conn)
	if err != nil {
		return domain.User{}, err
	}
	o.Hub.SendTo(conn, core.NewEvent(core.EventJoined, u))
	if cur := o.Machine.Current(); cur != nil && cur.IsActive {
		o.Hub.SendTo(conn, core.NewEvent(core.EventPollStarted, cur.Clone()))
	}
	o.publishPresence()
	log.Info().Str("module", "orch").Str("user", string(u.ID)).Str("name", u.Username).Str("role", string(u.Role)).Msg("user joined")
	return u, nil
}

// UserOf resolves the user bound to conn.
func (o *Orchestrator) UserOf(conn core.ConnID) (domain.User, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Registry.UserOf(conn)
}

// OnMessage appends a chat message from userID and broadcasts it.
func (o *Orchestrator) OnMessage(userID domain.UserID, text string) (*domain.ChatMessage, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	author, ok := o.Registry.Get(userID)
	if !ok {
		return nil, fmt.Errorf("author %s: %w", userID, domain.ErrNotFound)
	}
	msg, err := domain.NewChatMessage(&author, text, o.opts.MaxMessageLen, o.opts.Now())
	if err != nil {
		return nil, err
	}
	if !o.Limiter.Allow(userID) {
		return nil, domain.ErrRateLimited
	}
	o.Chat.Append(*msg)
	o.Metrics.ChatMessages.Inc()
	o.Hub.BroadcastAll(core.NewEvent(core.EventNewMessage, *msg))
	return msg, nil
}

// OnKickRequest lets a moderator disconnect another user. The target gets
// a kicked event, loses its connection and drops from presence.
func (o *Orchestrator) OnKickRequest(requester, target domain.UserID) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	req, ok := o.Registry.Get(requester)
	if !ok || !req.IsModerator() {
		log.Warn().Str("module", "orch").Str("requester", string(requester)).Msg("kick forbidden")
		return fmt.Errorf("kick by %s: %w", requester, domain.ErrForbidden)
	}
	if requester == target {
		return fmt.Errorf("self kick: %w", domain.ErrForbidden)
	}
	if _, ok := o.Registry.Get(target); !ok {
		return fmt.Errorf("kick target %s: %w", target, domain.ErrNotFound)
	}
	if conn, ok := o.Registry.ConnOf(target); ok {
		o.Hub.Kick(conn, core.NewEvent(core.EventKicked, KickNotice{KickedBy: req.ID, Name: req.Username}))
	}
	o.Registry.SetOffline(target)
	o.Limiter.Forget(target)
	o.publishPresence()
	log.Info().Str("module", "orch").Str("requester", string(requester)).Str("target", string(target)).Msg("user kicked")
	return nil
}

// OnHistoryRequest sends the poll history to conn only.
func (o *Orchestrator) OnHistoryRequest(conn core.ConnID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Hub.SendTo(conn, core.NewEvent(core.EventPollHistoryData, o.Polls.History()))
}

// SendTo delivers ev to userID's connection; offline users are skipped.
func (o *Orchestrator) SendTo(userID domain.UserID, ev core.Event) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	conn, ok := o.Registry.ConnOf(userID)
	if !ok {
		return false
	}
	o.Hub.SendTo(conn, ev)
	return true
}

// OnDisconnect drops conn from the broadcast set and, when it was bound,
// takes its user offline.
func (o *Orchestrator) OnDisconnect(conn core.ConnID) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.Hub.Unsubscribe(conn)
	u, ok := o.Registry.Disconnect(conn)
	if !ok {
		log.Info().Str("module", "orch").Str("conn", string(conn)).Msg("connection closed")
		return
	}
	o.publishPresence()
	log.Info().Str("module", "orch").Str("user", string(u.ID)).Str("conn", string(conn)).Msg("user disconnected")
}
