package http

import (
	"errors"
	"net/http"

	"github.com/dkeye/LivePoll/internal/adapters/signal"
	"github.com/dkeye/LivePoll/internal/app/orch"
	"github.com/dkeye/LivePoll/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type handlers struct {
	orch *orch.Orchestrator
}

// envelope is the response shape every REST endpoint returns.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data"`
}

func ok(c *gin.Context, msg string, data any) {
	c.JSON(http.StatusOK, envelope{Success: true, Message: msg, Data: data})
}

func fail(c *gin.Context, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrRateLimited):
		status = http.StatusTooManyRequests
	}
	log.Warn().Err(err).Str("module", "adapters.http").Str("path", c.FullPath()).Int("status", status).Msg("request failed")
	c.JSON(status, envelope{Success: false, Message: err.Error(), Error: domain.Code(err)})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, envelope{Success: false, Message: err.Error(), Error: "bad_payload"})
}

func (h *handlers) listPolls(c *gin.Context) {
	ok(c, "", h.orch.ListPolls())
}

func (h *handlers) currentPoll(c *gin.Context) {
	ok(c, "", h.orch.CurrentPoll())
}

func (h *handlers) history(c *gin.Context) {
	ok(c, "", h.orch.History())
}

func (h *handlers) createPoll(c *gin.Context) {
	var req struct {
		Question  string   `json:"question" binding:"required"`
		Options   []string `json:"options" binding:"required"`
		Duration  int      `json:"duration"`
		CreatedBy string   `json:"createdBy"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.orch.CreatePoll(req.Question, req.Options, req.Duration, domain.UserID(req.CreatedBy))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Poll created successfully", p)
}

func (h *handlers) startPoll(c *gin.Context) {
	st, err := h.orch.StartPoll(domain.PollID(c.Param("pollId")))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Poll started successfully", st)
}

func (h *handlers) endPoll(c *gin.Context) {
	e, err := h.orch.EndPoll(domain.PollID(c.Param("pollId")))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Poll ended successfully", e)
}

func (h *handlers) vote(c *gin.Context) {
	var req struct {
		OptionIndex *int   `json:"optionIndex" binding:"required"`
		UserID      string `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	st, err := h.orch.Vote(domain.PollID(c.Param("pollId")), domain.UserID(req.UserID), *req.OptionIndex)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Vote recorded successfully", st)
}

func (h *handlers) listUsers(c *gin.Context) {
	ok(c, "", h.orch.ListUsers())
}

func (h *handlers) registerUser(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
		Role string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.orch.RegisterUser(req.Name, req.Role)
	if err != nil {
		fail(c, err)
		return
	}
	session := sessions.Default(c)
	session.Set(signal.SessionUserKey, string(u.ID))
	if err := session.Save(); err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Msg("save session")
	}
	ok(c, "User registered successfully", u)
}

func (h *handlers) messages(c *gin.Context) {
	ok(c, "", h.orch.RecentMessages())
}
