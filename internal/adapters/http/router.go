package http

import (
	"context"
	"net/http"
	"slices"

	"github.com/dkeye/LivePoll/internal/adapters/signal"
	"github.com/dkeye/LivePoll/internal/app/orch"
	"github.com/dkeye/LivePoll/internal/config"
	"github.com/dkeye/LivePoll/internal/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func corsMiddleware(origins []string) gin.HandlerFunc {
	cc := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
	}
	if slices.Contains(origins, "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = origins
	}
	return cors.New(cc)
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator, m *metrics.Metrics) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(corsMiddleware(cfg.AllowedOrigins))
	}

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true})
	r.Use(sessions.Sessions("LivePollSessions", store))

	log.Info().Str("module", "adapters.http").Strs("origins", cfg.AllowedOrigins).Msg("router setup")

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))

	h := &handlers{orch: o}
	api := r.Group("/api")

	api.GET("/polls", h.listPolls)
	api.GET("/polls/current", h.currentPoll)
	api.GET("/polls/history", h.history)
	api.POST("/polls", h.createPoll)
	api.POST("/polls/:pollId/start", h.startPoll)
	api.POST("/polls/:pollId/end", h.endPoll)
	api.POST("/polls/:pollId/vote", h.vote)

	api.GET("/users", h.listUsers)
	api.POST("/users/register", h.registerUser)

	api.GET("/messages", h.messages)

	ctrl := signal.NewSignalWSController(o, cfg)
	api.GET("/ws", func(c *gin.Context) {
		log.Debug().Str("module", "adapters.http").Msg("ws endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	return r
}
