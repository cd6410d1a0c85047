package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/mentorhub/signaling/internal/adapters/signal"
	"github.com/mentorhub/signaling/internal/app/orch"
	"github.com/mentorhub/signaling/internal/auth"
	"github.com/mentorhub/signaling/internal/config"
	"github.com/mentorhub/signaling/internal/core"
	"github.com/mentorhub/signaling/internal/domain"
)

// requireBearer rejects requests without a valid Authorization bearer token.
func requireBearer(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if _, err := verifier.Verify(token); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator, verifier *auth.Verifier) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	ctrl := signal.NewSignalWSController(o, verifier, cfg)

	api := r.Group("/api")

	// GET /api/sessions — active sessions snapshot
	api.GET("/sessions", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"sessions": o.ActiveSessions()})
	})

	// GET /api/sessions/:id — session detail, ended included
	api.GET("/sessions/:id", func(c *gin.Context) {
		sess, ok := o.Sessions.Get(domain.SessionID(c.Param("id")))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusOK, sess.View())
	})

	// Mutating admin endpoints take the same bearer credential as the WS
	// surface.
	admin := api.Group("", requireBearer(verifier))

	// DELETE /api/sessions/:id — administrative end, idempotent
	admin.DELETE("/sessions/:id", func(c *gin.Context) {
		o.EndShare(domain.SessionID(c.Param("id")))
		c.Status(http.StatusNoContent)
	})

	// DELETE /api/sessions/:id/viewers/:uid — kick a viewer
	admin.DELETE("/sessions/:id/viewers/:uid", func(c *gin.Context) {
		sid := domain.SessionID(c.Param("id"))
		uid := domain.UserID(c.Param("uid"))
		if !o.KickViewer(sid, uid) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.Status(http.StatusNoContent)
	})

	// GET /api/rooms — multicast group overview
	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": o.Rooms.List()})
	})

	// GET /api/rooms/:id/members
	api.GET("/rooms/:id/members", func(c *gin.Context) {
		room, ok := o.Rooms.Get(core.RoomID(c.Param("id")))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusOK, room.MembersSnapshot())
	})

	api.GET("/ws/signal", func(c *gin.Context) {
		ctrl.HandleSignal(ctx, c)
	})

	return r
}
