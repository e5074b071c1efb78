package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dkeye/Plaza/internal/adapters/ws"
	"github.com/dkeye/Plaza/internal/app"
	"github.com/dkeye/Plaza/internal/config"
)

func SetupRouter(ctx context.Context, cfg *config.Config, rooms *app.Registry, ctl *ws.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	api.GET("/ws", func(c *gin.Context) {
		ctl.HandleConnect(ctx, c)
	})

	api.GET("/stats", func(c *gin.Context) {
		spaces, occupants := rooms.Stats()
		c.JSON(http.StatusOK, gin.H{"spaces": spaces, "occupants": occupants})
	})

	return r
}
