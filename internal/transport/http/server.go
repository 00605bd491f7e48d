package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/amananurag20/Virtual-focus-room-sub000/internal/auth"
	"github.com/amananurag20/Virtual-focus-room-sub000/internal/config"
	"github.com/amananurag20/Virtual-focus-room-sub000/internal/core"
	"github.com/amananurag20/Virtual-focus-room-sub000/internal/store"
)

// NewServer builds the HTTP server with REST and WebSocket routes.
func NewServer(hub *core.Hub, authService *auth.Service, records store.RecordStore, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	api := NewAPIHandlers(authService, hub, records, logger)

	router.GET("/health", healthHandler)
	router.POST("/api/register", api.Register)
	router.POST("/api/login", api.Login)
	router.POST("/api/guest", api.GuestLogin)

	authorized := router.Group("/api")
	authorized.Use(AuthMiddleware(authService, logger))
	authorized.GET("/rooms", api.ListRooms)
	authorized.GET("/rooms/:id/chat", api.RoomChatHistory)

	wsHandler := NewWSHandler(hub, authService, cfg.WSMessageLimit, logger)
	router.GET("/ws", gin.WrapH(wsHandler))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
