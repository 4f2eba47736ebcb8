package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/QChat/internal/adapters/signal"
	"github.com/dkeye/QChat/internal/app/chat"
	"github.com/dkeye/QChat/internal/config"
	"github.com/dkeye/QChat/internal/domain"
	"github.com/dkeye/QChat/internal/storage"
	"github.com/dkeye/QChat/internal/store"
)

// Handlers groups the REST surface's collaborators.
type Handlers struct {
	Store     *store.Store
	Chat      *chat.Chat
	Files     storage.FileStore
	MaxUpload int64
	BaseURL   string
}

func SetupRouter(ctx context.Context, cfg *config.Config, h *Handlers, ws *signal.ChatWSController) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.Static("/uploads", cfg.UploadDir)

	log.Info().Str("module", "adapters.http").Str("uploads", cfg.UploadDir).Msg("router setup")

	api := r.Group("/api")

	api.POST("/users", h.createUser)
	api.GET("/users/:id", h.getUser)
	api.GET("/tokens/:token", h.getTokenInfo)

	api.POST("/rooms", h.createRoom)
	api.POST("/pair/resolve", h.resolvePair)
	api.GET("/rooms", h.listRooms)
	api.GET("/rooms/:id", h.getRoom)
	api.GET("/rooms/:id/check-access/:userId", h.checkAccess)
	api.POST("/rooms/:id/participants", h.addParticipant)

	api.GET("/messages/room/:roomId", h.listMessages)
	api.POST("/messages", h.sendMessage)
	api.POST("/messages/upload", h.uploadMessage)

	api.GET("/ws/chat", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("user", c.Query("userId")).Msg("ws chat endpoint hit")
		ws.HandleChat(ctx, c)
	})

	return r
}

// respondError maps domain failures onto HTTP statuses; everything
// unexpected is a 500 with the detail kept server-side.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrRoomNotFound),
		errors.Is(err, domain.ErrMessageNotFound),
		errors.Is(err, domain.ErrTokenNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case errors.Is(err, domain.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	default:
		log.Error().Err(err).Str("module", "adapters.http").Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
	}
}
