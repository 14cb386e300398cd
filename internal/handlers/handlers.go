// Package handlers implements the gateway's HTTP surface on gin.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/TanyuSylvain/unify-llm/internal/config"
	"github.com/TanyuSylvain/unify-llm/internal/conversation"
	"github.com/TanyuSylvain/unify-llm/internal/debate"
	"github.com/TanyuSylvain/unify-llm/internal/llm"
	"github.com/TanyuSylvain/unify-llm/internal/observability/metrics"
	"github.com/TanyuSylvain/unify-llm/internal/storage"
)

// Handler carries the shared dependencies of all route handlers.
type Handler struct {
	cfg      *config.Config
	registry *llm.Registry
	store    *storage.Store
	modes    *conversation.Manager
	debates  *debate.Orchestrator
	metrics  *metrics.Collector
	logger   *logrus.Logger
}

// New builds the handler set.
func New(
	cfg *config.Config,
	registry *llm.Registry,
	store *storage.Store,
	modes *conversation.Manager,
	debates *debate.Orchestrator,
	collector *metrics.Collector,
	logger *logrus.Logger,
) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		cfg:      cfg,
		registry: registry,
		store:    store,
		modes:    modes,
		debates:  debates,
		metrics:  collector,
		logger:   logger,
	}
}

// Register mounts all routes on the engine.
func (h *Handler) Register(router *gin.Engine) {
	router.GET("/health", h.Health)
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	modelGroup := router.Group("/models")
	{
		modelGroup.GET("/", h.ListModels)
		modelGroup.GET("/providers/:name", h.ProviderInfo)
	}

	chat := router.Group("/chat")
	{
		chat.POST("/stream", h.ChatStream)
		chat.POST("/multi-agent/stream", h.DebateStream)
	}

	conv := router.Group("/conversations")
	{
		conv.GET("", h.ListConversations)
		conv.DELETE("", h.DeleteAllConversations)
		conv.GET("/:id", h.GetConversation)
		conv.GET("/:id/info", h.ConversationInfo)
		conv.DELETE("/:id", h.DeleteConversation)
		conv.POST("/:id/switch-mode", h.SwitchMode)
	}
}

// badRequest writes the FastAPI-style {detail} validation error body.
func badRequest(c *gin.Context, detail string) {
	c.JSON(http.StatusBadRequest, gin.H{"detail": detail})
}

func notFound(c *gin.Context, detail string) {
	c.JSON(http.StatusNotFound, gin.H{"detail": detail})
}

// storageError maps a storage error to a response, distinguishing
// missing rows from real failures.
func (h *Handler) storageError(c *gin.Context, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		notFound(c, "conversation not found")
		return
	}
	h.logger.WithError(err).Error("Storage operation failed")
	c.JSON(http.StatusInternalServerError, gin.H{"detail": "storage error"})
}
