package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health reports service liveness and which providers are registered.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"providers": h.registry.Names(),
	})
}
