package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListModels returns the union of all registered model catalogs.
func (h *Handler) ListModels(c *gin.Context) {
	models := h.registry.Models()
	c.JSON(http.StatusOK, gin.H{
		"models": models,
		"count":  len(models),
	})
}

// ProviderInfo returns one provider's metadata and catalog.
func (h *Handler) ProviderInfo(c *gin.Context) {
	name := c.Param("name")
	provider, ok := h.registry.Provider(name)
	if !ok {
		notFound(c, "provider not found: "+name)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"provider":     provider.Name(),
		"display_name": provider.DisplayName(),
		"models":       provider.Models(),
	})
}
