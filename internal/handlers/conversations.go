package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/TanyuSylvain/unify-llm/internal/conversation"
	"github.com/TanyuSylvain/unify-llm/internal/models"
)

// ListConversations returns conversations ordered by recency.
func (h *Handler) ListConversations(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 0 || offset < 0 {
		badRequest(c, "limit and offset must be non-negative")
		return
	}

	list, err := h.store.ListConversations(limit, offset)
	if err != nil {
		h.storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"conversations": list,
		"count":         len(list),
	})
}

// GetConversation returns one conversation with its full message history.
func (h *Handler) GetConversation(c *gin.Context) {
	id := c.Param("id")
	conv, err := h.store.GetConversation(id)
	if err != nil {
		h.storageError(c, err)
		return
	}
	messages, err := h.store.LoadMessages(id)
	if err != nil {
		h.storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"conversation": conv,
		"messages":     messages,
	})
}

// ConversationInfo returns mode metadata without the message history.
func (h *Handler) ConversationInfo(c *gin.Context) {
	info, err := h.modes.Info(c.Param("id"))
	if err != nil {
		h.storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// DeleteConversation removes one conversation and its messages.
func (h *Handler) DeleteConversation(c *gin.Context) {
	if err := h.store.Delete(c.Param("id")); err != nil {
		h.storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// DeleteAllConversations clears the store.
func (h *Handler) DeleteAllConversations(c *gin.Context) {
	n, err := h.store.DeleteAll()
	if err != nil {
		h.storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted_count": n})
}

// SwitchModeRequest is the body of POST /conversations/{id}/switch-mode.
type SwitchModeRequest struct {
	TargetMode   models.Mode          `json:"target_mode"`
	DebateConfig *models.DebateConfig `json:"debate_config"`
}

// SwitchMode moves a conversation between simple and debate mode.
func (h *Handler) SwitchMode(c *gin.Context) {
	var req SwitchModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if !req.TargetMode.Valid() {
		badRequest(c, "target_mode must be \"simple\" or \"debate\"")
		return
	}

	conv, err := h.modes.SwitchMode(c.Param("id"), req.TargetMode, req.DebateConfig)
	if err != nil {
		if errors.Is(err, conversation.ErrDebateConfigRequired) {
			badRequest(c, err.Error())
			return
		}
		h.storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"mode":    conv.Mode,
		"message": "conversation is now in " + string(conv.Mode) + " mode",
	})
}
