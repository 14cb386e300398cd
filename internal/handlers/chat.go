package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/TanyuSylvain/unify-llm/internal/llm"
	"github.com/TanyuSylvain/unify-llm/internal/models"
)

// ChatStreamRequest is the body of POST /chat/stream.
type ChatStreamRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
	Model          string `json:"model"`
	Thinking       bool   `json:"thinking"`
}

// ChatStream streams one simple-mode completion as plain text. The
// conversation id is returned in the X-Conversation-ID header before the
// first token.
func (h *Handler) ChatStream(c *gin.Context) {
	var req ChatStreamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		badRequest(c, "message must not be empty")
		return
	}

	modelID := req.Model
	if modelID == "" {
		modelID = h.cfg.DefaultModel
	}
	provider, info, err := h.registry.Resolve(modelID)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	if err := h.store.CreateOrTouch(conversationID, modelID, models.ModeSimple); err != nil {
		h.storageError(c, err)
		return
	}
	if err := h.store.AppendMessage(&models.Message{
		ConversationID: conversationID,
		Role:           "user",
		Content:        req.Message,
		Type:           models.MessageTypeUser,
	}); err != nil {
		h.storageError(c, err)
		return
	}

	history, err := h.store.LoadMessages(conversationID)
	if err != nil {
		h.storageError(c, err)
		return
	}

	chatReq := &llm.ChatRequest{
		Model:       modelID,
		Messages:    replayHistory(history),
		Temperature: h.cfg.ModelTemperature,
		Thinking:    info.SupportsThinking && (req.Thinking || info.ThinkingLocked),
	}

	start := time.Now()
	stream, err := provider.StreamChat(c.Request.Context(), chatReq)
	if err != nil {
		h.recordProviderError(provider.Name(), err)
		var perr *llm.ProviderError
		if errors.As(err, &perr) {
			c.JSON(http.StatusBadGateway, gin.H{"detail": perr.Message, "kind": string(perr.Kind)})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"detail": err.Error()})
		return
	}

	c.Header("X-Conversation-ID", conversationID)
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Status(http.StatusOK)

	var content strings.Builder
	var usage *llm.Usage
	flusher, _ := c.Writer.(http.Flusher)
	disconnected := false

stream:
	for ev := range stream {
		switch ev.Type {
		case llm.StreamText:
			content.WriteString(ev.Text)
			if _, err := c.Writer.WriteString(ev.Text); err != nil {
				disconnected = true
				break stream
			}
			if flusher != nil {
				flusher.Flush()
			}
		case llm.StreamEnd:
			usage = ev.Usage
		case llm.StreamError:
			// Mid-stream failure: the connection simply ends. Already
			// streamed text stands and is persisted below.
			h.recordProviderError(provider.Name(), ev.Err)
			break stream
		}
	}

	if h.metrics != nil {
		var prompt, completion int
		if usage != nil {
			prompt, completion = usage.PromptTokens, usage.CompletionTokens
		}
		h.metrics.ObserveProviderCall(provider.Name(), modelID, time.Since(start), prompt, completion)
	}

	if content.Len() > 0 {
		if err := h.store.AppendMessage(&models.Message{
			ConversationID: conversationID,
			Role:           "assistant",
			Content:        content.String(),
			Model:          modelID,
			Type:           models.MessageTypeFinal,
		}); err != nil {
			h.logger.WithError(err).Error("Failed to persist assistant message")
		}
	}

	if disconnected {
		h.logger.WithFields(logrus.Fields{
			"conversation_id": conversationID,
			"model":           modelID,
		}).Info("Client disconnected mid-stream, partial content persisted")
	}
}

// replayHistory converts stored turns into provider messages, dropping
// debate artifacts.
func replayHistory(history []*models.Message) []llm.Message {
	out := make([]llm.Message, 0, len(history))
	for _, m := range history {
		switch {
		case m.Role == "user" && m.Type == models.MessageTypeUser:
			out = append(out, llm.Message{Role: "user", Content: m.Content})
		case m.Role == "assistant" && (m.Type == models.MessageTypeFinal || m.Type == ""):
			out = append(out, llm.Message{Role: "assistant", Content: m.Content})
		}
	}
	return out
}

func (h *Handler) recordProviderError(provider string, err error) {
	kind := string(llm.ErrUpstream)
	var perr *llm.ProviderError
	if errors.As(err, &perr) {
		kind = string(perr.Kind)
	}
	h.logger.WithError(err).WithField("provider", provider).Warn("Provider call failed")
	if h.metrics != nil {
		h.metrics.ObserveProviderError(provider, kind)
	}
}
