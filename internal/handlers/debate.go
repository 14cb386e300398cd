package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/TanyuSylvain/unify-llm/internal/conversation"
	"github.com/TanyuSylvain/unify-llm/internal/debate"
	"github.com/TanyuSylvain/unify-llm/internal/models"
)

// DebateStreamRequest is the body of POST /chat/multi-agent/stream.
type DebateStreamRequest struct {
	Message        string                `json:"message"`
	ConversationID string                `json:"conversation_id"`
	Models         models.RoleModels     `json:"models"`
	MaxIterations  int                   `json:"max_iterations"`
	ScoreThreshold float64               `json:"score_threshold"`
	Thinking       models.ThinkingConfig `json:"thinking"`
}

const (
	defaultMaxIterations  = 3
	defaultScoreThreshold = 80
)

// DebateStream runs the debate workflow and streams its events over SSE.
func (h *Handler) DebateStream(c *gin.Context) {
	var req DebateStreamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		badRequest(c, "message must not be empty")
		return
	}
	for _, pair := range []struct{ role, model string }{
		{"moderator", req.Models.Moderator},
		{"expert", req.Models.Expert},
		{"critic", req.Models.Critic},
	} {
		if pair.model == "" {
			badRequest(c, "missing model for role "+pair.role)
			return
		}
		if _, _, err := h.registry.Resolve(pair.model); err != nil {
			badRequest(c, pair.role+": "+err.Error())
			return
		}
	}

	if req.MaxIterations == 0 {
		req.MaxIterations = defaultMaxIterations
	}
	if req.ScoreThreshold == 0 {
		req.ScoreThreshold = defaultScoreThreshold
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	if err := h.store.CreateOrTouch(conversationID, req.Models.Expert, models.ModeDebate); err != nil {
		h.storageError(c, err)
		return
	}

	// Previous summary survives across turns; rounds are per request.
	var previousSummary string
	if prior, err := h.store.ReadDebateState(conversationID); err == nil && prior != nil {
		previousSummary = prior.PreviousSummary
	}

	// Context is built from prior turns only; the current question goes to
	// the roles separately.
	history, err := h.store.LoadMessages(conversationID)
	if err != nil {
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

	state := &models.DebateState{
		Models:              req.Models,
		MaxIterations:       req.MaxIterations,
		ScoreThreshold:      req.ScoreThreshold,
		Thinking:            req.Thinking,
		ConversationContext: conversation.BuildContext(history),
		PreviousSummary:     previousSummary,
		Active:              true,
	}
	state.ClampLimits()

	// The connection context signals disconnect; the debate budget is
	// handed to the orchestrator so an expired run can still deliver its
	// done event to a connected client.
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Conversation-ID", conversationID)
	c.Status(http.StatusOK)
	flusher, _ := c.Writer.(http.Flusher)

	start := time.Now()
	events := h.debates.Run(ctx, &debate.Request{
		ConversationID: conversationID,
		Question:       req.Message,
		State:          state,
		Temperature:    h.cfg.ModelTemperature,
		Budget:         h.cfg.DebateTimeout,
	})

	for ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			h.logger.WithError(err).Error("Failed to encode debate event")
			continue
		}
		if _, err := c.Writer.WriteString("data: " + string(payload) + "\n\n"); err != nil {
			// Client gone; cancel the workflow and drain.
			cancel()
			for range events {
			}
			return
		}
		if flusher != nil {
			flusher.Flush()
		}

		if ev.Type == debate.EventDone && h.metrics != nil {
			rounds := 0
			if ev.TotalIterations != nil {
				rounds = *ev.TotalIterations
			}
			h.metrics.ObserveDebate(ev.TerminationReason, rounds, time.Since(start))
		}
	}
}
