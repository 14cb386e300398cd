// Package conversation implements mode switching and the sliding-window
// context that carries history into new model calls.
package conversation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/TanyuSylvain/unify-llm/internal/models"
	"github.com/TanyuSylvain/unify-llm/internal/storage"
)

const (
	// contextPairs is how many recent user/assistant exchanges are replayed.
	contextPairs = 5
	// contextSnippet is the per-message truncation length in runes.
	contextSnippet = 500
)

// Manager switches conversation modes and exposes mode metadata.
type Manager struct {
	store  *storage.Store
	logger *logrus.Logger
}

// NewManager builds a Manager over the given store.
func NewManager(store *storage.Store, logger *logrus.Logger) *Manager {
	if logger == nil {
		logger = logrus.New()
	}
	return &Manager{store: store, logger: logger}
}

// ErrDebateConfigRequired is returned when switching to debate mode
// without role models.
var ErrDebateConfigRequired = errors.New("debate config required to enter debate mode")

// SwitchMode moves an existing conversation to the given mode. Unknown
// conversation ids are rejected with storage.ErrNotFound. Entering debate
// mode requires a config and seeds a fresh debate state carrying the
// conversation history; leaving debate mode deactivates the state but
// keeps its iteration records. Switching to the mode already in effect is
// a no-op.
func (m *Manager) SwitchMode(id string, mode models.Mode, cfg *models.DebateConfig) (*models.Conversation, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("invalid mode %q", mode)
	}

	c, err := m.store.GetConversation(id)
	if err != nil {
		return nil, err
	}
	if c.Mode == mode {
		return c, nil
	}

	switch mode {
	case models.ModeDebate:
		if cfg == nil {
			return nil, ErrDebateConfigRequired
		}
		history, err := m.store.LoadMessages(id)
		if err != nil {
			return nil, err
		}
		state := &models.DebateState{
			Models:              cfg.Models,
			MaxIterations:       cfg.MaxIterations,
			ScoreThreshold:      cfg.ScoreThreshold,
			Thinking:            cfg.Thinking,
			ConversationContext: BuildContext(history),
			Active:              true,
			UpdatedAt:           time.Now().UTC(),
		}
		state.ClampLimits()
		if err := m.store.WriteDebateState(id, state); err != nil {
			return nil, err
		}
	case models.ModeSimple:
		state, err := m.store.ReadDebateState(id)
		if err != nil {
			return nil, err
		}
		if state != nil {
			state.Active = false
			state.UpdatedAt = time.Now().UTC()
			if err := m.store.WriteDebateState(id, state); err != nil {
				return nil, err
			}
		}
	}

	if err := m.store.UpdateMode(id, mode); err != nil {
		return nil, err
	}
	m.logger.WithFields(logrus.Fields{
		"conversation_id": id,
		"from":            c.Mode,
		"to":              mode,
	}).Info("Conversation mode switched")

	c.Mode = mode
	return c, nil
}

// Info describes a conversation's mode and history size for the info
// endpoint.
type Info struct {
	ConversationID string      `json:"conversation_id"`
	Mode           models.Mode `json:"mode"`
	Model          string      `json:"model"`
	MessageCount   int         `json:"message_count"`
	HasDebateState bool        `json:"has_debate_state"`
}

// Info returns mode metadata for one conversation.
func (m *Manager) Info(id string) (*Info, error) {
	c, err := m.store.GetConversation(id)
	if err != nil {
		return nil, err
	}
	state, err := m.store.ReadDebateState(id)
	if err != nil {
		return nil, err
	}
	return &Info{
		ConversationID: c.ID,
		Mode:           c.Mode,
		Model:          c.Model,
		MessageCount:   c.MessageCount,
		HasDebateState: state != nil,
	}, nil
}

// BuildContext renders the last few user/assistant exchanges as a compact
// transcript for prompt injection. Debate artifacts are skipped; only user
// turns and final answers count. Returns "" for an empty history.
func BuildContext(messages []*models.Message) string {
	type pair struct {
		user      string
		assistant string
	}

	var pairs []pair
	var current *pair
	for _, msg := range messages {
		switch {
		case msg.Role == "user" && msg.Type == models.MessageTypeUser:
			if current != nil {
				pairs = append(pairs, *current)
			}
			current = &pair{user: msg.Content}
		case msg.Role == "assistant" && (msg.Type == models.MessageTypeFinal || msg.Type == ""):
			if current != nil {
				current.assistant = msg.Content
				pairs = append(pairs, *current)
				current = nil
			}
		}
	}
	if current != nil {
		pairs = append(pairs, *current)
	}

	if len(pairs) > contextPairs {
		pairs = pairs[len(pairs)-contextPairs:]
	}

	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("User: ")
		b.WriteString(snippet(p.user))
		if p.assistant != "" {
			b.WriteString("\nAssistant: ")
			b.WriteString(snippet(p.assistant))
		}
	}
	return b.String()
}

func snippet(s string) string {
	runes := []rune(s)
	if len(runes) > contextSnippet {
		return string(runes[:contextSnippet]) + "..."
	}
	return s
}
