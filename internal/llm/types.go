package llm

import "fmt"

// Message is one turn of a chat transcript sent to a provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest asks a provider to stream one chat completion.
// A Temperature of 0 means "provider default" and is omitted on the wire.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Thinking    bool      `json:"thinking,omitempty"`
	JSONMode    bool      `json:"json_mode,omitempty"`
}

// StreamEventType discriminates events on a provider stream.
type StreamEventType string

const (
	// StreamText carries a chunk of final answer text.
	StreamText StreamEventType = "text"
	// StreamThinking carries a chunk of reasoning content, for providers
	// that expose it on a side channel.
	StreamThinking StreamEventType = "thinking"
	// StreamEnd is the last event of a successful stream.
	StreamEnd StreamEventType = "end"
	// StreamError is the last event of a failed stream.
	StreamError StreamEventType = "error"
)

// Usage is the token accounting reported by a provider, when available.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// StreamEvent is one element of a provider's lazy event sequence. The
// sequence is finite and not restartable: zero or more text/thinking events
// followed by exactly one end or error event.
type StreamEvent struct {
	Type  StreamEventType
	Text  string
	Usage *Usage
	Err   *ProviderError
}

// ErrorKind is the common classification all adapters translate vendor
// error shapes into.
type ErrorKind string

const (
	ErrAuth      ErrorKind = "auth"
	ErrRateLimit ErrorKind = "rate_limit"
	ErrBadReq    ErrorKind = "bad_request"
	ErrTimeout   ErrorKind = "timeout"
	ErrUpstream  ErrorKind = "upstream"
	ErrMalformed ErrorKind = "malformed_response"
)

// ProviderError is a provider failure normalized to the common kind set.
type ProviderError struct {
	Kind     ErrorKind
	Provider string
	Message  string
	Status   int
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (HTTP %d): %s", e.Provider, e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
}

// KindForStatus maps an upstream HTTP status to an ErrorKind.
func KindForStatus(status int) ErrorKind {
	switch {
	case status == 401 || status == 403:
		return ErrAuth
	case status == 429:
		return ErrRateLimit
	case status == 408 || status == 504:
		return ErrTimeout
	case status >= 400 && status < 500:
		return ErrBadReq
	default:
		return ErrUpstream
	}
}

// ModelInfo is the capability record for one registered model.
type ModelInfo struct {
	Provider         string `json:"provider"`
	ProviderName     string `json:"provider_name"`
	ModelID          string `json:"model_id"`
	ModelName        string `json:"model_name"`
	Description      string `json:"description"`
	SupportsThinking bool   `json:"supports_thinking"`
	ThinkingLocked   bool   `json:"thinking_locked"`
	SupportsJSONMode bool   `json:"supports_json_mode"`
}
