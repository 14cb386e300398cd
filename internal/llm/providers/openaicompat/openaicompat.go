// Package openaicompat implements the streaming chat completions protocol
// shared by every vendor the gateway talks to. Mistral, Qwen, GLM, MiniMax,
// DeepSeek, OpenAI and Gemini all expose an OpenAI-compatible endpoint;
// vendor packages wrap a Client and contribute their catalog and request
// quirks through a Mutator.
package openaicompat

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/TanyuSylvain/unify-llm/internal/llm"
)

// Mutator lets a vendor package adjust the wire request before it is sent
// (thinking toggles, temperature restrictions, response_format support).
type Mutator func(req *llm.ChatRequest, wire *WireRequest)

// Client streams chat completions from one OpenAI-compatible endpoint.
type Client struct {
	name        string
	displayName string
	apiKey      string
	baseURL     string
	models      []llm.ModelInfo
	mutate      Mutator
	retry       llm.RetryConfig
	httpClient  *http.Client
	logger      *logrus.Logger
}

// Options configures a Client.
type Options struct {
	// Name is the stable provider id ("deepseek", "qwen", ...).
	Name string
	// DisplayName is the human-readable provider name.
	DisplayName string
	APIKey      string
	// BaseURL is the API root; "/chat/completions" is appended.
	BaseURL string
	Models  []llm.ModelInfo
	// Mutate applies vendor request quirks. Optional.
	Mutate Mutator
	// Timeout bounds one whole streaming call. Defaults to 180s.
	Timeout time.Duration
	Logger  *logrus.Logger
}

// New builds a Client from options.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 180 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}
	return &Client{
		name:        opts.Name,
		displayName: opts.DisplayName,
		apiKey:      opts.APIKey,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		models:      opts.Models,
		mutate:      opts.Mutate,
		retry:       llm.DefaultRetryConfig(),
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

// Name returns the stable provider id.
func (c *Client) Name() string { return c.name }

// DisplayName returns the human-readable provider name.
func (c *Client) DisplayName() string { return c.displayName }

// Models returns the provider's catalog.
func (c *Client) Models() []llm.ModelInfo { return c.models }

// WireRequest is the JSON body of a streaming chat completions call. The
// vendor-specific fields are only set by Mutators for the vendors that
// understand them.
type WireRequest struct {
	Model         string           `json:"model"`
	Messages      []wireMessage    `json:"messages"`
	Stream        bool             `json:"stream"`
	StreamOptions *streamOptions   `json:"stream_options,omitempty"`
	Temperature   *float64         `json:"temperature,omitempty"`
	MaxTokens     int              `json:"max_tokens,omitempty"`
	ResponseFmt   *responseFormat  `json:"response_format,omitempty"`
	// EnableThinking is Qwen's reasoning toggle.
	EnableThinking *bool `json:"enable_thinking,omitempty"`
	// Thinking is GLM's reasoning toggle.
	Thinking *ThinkingParam `json:"thinking,omitempty"`
	// ReasoningEffort maps Gemini's thinking level onto the OpenAI-compat
	// surface.
	ReasoningEffort string `json:"reasoning_effort,omitempty"`
}

// ThinkingParam is the {"type": "enabled"|"disabled"} object GLM expects.
type ThinkingParam struct {
	Type string `json:"type"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type streamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content          string `json:"content"`
			ReasoningContent string `json:"reasoning_content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Usage *llm.Usage `json:"usage"`
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
	Message string `json:"message"`
}

// StreamChat implements llm.Provider. A nil error means the connection was
// established and events will follow; pre-connection failures are returned
// directly so callers can report them before any bytes were streamed.
func (c *Client) StreamChat(ctx context.Context, req *llm.ChatRequest) (<-chan llm.StreamEvent, error) {
	wire := WireRequest{
		Model:         req.Model,
		Messages:      make([]wireMessage, 0, len(req.Messages)),
		Stream:        true,
		StreamOptions: &streamOptions{IncludeUsage: true},
		MaxTokens:     req.MaxTokens,
	}
	for _, m := range req.Messages {
		wire.Messages = append(wire.Messages, wireMessage{Role: m.Role, Content: m.Content})
	}
	if req.Temperature != 0 {
		t := req.Temperature
		wire.Temperature = &t
	}
	if req.JSONMode {
		wire.ResponseFmt = &responseFormat{Type: "json_object"}
	}
	if c.mutate != nil {
		c.mutate(req, &wire)
	}

	body, err := json.Marshal(wire)
	if err != nil {
		return nil, &llm.ProviderError{Kind: llm.ErrBadReq, Provider: c.name, Message: err.Error()}
	}

	resp, err := llm.DoRequest(ctx, c.retry, func() (*http.Response, error) {
		httpReq, reqErr := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/chat/completions", bytes.NewReader(body))
		if reqErr != nil {
			return nil, reqErr
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		httpReq.Header.Set("Accept", "text/event-stream")
		return c.httpClient.Do(httpReq)
	})
	if err != nil {
		kind := llm.ErrUpstream
		if ctx.Err() != nil {
			kind = llm.ErrTimeout
		}
		return nil, &llm.ProviderError{Kind: kind, Provider: c.name, Message: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := upstreamMessage(raw)
		c.logger.WithFields(logrus.Fields{
			"provider": c.name,
			"model":    req.Model,
			"status":   resp.StatusCode,
		}).Warn("Provider request rejected")
		return nil, &llm.ProviderError{
			Kind:     llm.KindForStatus(resp.StatusCode),
			Provider: c.name,
			Message:  msg,
			Status:   resp.StatusCode,
		}
	}

	events := make(chan llm.StreamEvent)
	go c.readStream(ctx, resp.Body, events)
	return events, nil
}

func (c *Client) readStream(ctx context.Context, body io.ReadCloser, events chan<- llm.StreamEvent) {
	defer close(events)
	defer body.Close()

	var usage *llm.Usage
	reader := bufio.NewReader(body)
	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			line = bytes.TrimSpace(line)
			if !bytes.HasPrefix(line, []byte("data: ")) {
				if err != nil {
					break
				}
				continue
			}
			data := bytes.TrimPrefix(line, []byte("data: "))
			if bytes.Equal(data, []byte("[DONE]")) {
				c.emit(ctx, events, llm.StreamEvent{Type: llm.StreamEnd, Usage: usage})
				return
			}

			var chunk streamChunk
			if jsonErr := json.Unmarshal(data, &chunk); jsonErr != nil {
				// Skip malformed keepalive or partial frames.
				if err != nil {
					break
				}
				continue
			}
			if chunk.Usage != nil {
				usage = chunk.Usage
			}
			for _, choice := range chunk.Choices {
				if choice.Delta.ReasoningContent != "" {
					if !c.emit(ctx, events, llm.StreamEvent{Type: llm.StreamThinking, Text: choice.Delta.ReasoningContent}) {
						return
					}
				}
				if choice.Delta.Content != "" {
					if !c.emit(ctx, events, llm.StreamEvent{Type: llm.StreamText, Text: choice.Delta.Content}) {
						return
					}
				}
			}
		}
		if err != nil {
			if err == io.EOF {
				// Stream closed without [DONE]; treat as a clean end.
				c.emit(ctx, events, llm.StreamEvent{Type: llm.StreamEnd, Usage: usage})
				return
			}
			kind := llm.ErrUpstream
			if ctx.Err() != nil {
				kind = llm.ErrTimeout
			}
			c.emit(ctx, events, llm.StreamEvent{Type: llm.StreamError, Err: &llm.ProviderError{
				Kind:     kind,
				Provider: c.name,
				Message:  err.Error(),
			}})
			return
		}
	}

	c.emit(ctx, events, llm.StreamEvent{Type: llm.StreamEnd, Usage: usage})
}

func (c *Client) emit(ctx context.Context, events chan<- llm.StreamEvent, ev llm.StreamEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func upstreamMessage(raw []byte) string {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Error.Message != "" {
			return body.Error.Message
		}
		if body.Message != "" {
			return body.Message
		}
	}
	if len(raw) == 0 {
		return "upstream error with empty body"
	}
	return fmt.Sprintf("upstream error: %s", bytes.TrimSpace(raw))
}
