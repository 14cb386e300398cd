package llm

import "context"

// Provider is the single streaming contract every vendor adapter satisfies.
//
// StreamChat returns a finite, non-restartable event sequence. Adapters
// guarantee that text chunks arrive in order and that their concatenation
// equals the final assistant content; a transport failure mid-stream emits
// one error event and closes the channel without retracting earlier text.
type Provider interface {
	// Name is the stable provider id (e.g. "deepseek").
	Name() string
	// DisplayName is the human-readable provider name.
	DisplayName() string
	// Models returns the capability records registered for this provider.
	Models() []ModelInfo
	// StreamChat starts one streaming chat completion. Cancelling ctx
	// closes the upstream read promptly.
	StreamChat(ctx context.Context, req *ChatRequest) (<-chan StreamEvent, error)
}
