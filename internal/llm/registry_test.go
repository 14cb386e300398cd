package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name   string
	models []ModelInfo
}

func (f *fakeProvider) Name() string        { return f.name }
func (f *fakeProvider) DisplayName() string { return f.name }
func (f *fakeProvider) Models() []ModelInfo { return f.models }
func (f *fakeProvider) StreamChat(ctx context.Context, req *ChatRequest) (<-chan StreamEvent, error) {
	ch := make(chan StreamEvent)
	close(ch)
	return ch, nil
}

func TestRegistryResolve(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeProvider{
		name: "deepseek",
		models: []ModelInfo{
			{Provider: "deepseek", ModelID: "deepseek-chat"},
			{Provider: "deepseek", ModelID: "deepseek-reasoner", ThinkingLocked: true},
		},
	})

	p, info, err := r.Resolve("deepseek-reasoner")
	require.NoError(t, err)
	assert.Equal(t, "deepseek", p.Name())
	assert.True(t, info.ThinkingLocked)

	_, _, err = r.Resolve("no-such-model")
	assert.Error(t, err)
}

func TestRegistryModelsSorted(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeProvider{
		name:   "qwen",
		models: []ModelInfo{{Provider: "qwen", ModelID: "qwen-turbo"}, {Provider: "qwen", ModelID: "qwen-max"}},
	})
	r.Register(&fakeProvider{
		name:   "deepseek",
		models: []ModelInfo{{Provider: "deepseek", ModelID: "deepseek-chat"}},
	})

	models := r.Models()
	require.Len(t, models, 3)
	assert.Equal(t, "deepseek-chat", models[0].ModelID)
	assert.Equal(t, "qwen-max", models[1].ModelID)
	assert.Equal(t, "qwen-turbo", models[2].ModelID)
}

func TestRegistryNamesPreserveOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeProvider{name: "mistral"})
	r.Register(&fakeProvider{name: "glm"})

	assert.Equal(t, []string{"mistral", "glm"}, r.Names())
	assert.Equal(t, 2, r.Len())
}

func TestRegistryReplaceProvider(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeProvider{name: "openai", models: []ModelInfo{{Provider: "openai", ModelID: "gpt-5.2"}}})
	r.Register(&fakeProvider{name: "openai", models: []ModelInfo{{Provider: "openai", ModelID: "gpt-5.2-chat"}}})

	assert.Equal(t, 1, r.Len())
	_, _, err := r.Resolve("gpt-5.2-chat")
	assert.NoError(t, err)
}
