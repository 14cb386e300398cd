package conversation

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TanyuSylvain/unify-llm/internal/models"
	"github.com/TanyuSylvain/unify-llm/internal/storage"
)

func newManager(t *testing.T) (*Manager, *storage.Store) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewManager(store, nil), store
}

func debateConfig() *models.DebateConfig {
	return &models.DebateConfig{
		Models:         models.RoleModels{Moderator: "a", Expert: "b", Critic: "c"},
		MaxIterations:  3,
		ScoreThreshold: 80,
	}
}

func TestSwitchToDebateSeedsState(t *testing.T) {
	mgr, store := newManager(t)
	require.NoError(t, store.CreateOrTouch("conv-1", "m", models.ModeSimple))
	require.NoError(t, store.AppendMessage(userMsgFor("conv-1", "earlier question")))
	require.NoError(t, store.AppendMessage(assistantMsgFor("conv-1", "earlier answer")))

	c, err := mgr.SwitchMode("conv-1", models.ModeDebate, debateConfig())
	require.NoError(t, err)
	assert.Equal(t, models.ModeDebate, c.Mode)

	got, err := store.GetConversation("conv-1")
	require.NoError(t, err)
	assert.Equal(t, models.ModeDebate, got.Mode)

	state, err := store.ReadDebateState("conv-1")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.True(t, state.Active)
	assert.Equal(t, "b", state.Models.Expert)
	assert.Equal(t, "User: earlier question\nAssistant: earlier answer", state.ConversationContext)
}

func TestSwitchToDebateRequiresConfig(t *testing.T) {
	mgr, store := newManager(t)
	require.NoError(t, store.CreateOrTouch("conv-1", "m", models.ModeSimple))

	_, err := mgr.SwitchMode("conv-1", models.ModeDebate, nil)
	assert.ErrorIs(t, err, ErrDebateConfigRequired)
}

func TestSwitchToSimpleDeactivatesState(t *testing.T) {
	mgr, store := newManager(t)
	require.NoError(t, store.CreateOrTouch("conv-1", "m", models.ModeSimple))

	_, err := mgr.SwitchMode("conv-1", models.ModeDebate, debateConfig())
	require.NoError(t, err)

	require.NoError(t, store.WriteDebateState("conv-1", &models.DebateState{
		Active:     true,
		Iterations: []models.IterationRecord{{Iteration: 1, Score: 75}},
	}))

	_, err = mgr.SwitchMode("conv-1", models.ModeSimple, nil)
	require.NoError(t, err)

	state, err := store.ReadDebateState("conv-1")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.False(t, state.Active)
	require.Len(t, state.Iterations, 1)
}

func TestSwitchModeUnknownConversation(t *testing.T) {
	mgr, _ := newManager(t)
	_, err := mgr.SwitchMode("missing", models.ModeDebate, debateConfig())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSwitchModeInvalid(t *testing.T) {
	mgr, store := newManager(t)
	require.NoError(t, store.CreateOrTouch("conv-1", "m", models.ModeSimple))

	_, err := mgr.SwitchMode("conv-1", models.Mode("turbo"), nil)
	assert.Error(t, err)
}

func TestSwitchModeSameModeNoop(t *testing.T) {
	mgr, store := newManager(t)
	require.NoError(t, store.CreateOrTouch("conv-1", "m", models.ModeSimple))

	c, err := mgr.SwitchMode("conv-1", models.ModeSimple, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ModeSimple, c.Mode)

	// Re-entering debate mode without config is fine once already there.
	_, err = mgr.SwitchMode("conv-1", models.ModeDebate, debateConfig())
	require.NoError(t, err)
	c, err = mgr.SwitchMode("conv-1", models.ModeDebate, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ModeDebate, c.Mode)
}

func TestInfo(t *testing.T) {
	mgr, store := newManager(t)
	require.NoError(t, store.CreateOrTouch("conv-1", "m", models.ModeDebate))
	require.NoError(t, store.AppendMessage(&models.Message{
		ConversationID: "conv-1", Role: "user", Content: "hi",
	}))
	require.NoError(t, store.WriteDebateState("conv-1", &models.DebateState{Active: true}))

	info, err := mgr.Info("conv-1")
	require.NoError(t, err)
	assert.Equal(t, models.ModeDebate, info.Mode)
	assert.Equal(t, 1, info.MessageCount)
	assert.True(t, info.HasDebateState)
}

func userMsg(content string) *models.Message {
	return &models.Message{Role: "user", Content: content, Type: models.MessageTypeUser}
}

func assistantMsg(content string) *models.Message {
	return &models.Message{Role: "assistant", Content: content, Type: models.MessageTypeFinal}
}

func userMsgFor(convID, content string) *models.Message {
	m := userMsg(content)
	m.ConversationID = convID
	return m
}

func assistantMsgFor(convID, content string) *models.Message {
	m := assistantMsg(content)
	m.ConversationID = convID
	return m
}

func TestBuildContextEmpty(t *testing.T) {
	assert.Empty(t, BuildContext(nil))
}

func TestBuildContextFormatsPairs(t *testing.T) {
	msgs := []*models.Message{
		userMsg("first question"),
		assistantMsg("first answer"),
		userMsg("second question"),
	}
	got := BuildContext(msgs)
	assert.Equal(t, "User: first question\nAssistant: first answer\n\nUser: second question", got)
}

func TestBuildContextSeparatesPairsWithBlankLine(t *testing.T) {
	msgs := []*models.Message{
		userMsg("q1"), assistantMsg("a1"),
		userMsg("q2"), assistantMsg("a2"),
	}
	got := BuildContext(msgs)
	assert.Equal(t, "User: q1\nAssistant: a1\n\nUser: q2\nAssistant: a2", got)
}

func TestBuildContextWindowsToFivePairs(t *testing.T) {
	var msgs []*models.Message
	for i := 0; i < 8; i++ {
		msgs = append(msgs, userMsg("q"+strings.Repeat("x", i)), assistantMsg("a"))
	}
	got := BuildContext(msgs)
	assert.Equal(t, 5, strings.Count(got, "User: "))
	assert.NotContains(t, got, "User: q\n")
	assert.Contains(t, got, "qxxxxxxx")
}

func TestBuildContextTruncatesLongMessages(t *testing.T) {
	long := strings.Repeat("z", 600)
	got := BuildContext([]*models.Message{userMsg(long)})
	assert.Equal(t, "User: "+strings.Repeat("z", 500)+"...", got)
}

func TestBuildContextSkipsDebateArtifacts(t *testing.T) {
	msgs := []*models.Message{
		userMsg("question"),
		{Role: "system", Content: "{...}", Type: models.MessageTypeModInit},
		{Role: "assistant", Content: "{...}", Type: models.MessageTypeExpert, Iteration: 1},
		{Role: "assistant", Content: "{...}", Type: models.MessageTypeCritic, Iteration: 1},
		assistantMsg("final"),
	}
	got := BuildContext(msgs)
	assert.Equal(t, "User: question\nAssistant: final", got)
}
