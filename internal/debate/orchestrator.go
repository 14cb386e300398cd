package debate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/TanyuSylvain/unify-llm/internal/conversation"
	"github.com/TanyuSylvain/unify-llm/internal/llm"
	"github.com/TanyuSylvain/unify-llm/internal/models"
)

// Event types emitted over the debate SSE stream.
const (
	EventPhaseStart        = "phase_start"
	EventModeratorInit     = "moderator_init"
	EventExpertAnswer      = "expert_answer"
	EventCriticReview      = "critic_review"
	EventModeratorSynth    = "moderator_synthesize"
	EventIterationComplete = "iteration_complete"
	EventDone              = "done"
	EventError             = "error"
)

// Debate phases named in phase_start events.
const (
	PhaseExpert    = "expert"
	PhaseCritic    = "critic"
	PhaseModerator = "moderator"
)

// Event is one SSE payload of a debate stream.
type Event struct {
	Type              string                     `json:"type"`
	Phase             string                     `json:"phase,omitempty"`
	Iteration         int                        `json:"iteration,omitempty"`
	ModeratorInit     *models.ModeratorInit      `json:"moderator_init,omitempty"`
	ExpertAnswer      *models.ExpertAnswer       `json:"expert_answer,omitempty"`
	CriticReview      *models.CriticReview       `json:"critic_review,omitempty"`
	Synthesis         *models.ModeratorSynthesis `json:"moderator_synthesize,omitempty"`
	Score             float64                    `json:"score,omitempty"`
	FinalAnswer       string                     `json:"final_answer,omitempty"`
	TerminationReason string                     `json:"termination_reason,omitempty"`
	TotalIterations   *int                       `json:"total_iterations,omitempty"`
	WasDirectAnswer   *bool                      `json:"was_direct_answer,omitempty"`
	Error             string                     `json:"error,omitempty"`
	ErrorKind         string                     `json:"error_kind,omitempty"`
}

// Store is the persistence surface the orchestrator needs.
type Store interface {
	AppendMessage(msg *models.Message) error
	WriteDebateState(id string, state *models.DebateState) error
	LoadMessages(conversationID string) ([]*models.Message, error)
}

// Request carries one user turn into the debate workflow. State must have
// its limits clamped and role models resolved before the run starts.
// Budget bounds the role calls of the whole run; when it expires the run
// stops calling providers, terminates with max_iterations, and still
// delivers the best-effort answer to the connected client. Zero means no
// budget.
type Request struct {
	ConversationID string
	Question       string
	State          *models.DebateState
	Temperature    float64
	Budget         time.Duration
}

// Orchestrator drives the Moderator→Expert→Critic workflow for one request
// at a time.
type Orchestrator struct {
	registry *llm.Registry
	store    Store
	logger   *logrus.Logger
}

// New builds an Orchestrator.
func New(registry *llm.Registry, store Store, logger *logrus.Logger) *Orchestrator {
	if logger == nil {
		logger = logrus.New()
	}
	return &Orchestrator{registry: registry, store: store, logger: logger}
}

// Run executes the debate workflow and streams events. The channel closes
// after exactly one done or error event, or when ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context, req *Request) <-chan Event {
	events := make(chan Event)
	go func() {
		defer close(events)
		o.run(ctx, req, events)
	}()
	return events
}

func (o *Orchestrator) run(ctx context.Context, req *Request, events chan<- Event) {
	state := req.State
	log := o.logger.WithField("conversation_id", req.ConversationID)

	// ctx is the client connection; callCtx additionally carries the
	// debate budget. Budget expiry stops role calls but events and the
	// final answer still go out over the live connection. Only a dead
	// connection abandons the run.
	callCtx := ctx
	cancelCalls := func() {}
	if req.Budget > 0 {
		callCtx, cancelCalls = context.WithTimeout(ctx, req.Budget)
	}
	defer cancelCalls()

	// Moderator triage.
	initText, err := o.callRole(callCtx, state.Models.Moderator, state.Thinking.Moderator, req.Temperature,
		moderatorInitSystem, moderatorInitPrompt(req.Question, state.ConversationContext))
	if err != nil {
		log.WithError(err).Warn("Moderator init call failed, delegating to expert")
		initText = fmt.Sprintf("moderator unavailable: %v", err)
	}
	init, parsed := ParseModeratorInit(initText)
	if !parsed {
		log.Warn("Moderator init output was not structured, delegating to expert")
	}

	if !o.emit(ctx, events, Event{Type: EventModeratorInit, ModeratorInit: init}) {
		return
	}
	if !o.persistArtifact(ctx, events, req.ConversationID, models.MessageTypeModInit, 0, state.Models.Moderator, init) {
		return
	}

	if init.Decision == models.DecisionDirectAnswer {
		o.finish(ctx, req, events, init.DirectAnswer, models.ReasonSimpleQuestion, 0, true)
		return
	}

	var (
		prevReview *models.CriticReview
		guidance   string
		reason     string
		completed  int
	)

	for i := 1; i <= state.MaxIterations; i++ {
		if ctx.Err() != nil {
			// Client gone; nothing left to deliver.
			return
		}
		if callCtx.Err() != nil {
			reason = models.ReasonMaxIterations
			break
		}

		// Expert phase.
		if !o.emit(ctx, events, Event{Type: EventPhaseStart, Phase: PhaseExpert, Iteration: i}) {
			return
		}
		expertText, err := o.callRole(callCtx, state.Models.Expert, state.Thinking.Expert, req.Temperature,
			expertSystem, expertPrompt(req.Question, state.ConversationContext, i, prevReview, guidance))
		if err != nil {
			log.WithError(err).WithField("iteration", i).Warn("Expert call failed, continuing with fallback")
			expertText = fmt.Sprintf("expert unavailable: %v", err)
		}
		answer, _ := ParseExpertAnswer(expertText)
		if !o.emit(ctx, events, Event{Type: EventExpertAnswer, Iteration: i, ExpertAnswer: answer}) {
			return
		}
		if !o.persistArtifact(ctx, events, req.ConversationID, models.MessageTypeExpert, i, state.Models.Expert, answer) {
			return
		}

		// Critic phase.
		if !o.emit(ctx, events, Event{Type: EventPhaseStart, Phase: PhaseCritic, Iteration: i}) {
			return
		}
		criticText, err := o.callRole(callCtx, state.Models.Critic, state.Thinking.Critic, req.Temperature,
			criticSystem, criticPrompt(req.Question, answer))
		if err != nil {
			log.WithError(err).WithField("iteration", i).Warn("Critic call failed, continuing with fallback")
			criticText = fmt.Sprintf("critic unavailable: %v", err)
		}
		review, _ := ParseCriticReview(criticText)
		if !o.emit(ctx, events, Event{Type: EventCriticReview, Iteration: i, CriticReview: review, Score: review.OverallScore}) {
			return
		}
		if !o.persistArtifact(ctx, events, req.ConversationID, models.MessageTypeCritic, i, state.Models.Critic, review) {
			return
		}

		// Moderator synthesis.
		if !o.emit(ctx, events, Event{Type: EventPhaseStart, Phase: PhaseModerator, Iteration: i}) {
			return
		}
		synthText, err := o.callRole(callCtx, state.Models.Moderator, state.Thinking.Moderator, req.Temperature,
			moderatorSynthSystem, moderatorSynthPrompt(req.Question, i, state.MaxIterations, state.ScoreThreshold, answer, review))
		if err != nil {
			log.WithError(err).WithField("iteration", i).Warn("Synthesis call failed, continuing with fallback")
			synthText = fmt.Sprintf("moderator unavailable: %v", err)
		}
		synth, _ := ParseModeratorSynthesis(synthText)
		if !o.emit(ctx, events, Event{Type: EventModeratorSynth, Iteration: i, Synthesis: synth}) {
			return
		}
		if !o.persistArtifact(ctx, events, req.ConversationID, models.MessageTypeModSynth, i, state.Models.Moderator, synth) {
			return
		}

		record := models.IterationRecord{
			Iteration: i,
			Expert:    answer,
			Review:    review,
			Synthesis: synth,
			Score:     review.OverallScore,
			Decision:  synth.Decision,
		}
		state.Iterations = append(state.Iterations, record)
		state.PreviousSummary = synth.IterationSummary
		completed = i

		if !o.emit(ctx, events, Event{Type: EventIterationComplete, Iteration: i, Score: review.OverallScore}) {
			return
		}

		reason = o.terminationReason(state, i, review, synth)
		if reason != "" {
			break
		}
		prevReview = review
		guidance = synth.ImprovementGuidance
	}

	if reason == "" {
		reason = models.ReasonMaxIterations
	}

	o.finish(ctx, req, events, o.renderFinal(state), reason, completed, false)
}

// terminationReason applies the termination rules in priority order.
// An empty result means the debate continues.
func (o *Orchestrator) terminationReason(state *models.DebateState, i int, review *models.CriticReview, synth *models.ModeratorSynthesis) string {
	if review.Passed {
		return models.ReasonExplicitPass
	}
	if review.OverallScore >= state.ScoreThreshold {
		return models.ReasonScoreThreshold
	}
	if i >= state.MaxIterations {
		return models.ReasonMaxIterations
	}
	if converged(state) {
		return models.ReasonConvergence
	}
	if synth.Decision == models.SynthesisEnd {
		if i == state.MaxIterations {
			return models.ReasonMaxIterations
		}
		return models.ReasonExplicitPass
	}
	return ""
}

// converged reports whether the last two rounds reached the same conclusion
// without meaningful score movement.
func converged(state *models.DebateState) bool {
	n := len(state.Iterations)
	if n < 2 {
		return false
	}
	cur, prev := state.Iterations[n-1], state.Iterations[n-2]
	if cur.Expert == nil || prev.Expert == nil {
		return false
	}
	if normalizeConclusion(cur.Expert.Conclusion) != normalizeConclusion(prev.Expert.Conclusion) {
		return false
	}
	return cur.Score-prev.Score < 2
}

func normalizeConclusion(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// renderFinal assembles the final answer from the highest-scoring round.
func (o *Orchestrator) renderFinal(state *models.DebateState) string {
	if len(state.Iterations) == 0 {
		return "No answer could be produced."
	}
	best := state.Iterations[0]
	for _, rec := range state.Iterations[1:] {
		if rec.Score >= best.Score {
			best = rec
		}
	}
	if best.Expert == nil {
		return "No answer could be produced."
	}

	var b strings.Builder
	if best.Synthesis != nil && best.Synthesis.IterationSummary != "" {
		b.WriteString(best.Synthesis.IterationSummary)
		b.WriteString("\n\n")
	}
	if best.Expert.Understanding != "" {
		b.WriteString(best.Expert.Understanding)
		b.WriteString("\n\n")
	}
	for _, p := range best.Expert.CorePoints {
		b.WriteString("- ")
		b.WriteString(p)
		b.WriteString("\n")
	}
	if len(best.Expert.CorePoints) > 0 {
		b.WriteString("\n")
	}
	if best.Expert.Details != "" {
		b.WriteString(best.Expert.Details)
		b.WriteString("\n\n")
	}
	b.WriteString(best.Expert.Conclusion)
	return strings.TrimSpace(b.String())
}

// finish persists the final answer and updated state, then emits done.
// A disconnected client skips it entirely: persisted round artifacts
// remain, but no final message or done event is produced.
func (o *Orchestrator) finish(ctx context.Context, req *Request, events chan<- Event, finalAnswer, reason string, iterations int, direct bool) {
	if ctx.Err() != nil {
		return
	}
	state := req.State
	state.TerminationReason = reason
	state.UpdatedAt = time.Now().UTC()

	msg := &models.Message{
		ConversationID: req.ConversationID,
		Role:           "assistant",
		Content:        finalAnswer,
		Model:          state.Models.Expert,
		Type:           models.MessageTypeFinal,
	}
	if direct {
		msg.Model = state.Models.Moderator
	}
	if err := o.store.AppendMessage(msg); err != nil {
		o.emitStorageError(ctx, events, err)
		return
	}

	// Refresh the sliding-window context for the next turn.
	if history, err := o.store.LoadMessages(req.ConversationID); err == nil {
		state.ConversationContext = conversation.BuildContext(history)
	}
	if err := o.store.WriteDebateState(req.ConversationID, state); err != nil {
		o.emitStorageError(ctx, events, err)
		return
	}

	o.emit(ctx, events, Event{
		Type:              EventDone,
		FinalAnswer:       finalAnswer,
		TerminationReason: reason,
		TotalIterations:   &iterations,
		WasDirectAnswer:   &direct,
	})
}

// callRole streams one role call and concatenates its text chunks.
// Thinking chunks are discarded; artifacts only parse the answer channel.
func (o *Orchestrator) callRole(ctx context.Context, modelID string, thinking bool, temperature float64, system, user string) (string, error) {
	provider, info, err := o.registry.Resolve(modelID)
	if err != nil {
		return "", err
	}

	req := &llm.ChatRequest{
		Model:       modelID,
		Temperature: temperature,
		JSONMode:    info.SupportsJSONMode,
		Thinking:    info.SupportsThinking && (thinking || info.ThinkingLocked),
		Messages: []llm.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	stream, err := provider.StreamChat(ctx, req)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for ev := range stream {
		switch ev.Type {
		case llm.StreamText:
			b.WriteString(ev.Text)
		case llm.StreamError:
			return b.String(), ev.Err
		}
	}
	return b.String(), nil
}

func (o *Orchestrator) persistArtifact(ctx context.Context, events chan<- Event, conversationID string, typ models.MessageType, iteration int, model string, artifact any) bool {
	raw, err := json.Marshal(artifact)
	if err != nil {
		o.emitStorageError(ctx, events, err)
		return false
	}
	msg := &models.Message{
		ConversationID: conversationID,
		Role:           "system",
		Content:        string(raw),
		Model:          model,
		Type:           typ,
		Iteration:      iteration,
	}
	if err := o.store.AppendMessage(msg); err != nil {
		o.emitStorageError(ctx, events, err)
		return false
	}
	return true
}

func (o *Orchestrator) emitStorageError(ctx context.Context, events chan<- Event, err error) {
	o.logger.WithError(err).Error("Debate persistence failed")
	o.emit(ctx, events, Event{Type: EventError, Error: err.Error(), ErrorKind: "storage"})
}

func (o *Orchestrator) emit(ctx context.Context, events chan<- Event, ev Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
