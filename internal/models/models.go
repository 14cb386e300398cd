// Package models defines the shared domain records: conversations, stored
// messages, and the debate state with its per-role artifacts.
package models

import (
	"encoding/json"
	"time"
)

// Mode is the operating mode of a conversation.
type Mode string

const (
	ModeSimple Mode = "simple"
	ModeDebate Mode = "debate"
)

// Valid reports whether m is a known conversation mode.
func (m Mode) Valid() bool {
	return m == ModeSimple || m == ModeDebate
}

// MessageType discriminates stored messages beyond their chat role.
type MessageType string

const (
	MessageTypeUser       MessageType = "user"
	MessageTypeFinal      MessageType = "final_answer"
	MessageTypeModInit    MessageType = "moderator_init"
	MessageTypeModSynth   MessageType = "moderator_synthesize"
	MessageTypeExpert     MessageType = "expert_answer"
	MessageTypeCritic     MessageType = "critic_review"
	MessageTypeSystemNote MessageType = "system_note"
)

// IsDebateArtifact reports whether messages of this type carry an iteration
// number.
func (t MessageType) IsDebateArtifact() bool {
	switch t {
	case MessageTypeModSynth, MessageTypeExpert, MessageTypeCritic:
		return true
	}
	return false
}

// Conversation is the durable metadata row for one chat session.
type Conversation struct {
	ID           string                     `json:"id"`
	Model        string                     `json:"model"`
	Mode         Mode                       `json:"mode"`
	CreatedAt    time.Time                  `json:"created_at"`
	UpdatedAt    time.Time                  `json:"updated_at"`
	MessageCount int                        `json:"message_count"`
	Title        string                     `json:"title"`
	Metadata     map[string]json.RawMessage `json:"metadata,omitempty"`
}

// Message is one stored turn or debate artifact within a conversation.
// Iteration is 0 for non-debate messages.
type Message struct {
	Seq            int64           `json:"seq"`
	ConversationID string          `json:"conversation_id"`
	Role           string          `json:"role"`
	Content        string          `json:"content"`
	Timestamp      time.Time       `json:"timestamp"`
	Model          string          `json:"model,omitempty"`
	Type           MessageType     `json:"message_type,omitempty"`
	Iteration      int             `json:"iteration,omitempty"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
}

// RoleModels binds each debate role to a model id.
type RoleModels struct {
	Moderator string `json:"moderator"`
	Expert    string `json:"expert"`
	Critic    string `json:"critic"`
}

// ThinkingConfig toggles the reasoning channel per debate role.
type ThinkingConfig struct {
	Moderator bool `json:"moderator"`
	Expert    bool `json:"expert"`
	Critic    bool `json:"critic"`
}

// DebateConfig is the client-supplied configuration for debate mode.
type DebateConfig struct {
	Models         RoleModels     `json:"models"`
	MaxIterations  int            `json:"max_iterations"`
	ScoreThreshold float64        `json:"score_threshold"`
	Thinking       ThinkingConfig `json:"thinking"`
}

// Termination reasons for a debate run.
const (
	ReasonSimpleQuestion = "simple_question"
	ReasonExplicitPass   = "explicit_pass"
	ReasonScoreThreshold = "score_threshold"
	ReasonMaxIterations  = "max_iterations"
	ReasonConvergence    = "convergence"
)

// DebateState is the orchestrator state persisted inside a conversation's
// metadata across user turns.
type DebateState struct {
	Models              RoleModels        `json:"models"`
	MaxIterations       int               `json:"max_iterations"`
	ScoreThreshold      float64           `json:"score_threshold"`
	Thinking            ThinkingConfig    `json:"thinking"`
	Iterations          []IterationRecord `json:"iterations,omitempty"`
	ConversationContext string            `json:"conversation_context,omitempty"`
	PreviousSummary     string            `json:"previous_summary,omitempty"`
	Active              bool              `json:"active"`
	TerminationReason   string            `json:"termination_reason,omitempty"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

// ClampLimits normalizes the iteration and score bounds in place.
func (s *DebateState) ClampLimits() {
	if s.MaxIterations < 1 {
		s.MaxIterations = 1
	} else if s.MaxIterations > 10 {
		s.MaxIterations = 10
	}
	if s.ScoreThreshold < 50 {
		s.ScoreThreshold = 50
	} else if s.ScoreThreshold > 100 {
		s.ScoreThreshold = 100
	}
}

// IterationRecord captures one completed Expert→Critic→Moderator round.
type IterationRecord struct {
	Iteration int                 `json:"iteration"`
	Expert    *ExpertAnswer       `json:"expert,omitempty"`
	Review    *CriticReview       `json:"review,omitempty"`
	Synthesis *ModeratorSynthesis `json:"synthesis,omitempty"`
	Score     float64             `json:"score"`
	Decision  string              `json:"decision,omitempty"`
}

// Complexity levels assigned by the moderator.
const (
	ComplexitySimple   = "simple"
	ComplexityModerate = "moderate"
	ComplexityComplex  = "complex"
)

// Moderator init decisions.
const (
	DecisionDirectAnswer   = "direct_answer"
	DecisionDelegateExpert = "delegate_expert"
)

// ModeratorInit is the moderator's opening analysis of the user question.
type ModeratorInit struct {
	Intent           string   `json:"intent"`
	KeyConstraints   []string `json:"key_constraints"`
	Complexity       string   `json:"complexity"`
	ComplexityReason string   `json:"complexity_reason"`
	Decision         string   `json:"decision"`
	DirectAnswer     string   `json:"direct_answer,omitempty"`
}

// ExpertAnswer is the expert's structured answer for one round.
type ExpertAnswer struct {
	Understanding string   `json:"understanding"`
	CorePoints    []string `json:"core_points"`
	Details       string   `json:"details"`
	Conclusion    string   `json:"conclusion"`
	Confidence    float64  `json:"confidence"`
}

// Critic issue categories and severities.
const (
	IssueFactual      = "factual"
	IssueLogical      = "logical"
	IssueCompleteness = "completeness"
	IssueClarity      = "clarity"
	IssueOther        = "other"

	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// CriticIssue is one problem the critic found in an expert answer.
type CriticIssue struct {
	Category    string `json:"category"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Quote       string `json:"quote,omitempty"`
}

// CriticReview is the critic's structured verdict for one round.
type CriticReview struct {
	OverallScore float64       `json:"overall_score"`
	Passed       bool          `json:"passed"`
	Issues       []CriticIssue `json:"issues"`
	Strengths    []string      `json:"strengths"`
	Suggestions  []string      `json:"suggestions"`
}

// FeedbackValidation splits the critic's issues into accepted and rejected.
type FeedbackValidation struct {
	ValidIssues   []string `json:"valid_issues"`
	InvalidIssues []string `json:"invalid_issues"`
}

// Moderator synthesis decisions.
const (
	SynthesisEnd      = "end"
	SynthesisContinue = "continue"
)

// ModeratorSynthesis is the moderator's round verdict and guidance.
type ModeratorSynthesis struct {
	FeedbackValidation  FeedbackValidation `json:"feedback_validation"`
	Decision            string             `json:"decision"`
	ImprovementGuidance string             `json:"improvement_guidance,omitempty"`
	IterationSummary    string             `json:"iteration_summary"`
	TerminationReason   string             `json:"termination_reason,omitempty"`
}
