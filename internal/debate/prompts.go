package debate

import (
	"fmt"
	"strings"

	"github.com/TanyuSylvain/unify-llm/internal/models"
)

const moderatorInitSystem = `You are the moderator of an expert debate. Analyze the user's question and decide how to handle it.

Respond with ONLY a JSON object in this exact shape:
{
  "intent": "what the user actually wants",
  "key_constraints": ["constraint 1", "constraint 2"],
  "complexity": "simple" | "moderate" | "complex",
  "complexity_reason": "one sentence",
  "decision": "direct_answer" | "delegate_expert",
  "direct_answer": "complete answer, required when decision is direct_answer"
}

Choose direct_answer only for trivial factual questions or greetings that need no expert analysis. Everything else is delegate_expert.`

const expertSystem = `You are the expert in a moderated debate. Give your best complete answer to the user's question.

Respond with ONLY a JSON object in this exact shape:
{
  "understanding": "your reading of the question",
  "core_points": ["point 1", "point 2"],
  "details": "full explanation",
  "conclusion": "concise final answer",
  "confidence": 0.0-1.0
}`

const criticSystem = `You are the critic in a moderated debate. Review the expert's answer rigorously.

Respond with ONLY a JSON object in this exact shape:
{
  "overall_score": 0-100,
  "passed": true | false,
  "issues": [{"category": "factual"|"logical"|"completeness"|"clarity"|"other", "severity": "low"|"medium"|"high", "description": "what is wrong", "quote": "offending text"}],
  "strengths": ["what works"],
  "suggestions": ["how to improve"]
}

Set passed to true only when the answer has no medium or high severity issues.`

const moderatorSynthSystem = `You are the moderator of an expert debate. Judge this round: weigh the critic's issues against the expert's answer and decide whether another round would materially improve it.

Respond with ONLY a JSON object in this exact shape:
{
  "feedback_validation": {"valid_issues": ["..."], "invalid_issues": ["..."]},
  "decision": "end" | "continue",
  "improvement_guidance": "concrete instructions for the expert, required when decision is continue",
  "iteration_summary": "one paragraph summary of this round"
}`

func moderatorInitPrompt(question, conversationContext string) string {
	var b strings.Builder
	if conversationContext != "" {
		b.WriteString("Conversation so far:\n")
		b.WriteString(conversationContext)
		b.WriteString("\n\n")
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	return b.String()
}

func expertPrompt(question, conversationContext string, iteration int, prevReview *models.CriticReview, guidance string) string {
	var b strings.Builder
	if conversationContext != "" {
		b.WriteString("Conversation so far:\n")
		b.WriteString(conversationContext)
		b.WriteString("\n\n")
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	if iteration > 1 && prevReview != nil {
		b.WriteString("\n\nYour previous answer was reviewed. Issues raised:\n")
		for _, issue := range prevReview.Issues {
			fmt.Fprintf(&b, "- [%s/%s] %s\n", issue.Category, issue.Severity, issue.Description)
		}
		if guidance != "" {
			b.WriteString("\nModerator guidance: ")
			b.WriteString(guidance)
		}
		b.WriteString("\nProduce a revised answer that resolves the valid issues.")
	}
	return b.String()
}

func criticPrompt(question string, answer *models.ExpertAnswer) string {
	var b strings.Builder
	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\n\nExpert answer to review:\n")
	fmt.Fprintf(&b, "Understanding: %s\n", answer.Understanding)
	if len(answer.CorePoints) > 0 {
		b.WriteString("Core points:\n")
		for _, p := range answer.CorePoints {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}
	fmt.Fprintf(&b, "Details: %s\n", answer.Details)
	fmt.Fprintf(&b, "Conclusion: %s\n", answer.Conclusion)
	return b.String()
}

func moderatorSynthPrompt(question string, iteration, maxIterations int, scoreThreshold float64, answer *models.ExpertAnswer, review *models.CriticReview) string {
	var b strings.Builder
	b.WriteString("Question: ")
	b.WriteString(question)
	fmt.Fprintf(&b, "\n\nRound %d of at most %d. Score threshold: %.0f.\n", iteration, maxIterations, scoreThreshold)
	fmt.Fprintf(&b, "\nExpert conclusion: %s\n", answer.Conclusion)
	fmt.Fprintf(&b, "Critic score: %.0f, passed: %t\n", review.OverallScore, review.Passed)
	if len(review.Issues) > 0 {
		b.WriteString("Critic issues:\n")
		for _, issue := range review.Issues {
			fmt.Fprintf(&b, "- [%s/%s] %s\n", issue.Category, issue.Severity, issue.Description)
		}
	}
	return b.String()
}
