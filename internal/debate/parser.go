package debate

import (
	"encoding/json"
	"strings"

	"github.com/TanyuSylvain/unify-llm/internal/models"
)

// Models emit JSON wrapped in prose, code fences, or with minor syntax
// slips. The parser extracts the outermost balanced object, tries a strict
// decode, then a repaired decode, and finally falls back to a minimal valid
// artifact so a bad model turn never aborts the debate.

// extractJSON returns the outermost balanced {...} span in text, or ""
// when none exists. Braces inside JSON strings are ignored.
func extractJSON(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

// repairJSON applies bounded fixes for the slips models actually make:
// trailing commas, smart quotes, and // line comments.
func repairJSON(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	runes := []rune(raw)
	inString := false
	escaped := false
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if inString {
			switch {
			case escaped:
				b.WriteRune(r)
				escaped = false
			case r == '\\':
				b.WriteRune(r)
				escaped = true
			case r == '"':
				b.WriteRune(r)
				inString = false
			case r == '“' || r == '”':
				b.WriteRune('"')
				inString = false
			default:
				b.WriteRune(r)
			}
			continue
		}
		switch r {
		case '"':
			inString = true
			b.WriteRune(r)
		case '“', '”':
			b.WriteRune('"')
			inString = true
		case '/':
			if i+1 < len(runes) && runes[i+1] == '/' {
				for i < len(runes) && runes[i] != '\n' {
					i++
				}
				if i < len(runes) {
					b.WriteRune('\n')
				}
				continue
			}
			b.WriteRune(r)
		case ',':
			j := i + 1
			for j < len(runes) && (runes[j] == ' ' || runes[j] == '\t' || runes[j] == '\n' || runes[j] == '\r') {
				j++
			}
			if j < len(runes) && (runes[j] == '}' || runes[j] == ']') {
				continue
			}
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// decode extracts and unmarshals the JSON object in text into v.
func decode(text string, v any) bool {
	span := extractJSON(text)
	if span == "" {
		return false
	}
	if json.Unmarshal([]byte(span), v) == nil {
		return true
	}
	return json.Unmarshal([]byte(repairJSON(span)), v) == nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// rawSnippet trims text for use inside fallback artifacts.
func rawSnippet(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) > 2000 {
		return string(runes[:2000]) + "..."
	}
	return text
}

// ParseModeratorInit decodes the moderator's opening analysis. The second
// return value reports whether the model's JSON was usable; on failure the
// fallback delegates to the expert so the debate proceeds.
func ParseModeratorInit(text string) (*models.ModeratorInit, bool) {
	var out models.ModeratorInit
	if decode(text, &out) && out.Decision != "" {
		switch out.Complexity {
		case models.ComplexitySimple, models.ComplexityModerate, models.ComplexityComplex:
		default:
			out.Complexity = models.ComplexityModerate
		}
		switch out.Decision {
		case models.DecisionDirectAnswer:
			if out.DirectAnswer == "" {
				out.Decision = models.DecisionDelegateExpert
			}
		case models.DecisionDelegateExpert:
		default:
			out.Decision = models.DecisionDelegateExpert
		}
		return &out, true
	}
	return &models.ModeratorInit{
		Intent:     rawSnippet(text),
		Complexity: models.ComplexityModerate,
		Decision:   models.DecisionDelegateExpert,
	}, false
}

// ParseExpertAnswer decodes an expert round. Fallback keeps the raw text
// as the answer with middling confidence.
func ParseExpertAnswer(text string) (*models.ExpertAnswer, bool) {
	var out models.ExpertAnswer
	if decode(text, &out) && out.Conclusion != "" {
		out.Confidence = clamp(out.Confidence, 0, 1)
		return &out, true
	}
	raw := rawSnippet(text)
	return &models.ExpertAnswer{
		Understanding: raw,
		Conclusion:    raw,
		Confidence:    0.5,
	}, false
}

// ParseCriticReview decodes a critic round. Fallback scores zero with one
// high-severity issue naming the failure, which keeps the round from
// passing on garbage.
func ParseCriticReview(text string) (*models.CriticReview, bool) {
	var out models.CriticReview
	if decode(text, &out) && (out.OverallScore != 0 || out.Passed || len(out.Issues) > 0 || len(out.Strengths) > 0) {
		out.OverallScore = clamp(out.OverallScore, 0, 100)
		for i := range out.Issues {
			issue := &out.Issues[i]
			switch issue.Category {
			case models.IssueFactual, models.IssueLogical, models.IssueCompleteness, models.IssueClarity, models.IssueOther:
			default:
				issue.Category = models.IssueOther
			}
			switch issue.Severity {
			case models.SeverityLow, models.SeverityMedium, models.SeverityHigh:
			default:
				issue.Severity = models.SeverityMedium
			}
		}
		return &out, true
	}
	return &models.CriticReview{
		OverallScore: 0,
		Passed:       false,
		Issues: []models.CriticIssue{{
			Category:    models.IssueOther,
			Severity:    models.SeverityHigh,
			Description: "critic response was not valid structured output",
		}},
	}, false
}

// ParseModeratorSynthesis decodes the moderator's round verdict. Fallback
// continues the debate with synthetic guidance.
func ParseModeratorSynthesis(text string) (*models.ModeratorSynthesis, bool) {
	var out models.ModeratorSynthesis
	if decode(text, &out) && (out.Decision == models.SynthesisEnd || out.Decision == models.SynthesisContinue) {
		if out.Decision == models.SynthesisContinue && out.ImprovementGuidance == "" {
			out.ImprovementGuidance = "Address the critic's issues and tighten the answer."
		}
		return &out, true
	}
	return &models.ModeratorSynthesis{
		Decision:            models.SynthesisContinue,
		ImprovementGuidance: "Address the critic's issues and tighten the answer.",
		IterationSummary:    rawSnippet(text),
	}, false
}
