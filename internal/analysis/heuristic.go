package analysis

import (
	"math"
	"strings"

	"github.com/noah-isme/gema-essay-api/pkg/textmetrics"
)

const (
	shortRatio        = 0.7
	overLimitRatio    = 1.05
	minParagraphs     = 3
	minAvgSentenceLen = 12
)

// Heuristic produces a deterministic raw analysis without any network access.
// The output is shaped like a model response so it can pass through Normalize.
func Heuristic(content string, wordCount, wordLimit int, degreeType string) map[string]interface{} {
	metrics := textmetrics.Compute(content)

	ratio := 0.0
	if wordLimit > 0 {
		ratio = float64(wordCount) / float64(wordLimit)
	}
	isMBA := strings.Contains(strings.ToLower(degreeType), "mba")

	suggestions := make([]interface{}, 0, 6)
	switch {
	case ratio < shortRatio:
		suggestions = append(suggestions, suggestion("fallback-length", SuggestionWarning, PriorityHigh,
			"Essay is below the target length",
			"The draft uses less than 70% of the word limit. Expand your key examples with concrete detail.",
			"Add one or two specific anecdotes that support your main argument."))
	case ratio > overLimitRatio:
		suggestions = append(suggestions, suggestion("fallback-over-limit", SuggestionCritical, PriorityHigh,
			"Essay exceeds the word limit",
			"The draft is more than 5% over the word limit. Admissions readers may stop reading or penalize the overrun.",
			"Cut repeated ideas and tighten long sentences until the essay fits the limit."))
	}

	if metrics.ParagraphCount < minParagraphs {
		suggestions = append(suggestions, suggestion("fallback-structure", SuggestionImprovement, PriorityMedium,
			"Break the essay into clearer paragraphs",
			"Fewer than three paragraphs makes the narrative hard to follow. Separate the introduction, body and conclusion.",
			""))
	}

	if metrics.AvgSentenceLength < minAvgSentenceLen {
		suggestions = append(suggestions, suggestion("fallback-variety", SuggestionImprovement, PriorityLow,
			"Vary your sentence length",
			"Most sentences are short. Combining some of them will improve the flow of the essay.",
			""))
	}

	if isMBA {
		suggestions = append(suggestions, suggestion("fallback-leadership", SuggestionImprovement, PriorityHigh,
			"Strengthen leadership examples",
			"MBA programs look for evidence of leadership. Describe a situation where you led others and the measurable result.",
			"Add a concrete leadership example with its outcome."))
	}

	suggestions = append(suggestions, suggestion("fallback-strength", SuggestionStrength, PriorityMedium,
		"Clear focus on the prompt",
		"The essay stays focused on the prompt, which gives it a solid foundation to build on.",
		""))

	sentenceBonus := 0.0
	if metrics.SentenceCount > 0 {
		sentenceBonus = 20
	}
	base := Clamp(ratio*30+float64(min(metrics.ParagraphCount, 5))*8+sentenceBonus+10, 40, 90)

	structure := base - 10
	if metrics.ParagraphCount >= minParagraphs {
		structure = base + 5
	}
	leadership := base - 15
	if isMBA {
		leadership = base
	}
	readability := base - 5
	if metrics.AvgSentenceLength >= minAvgSentenceLen && metrics.AvgSentenceLength <= 25 {
		readability = base + 5
	}

	return map[string]interface{}{
		"overallScore":            base,
		"structureScore":          structure,
		"contentRelevanceScore":   base + 10,
		"narrativeFlowScore":      base,
		"leadershipEmphasisScore": leadership,
		"specificityScore":        math.Max(30, base-20),
		"readabilityScore":        readability,
		"grammarIssues":           0,
		"suggestions":             suggestions,
	}
}

func suggestion(id, kind, priority, title, description, action string) map[string]interface{} {
	entry := map[string]interface{}{
		"id":          id,
		"type":        kind,
		"priority":    priority,
		"title":       title,
		"description": description,
	}
	if action != "" {
		entry["action"] = action
	}
	return entry
}
