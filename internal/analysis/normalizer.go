// Package analysis turns raw essay critiques, from a language model or from
// local heuristics, into one canonical shape.
package analysis

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/noah-isme/gema-essay-api/pkg/textmetrics"
)

// Suggestion types.
const (
	SuggestionCritical    = "critical"
	SuggestionWarning     = "warning"
	SuggestionImprovement = "improvement"
	SuggestionStrength    = "strength"
)

// Suggestion priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

const (
	defaultScore           = 50.0
	maxTitleLength         = 80
	placeholderDescription = "No additional details were provided."
)

// Suggestion is a normalized piece of feedback.
type Suggestion struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Priority    string `json:"priority"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Action      string `json:"action,omitempty"`
}

// Scores groups the overall score and its six sub-scores, each in [0,100].
type Scores struct {
	Overall            float64 `json:"overall_score"`
	Structure          float64 `json:"structure_score"`
	ContentRelevance   float64 `json:"content_relevance_score"`
	NarrativeFlow      float64 `json:"narrative_flow_score"`
	LeadershipEmphasis float64 `json:"leadership_emphasis_score"`
	Specificity        float64 `json:"specificity_score"`
	Readability        float64 `json:"readability_score"`
}

// Result is the canonical analysis shape shared by every producer.
type Result struct {
	Scores        Scores              `json:"scores"`
	Metrics       textmetrics.Metrics `json:"metrics"`
	GrammarIssues int                 `json:"grammar_issues"`
	Suggestions   []Suggestion        `json:"suggestions"`
}

var scoreKeys = []struct {
	keys   []string
	target func(*Scores) *float64
}{
	{[]string{"overallScore", "overall_score"}, func(s *Scores) *float64 { return &s.Overall }},
	{[]string{"structureScore", "structure_score", "structure"}, func(s *Scores) *float64 { return &s.Structure }},
	{[]string{"contentRelevanceScore", "content_relevance_score", "contentRelevance"}, func(s *Scores) *float64 { return &s.ContentRelevance }},
	{[]string{"narrativeFlowScore", "narrative_flow_score", "narrativeFlow"}, func(s *Scores) *float64 { return &s.NarrativeFlow }},
	{[]string{"leadershipEmphasisScore", "leadership_emphasis_score", "leadershipEmphasis"}, func(s *Scores) *float64 { return &s.LeadershipEmphasis }},
	{[]string{"specificityScore", "specificity_score", "specificity"}, func(s *Scores) *float64 { return &s.Specificity }},
	{[]string{"readabilityScore", "readability_score", "readability"}, func(s *Scores) *float64 { return &s.Readability }},
}

// Normalize coerces an arbitrary payload into a Result. It never panics:
// missing or invalid scores become 50, every score is clamped to [0,100] and
// structural metrics are always derived from content rather than trusted.
func Normalize(raw interface{}, content string, wordLimit int) Result {
	payload, _ := raw.(map[string]interface{})

	result := Result{
		Metrics:     textmetrics.Compute(content),
		Suggestions: []Suggestion{},
	}

	for _, entry := range scoreKeys {
		value, ok := lookupNumber(payload, entry.keys...)
		if !ok {
			value = defaultScore
		}
		*entry.target(&result.Scores) = Clamp(value, 0, 100)
	}

	if issues, ok := lookupNumber(payload, "grammarIssues", "grammar_issues"); ok && issues > 0 {
		result.GrammarIssues = int(math.Round(issues))
	}

	if list, ok := payload["suggestions"].([]interface{}); ok {
		for _, item := range list {
			entry, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			result.Suggestions = append(result.Suggestions, normalizeSuggestion(entry))
		}
	}

	return result
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func normalizeSuggestion(entry map[string]interface{}) Suggestion {
	suggestion := Suggestion{
		ID:          strings.TrimSpace(stringField(entry, "id")),
		Type:        strings.ToLower(strings.TrimSpace(stringField(entry, "type"))),
		Priority:    strings.ToLower(strings.TrimSpace(stringField(entry, "priority"))),
		Title:       strings.TrimSpace(stringField(entry, "title")),
		Description: strings.TrimSpace(stringField(entry, "description")),
		Action:      strings.TrimSpace(stringField(entry, "action")),
	}

	if suggestion.ID == "" {
		suggestion.ID = uuid.NewString()
	}

	switch suggestion.Type {
	case SuggestionCritical, SuggestionWarning, SuggestionImprovement, SuggestionStrength:
	default:
		suggestion.Type = SuggestionImprovement
	}

	switch suggestion.Priority {
	case PriorityHigh, PriorityMedium, PriorityLow:
	default:
		suggestion.Priority = PriorityMedium
	}

	suggestion.Title = truncateRunes(suggestion.Title, maxTitleLength)
	if suggestion.Description == "" {
		suggestion.Description = placeholderDescription
	}

	return suggestion
}

func lookupNumber(payload map[string]interface{}, keys ...string) (float64, bool) {
	for _, key := range keys {
		value, exists := payload[key]
		if !exists {
			continue
		}
		if number, ok := toNumber(value); ok {
			return number, true
		}
	}
	return 0, false
}

func toNumber(value interface{}) (float64, bool) {
	var number float64
	switch v := value.(type) {
	case float64:
		number = v
	case float32:
		number = float64(v)
	case int:
		number = float64(v)
	case int64:
		number = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		number = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		number = parsed
	default:
		return 0, false
	}

	if math.IsNaN(number) || math.IsInf(number, 0) {
		return 0, false
	}
	return number, true
}

func stringField(entry map[string]interface{}, key string) string {
	if value, ok := entry[key].(string); ok {
		return value
	}
	return ""
}

func truncateRunes(value string, limit int) string {
	if utf8.RuneCountInString(value) <= limit {
		return value
	}
	runes := []rune(value)
	return string(runes[:limit])
}
