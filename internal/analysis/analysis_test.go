package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func requireScoresInRange(t *testing.T, scores Scores) {
	t.Helper()
	for _, value := range []float64{
		scores.Overall, scores.Structure, scores.ContentRelevance, scores.NarrativeFlow,
		scores.LeadershipEmphasis, scores.Specificity, scores.Readability,
	} {
		require.GreaterOrEqual(t, value, 0.0)
		require.LessOrEqual(t, value, 100.0)
	}
}

func TestNormalizeNeverLeavesScoresOutOfRange(t *testing.T) {
	inputs := []interface{}{
		nil,
		map[string]interface{}{},
		"not an object",
		[]interface{}{1, 2, 3},
		map[string]interface{}{"overallScore": -40.0, "structureScore": 250.0, "readabilityScore": math.NaN()},
		map[string]interface{}{"overallScore": "abc", "specificityScore": math.Inf(1)},
	}

	for _, input := range inputs {
		result := Normalize(input, "Some content here.", 500)
		requireScoresInRange(t, result.Scores)
		require.NotNil(t, result.Suggestions)
	}
}

func TestNormalizeDefaultsAndClamps(t *testing.T) {
	result := Normalize(map[string]interface{}{
		"overallScore":     -5.0,
		"structureScore":   "77",
		"narrativeFlow":    101,
		"specificityScore": true,
	}, "", 500)

	require.Equal(t, 0.0, result.Scores.Overall)
	require.Equal(t, 77.0, result.Scores.Structure)
	require.Equal(t, 100.0, result.Scores.NarrativeFlow)
	require.Equal(t, 50.0, result.Scores.Specificity)
	require.Equal(t, 50.0, result.Scores.Readability)
	require.Empty(t, result.Suggestions)
}

func TestNormalizeRepairsSuggestions(t *testing.T) {
	longTitle := strings.Repeat("t", 120)
	result := Normalize(map[string]interface{}{
		"suggestions": []interface{}{
			map[string]interface{}{"type": "nitpick", "priority": "urgent", "title": longTitle},
			map[string]interface{}{"id": "keep", "type": "STRENGTH", "priority": "low", "title": "Good", "description": "Nice hook", "action": "Keep it"},
			"garbage",
		},
	}, "", 500)

	require.Len(t, result.Suggestions, 2)

	first := result.Suggestions[0]
	require.Equal(t, SuggestionImprovement, first.Type)
	require.Equal(t, PriorityMedium, first.Priority)
	require.Len(t, first.Title, 80)
	require.Equal(t, placeholderDescription, first.Description)
	require.NotEmpty(t, first.ID)

	second := result.Suggestions[1]
	require.Equal(t, "keep", second.ID)
	require.Equal(t, SuggestionStrength, second.Type)
	require.Equal(t, PriorityLow, second.Priority)
	require.Equal(t, "Keep it", second.Action)
}

func TestNormalizeIgnoresReportedStructure(t *testing.T) {
	content := "First sentence. Second sentence.\nThird one here."
	result := Normalize(map[string]interface{}{
		"sentenceCount":  99.0,
		"paragraphCount": 42.0,
		"grammarIssues":  3.0,
	}, content, 500)

	require.Equal(t, 3, result.Metrics.SentenceCount)
	require.Equal(t, 2, result.Metrics.ParagraphCount)
	require.Equal(t, 3, result.GrammarIssues)
}

func TestHeuristicShortEssay(t *testing.T) {
	content := "I led a team. We shipped."
	raw := Heuristic(content, 100, 500, "MSc Computer Science")

	// ratio 0.2: 6 + 1 paragraph*8 + 20 + 10.
	require.InDelta(t, 44.0, raw["overallScore"], 0.0001)

	result := Normalize(raw, content, 500)
	ids := suggestionIDs(result.Suggestions)
	require.Equal(t, []string{"fallback-length", "fallback-structure", "fallback-variety", "fallback-strength"}, ids)
	require.Equal(t, SuggestionWarning, result.Suggestions[0].Type)
	require.Equal(t, PriorityHigh, result.Suggestions[0].Priority)
	require.InDelta(t, 54.0, result.Scores.ContentRelevance, 0.0001)
	require.InDelta(t, 30.0, result.Scores.Specificity, 0.0001)
	require.InDelta(t, 29.0, result.Scores.LeadershipEmphasis, 0.0001)
}

func TestHeuristicOverLimitAndMBA(t *testing.T) {
	paragraph := "During my years at the firm I coordinated a cross functional group of analysts that rebuilt our pricing model from scratch."
	content := strings.Join([]string{paragraph, paragraph, paragraph, paragraph, paragraph, paragraph}, "\n")

	raw := Heuristic(content, 600, 500, "Executive MBA")
	result := Normalize(raw, content, 500)

	ids := suggestionIDs(result.Suggestions)
	require.Equal(t, []string{"fallback-over-limit", "fallback-leadership", "fallback-strength"}, ids)
	require.Equal(t, SuggestionCritical, result.Suggestions[0].Type)
	// 1.2*30 + 5*8 + 20 + 10 = 106, clamped to 90.
	require.InDelta(t, 90.0, result.Scores.Overall, 0.0001)
	require.InDelta(t, 90.0, result.Scores.LeadershipEmphasis, 0.0001)
	require.InDelta(t, 100.0, result.Scores.ContentRelevance, 0.0001)
}

func TestHeuristicAlwaysIncludesStrength(t *testing.T) {
	cases := []struct {
		content   string
		wordCount int
		limit     int
		degree    string
	}{
		{"", 0, 500, ""},
		{"Short.", 1, 0, "mba"},
		{"A reasonable essay body that is neither long nor short.", 460, 500, ""},
	}

	for _, tc := range cases {
		result := Normalize(Heuristic(tc.content, tc.wordCount, tc.limit, tc.degree), tc.content, tc.limit)
		found := false
		for _, s := range result.Suggestions {
			if s.Type == SuggestionStrength {
				found = true
			}
		}
		require.True(t, found)
		require.GreaterOrEqual(t, result.Scores.Overall, 40.0)
		requireScoresInRange(t, result.Scores)
	}
}

func TestHeuristicIsDeterministic(t *testing.T) {
	content := "One paragraph only. It is short."
	require.Equal(t, Heuristic(content, 6, 500, "MBA"), Heuristic(content, 6, 500, "MBA"))
}

func TestExtractJSONObject(t *testing.T) {
	text := "Here is the analysis:\n```json\n{\"overallScore\": 80, \"note\": \"uses {braces}\", \"nested\": {\"a\": 1}}\n```\nThanks!"
	span, err := ExtractJSONObject(text)
	require.NoError(t, err)
	require.Equal(t, "{\"overallScore\": 80, \"note\": \"uses {braces}\", \"nested\": {\"a\": 1}}", span)

	payload, err := ParseResponse(text)
	require.NoError(t, err)
	require.Equal(t, 80.0, payload["overallScore"])
}

func TestExtractJSONObjectFailures(t *testing.T) {
	_, err := ExtractJSONObject("no json here")
	require.ErrorIs(t, err, ErrNoJSONObject)

	_, err = ExtractJSONObject("{\"unterminated\": 1")
	require.ErrorIs(t, err, ErrNoJSONObject)

	_, err = ParseResponse("{not: valid}")
	require.Error(t, err)
}

func suggestionIDs(items []Suggestion) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}
