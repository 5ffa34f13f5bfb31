package ai

import (
	"context"
	"fmt"
	"strings"
)

// Generator is an opaque text model: prompt in, response text out.
// Implementations must return promptly once ctx is done; callers bound the
// wait with a context deadline and nothing else.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// EssayPromptInput carries what the model needs to critique an essay.
type EssayPromptInput struct {
	PromptTitle string
	PromptText  string
	WordLimit   int
	Program     string
	DegreeType  string
	Content     string
}

// BuildEssayPrompt renders the user message sent to the model.
func BuildEssayPrompt(input EssayPromptInput) string {
	builder := strings.Builder{}
	builder.WriteString("# Essay Prompt\n")
	if input.PromptTitle != "" {
		builder.WriteString(input.PromptTitle)
		builder.WriteString("\n")
	}
	builder.WriteString(input.PromptText)
	builder.WriteString(fmt.Sprintf("\n\n## Word Limit\n%d", input.WordLimit))
	if input.Program != "" || input.DegreeType != "" {
		builder.WriteString("\n\n## Program\n")
		builder.WriteString(strings.TrimSpace(input.Program + " " + input.DegreeType))
	}
	builder.WriteString("\n\n## Essay\n")
	builder.WriteString(input.Content)
	builder.WriteString("\n\nReturn JSON.")
	return builder.String()
}

func analysisSystemPrompt() string {
	return "You are an admissions essay reviewer. Respond with a single JSON object containing overallScore, " +
		"structureScore, contentRelevanceScore, narrativeFlowScore, leadershipEmphasisScore, specificityScore, " +
		"readabilityScore (each 0-100), grammarIssues (integer) and suggestions: an array of objects with type " +
		"(critical, warning, improvement or strength), priority (high, medium or low), title, description and an " +
		"optional action."
}
