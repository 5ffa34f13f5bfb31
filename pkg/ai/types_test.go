package ai

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildEssayPromptIncludesContext(t *testing.T) {
	prompt := BuildEssayPrompt(EssayPromptInput{
		PromptTitle: "Leadership",
		PromptText:  "Describe a time you led a team.",
		WordLimit:   500,
		Program:     "Harvard",
		DegreeType:  "MBA",
		Content:     "I led a team of five engineers.",
	})

	require.Contains(t, prompt, "Describe a time you led a team.")
	require.Contains(t, prompt, "## Word Limit\n500")
	require.Contains(t, prompt, "Harvard MBA")
	require.Contains(t, prompt, "I led a team of five engineers.")
}

func TestBuildEssayPromptOmitsEmptyProgram(t *testing.T) {
	prompt := BuildEssayPrompt(EssayPromptInput{WordLimit: 500, Content: "text"})
	require.NotContains(t, prompt, "## Program")
}

func TestNewOpenAIGeneratorRequiresKey(t *testing.T) {
	_, err := NewOpenAIGenerator(OpenAIConfig{})
	require.Error(t, err)

	generator, err := NewOpenAIGenerator(OpenAIConfig{APIKey: "sk-test"})
	require.NoError(t, err)
	require.Equal(t, "openai:gpt-4o-mini", generator.Name())
}
