package textmetrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeCountsStructure(t *testing.T) {
	content := "I led the team. Results were delivered early!\n\nWhat did I learn? Patience."

	metrics := Compute(content)
	require.Equal(t, 13, metrics.WordCount)
	require.Equal(t, 4, metrics.SentenceCount)
	require.Equal(t, 2, metrics.ParagraphCount)
	require.InDelta(t, 3.3, metrics.AvgSentenceLength, 0.001)
	require.Equal(t, 1, metrics.PassiveVoiceCount)
	// Results, delivered, Patience.
	require.Equal(t, 3, metrics.ComplexWordCount)
}

func TestComputeEmptyContent(t *testing.T) {
	metrics := Compute("")
	require.Equal(t, 0, metrics.WordCount)
	require.Equal(t, 0, metrics.SentenceCount)
	require.Equal(t, 1, metrics.ParagraphCount)
	require.Zero(t, metrics.AvgSentenceLength)
}

func TestSentencesDropsEmptySegments(t *testing.T) {
	require.Equal(t, []string{"One", "Two", "Three"}, Sentences("One... Two?! Three."))
}

func TestPassiveVoiceNeedsMarkerInsideSentence(t *testing.T) {
	metrics := Compute("Was it worth it. It had been hard. They were kind")
	require.Equal(t, 2, metrics.PassiveVoiceCount)

	require.Zero(t, Compute("Mistakes were").PassiveVoiceCount)
	require.Zero(t, Compute("It WAS done").PassiveVoiceCount)
}

func TestParagraphCountIgnoresBlankLines(t *testing.T) {
	require.Equal(t, 3, ParagraphCount("a\n\n   \nb\nc\n"))
}
