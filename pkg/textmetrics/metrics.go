// Package textmetrics derives structural facts about a piece of prose. Every
// component that reports sentence, paragraph or complexity counts goes through
// Compute so that analysis and analytics never disagree for the same text.
package textmetrics

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ComplexWordMinLength is the rune length a word must exceed to count as complex.
const ComplexWordMinLength = 6

// Metrics holds the structural metrics of a text.
type Metrics struct {
	WordCount         int     `json:"word_count"`
	SentenceCount     int     `json:"sentence_count"`
	ParagraphCount    int     `json:"paragraph_count"`
	AvgSentenceLength float64 `json:"avg_sentence_length"`
	ComplexWordCount  int     `json:"complex_word_count"`
	PassiveVoiceCount int     `json:"passive_voice_count"`
}

var passiveMarkers = []string{" was ", " were ", " been "}

// Compute derives all metrics from content.
func Compute(content string) Metrics {
	words := strings.Fields(content)
	sentences := Sentences(content)

	metrics := Metrics{
		WordCount:      len(words),
		SentenceCount:  len(sentences),
		ParagraphCount: ParagraphCount(content),
	}

	if metrics.SentenceCount > 0 {
		avg := float64(metrics.WordCount) / float64(metrics.SentenceCount)
		metrics.AvgSentenceLength = math.Round(avg*10) / 10
	}

	for _, word := range words {
		if isComplex(word) {
			metrics.ComplexWordCount++
		}
	}

	// Markers must sit inside the sentence; a leading "Was" does not count.
	for _, sentence := range sentences {
		for _, marker := range passiveMarkers {
			if strings.Contains(sentence, marker) {
				metrics.PassiveVoiceCount++
				break
			}
		}
	}

	return metrics
}

// WordCount returns the number of whitespace separated tokens.
func WordCount(content string) int {
	return len(strings.Fields(content))
}

// Sentences splits content on terminal punctuation and drops empty segments.
func Sentences(content string) []string {
	parts := strings.FieldsFunc(content, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}
	return sentences
}

// ParagraphCount counts non-empty lines, with a floor of one.
func ParagraphCount(content string) int {
	count := 0
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	if count < 1 {
		return 1
	}
	return count
}

func isComplex(word string) bool {
	trimmed := strings.TrimFunc(word, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
	return utf8.RuneCountInString(trimmed) > ComplexWordMinLength
}
