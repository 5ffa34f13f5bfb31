package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-essay-api/internal/analysis"
	"github.com/noah-isme/gema-essay-api/internal/models"
	"github.com/noah-isme/gema-essay-api/internal/observability"
	"github.com/noah-isme/gema-essay-api/internal/repository"
)

// CompletionOutcome is the result of evaluating an essay mutation.
type CompletionOutcome struct {
	Essay       models.Essay
	Changed     bool
	IsCompleted bool
}

// CompletionEvaluator derives completion percentage and status from word count.
// Every content update goes through Evaluate before it is persisted.
type CompletionEvaluator struct {
	prompts   repository.EssayPromptRepository
	events    repository.CompletionEventWriter
	threshold float64
	logger    zerolog.Logger
	now       func() time.Time
}

// NewCompletionEvaluator constructs the evaluator.
func NewCompletionEvaluator(prompts repository.EssayPromptRepository, events repository.CompletionEventWriter, threshold float64, logger zerolog.Logger) *CompletionEvaluator {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultEssayPolicy().CompletionThreshold
	}
	return &CompletionEvaluator{
		prompts:   prompts,
		events:    events,
		threshold: threshold,
		logger:    logger.With().Str("component", "completion_evaluator").Logger(),
		now:       utcNow,
	}
}

// Evaluate applies newWordCount (and content when non-nil) to a copy of essay
// and recomputes completion. It returns ErrNotEvaluable when the word limit
// cannot be resolved; the essay is then left untouched.
func (e *CompletionEvaluator) Evaluate(ctx context.Context, essay models.Essay, newWordCount int, newContent *string) (CompletionOutcome, error) {
	prompt, err := e.prompts.GetByID(ctx, essay.PromptID)
	if err != nil {
		return CompletionOutcome{Essay: essay, IsCompleted: essay.IsCompleted}, fmt.Errorf("%w: %v", ErrNotEvaluable, err)
	}
	if prompt.WordLimit <= 0 {
		return CompletionOutcome{Essay: essay, IsCompleted: essay.IsCompleted}, fmt.Errorf("%w: prompt %d has no word limit", ErrNotEvaluable, prompt.ID)
	}

	if newWordCount < 0 {
		newWordCount = 0
	}

	now := e.now()
	updated := essay
	updated.WordCount = newWordCount
	if newContent != nil {
		updated.Content = *newContent
	}
	updated.LastModified = now
	updated.CompletionPercentage = CompletionPercentage(newWordCount, prompt.WordLimit)

	ratio := float64(newWordCount) / float64(prompt.WordLimit)
	changed := false

	switch {
	case ratio >= e.threshold && !essay.IsCompleted:
		completedAt := now
		updated.IsCompleted = true
		updated.CompletedAt = &completedAt
		updated.Status = models.EssayStatusCompleted
		changed = true

		event := models.CompletionEvent{
			EssayID:               essay.ID,
			UserID:                essay.UserID,
			WordCountAtCompletion: newWordCount,
			WordLimit:             prompt.WordLimit,
			CompletionMethod:      models.CompletionMethodAuto,
			Timestamp:             now,
		}
		if err := e.events.Append(ctx, &event); err != nil {
			e.logger.Error().Err(err).Uint("essay_id", essay.ID).Msg("failed to append completion event")
		}
		observability.CompletionTransitions().WithLabelValues("completed").Inc()
		e.logger.Info().Uint("essay_id", essay.ID).Int("word_count", newWordCount).Msg("essay marked complete")

	case ratio < e.threshold && essay.IsCompleted:
		updated.IsCompleted = false
		updated.CompletedAt = nil
		updated.Status = statusForWordCount(newWordCount)
		changed = true

		observability.CompletionTransitions().WithLabelValues("reopened").Inc()
		e.logger.Info().Uint("essay_id", essay.ID).Int("word_count", newWordCount).Msg("essay completion cleared")

	case !essay.IsCompleted:
		updated.Status = statusForWordCount(newWordCount)
	}

	return CompletionOutcome{Essay: updated, Changed: changed, IsCompleted: updated.IsCompleted}, nil
}

// CompletionPercentage returns wordCount/wordLimit as a percentage in [0,100].
func CompletionPercentage(wordCount, wordLimit int) float64 {
	if wordLimit <= 0 {
		return 0
	}
	return analysis.Clamp(float64(wordCount)/float64(wordLimit)*100, 0, 100)
}

func statusForWordCount(wordCount int) string {
	if wordCount > 0 {
		return models.EssayStatusInProgress
	}
	return models.EssayStatusDraft
}
