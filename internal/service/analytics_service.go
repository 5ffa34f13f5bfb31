package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-essay-api/internal/dto"
	"github.com/noah-isme/gema-essay-api/internal/models"
	"github.com/noah-isme/gema-essay-api/internal/repository"
	"github.com/noah-isme/gema-essay-api/pkg/textmetrics"
)

const (
	readingWordsPerMinute = 200
	progressCacheKey      = "essay:progress:user:%d"
)

// EssayAnalyticsService computes read-only essay analytics on demand.
type EssayAnalyticsService interface {
	GetAnalytics(ctx context.Context, userID, essayID uint) (dto.EssayAnalyticsResponse, error)
	GetProgress(ctx context.Context, userID uint) (dto.EssayProgressResponse, error)
	InvalidateProgress(ctx context.Context, userID uint)
}

type essayAnalyticsService struct {
	essays   repository.EssayRepository
	prompts  repository.EssayPromptRepository
	versions repository.EssayVersionRepository
	analyses repository.AIAnalysisRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewEssayAnalyticsService builds the analytics aggregator. cache may be nil.
func NewEssayAnalyticsService(essays repository.EssayRepository, prompts repository.EssayPromptRepository, versions repository.EssayVersionRepository, analyses repository.AIAnalysisRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) EssayAnalyticsService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &essayAnalyticsService{
		essays:   essays,
		prompts:  prompts,
		versions: versions,
		analyses: analyses,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "essay_analytics_service").Logger(),
		now:      utcNow,
	}
}

func (s *essayAnalyticsService) GetAnalytics(ctx context.Context, userID, essayID uint) (dto.EssayAnalyticsResponse, error) {
	essay, err := ownedEssay(ctx, s.essays, userID, essayID)
	if err != nil {
		return dto.EssayAnalyticsResponse{}, err
	}

	response := dto.EssayAnalyticsResponse{EssayID: essay.ID}

	prompt, err := s.prompts.GetByID(ctx, essay.PromptID)
	switch {
	case err == nil && prompt.WordLimit > 0:
		response.Completion = dto.CompletionAnalytics{
			Percentage:     CompletionPercentage(essay.WordCount, prompt.WordLimit),
			WordCount:      essay.WordCount,
			WordLimit:      prompt.WordLimit,
			WordsRemaining: max(0, prompt.WordLimit-essay.WordCount),
		}
	case err == nil || errors.Is(err, gorm.ErrRecordNotFound):
		response.Orphaned = true
		response.Completion = dto.CompletionAnalytics{WordCount: essay.WordCount}
	default:
		return dto.EssayAnalyticsResponse{}, err
	}

	response.Timing = s.timing(essay)

	metrics := textmetrics.Compute(essay.Content)
	response.Structure = dto.StructureAnalytics{
		SentenceCount:     metrics.SentenceCount,
		ParagraphCount:    metrics.ParagraphCount,
		AvgSentenceLength: metrics.AvgSentenceLength,
	}

	stats, err := s.versions.Stats(ctx, essay.ID)
	if err != nil {
		return dto.EssayAnalyticsResponse{}, err
	}
	analyzed, err := s.analyses.CountAnalyzedVersions(ctx, essay.ID)
	if err != nil {
		return dto.EssayAnalyticsResponse{}, err
	}
	response.Versions = dto.VersionAnalytics{
		Total:        stats.Total,
		Auto:         stats.Auto,
		Manual:       stats.Manual,
		WithAnalysis: analyzed,
	}

	latest, err := s.versions.Latest(ctx, essay.ID)
	switch {
	case err == nil:
		recent := dto.NewEssayVersionResponse(latest)
		response.Versions.MostRecent = &recent
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return dto.EssayAnalyticsResponse{}, err
	}

	return response, nil
}

func (s *essayAnalyticsService) timing(essay models.Essay) dto.TimingAnalytics {
	elapsed := s.now().Sub(essay.CreatedAt)
	days := int(math.Ceil(elapsed.Hours() / 24))
	if days < 1 {
		days = 1
	}

	return dto.TimingAnalytics{
		ReadingTimeMinutes: int(math.Ceil(float64(essay.WordCount) / readingWordsPerMinute)),
		DaysSinceStart:     days,
		WritingVelocity:    int(math.Round(float64(essay.WordCount) / float64(days))),
	}
}

func (s *essayAnalyticsService) GetProgress(ctx context.Context, userID uint) (dto.EssayProgressResponse, error) {
	cacheKey := fmt.Sprintf(progressCacheKey, userID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.EssayProgressResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("user_id", userID).Msg("progress cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read progress cache")
		}
	}

	essays, err := s.essays.ListByUser(ctx, userID)
	if err != nil {
		return dto.EssayProgressResponse{}, err
	}

	promptIDs := make([]uint, 0, len(essays))
	for _, essay := range essays {
		promptIDs = append(promptIDs, essay.PromptID)
	}
	prompts, err := s.prompts.GetByIDs(ctx, promptIDs)
	if err != nil {
		return dto.EssayProgressResponse{}, err
	}

	response := buildProgress(essays, prompts)

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store progress cache")
			}
		}
	}

	return response, nil
}

// buildProgress averages completion over essays with a resolvable prompt.
// Orphaned essays are counted separately and kept out of the average.
func buildProgress(essays []models.Essay, prompts map[uint]models.EssayPrompt) dto.EssayProgressResponse {
	response := dto.EssayProgressResponse{TotalEssays: len(essays)}

	var completionTotal float64
	evaluated := 0
	for _, essay := range essays {
		response.TotalWords += essay.WordCount

		switch essay.Status {
		case models.EssayStatusCompleted:
			response.CompletedEssays++
		case models.EssayStatusInProgress:
			response.InProgressEssays++
		default:
			response.DraftEssays++
		}

		prompt, ok := prompts[essay.PromptID]
		if !ok || prompt.WordLimit <= 0 {
			response.Orphaned++
			continue
		}
		completionTotal += CompletionPercentage(essay.WordCount, prompt.WordLimit)
		evaluated++
	}

	if evaluated > 0 {
		response.AverageCompletion = math.Round(completionTotal/float64(evaluated)*100) / 100
	}
	return response
}

func (s *essayAnalyticsService) InvalidateProgress(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, fmt.Sprintf(progressCacheKey, userID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to invalidate progress cache")
	}
}
