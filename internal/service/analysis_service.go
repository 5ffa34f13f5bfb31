package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-essay-api/internal/analysis"
	"github.com/noah-isme/gema-essay-api/internal/dto"
	"github.com/noah-isme/gema-essay-api/internal/models"
	"github.com/noah-isme/gema-essay-api/internal/observability"
	"github.com/noah-isme/gema-essay-api/internal/repository"
	"github.com/noah-isme/gema-essay-api/pkg/ai"
	"github.com/noah-isme/gema-essay-api/pkg/textmetrics"
)

const (
	orphanWordLimit   = 500
	heuristicProvider = "heuristic"
	unknownProvider   = "ai"
)

// Resolution tiers reported on the analysis outcome metric.
const (
	tierCache    = "cache"
	tierLive     = "live"
	tierStale    = "stale"
	tierFallback = "fallback"
	tierFailed   = "failed"
)

var errLiveUnavailable = errors.New("ai provider not configured")

// AnalysisService resolves analysis requests and exposes the audit history.
type AnalysisService interface {
	RequestAnalysis(ctx context.Context, userID, essayID uint, payload dto.AnalysisRequest) (dto.AnalysisResponse, error)
	History(ctx context.Context, userID, essayID uint, limit int) ([]dto.AnalysisResultResponse, error)
}

type analysisJob struct {
	userID    uint
	essay     models.Essay
	scope     repository.AnalysisScope
	content   string
	wordLimit int
	prompt    ai.EssayPromptInput
	started   time.Time
	liveErr   error
}

type analysisResolution struct {
	row          models.AIAnalysisResult
	cached       bool
	usedFallback bool
	tier         string
}

// analysisResolver is one step of the resolution chain. It reports false when
// the next step should be tried.
type analysisResolver func(ctx context.Context, job *analysisJob) (analysisResolution, bool)

type analysisService struct {
	essays    repository.EssayRepository
	versions  repository.EssayVersionRepository
	prompts   repository.EssayPromptRepository
	analyses  repository.AIAnalysisRepository
	generator ai.Generator
	provider  string
	events    *AnalysisEventPublisher
	policy    EssayPolicy
	validator *validator.Validate
	tracer    trace.Tracer
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAnalysisService constructs the analysis orchestrator. A nil generator
// disables the live tier; a nil events publisher disables event fan-out.
func NewAnalysisService(essays repository.EssayRepository, versions repository.EssayVersionRepository, prompts repository.EssayPromptRepository, analyses repository.AIAnalysisRepository, generator ai.Generator, events *AnalysisEventPublisher, policy EssayPolicy, validate *validator.Validate, logger zerolog.Logger) AnalysisService {
	provider := unknownProvider
	if named, ok := generator.(interface{ Name() string }); ok {
		provider = named.Name()
	}

	return &analysisService{
		essays:    essays,
		versions:  versions,
		prompts:   prompts,
		analyses:  analyses,
		generator: generator,
		provider:  provider,
		events:    events,
		policy:    policy.withDefaults(),
		validator: validate,
		tracer:    otel.Tracer("github.com/noah-isme/gema-essay-api/internal/service/analysis"),
		logger:    logger.With().Str("component", "analysis_service").Logger(),
		now:       utcNow,
	}
}

func (s *analysisService) RequestAnalysis(ctx context.Context, userID, essayID uint, payload dto.AnalysisRequest) (dto.AnalysisResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AnalysisResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "essay.analysis.request", trace.WithAttributes(
		attribute.Int64("essay_id", int64(essayID)),
	))
	defer span.End()

	job, err := s.prepare(ctx, userID, essayID, payload)
	if err != nil {
		span.RecordError(err)
		return dto.AnalysisResponse{}, err
	}

	var resolved analysisResolution
	found := false
	for _, resolve := range []analysisResolver{s.fromCache, s.fromLive, s.fromHeuristic} {
		if resolved, found = resolve(ctx, job); found {
			break
		}
	}
	if !found {
		resolved = s.failed(ctx, job, errors.New("no analysis tier produced a result"))
	}

	span.SetAttributes(attribute.String("tier", resolved.tier), attribute.Bool("cached", resolved.cached))
	observability.AnalysisOutcomes().WithLabelValues(resolved.tier).Inc()

	return dto.AnalysisResponse{
		Analysis:     dto.NewAnalysisResultResponse(resolved.row),
		Status:       resolved.row.Status,
		Cached:       resolved.cached,
		UsedFallback: resolved.usedFallback,
	}, nil
}

func (s *analysisService) History(ctx context.Context, userID, essayID uint, limit int) ([]dto.AnalysisResultResponse, error) {
	essay, err := ownedEssay(ctx, s.essays, userID, essayID)
	if err != nil {
		return nil, err
	}

	rows, err := s.analyses.ListByEssay(ctx, essay.ID, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AnalysisResultResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, dto.NewAnalysisResultResponse(row))
	}
	return responses, nil
}

func (s *analysisService) prepare(ctx context.Context, userID, essayID uint, payload dto.AnalysisRequest) (*analysisJob, error) {
	essay, err := ownedEssay(ctx, s.essays, userID, essayID)
	if err != nil {
		return nil, err
	}

	job := &analysisJob{
		userID:  userID,
		essay:   essay,
		scope:   repository.AnalysisScope{EssayID: essay.ID},
		started: time.Now(),
	}

	switch {
	case payload.VersionID != nil:
		version, err := s.versions.GetByID(ctx, *payload.VersionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrVersionNotFound
			}
			return nil, err
		}
		if version.EssayID != essay.ID {
			return nil, ErrVersionNotFound
		}
		versionID := version.ID
		job.scope.VersionID = &versionID
		job.content = version.Content
	case strings.TrimSpace(payload.Content) != "":
		job.content = payload.Content
	default:
		job.content = essay.Content
	}

	if utf8.RuneCountInString(strings.TrimSpace(job.content)) < s.policy.AnalysisMinChars {
		return nil, ErrContentTooShort
	}

	prompt, err := s.prompts.GetByID(ctx, essay.PromptID)
	switch {
	case err == nil:
		job.wordLimit = prompt.WordLimit
		job.prompt = ai.EssayPromptInput{
			PromptTitle: prompt.Title,
			PromptText:  prompt.PromptText,
			WordLimit:   prompt.WordLimit,
			Program:     prompt.Program,
			DegreeType:  prompt.DegreeType,
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		s.logger.Warn().Uint("essay_id", essay.ID).Uint("prompt_id", essay.PromptID).Msg("essay prompt missing, analysing with default word limit")
	default:
		return nil, err
	}

	if job.wordLimit <= 0 {
		job.wordLimit = orphanWordLimit
		job.prompt.WordLimit = orphanWordLimit
	}
	job.prompt.Content = job.content

	return job, nil
}

func (s *analysisService) fromCache(ctx context.Context, job *analysisJob) (analysisResolution, bool) {
	row, err := s.analyses.LatestCompleted(ctx, job.scope, s.now().Add(-s.policy.AnalysisFreshness))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn().Err(err).Uint("essay_id", job.essay.ID).Msg("analysis cache lookup failed")
		}
		return analysisResolution{}, false
	}
	return analysisResolution{row: row, cached: true, tier: tierCache}, true
}

func (s *analysisService) fromLive(ctx context.Context, job *analysisJob) (analysisResolution, bool) {
	result, err := s.generate(ctx, job)
	if err != nil {
		job.liveErr = err
		s.logger.Warn().Err(err).Uint("essay_id", job.essay.ID).Msg("live analysis unavailable")
		return s.fromStale(ctx, job)
	}

	row := s.buildRow(job, models.AnalysisStatusCompleted, s.provider, result)
	s.persist(ctx, job, &row)
	return analysisResolution{row: row, tier: tierLive}, true
}

func (s *analysisService) generate(ctx context.Context, job *analysisJob) (analysis.Result, error) {
	if s.generator == nil {
		return analysis.Result{}, errLiveUnavailable
	}

	callCtx, cancel := context.WithTimeout(ctx, s.policy.AITimeout)
	defer cancel()

	text, err := s.generator.Generate(callCtx, ai.BuildEssayPrompt(job.prompt))
	if err != nil {
		return analysis.Result{}, err
	}

	raw, err := analysis.ParseResponse(text)
	if err != nil {
		return analysis.Result{}, err
	}

	return analysis.Normalize(raw, job.content, job.wordLimit), nil
}

// fromStale serves the newest completed analysis regardless of age. The live
// failure is still recorded as a failed row.
func (s *analysisService) fromStale(ctx context.Context, job *analysisJob) (analysisResolution, bool) {
	row, err := s.analyses.LatestCompleted(ctx, job.scope, time.Time{})
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn().Err(err).Uint("essay_id", job.essay.ID).Msg("stale analysis lookup failed")
		}
		return analysisResolution{}, false
	}

	audit := s.failureRow(job, job.liveErr)
	s.persist(ctx, job, &audit)
	return analysisResolution{row: row, cached: true, tier: tierStale}, true
}

func (s *analysisService) fromHeuristic(ctx context.Context, job *analysisJob) (analysisResolution, bool) {
	metrics := textmetrics.Compute(job.content)
	if metrics.SentenceCount == 0 {
		cause := errors.New("heuristic analysis needs at least one sentence")
		if job.liveErr != nil {
			cause = fmt.Errorf("%w after live failure: %v", cause, job.liveErr)
		}
		return s.failed(ctx, job, cause), true
	}

	raw := analysis.Heuristic(job.content, metrics.WordCount, job.wordLimit, job.prompt.DegreeType)
	row := s.buildRow(job, models.AnalysisStatusFallback, heuristicProvider, analysis.Normalize(raw, job.content, job.wordLimit))
	if job.liveErr != nil {
		message := job.liveErr.Error()
		row.ErrorMessage = &message
	}

	s.persist(ctx, job, &row)
	return analysisResolution{row: row, usedFallback: true, tier: tierFallback}, true
}

func (s *analysisService) failed(ctx context.Context, job *analysisJob, cause error) analysisResolution {
	row := s.failureRow(job, cause)
	s.persist(ctx, job, &row)
	return analysisResolution{row: row, usedFallback: true, tier: tierFailed}
}

func (s *analysisService) buildRow(job *analysisJob, status, provider string, result analysis.Result) models.AIAnalysisResult {
	suggestions := make([]models.AnalysisSuggestion, 0, len(result.Suggestions))
	for _, suggestion := range result.Suggestions {
		suggestions = append(suggestions, models.AnalysisSuggestion{
			ID:          suggestion.ID,
			Type:        suggestion.Type,
			Priority:    suggestion.Priority,
			Title:       suggestion.Title,
			Description: suggestion.Description,
			Action:      suggestion.Action,
		})
	}

	return models.AIAnalysisResult{
		EssayID:                 job.essay.ID,
		EssayVersionID:          job.scope.VersionID,
		Status:                  status,
		OverallScore:            result.Scores.Overall,
		StructureScore:          result.Scores.Structure,
		ContentRelevanceScore:   result.Scores.ContentRelevance,
		NarrativeFlowScore:      result.Scores.NarrativeFlow,
		LeadershipEmphasisScore: result.Scores.LeadershipEmphasis,
		SpecificityScore:        result.Scores.Specificity,
		ReadabilityScore:        result.Scores.Readability,
		SentenceCount:           result.Metrics.SentenceCount,
		ParagraphCount:          result.Metrics.ParagraphCount,
		AvgSentenceLength:       result.Metrics.AvgSentenceLength,
		ComplexWordCount:        result.Metrics.ComplexWordCount,
		PassiveVoiceCount:       result.Metrics.PassiveVoiceCount,
		GrammarIssues:           result.GrammarIssues,
		Suggestions:             suggestions,
		Provider:                provider,
	}
}

func (s *analysisService) failureRow(job *analysisJob, cause error) models.AIAnalysisResult {
	message := "analysis failed"
	if cause != nil {
		message = cause.Error()
	}
	return models.AIAnalysisResult{
		EssayID:        job.essay.ID,
		EssayVersionID: job.scope.VersionID,
		Status:         models.AnalysisStatusFailed,
		Suggestions:    []models.AnalysisSuggestion{},
		Provider:       s.provider,
		ErrorMessage:   &message,
	}
}

// persist stamps and stores a row. A failed write is logged and the row is
// still returned to the caller.
func (s *analysisService) persist(ctx context.Context, job *analysisJob, row *models.AIAnalysisResult) {
	row.ProcessingTimeMs = time.Since(job.started).Milliseconds()
	row.CreatedAt = s.now()

	if err := s.analyses.Create(ctx, row); err != nil {
		s.logger.Error().Err(err).Uint("essay_id", job.essay.ID).Str("status", row.Status).Msg("failed to persist analysis result")
		return
	}

	s.events.Recorded(job.userID, *row)
}
