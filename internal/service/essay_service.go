package service

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-essay-api/internal/dto"
	"github.com/noah-isme/gema-essay-api/internal/models"
	"github.com/noah-isme/gema-essay-api/internal/observability"
	"github.com/noah-isme/gema-essay-api/internal/repository"
	"github.com/noah-isme/gema-essay-api/pkg/textmetrics"
)

const (
	versionKindSave    = "save"
	versionKindAuto    = "auto"
	versionKindManual  = "manual"
	versionKindRestore = "restore"
)

// EssayService exposes the essay content and version workflows.
type EssayService interface {
	SaveContent(ctx context.Context, userID uint, payload dto.EssaySaveRequest) (dto.EssaySaveResponse, error)
	AutoSave(ctx context.Context, userID uint, payload dto.EssaySaveRequest) (dto.EssaySaveResponse, error)
	SaveVersion(ctx context.Context, userID, essayID uint, payload dto.EssayVersionCreateRequest) (dto.EssaySaveResponse, error)
	RestoreVersion(ctx context.Context, userID, essayID, versionID uint) (dto.EssaySaveResponse, error)
	DeleteVersion(ctx context.Context, userID, essayID, versionID uint) error
	Get(ctx context.Context, userID, essayID uint) (dto.EssayDetailResponse, error)
	ListVersions(ctx context.Context, userID, essayID uint, limit int) ([]dto.EssayVersionResponse, error)
}

// ProgressInvalidator drops cached cross-essay progress for a user.
type ProgressInvalidator interface {
	InvalidateProgress(ctx context.Context, userID uint)
}

type essayService struct {
	essays      repository.EssayRepository
	versions    repository.EssayVersionRepository
	analyses    repository.AIAnalysisRepository
	events      repository.CompletionEventRepository
	prompts     repository.EssayPromptRepository
	completion  *CompletionEvaluator
	snapshots   SnapshotPolicy
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	invalidator ProgressInvalidator
	logger      zerolog.Logger
	now         func() time.Time
}

// NewEssayService constructs the essay workflow service. invalidator may be nil.
func NewEssayService(essays repository.EssayRepository, versions repository.EssayVersionRepository, analyses repository.AIAnalysisRepository, events repository.CompletionEventRepository, prompts repository.EssayPromptRepository, policy EssayPolicy, validate *validator.Validate, invalidator ProgressInvalidator, logger zerolog.Logger) EssayService {
	policy = policy.withDefaults()
	return &essayService{
		essays:      essays,
		versions:    versions,
		analyses:    analyses,
		events:      events,
		prompts:     prompts,
		completion:  NewCompletionEvaluator(prompts, events, policy.CompletionThreshold, logger),
		snapshots:   NewSnapshotPolicy(policy),
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		invalidator: invalidator,
		logger:      logger.With().Str("component", "essay_service").Logger(),
		now:         utcNow,
	}
}

func (s *essayService) SaveContent(ctx context.Context, userID uint, payload dto.EssaySaveRequest) (dto.EssaySaveResponse, error) {
	return s.save(ctx, userID, payload, false)
}

func (s *essayService) AutoSave(ctx context.Context, userID uint, payload dto.EssaySaveRequest) (dto.EssaySaveResponse, error) {
	return s.save(ctx, userID, payload, true)
}

func (s *essayService) save(ctx context.Context, userID uint, payload dto.EssaySaveRequest, autoSave bool) (dto.EssaySaveResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EssaySaveResponse{}, err
	}

	essay, err := s.findOrCreate(ctx, userID, payload.PromptID)
	if err != nil {
		return dto.EssaySaveResponse{}, err
	}

	updated, evaluated, changed := s.applyContent(ctx, essay, payload.Content)
	if autoSave {
		savedAt := updated.LastModified
		updated.LastAutoSaved = &savedAt
	}
	if err := s.essays.Update(ctx, &updated); err != nil {
		return dto.EssaySaveResponse{}, err
	}

	last, err := s.latestVersion(ctx, updated.ID)
	if err != nil {
		return dto.EssaySaveResponse{}, err
	}

	response := dto.EssaySaveResponse{
		Essay:               dto.NewEssayResponse(updated),
		CompletionEvaluated: evaluated,
		CompletionChanged:   changed,
	}

	if s.snapshots.ShouldSnapshot(last, updated.WordCount, updated.Content, false) {
		label, kind := SaveLabel(s.now()), versionKindSave
		if autoSave {
			label, kind = AutoSaveLabel(s.now()), versionKindAuto
		}
		version, err := s.createVersion(ctx, updated, last, label, autoSave, kind)
		if err != nil {
			return dto.EssaySaveResponse{}, err
		}
		versionResponse := dto.NewEssayVersionResponse(version)
		response.Version = &versionResponse
		response.VersionCreated = true
	} else {
		s.logger.Debug().Uint("essay_id", updated.ID).Int("word_count", updated.WordCount).Msg("snapshot skipped")
	}

	s.invalidate(ctx, userID)
	return response, nil
}

func (s *essayService) SaveVersion(ctx context.Context, userID, essayID uint, payload dto.EssayVersionCreateRequest) (dto.EssaySaveResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EssaySaveResponse{}, err
	}

	essay, err := ownedEssay(ctx, s.essays, userID, essayID)
	if err != nil {
		return dto.EssaySaveResponse{}, err
	}

	response := dto.EssaySaveResponse{}
	if payload.Content != nil {
		updated, evaluated, changed := s.applyContent(ctx, essay, *payload.Content)
		if err := s.essays.Update(ctx, &updated); err != nil {
			return dto.EssaySaveResponse{}, err
		}
		essay = updated
		response.CompletionEvaluated = evaluated
		response.CompletionChanged = changed
		s.invalidate(ctx, userID)
	}

	last, err := s.latestVersion(ctx, essay.ID)
	if err != nil {
		return dto.EssaySaveResponse{}, err
	}

	label := ManualLabel(s.sanitizeLabel(payload.Label), s.now())
	version, err := s.createVersion(ctx, essay, last, label, false, versionKindManual)
	if err != nil {
		return dto.EssaySaveResponse{}, err
	}

	versionResponse := dto.NewEssayVersionResponse(version)
	response.Essay = dto.NewEssayResponse(essay)
	response.Version = &versionResponse
	response.VersionCreated = true
	return response, nil
}

func (s *essayService) RestoreVersion(ctx context.Context, userID, essayID, versionID uint) (dto.EssaySaveResponse, error) {
	essay, err := ownedEssay(ctx, s.essays, userID, essayID)
	if err != nil {
		return dto.EssaySaveResponse{}, err
	}

	source, err := s.loadVersion(ctx, essay.ID, versionID)
	if err != nil {
		return dto.EssaySaveResponse{}, err
	}

	updated, evaluated, changed := s.applyContent(ctx, essay, source.Content)
	if err := s.essays.Update(ctx, &updated); err != nil {
		return dto.EssaySaveResponse{}, err
	}

	last, err := s.latestVersion(ctx, updated.ID)
	if err != nil {
		return dto.EssaySaveResponse{}, err
	}

	version, err := s.createVersion(ctx, updated, last, RestoreLabel(source), false, versionKindRestore)
	if err != nil {
		return dto.EssaySaveResponse{}, err
	}

	s.invalidate(ctx, userID)

	versionResponse := dto.NewEssayVersionResponse(version)
	return dto.EssaySaveResponse{
		Essay:               dto.NewEssayResponse(updated),
		Version:             &versionResponse,
		VersionCreated:      true,
		CompletionEvaluated: evaluated,
		CompletionChanged:   changed,
	}, nil
}

// DeleteVersion removes a version and the analyses scoped to it. The count
// check and the delete are not atomic; two concurrent deletes on an essay with
// two versions can both pass the check.
func (s *essayService) DeleteVersion(ctx context.Context, userID, essayID, versionID uint) error {
	essay, err := ownedEssay(ctx, s.essays, userID, essayID)
	if err != nil {
		return err
	}

	version, err := s.loadVersion(ctx, essay.ID, versionID)
	if err != nil {
		return err
	}

	total, err := s.versions.Count(ctx, essay.ID)
	if err != nil {
		return err
	}
	if total <= 1 {
		return ErrLastVersion
	}

	if err := s.analyses.DeleteByVersion(ctx, version.ID); err != nil {
		return err
	}
	if err := s.versions.Delete(ctx, version.ID); err != nil {
		return err
	}

	s.logger.Info().Uint("essay_id", essay.ID).Uint("version_id", version.ID).Msg("essay version deleted")
	return nil
}

func (s *essayService) Get(ctx context.Context, userID, essayID uint) (dto.EssayDetailResponse, error) {
	essay, err := ownedEssay(ctx, s.essays, userID, essayID)
	if err != nil {
		return dto.EssayDetailResponse{}, err
	}

	response := dto.EssayDetailResponse{
		Essay:            dto.NewEssayResponse(essay),
		CompletionEvents: []dto.CompletionEventResponse{},
	}

	last, err := s.latestVersion(ctx, essay.ID)
	if err != nil {
		return dto.EssayDetailResponse{}, err
	}
	if last != nil {
		latest := dto.NewEssayVersionResponse(*last)
		response.LatestVersion = &latest
	}

	events, err := s.events.ListByEssay(ctx, essay.ID)
	if err != nil {
		return dto.EssayDetailResponse{}, err
	}
	for _, event := range events {
		response.CompletionEvents = append(response.CompletionEvents, dto.NewCompletionEventResponse(event))
	}

	return response, nil
}

func (s *essayService) ListVersions(ctx context.Context, userID, essayID uint, limit int) ([]dto.EssayVersionResponse, error) {
	essay, err := ownedEssay(ctx, s.essays, userID, essayID)
	if err != nil {
		return nil, err
	}

	versions, err := s.versions.List(ctx, essay.ID, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.EssayVersionResponse, 0, len(versions))
	for _, version := range versions {
		responses = append(responses, dto.NewEssayVersionResponse(version))
	}
	return responses, nil
}

// applyContent routes a content change through the completion evaluator. When
// the word limit cannot be resolved the change is applied as a plain update.
func (s *essayService) applyContent(ctx context.Context, essay models.Essay, content string) (models.Essay, bool, bool) {
	wordCount := textmetrics.WordCount(content)

	outcome, err := s.completion.Evaluate(ctx, essay, wordCount, &content)
	if err != nil {
		s.logger.Warn().Err(err).Uint("essay_id", essay.ID).Msg("completion not evaluated, applying plain update")
		essay.Content = content
		essay.WordCount = wordCount
		essay.LastModified = s.now()
		return essay, false, false
	}

	return outcome.Essay, true, outcome.Changed
}

func (s *essayService) findOrCreate(ctx context.Context, userID, promptID uint) (models.Essay, error) {
	essay, err := s.essays.GetByUserAndPrompt(ctx, userID, promptID)
	if err == nil {
		return essay, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Essay{}, err
	}

	if _, err := s.prompts.GetByID(ctx, promptID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Essay{}, ErrPromptNotFound
		}
		return models.Essay{}, err
	}

	now := s.now()
	essay = models.Essay{
		UserID:       userID,
		PromptID:     promptID,
		Status:       models.EssayStatusDraft,
		LastModified: now,
		CreatedAt:    now,
	}
	if err := s.essays.Create(ctx, &essay); err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Essay{}, err
		}
		// A concurrent first save created the row between lookup and insert.
		s.logger.Debug().Uint("user_id", userID).Uint("prompt_id", promptID).Msg("essay created concurrently, reloading")
		return s.essays.GetByUserAndPrompt(ctx, userID, promptID)
	}
	return essay, nil
}

// ownedEssay loads an essay and checks it belongs to userID.
func ownedEssay(ctx context.Context, essays repository.EssayRepository, userID, essayID uint) (models.Essay, error) {
	essay, err := essays.GetByID(ctx, essayID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Essay{}, ErrEssayNotFound
		}
		return models.Essay{}, err
	}
	if essay.UserID != userID {
		return models.Essay{}, ErrEssayForbidden
	}
	return essay, nil
}

func (s *essayService) loadVersion(ctx context.Context, essayID, versionID uint) (models.EssayVersion, error) {
	version, err := s.versions.GetByID(ctx, versionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.EssayVersion{}, ErrVersionNotFound
		}
		return models.EssayVersion{}, err
	}
	if version.EssayID != essayID {
		return models.EssayVersion{}, ErrVersionNotFound
	}
	return version, nil
}

func (s *essayService) latestVersion(ctx context.Context, essayID uint) (*models.EssayVersion, error) {
	version, err := s.versions.Latest(ctx, essayID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &version, nil
}

func (s *essayService) createVersion(ctx context.Context, essay models.Essay, last *models.EssayVersion, label string, autoSave bool, kind string) (models.EssayVersion, error) {
	version := models.EssayVersion{
		EssayID:                 essay.ID,
		Content:                 essay.Content,
		WordCount:               essay.WordCount,
		Label:                   label,
		IsAutoSave:              autoSave,
		ChangesSinceLastVersion: DescribeDelta(last, essay.WordCount, autoSave),
		Timestamp:               s.now(),
	}
	if err := s.versions.Create(ctx, &version); err != nil {
		return models.EssayVersion{}, err
	}

	observability.VersionsCreated().WithLabelValues(kind).Inc()
	return version, nil
}

func (s *essayService) sanitizeLabel(label string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(label)))
}

func (s *essayService) invalidate(ctx context.Context, userID uint) {
	if s.invalidator != nil {
		s.invalidator.InvalidateProgress(ctx, userID)
	}
}
