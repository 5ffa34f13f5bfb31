package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-essay-api/internal/dto"
	"github.com/noah-isme/gema-essay-api/internal/models"
	"github.com/noah-isme/gema-essay-api/internal/repository"
)

func TestEssayServiceSaveContentCompletesAtThreshold(t *testing.T) {
	fixture := newEssayFixture(t)
	invalidator := &recordingInvalidator{}
	svc := fixture.essayService(invalidator)
	ctx := context.Background()

	first, err := svc.SaveContent(ctx, 7, dto.EssaySaveRequest{PromptID: fixture.prompt.ID, Content: words(100)})
	require.NoError(t, err)
	require.Equal(t, models.EssayStatusInProgress, first.Essay.Status)
	require.Equal(t, 20.0, first.Essay.CompletionPercentage)
	require.True(t, first.CompletionEvaluated)
	require.True(t, first.VersionCreated)
	require.Equal(t, "Initial version", first.Version.ChangesSinceLastVersion)
	require.False(t, first.Version.IsAutoSave)

	fixture.clock.Advance(time.Minute)
	completed, err := svc.SaveContent(ctx, 7, dto.EssaySaveRequest{PromptID: fixture.prompt.ID, Content: words(460)})
	require.NoError(t, err)
	require.Equal(t, first.Essay.ID, completed.Essay.ID)
	require.True(t, completed.Essay.IsCompleted)
	require.Equal(t, models.EssayStatusCompleted, completed.Essay.Status)
	require.NotNil(t, completed.Essay.CompletedAt)
	require.Equal(t, 92.0, completed.Essay.CompletionPercentage)
	require.True(t, completed.CompletionChanged)

	events, err := fixture.events.ListByEssay(ctx, completed.Essay.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, models.CompletionMethodAuto, events[0].CompletionMethod)
	require.Equal(t, 460, events[0].WordCountAtCompletion)
	require.Equal(t, 500, events[0].WordLimit)

	fixture.clock.Advance(time.Minute)
	again, err := svc.SaveContent(ctx, 7, dto.EssaySaveRequest{PromptID: fixture.prompt.ID, Content: words(470)})
	require.NoError(t, err)
	require.True(t, again.Essay.IsCompleted)
	require.False(t, again.CompletionChanged)

	fixture.clock.Advance(time.Minute)
	reopened, err := svc.SaveContent(ctx, 7, dto.EssaySaveRequest{PromptID: fixture.prompt.ID, Content: words(100)})
	require.NoError(t, err)
	require.False(t, reopened.Essay.IsCompleted)
	require.Nil(t, reopened.Essay.CompletedAt)
	require.Equal(t, models.EssayStatusInProgress, reopened.Essay.Status)
	require.True(t, reopened.CompletionChanged)

	events, err = fixture.events.ListByEssay(ctx, completed.Essay.ID)
	require.NoError(t, err)
	require.Len(t, events, 1, "un-completion must not log an event")

	require.Len(t, invalidator.users, 4)
	require.Equal(t, uint(7), invalidator.users[0])
}

func TestEssayServiceAutoSaveDebouncesSnapshots(t *testing.T) {
	fixture := newEssayFixture(t)
	svc := fixture.essayService(nil)
	ctx := context.Background()

	first, err := svc.AutoSave(ctx, 3, dto.EssaySaveRequest{PromptID: fixture.prompt.ID, Content: words(100)})
	require.NoError(t, err)
	require.True(t, first.VersionCreated)
	require.True(t, first.Version.IsAutoSave)
	require.Equal(t, "Auto-save 09:00", first.Version.Label)
	require.Equal(t, "Initial content", first.Version.ChangesSinceLastVersion)
	require.NotNil(t, first.Essay.LastAutoSaved)

	fixture.clock.Advance(2 * time.Minute)
	small, err := svc.AutoSave(ctx, 3, dto.EssaySaveRequest{PromptID: fixture.prompt.ID, Content: words(120)})
	require.NoError(t, err)
	require.False(t, small.VersionCreated)
	require.Nil(t, small.Version)
	require.Equal(t, 120, small.Essay.WordCount)

	count, err := fixture.versions.Count(ctx, first.Essay.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	fixture.clock.Advance(time.Minute)
	large, err := svc.AutoSave(ctx, 3, dto.EssaySaveRequest{PromptID: fixture.prompt.ID, Content: words(200)})
	require.NoError(t, err)
	require.True(t, large.VersionCreated)
	require.Equal(t, "+100 words", large.Version.ChangesSinceLastVersion)

	fixture.clock.Advance(16 * time.Minute)
	elapsed, err := svc.AutoSave(ctx, 3, dto.EssaySaveRequest{PromptID: fixture.prompt.ID, Content: words(195)})
	require.NoError(t, err)
	require.True(t, elapsed.VersionCreated, "interval elapsed since last snapshot")
	require.Equal(t, "-5 words", elapsed.Version.ChangesSinceLastVersion)
}

func TestSnapshotPolicyIsIdempotent(t *testing.T) {
	clock := &testClock{current: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	policy := NewSnapshotPolicy(DefaultEssayPolicy())
	policy.now = clock.Now

	last := &models.EssayVersion{WordCount: 100, Timestamp: clock.current.Add(-2 * time.Minute)}
	require.False(t, policy.ShouldSnapshot(last, 120, words(120), false))
	require.False(t, policy.ShouldSnapshot(last, 120, words(120), false))
	require.True(t, policy.ShouldSnapshot(last, 150, words(150), false))
	require.True(t, policy.ShouldSnapshot(last, 50, words(50), false))
	require.True(t, policy.ShouldSnapshot(last, 100, words(100), true))
	require.True(t, policy.ShouldSnapshot(nil, 0, "", false))

	require.Equal(t, "No word count change", DescribeDelta(last, 100, false))
	require.Equal(t, "Initial version", DescribeDelta(nil, 10, false))
	require.Equal(t, "Version Mar 2, 2026 09:00", ManualLabel("", clock.current))
}

func TestEssayServiceDeleteVersionKeepsAtLeastOne(t *testing.T) {
	fixture := newEssayFixture(t)
	svc := fixture.essayService(nil)
	ctx := context.Background()

	saved, err := svc.SaveContent(ctx, 1, dto.EssaySaveRequest{PromptID: fixture.prompt.ID, Content: words(80)})
	require.NoError(t, err)
	essayID := saved.Essay.ID

	err = svc.DeleteVersion(ctx, 1, essayID, saved.Version.ID)
	require.True(t, errors.Is(err, ErrLastVersion))

	manual, err := svc.SaveVersion(ctx, 1, essayID, dto.EssayVersionCreateRequest{Label: "Before edits"})
	require.NoError(t, err)
	require.Equal(t, "Before edits", manual.Version.Label)
	require.Equal(t, "No word count change", manual.Version.ChangesSinceLastVersion)

	versionID := saved.Version.ID
	require.NoError(t, fixture.analyses.Create(ctx, &models.AIAnalysisResult{EssayID: essayID, EssayVersionID: &versionID, Status: models.AnalysisStatusCompleted, CreatedAt: fixture.clock.Now()}))

	require.NoError(t, svc.DeleteVersion(ctx, 1, essayID, versionID))
	history, err := fixture.analyses.ListByEssay(ctx, essayID, 0)
	require.NoError(t, err)
	require.Empty(t, history)

	err = svc.DeleteVersion(ctx, 1, essayID, manual.Version.ID)
	require.True(t, errors.Is(err, ErrLastVersion))

	err = svc.DeleteVersion(ctx, 1, essayID, 999)
	require.True(t, errors.Is(err, ErrVersionNotFound))
}

func TestEssayServiceRestoreNeverMutatesHistory(t *testing.T) {
	fixture := newEssayFixture(t)
	svc := fixture.essayService(nil)
	ctx := context.Background()

	original, err := svc.SaveContent(ctx, 2, dto.EssaySaveRequest{PromptID: fixture.prompt.ID, Content: words(100)})
	require.NoError(t, err)
	essayID := original.Essay.ID

	fixture.clock.Advance(time.Minute)
	longer := words(300)
	second, err := svc.SaveVersion(ctx, 2, essayID, dto.EssayVersionCreateRequest{Content: &longer, Label: "<b>Second</b> draft"})
	require.NoError(t, err)
	require.Equal(t, "Second draft", second.Version.Label)
	require.Equal(t, "+200 words", second.Version.ChangesSinceLastVersion)
	require.Equal(t, 300, second.Essay.WordCount)

	fixture.clock.Advance(time.Minute)
	restored, err := svc.RestoreVersion(ctx, 2, essayID, original.Version.ID)
	require.NoError(t, err)
	require.Equal(t, 100, restored.Essay.WordCount)
	require.Equal(t, words(100), restored.Essay.Content)
	require.Equal(t, "Restored from "+original.Version.Label, restored.Version.Label)
	require.Equal(t, "-200 words", restored.Version.ChangesSinceLastVersion)

	versions, err := svc.ListVersions(ctx, 2, essayID, 0)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	require.Equal(t, restored.Version.ID, versions[0].ID)

	firstStored, err := fixture.versions.GetByID(ctx, original.Version.ID)
	require.NoError(t, err)
	require.Equal(t, original.Version.Label, firstStored.Label)
	require.Equal(t, words(100), firstStored.Content)

	secondStored, err := fixture.versions.GetByID(ctx, second.Version.ID)
	require.NoError(t, err)
	require.Equal(t, longer, secondStored.Content)
}

func TestEssayServiceOwnershipAndLookups(t *testing.T) {
	fixture := newEssayFixture(t)
	svc := fixture.essayService(nil)
	ctx := context.Background()

	saved, err := svc.SaveContent(ctx, 4, dto.EssaySaveRequest{PromptID: fixture.prompt.ID, Content: words(460)})
	require.NoError(t, err)

	detail, err := svc.Get(ctx, 4, saved.Essay.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.LatestVersion)
	require.Len(t, detail.CompletionEvents, 1)

	_, err = svc.Get(ctx, 5, saved.Essay.ID)
	require.True(t, errors.Is(err, ErrEssayForbidden))

	_, err = svc.Get(ctx, 4, 999)
	require.True(t, errors.Is(err, ErrEssayNotFound))

	_, err = svc.SaveContent(ctx, 4, dto.EssaySaveRequest{PromptID: 999, Content: "text"})
	require.True(t, errors.Is(err, ErrPromptNotFound))

	_, err = svc.SaveContent(ctx, 4, dto.EssaySaveRequest{Content: "text"})
	var validationErrs validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrs))

	_, err = svc.RestoreVersion(ctx, 5, saved.Essay.ID, saved.Version.ID)
	require.True(t, errors.Is(err, ErrEssayForbidden))
}

func TestEssayServiceOrphanedEssayFallsBackToPlainUpdate(t *testing.T) {
	fixture := newEssayFixture(t)
	svc := fixture.essayService(nil)
	ctx := context.Background()

	orphan := models.Essay{UserID: 9, PromptID: 404, Status: models.EssayStatusDraft, LastModified: fixture.clock.Now(), CreatedAt: fixture.clock.Now()}
	require.NoError(t, fixture.essays.Create(ctx, &orphan))

	content := words(480)
	saved, err := svc.SaveVersion(ctx, 9, orphan.ID, dto.EssayVersionCreateRequest{Content: &content})
	require.NoError(t, err)
	require.False(t, saved.CompletionEvaluated)
	require.Equal(t, 480, saved.Essay.WordCount)
	require.False(t, saved.Essay.IsCompleted)
	require.Equal(t, models.EssayStatusDraft, saved.Essay.Status)
	require.True(t, saved.VersionCreated)

	events, err := fixture.events.ListByEssay(ctx, orphan.ID)
	require.NoError(t, err)
	require.Empty(t, events)
}

type stubPromptRepo struct {
	prompt models.EssayPrompt
	err    error
}

func (s stubPromptRepo) GetByID(context.Context, uint) (models.EssayPrompt, error) {
	return s.prompt, s.err
}

func (s stubPromptRepo) GetByIDs(context.Context, []uint) (map[uint]models.EssayPrompt, error) {
	return map[uint]models.EssayPrompt{s.prompt.ID: s.prompt}, s.err
}

type recordingEventWriter struct {
	events []models.CompletionEvent
}

func (w *recordingEventWriter) Append(_ context.Context, event *models.CompletionEvent) error {
	w.events = append(w.events, *event)
	return nil
}

var _ repository.EssayPromptRepository = stubPromptRepo{}

func TestCompletionEvaluatorPercentageAndMonotonicity(t *testing.T) {
	writer := &recordingEventWriter{}
	evaluator := NewCompletionEvaluator(stubPromptRepo{prompt: models.EssayPrompt{ID: 1, WordLimit: 500}}, writer, 0.90, zerolog.Nop())
	ctx := context.Background()

	for _, tc := range []struct {
		words    int
		expected float64
	}{{0, 0}, {250, 50}, {500, 100}, {900, 100}} {
		outcome, err := evaluator.Evaluate(ctx, models.Essay{PromptID: 1}, tc.words, nil)
		require.NoError(t, err)
		require.Equal(t, tc.expected, outcome.Essay.CompletionPercentage)
	}
	writer.events = nil

	essay := models.Essay{ID: 1, UserID: 2, PromptID: 1, Status: models.EssayStatusDraft}
	for _, wc := range []int{100, 449, 450, 480, 499, 200, 0, 455} {
		outcome, err := evaluator.Evaluate(ctx, essay, wc, nil)
		require.NoError(t, err)
		require.Equal(t, outcome.Essay.IsCompleted, outcome.Essay.Status == models.EssayStatusCompleted)
		essay = outcome.Essay
	}

	require.Len(t, writer.events, 2, "one event per upward crossing")
	require.Equal(t, 450, writer.events[0].WordCountAtCompletion)
	require.Equal(t, 455, writer.events[1].WordCountAtCompletion)
}

func TestCompletionEvaluatorNotEvaluable(t *testing.T) {
	evaluator := NewCompletionEvaluator(stubPromptRepo{err: errors.New("missing")}, &recordingEventWriter{}, 0.90, zerolog.Nop())
	essay := models.Essay{ID: 1, WordCount: 10}

	outcome, err := evaluator.Evaluate(context.Background(), essay, 400, nil)
	require.True(t, errors.Is(err, ErrNotEvaluable))
	require.Equal(t, 10, outcome.Essay.WordCount)

	zeroLimit := NewCompletionEvaluator(stubPromptRepo{prompt: models.EssayPrompt{ID: 3}}, &recordingEventWriter{}, 0.90, zerolog.Nop())
	_, err = zeroLimit.Evaluate(context.Background(), essay, 400, nil)
	require.True(t, errors.Is(err, ErrNotEvaluable))
}

// lateLookupEssays hides existing essays from the first misses lookups, the
// way a request that lost a first-save race sees the store.
type lateLookupEssays struct {
	repository.EssayRepository
	misses int
}

func (r *lateLookupEssays) GetByUserAndPrompt(ctx context.Context, userID, promptID uint) (models.Essay, error) {
	if r.misses > 0 {
		r.misses--
		return models.Essay{}, gorm.ErrRecordNotFound
	}
	return r.EssayRepository.GetByUserAndPrompt(ctx, userID, promptID)
}

func TestEssayServiceConcurrentFirstSaveReusesEssay(t *testing.T) {
	fixture := newEssayFixture(t)
	ctx := context.Background()

	first, err := fixture.essayService(nil).AutoSave(ctx, 7, dto.EssaySaveRequest{PromptID: fixture.prompt.ID, Content: words(100)})
	require.NoError(t, err)

	fixture.essays = &lateLookupEssays{EssayRepository: fixture.essays, misses: 1}
	second, err := fixture.essayService(nil).AutoSave(ctx, 7, dto.EssaySaveRequest{PromptID: fixture.prompt.ID, Content: words(180)})
	require.NoError(t, err)
	require.Equal(t, first.Essay.ID, second.Essay.ID)
	require.Equal(t, 180, second.Essay.WordCount)

	var total int64
	require.NoError(t, fixture.db.Model(&models.Essay{}).Where("user_id = ? AND prompt_id = ?", 7, fixture.prompt.ID).Count(&total).Error)
	require.Equal(t, int64(1), total)
}
