package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-essay-api/internal/models"
	"github.com/noah-isme/gema-essay-api/internal/repository"
)

type testClock struct {
	current time.Time
}

func (c *testClock) Now() time.Time {
	return c.current
}

func (c *testClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

type recordingInvalidator struct {
	users []uint
}

func (r *recordingInvalidator) InvalidateProgress(_ context.Context, userID uint) {
	r.users = append(r.users, userID)
}

type essayFixture struct {
	db       *gorm.DB
	essays   repository.EssayRepository
	versions repository.EssayVersionRepository
	analyses repository.AIAnalysisRepository
	events   repository.CompletionEventRepository
	prompts  repository.EssayPromptRepository
	clock    *testClock
	prompt   models.EssayPrompt
}

func newEssayFixture(t *testing.T) *essayFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.EssayPrompt{}, &models.Essay{}, &models.EssayVersion{}, &models.AIAnalysisResult{}, &models.CompletionEvent{}))

	prompt := models.EssayPrompt{Title: "Why this program?", PromptText: "Explain your motivation.", WordLimit: 500, Program: "Wharton", DegreeType: "MBA"}
	require.NoError(t, db.Create(&prompt).Error)

	return &essayFixture{
		db:       db,
		essays:   repository.NewEssayRepository(db),
		versions: repository.NewEssayVersionRepository(db),
		analyses: repository.NewAIAnalysisRepository(db),
		events:   repository.NewCompletionEventRepository(db),
		prompts:  repository.NewEssayPromptRepository(db),
		clock:    &testClock{current: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)},
		prompt:   prompt,
	}
}

func (f *essayFixture) essayService(invalidator ProgressInvalidator) *essayService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewEssayService(f.essays, f.versions, f.analyses, f.events, f.prompts, DefaultEssayPolicy(), validate, invalidator, zerolog.Nop()).(*essayService)
	svc.now = f.clock.Now
	svc.completion.now = f.clock.Now
	svc.snapshots.now = f.clock.Now
	return svc
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("essay ", n))
}
