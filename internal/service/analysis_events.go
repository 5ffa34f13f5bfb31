package service

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-essay-api/internal/models"
)

// AnalysisRecordedSubject is the default subject for persisted analysis rows.
const AnalysisRecordedSubject = "essay.analysis.recorded"

type messagePublisher interface {
	Publish(subject string, data []byte) error
}

type analysisRecordedEvent struct {
	AnalysisID     uint      `json:"analysis_id"`
	EssayID        uint      `json:"essay_id"`
	EssayVersionID *uint     `json:"essay_version_id"`
	UserID         uint      `json:"user_id"`
	Status         string    `json:"status"`
	OverallScore   float64   `json:"overall_score"`
	Provider       string    `json:"provider"`
	RecordedAt     time.Time `json:"recorded_at"`
}

// AnalysisEventPublisher fans persisted analysis rows out over NATS.
// A nil publisher drops events.
type AnalysisEventPublisher struct {
	conn    messagePublisher
	subject string
	logger  zerolog.Logger
}

// NewAnalysisEventPublisher returns nil when conn is nil.
func NewAnalysisEventPublisher(conn *nats.Conn, subject string, logger zerolog.Logger) *AnalysisEventPublisher {
	if conn == nil {
		return nil
	}
	return newAnalysisEventPublisher(conn, subject, logger)
}

func newAnalysisEventPublisher(conn messagePublisher, subject string, logger zerolog.Logger) *AnalysisEventPublisher {
	if subject == "" {
		subject = AnalysisRecordedSubject
	}
	return &AnalysisEventPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "analysis_events").Logger(),
	}
}

// Recorded publishes a row. Failures are logged, never returned.
func (p *AnalysisEventPublisher) Recorded(userID uint, row models.AIAnalysisResult) {
	if p == nil {
		return
	}

	payload, err := json.Marshal(analysisRecordedEvent{
		AnalysisID:     row.ID,
		EssayID:        row.EssayID,
		EssayVersionID: row.EssayVersionID,
		UserID:         userID,
		Status:         row.Status,
		OverallScore:   row.OverallScore,
		Provider:       row.Provider,
		RecordedAt:     row.CreatedAt,
	})
	if err != nil {
		p.logger.Warn().Err(err).Uint("analysis_id", row.ID).Msg("failed to encode analysis event")
		return
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		p.logger.Warn().Err(err).Uint("analysis_id", row.ID).Msg("failed to publish analysis event")
	}
}
