package models

import (
	"time"

	"gorm.io/datatypes"
)

// AnalysisStatus enumerates the provenance of an analysis row.
const (
	AnalysisStatusCompleted = "completed"
	AnalysisStatusFailed    = "failed"
	AnalysisStatusFallback  = "fallback"
)

// AnalysisSuggestion is a single piece of feedback attached to an analysis.
type AnalysisSuggestion struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Priority    string `json:"priority"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Action      string `json:"action,omitempty"`
}

// AIAnalysisResult is an append-only record of one analysis attempt. A nil
// EssayVersionID scopes the result to the live essay content.
type AIAnalysisResult struct {
	ID                      uint                                   `gorm:"primaryKey" json:"id"`
	EssayID                 uint                                   `gorm:"not null;index:idx_analysis_scope" json:"essay_id"`
	EssayVersionID          *uint                                  `gorm:"index:idx_analysis_scope" json:"essay_version_id"`
	Status                  string                                 `gorm:"size:16;not null" json:"status"`
	OverallScore            float64                                `json:"overall_score"`
	StructureScore          float64                                `json:"structure_score"`
	ContentRelevanceScore   float64                                `json:"content_relevance_score"`
	NarrativeFlowScore      float64                                `json:"narrative_flow_score"`
	LeadershipEmphasisScore float64                                `json:"leadership_emphasis_score"`
	SpecificityScore        float64                                `json:"specificity_score"`
	ReadabilityScore        float64                                `json:"readability_score"`
	SentenceCount           int                                    `json:"sentence_count"`
	ParagraphCount          int                                    `json:"paragraph_count"`
	AvgSentenceLength       float64                                `json:"avg_sentence_length"`
	ComplexWordCount        int                                    `json:"complex_word_count"`
	PassiveVoiceCount       int                                    `json:"passive_voice_count"`
	GrammarIssues           int                                    `json:"grammar_issues"`
	Suggestions             datatypes.JSONSlice[AnalysisSuggestion] `json:"suggestions"`
	Provider                string                                 `gorm:"size:64" json:"provider"`
	ProcessingTimeMs        int64                                  `json:"processing_time_ms"`
	ErrorMessage            *string                                `gorm:"type:text" json:"error_message"`
	CreatedAt               time.Time                              `gorm:"index:idx_analysis_scope" json:"created_at"`
}
