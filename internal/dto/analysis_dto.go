package dto

import (
	"time"

	"github.com/noah-isme/gema-essay-api/internal/models"
)

// AnalysisRequest asks for feedback on live content or on a stored version.
type AnalysisRequest struct {
	VersionID *uint  `json:"version_id" validate:"omitempty,gt=0"`
	Content   string `json:"content" validate:"max=200000"`
}

// AnalysisSuggestionResponse is a single suggestion in an analysis.
type AnalysisSuggestionResponse struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Priority    string `json:"priority"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Action      string `json:"action,omitempty"`
}

// AnalysisResultResponse represents a stored analysis row.
type AnalysisResultResponse struct {
	ID                      uint                         `json:"id"`
	EssayID                 uint                         `json:"essay_id"`
	EssayVersionID          *uint                        `json:"essay_version_id"`
	Status                  string                       `json:"status"`
	OverallScore            float64                      `json:"overall_score"`
	StructureScore          float64                      `json:"structure_score"`
	ContentRelevanceScore   float64                      `json:"content_relevance_score"`
	NarrativeFlowScore      float64                      `json:"narrative_flow_score"`
	LeadershipEmphasisScore float64                      `json:"leadership_emphasis_score"`
	SpecificityScore        float64                      `json:"specificity_score"`
	ReadabilityScore        float64                      `json:"readability_score"`
	SentenceCount           int                          `json:"sentence_count"`
	ParagraphCount          int                          `json:"paragraph_count"`
	AvgSentenceLength       float64                      `json:"avg_sentence_length"`
	ComplexWordCount        int                          `json:"complex_word_count"`
	PassiveVoiceCount       int                          `json:"passive_voice_count"`
	GrammarIssues           int                          `json:"grammar_issues"`
	Suggestions             []AnalysisSuggestionResponse `json:"suggestions"`
	Provider                string                       `json:"provider"`
	ProcessingTimeMs        int64                        `json:"processing_time_ms"`
	ErrorMessage            *string                      `json:"error_message"`
	CreatedAt               time.Time                    `json:"created_at"`
}

// AnalysisResponse is returned by an analysis request. UsedFallback marks a
// heuristic result; Cached marks a result served from an earlier row.
type AnalysisResponse struct {
	Analysis     AnalysisResultResponse `json:"analysis"`
	Status       string                 `json:"status"`
	Cached       bool                   `json:"cached"`
	UsedFallback bool                   `json:"used_fallback"`
}

// NewAnalysisResultResponse converts an analysis model into a DTO.
func NewAnalysisResultResponse(result models.AIAnalysisResult) AnalysisResultResponse {
	suggestions := make([]AnalysisSuggestionResponse, 0, len(result.Suggestions))
	for _, s := range result.Suggestions {
		suggestions = append(suggestions, AnalysisSuggestionResponse{
			ID:          s.ID,
			Type:        s.Type,
			Priority:    s.Priority,
			Title:       s.Title,
			Description: s.Description,
			Action:      s.Action,
		})
	}

	return AnalysisResultResponse{
		ID:                      result.ID,
		EssayID:                 result.EssayID,
		EssayVersionID:          result.EssayVersionID,
		Status:                  result.Status,
		OverallScore:            result.OverallScore,
		StructureScore:          result.StructureScore,
		ContentRelevanceScore:   result.ContentRelevanceScore,
		NarrativeFlowScore:      result.NarrativeFlowScore,
		LeadershipEmphasisScore: result.LeadershipEmphasisScore,
		SpecificityScore:        result.SpecificityScore,
		ReadabilityScore:        result.ReadabilityScore,
		SentenceCount:           result.SentenceCount,
		ParagraphCount:          result.ParagraphCount,
		AvgSentenceLength:       result.AvgSentenceLength,
		ComplexWordCount:        result.ComplexWordCount,
		PassiveVoiceCount:       result.PassiveVoiceCount,
		GrammarIssues:           result.GrammarIssues,
		Suggestions:             suggestions,
		Provider:                result.Provider,
		ProcessingTimeMs:        result.ProcessingTimeMs,
		ErrorMessage:            result.ErrorMessage,
		CreatedAt:               result.CreatedAt,
	}
}
