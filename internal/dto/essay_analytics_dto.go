package dto

// CompletionAnalytics reports progress against the word limit.
type CompletionAnalytics struct {
	Percentage     float64 `json:"percentage"`
	WordCount      int     `json:"word_count"`
	WordLimit      int     `json:"word_limit"`
	WordsRemaining int     `json:"words_remaining"`
}

// TimingAnalytics reports reading time and writing pace.
type TimingAnalytics struct {
	ReadingTimeMinutes int `json:"reading_time_minutes"`
	DaysSinceStart     int `json:"days_since_start"`
	WritingVelocity    int `json:"writing_velocity"`
}

// StructureAnalytics reports structural metrics of the live content.
type StructureAnalytics struct {
	SentenceCount     int     `json:"sentence_count"`
	ParagraphCount    int     `json:"paragraph_count"`
	AvgSentenceLength float64 `json:"avg_sentence_length"`
}

// VersionAnalytics summarises the version history.
type VersionAnalytics struct {
	Total        int64                 `json:"total"`
	Auto         int64                 `json:"auto"`
	Manual       int64                 `json:"manual"`
	MostRecent   *EssayVersionResponse `json:"most_recent,omitempty"`
	WithAnalysis int64                 `json:"with_analysis"`
}

// EssayAnalyticsResponse is the per-essay analytics payload.
type EssayAnalyticsResponse struct {
	EssayID    uint                `json:"essay_id"`
	Orphaned   bool                `json:"orphaned"`
	Completion CompletionAnalytics `json:"completion"`
	Timing     TimingAnalytics     `json:"timing"`
	Structure  StructureAnalytics  `json:"structure"`
	Versions   VersionAnalytics    `json:"versions"`
}

// EssayProgressResponse aggregates completion across a user's essays.
type EssayProgressResponse struct {
	TotalEssays       int     `json:"total_essays"`
	CompletedEssays   int     `json:"completed_essays"`
	InProgressEssays  int     `json:"in_progress_essays"`
	DraftEssays       int     `json:"draft_essays"`
	TotalWords        int     `json:"total_words"`
	AverageCompletion float64 `json:"average_completion"`
	Orphaned          int     `json:"orphaned"`
}
