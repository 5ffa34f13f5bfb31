package service

import "time"

// EssayPolicy carries the tunable thresholds used by the essay workflows.
type EssayPolicy struct {
	CompletionThreshold float64
	AutoSaveWordDelta   int
	AutoSaveInterval    time.Duration
	AnalysisFreshness   time.Duration
	AnalysisMinChars    int
	AITimeout           time.Duration
}

// DefaultEssayPolicy returns the production defaults.
func DefaultEssayPolicy() EssayPolicy {
	return EssayPolicy{
		CompletionThreshold: 0.90,
		AutoSaveWordDelta:   50,
		AutoSaveInterval:    15 * time.Minute,
		AnalysisFreshness:   time.Hour,
		AnalysisMinChars:    50,
		AITimeout:           30 * time.Second,
	}
}

func (p EssayPolicy) withDefaults() EssayPolicy {
	defaults := DefaultEssayPolicy()
	if p.CompletionThreshold <= 0 || p.CompletionThreshold > 1 {
		p.CompletionThreshold = defaults.CompletionThreshold
	}
	if p.AutoSaveWordDelta <= 0 {
		p.AutoSaveWordDelta = defaults.AutoSaveWordDelta
	}
	if p.AutoSaveInterval <= 0 {
		p.AutoSaveInterval = defaults.AutoSaveInterval
	}
	if p.AnalysisFreshness <= 0 {
		p.AnalysisFreshness = defaults.AnalysisFreshness
	}
	if p.AnalysisMinChars <= 0 {
		p.AnalysisMinChars = defaults.AnalysisMinChars
	}
	if p.AITimeout <= 0 {
		p.AITimeout = defaults.AITimeout
	}
	return p
}

func utcNow() time.Time {
	return time.Now().UTC()
}
