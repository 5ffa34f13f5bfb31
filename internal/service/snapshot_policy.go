package service

import (
	"fmt"
	"time"

	"github.com/noah-isme/gema-essay-api/internal/models"
)

const labelTimeLayout = "Jan 2, 2006 15:04"

// SnapshotPolicy decides when a content mutation materialises a new version.
// Decisions depend only on their inputs and the clock, so re-evaluating the same
// mutation against the same last version yields the same answer.
type SnapshotPolicy struct {
	WordDelta int
	Interval  time.Duration
	now       func() time.Time
}

// NewSnapshotPolicy builds a policy from the essay thresholds.
func NewSnapshotPolicy(policy EssayPolicy) SnapshotPolicy {
	policy = policy.withDefaults()
	return SnapshotPolicy{
		WordDelta: policy.AutoSaveWordDelta,
		Interval:  policy.AutoSaveInterval,
		now:       utcNow,
	}
}

// ShouldSnapshot reports whether a new version should be created. Manual saves
// always snapshot. Otherwise a snapshot is taken for the first version, after a
// word count swing of at least WordDelta, or once Interval has elapsed.
func (p SnapshotPolicy) ShouldSnapshot(lastVersion *models.EssayVersion, wordCount int, content string, isManual bool) bool {
	if isManual || lastVersion == nil {
		return true
	}

	if abs(wordCount-lastVersion.WordCount) >= p.WordDelta {
		return true
	}

	return p.now().Sub(lastVersion.Timestamp) >= p.Interval
}

// DescribeDelta renders the word count change relative to the previous version.
func DescribeDelta(lastVersion *models.EssayVersion, wordCount int, autoSave bool) string {
	if lastVersion == nil {
		if autoSave {
			return "Initial content"
		}
		return "Initial version"
	}

	diff := wordCount - lastVersion.WordCount
	switch {
	case diff > 0:
		return fmt.Sprintf("+%d words", diff)
	case diff < 0:
		return fmt.Sprintf("-%d words", -diff)
	default:
		return "No word count change"
	}
}

// AutoSaveLabel is the label every auto-save version carries.
func AutoSaveLabel(at time.Time) string {
	return "Auto-save " + at.Format("15:04")
}

// ManualLabel returns the caller supplied label or a timestamped default.
func ManualLabel(label string, at time.Time) string {
	if label != "" {
		return label
	}
	return "Version " + at.Format(labelTimeLayout)
}

// SaveLabel labels versions produced by a plain content save.
func SaveLabel(at time.Time) string {
	return "Saved " + at.Format(labelTimeLayout)
}

// RestoreLabel labels the version created by restoring source.
func RestoreLabel(source models.EssayVersion) string {
	return "Restored from " + source.Label
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
