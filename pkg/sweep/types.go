// Package sweep decides which downloaded, fully watched TV seasons are safe
// to delete, and optionally deletes them through the download manager.
package sweep

import (
	"time"

	"github.com/sweeparr/sweeparr/pkg/watched"
)

// Series is a read-only snapshot of one show as the download manager sees it,
// fetched once per run.
type Series struct {
	ID      int64
	Title   string
	Tags    []string
	Seasons []Season
}

// Season is the unit of deletion granularity.
type Season struct {
	Number      int
	LastAirDate time.Time
	Episodes    []Episode
}

type Episode struct {
	Number     int
	Downloaded bool
	Size       int64
	File       FileRef
}

// FileRef is the opaque handle used only for deletion.
type FileRef struct {
	ID   int64
	Path string
}

// RetentionPolicy is the operator's opt-out knob: a tag that blocks deletion
// outright and a minimum age since last airing.
type RetentionPolicy struct {
	Tag      string
	Duration time.Duration
}

// MatchedSeason joins one catalog season with the watch records for the same
// title and season number. It only exists when the title match was
// unambiguous.
type MatchedSeason struct {
	Series  Series
	Season  Season
	Records map[int]watched.WatchRecord
}
