package backup

import "time"

// Report summarizes one run. A failed run returns the report filled up to the
// failing stage.
type Report struct {
	Mode  Mode
	Since *time.Time

	StartedAt  time.Time
	FinishedAt time.Time

	// CheckpointWritten is set when the run stored a new checkpoint. It stays
	// false when the stored checkpoint was already later than StartedAt.
	CheckpointWritten bool

	BookmarksFetched  int
	BookmarksInserted int
	TagsFetched       int
	TagsInserted      int
	LinksCreated      int

	Unresolved []Unresolved
}

// Duration returns how long the run took, or zero if it did not finish.
func (r *Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
