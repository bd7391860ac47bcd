package domain

import "time"

// HistoryEntry records one feedback or patternize run. UserID is empty
// for anonymous usage; Feedback and Patternized hold raw JSON from the
// front end.
type HistoryEntry struct {
	ID          string
	UserID      string
	Prompt      string
	Feedback    []byte
	Patternized []byte
	Pattern     string
	CreatedAt   time.Time
}

// CollectionEntry is a patternized prompt the user chose to keep.
type CollectionEntry struct {
	ID          string
	UserID      string
	Prompt      string
	Patternized string
	Pattern     string
	CreatedAt   time.Time
}
