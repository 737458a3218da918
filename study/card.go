package study

import "time"

// Card is one flashcard inside a study session's working set. Confidence and
// LastSeen exist only for the session; they are initialized on load and never
// written back to storage.
type Card struct {
	ID         string    `json:"id"`
	Term       string    `json:"term"`
	Definition string    `json:"definition"`
	ImageURL   string    `json:"image_url,omitempty"`
	Confidence int       `json:"confidence"`
	LastSeen   time.Time `json:"last_seen"`
}
