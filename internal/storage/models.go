package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Report lifecycle statuses. Exactly one holds at any instant.
const (
	StatusPending      = "pending"
	StatusTranscribing = "transcribing"
	StatusTranscribed  = "transcribed"
	StatusSummarizing  = "summarizing"
	StatusCompleted    = "completed"
	StatusFailed       = "failed"
)

// Report is one row of the reports table. Nullable columns scan to their
// zero value; the topics/decisions/action_items columns hold JSON arrays as
// text and are decoded at the orchestration boundary, not here.
type Report struct {
	ID               int64
	OriginalFilename string
	FilePath         string // blob store key of the source audio
	FileSize         int64
	Duration         float64 // seconds; 0 until transcribed
	Transcription    string
	Language         string
	Summary          string
	Topics           string // JSON array stored as text
	Decisions        string // JSON array stored as text
	ActionItems      string // JSON array stored as text
	Status           string
	ErrorMessage     string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
