package domain

import (
	"time"

	"github.com/google/uuid"
)

// State of the trigger as seen from outside.
type State string

const (
	StateIdle      State = "idle"
	StateUploading State = "uploading"
)

// Submission identifies one in-flight upload.
type Submission struct {
	ID        uuid.UUID
	File      string
	Size      int64
	StartedAt time.Time
}

// NewSubmission stamps a new submission for the given file.
func NewSubmission(file SelectedFile) Submission {
	return Submission{
		ID:        uuid.New(),
		File:      file.Name,
		Size:      file.Size,
		StartedAt: time.Now(),
	}
}

// Settlement describes how a submission ended: either with a response of any
// status, or with a transport error and no reload.
type Settlement struct {
	Submission Submission
	Response   Response
	Err        error
	Reloaded   bool
	ReloadErr  error
	Duration   time.Duration
}

// Responded reports whether the request produced an HTTP response.
func (s Settlement) Responded() bool {
	return s.Err == nil
}
