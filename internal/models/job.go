package models

import "time"

// JobStatus is the lifecycle state of a render job.
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusDone       JobStatus = "done"
	StatusError      JobStatus = "error"
)

// Terminal reports whether no further transition may leave this status.
func (s JobStatus) Terminal() bool {
	return s == StatusDone || s == StatusError
}

// Job is one render request. A job is created in StatusPending the moment
// the uploaded input is persisted, owned by exactly one worker while in
// StatusProcessing, and ends in StatusDone or StatusError. OutputPath is
// set only on success. Progress is a percentage in [0,100] and only ever
// increases over the job's lifetime.
type Job struct {
	ID         string    `json:"id"`
	InputPath  string    `json:"input_path"`
	OutputPath string    `json:"output_path,omitempty"`
	Status     JobStatus `json:"status"`
	Message    string    `json:"message,omitempty"`
	Overlays   []Overlay `json:"overlays"`
	Progress   float64   `json:"progress"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// JobUpdate is a partial update of a job's mutable fields. Nil fields are
// left untouched by the store.
type JobUpdate struct {
	Status     *JobStatus
	Message    *string
	Progress   *float64
	OutputPath *string
}

// OverlayAsset is a catalog row for an uploaded overlay asset. The stored
// filename is what overlay.content should reference.
type OverlayAsset struct {
	ID           string      `json:"id"`
	Filename     string      `json:"filename"`
	OriginalName string      `json:"original_name"`
	Type         OverlayType `json:"type"`
	Path         string      `json:"path"`
	CreatedAt    time.Time   `json:"created_at"`
}
