// Package job provides the split Job aggregate, its repository port, and
// the SplitService that runs the detect-and-export pipeline.
package job

import (
	"errors"
	"sync"
	"time"

	"github.com/voxport/vadsplit-api/internal/job/id"
)

// Status represents the current state of a split Job. The pipeline runs
// in-process, so there is no cancelled or timed-out state: a job either
// finishes or fails on the first error.
type Status string

const (
	// StatusPending indicates the job has been accepted but not started.
	StatusPending Status = "PENDING"
	// StatusRunning indicates the split pipeline is executing.
	StatusRunning Status = "RUNNING"
	// StatusCompleted indicates the job finished successfully.
	StatusCompleted Status = "COMPLETED"
	// StatusFailed indicates the job stopped on an error.
	StatusFailed Status = "FAILED"
)

// ErrInvalidTransition is returned when an invalid state transition is attempted.
var ErrInvalidTransition = errors.New("invalid state transition")

// validTransitions defines which state transitions are allowed.
var validTransitions = map[Status][]Status{
	StatusPending:   {StatusRunning, StatusFailed},
	StatusRunning:   {StatusCompleted, StatusFailed},
	StatusCompleted: {},
	StatusFailed:    {},
}

// canTransition checks if a transition from one status to another is valid.
func canTransition(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Segment records one exported utterance of a completed (or partially
// completed) split job.
type Segment struct {
	// Index is the 1-based position of the segment, matching its filename.
	Index int
	// Start is the speech onset in seconds within the source recording.
	Start float64
	// End is the speech offset in seconds within the source recording.
	End float64
	// FileName is the segment file name, {prefix}-{index}.wav.
	FileName string
	// Path is the local path of the exported WAV file.
	Path string
	// URL is the S3 URL when the segment was uploaded.
	URL string
}

// Job represents one split request: a source recording being cut into
// per-utterance WAV files.
type Job struct {
	mu sync.RWMutex

	// ID is the unique identifier for this job.
	ID string
	// Status is the current job state.
	Status Status
	// Prefix is used in segment filenames.
	Prefix string
	// PushToS3 indicates whether segments are uploaded after export.
	PushToS3 bool
	// InputAudioPath is the workspace path of the source recording.
	InputAudioPath string
	// Segments holds the exported utterances once processing finishes.
	Segments []Segment
	// SegmentCount is the number of segments written so far.
	SegmentCount int
	// Error contains any error message if the job failed.
	Error string
	// CreatedAt is when the job was created.
	CreatedAt time.Time
	// UpdatedAt is when the job was last updated.
	UpdatedAt time.Time
	// StartedAt is when processing started.
	StartedAt time.Time
	// CompletedAt is when processing finished.
	CompletedAt time.Time
}

// New creates a new Job with a generated ID and initial PENDING status.
func New() *Job {
	now := time.Now()
	return &Job{
		ID:        id.Generate(),
		Status:    StatusPending,
		Segments:  make([]Segment, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewWithID creates a new Job with the specified ID and initial PENDING
// status. Useful for testing.
func NewWithID(jobID string) *Job {
	now := time.Now()
	return &Job{
		ID:        jobID,
		Status:    StatusPending,
		Segments:  make([]Segment, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TransitionTo attempts to change the job status to the specified state.
// Returns ErrInvalidTransition if the transition is not allowed.
func (j *Job) TransitionTo(status Status) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !canTransition(j.Status, status) {
		return ErrInvalidTransition
	}

	j.Status = status
	j.UpdatedAt = time.Now()

	switch status {
	case StatusRunning:
		j.StartedAt = j.UpdatedAt
	case StatusCompleted, StatusFailed:
		j.CompletedAt = j.UpdatedAt
	}

	return nil
}

// Start transitions the job from PENDING to RUNNING.
func (j *Job) Start() error {
	return j.TransitionTo(StatusRunning)
}

// Complete transitions the job to COMPLETED state.
func (j *Job) Complete() error {
	return j.TransitionTo(StatusCompleted)
}

// Fail transitions the job to FAILED state with an error message.
func (j *Job) Fail(errMsg string) error {
	j.mu.Lock()
	j.Error = errMsg
	j.mu.Unlock()
	return j.TransitionTo(StatusFailed)
}

// GetStatus returns the current job status (thread-safe).
func (j *Job) GetStatus() Status {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status
}

// SetSegments records the exported segments and their count.
func (j *Job) SetSegments(segments []Segment) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Segments = segments
	j.SegmentCount = len(segments)
	j.UpdatedAt = time.Now()
}

// IsTerminal returns true if the job is in a terminal state.
func (j *Job) IsTerminal() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// Clone creates a deep copy of the job for safe reads.
func (j *Job) Clone() *Job {
	j.mu.RLock()
	defer j.mu.RUnlock()

	segments := make([]Segment, len(j.Segments))
	copy(segments, j.Segments)

	return &Job{
		ID:             j.ID,
		Status:         j.Status,
		Prefix:         j.Prefix,
		PushToS3:       j.PushToS3,
		InputAudioPath: j.InputAudioPath,
		Segments:       segments,
		SegmentCount:   j.SegmentCount,
		Error:          j.Error,
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
		StartedAt:      j.StartedAt,
		CompletedAt:    j.CompletedAt,
	}
}
