// Package server provides the HTTP server for the split API.
// It includes handlers, middleware, routes, and DTOs separated from domain types.
package server

// CreateSplitRequest is the HTTP request body for creating a new split job.
type CreateSplitRequest struct {
	// AudioBase64 is the base64-encoded source WAV recording.
	AudioBase64 string `json:"audio_base64" validate:"required,base64"`
	// Prefix is used in segment filenames ({prefix}-{n}.wav). Optional.
	Prefix string `json:"prefix" validate:"omitempty,max=64"`
	// PushToS3 indicates whether to upload the segments to S3.
	PushToS3 bool `json:"push_to_s3"`
}

// CreateSplitResponse is the HTTP response after creating a split job.
type CreateSplitResponse struct {
	// ID is the unique identifier for the created job.
	ID string `json:"id"`
	// Status is the initial job status.
	Status string `json:"status"`
}

// SegmentResponse describes one exported speech segment.
type SegmentResponse struct {
	// Index is the 1-based segment number, matching its filename.
	Index int `json:"index"`
	// Start is the speech onset in seconds.
	Start float64 `json:"start"`
	// End is the speech offset in seconds.
	End float64 `json:"end"`
	// FileName is the segment file name.
	FileName string `json:"file_name"`
	// URL is the S3 URL of the segment (if push_to_s3=true).
	URL string `json:"url,omitempty"`
}

// SplitJobResponse is the HTTP response for getting split job details.
type SplitJobResponse struct {
	// ID is the unique identifier for the job.
	ID string `json:"id"`
	// Status is the current job status.
	Status string `json:"status"`
	// SegmentCount is the number of segments produced.
	SegmentCount int `json:"segment_count"`
	// Segments holds the per-segment details once the job completed.
	Segments []SegmentResponse `json:"segments,omitempty"`
	// Error contains any error message if the job failed.
	Error string `json:"error,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
}
