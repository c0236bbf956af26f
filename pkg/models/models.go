package models

import (
	"time"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Body struct {
		Status  string    `json:"status" example:"healthy" doc:"Service health status"`
		Version string    `json:"version" example:"1.0.0" doc:"API version"`
		Time    time.Time `json:"time" doc:"Current server time"`
	}
}

// CreateRecordingRequestBody is the body of the create recording request
type CreateRecordingRequestBody struct {
	SessionID   string   `json:"session_id" minLength:"10" maxLength:"50" required:"true" doc:"Client session identifier"`
	FileSize    int64    `json:"file_size" minimum:"4" maximum:"20971520" required:"true" doc:"CSV strip size in bytes"`
	MimeType    string   `json:"mime_type" enum:"text/csv,text/plain,application/vnd.ms-excel" required:"true" doc:"CSV file MIME type"`
	WindowStart *float64 `json:"window_start,omitempty" doc:"Optional BPM window start in seconds"`
	WindowEnd   *float64 `json:"window_end,omitempty" doc:"Optional BPM window end in seconds"`
}

// CreateRecordingRequest represents a request to register a new ECG recording
type CreateRecordingRequest struct {
	Body CreateRecordingRequestBody
}

// CreateRecordingResponseBody is the body of the create recording response
type CreateRecordingResponseBody struct {
	ID        string `json:"id" doc:"Recording unique identifier"`
	UploadURL string `json:"upload_url" doc:"Pre-signed S3 URL for CSV upload"`
	ExpiresIn int    `json:"expires_in" doc:"URL expiration time in seconds"`
}

// CreateRecordingResponse represents the response from creating a recording
type CreateRecordingResponse struct {
	Body CreateRecordingResponseBody
}

// GetRecordingStatusRequest represents a request to get recording status
type GetRecordingStatusRequest struct {
	ID string `path:"id" doc:"Recording ID"`
}

// GetRecordingStatusResponseBody is the body of the status response
type GetRecordingStatusResponseBody struct {
	ID        string  `json:"id" doc:"Recording ID"`
	Status    string  `json:"status" enum:"pending,processing,completed,failed" doc:"Processing status"`
	Progress  int     `json:"progress" minimum:"0" maximum:"100" doc:"Processing progress percentage"`
	Message   string  `json:"message,omitempty" doc:"Human-readable status message"`
	MetricsID *string `json:"metrics_id,omitempty" doc:"Metrics ID when processing completes"`
}

// GetRecordingStatusResponse represents the current status of a recording
type GetRecordingStatusResponse struct {
	Body GetRecordingStatusResponseBody
}

// GetRecordingMetricsRequest represents a request to get recording metrics
type GetRecordingMetricsRequest struct {
	ID string `path:"id" doc:"Recording ID"`
}

// GetRecordingMetricsResponseBody is the body of the metrics response
type GetRecordingMetricsResponseBody struct {
	ID          string    `json:"id" doc:"Metrics ID"`
	VoltageMin  float64   `json:"voltage_min" doc:"Minimum voltage in mV"`
	VoltageMax  float64   `json:"voltage_max" doc:"Maximum voltage in mV"`
	Duration    float64   `json:"duration" doc:"Strip duration in seconds"`
	Beats       []float64 `json:"beats" doc:"Beat timestamps in seconds"`
	NumBeats    int       `json:"num_beats" doc:"Number of detected beats"`
	MeanHRBPM   float64   `json:"mean_hr_bpm" doc:"Mean heart rate over the analysis window"`
	WindowStart float64   `json:"window_start" doc:"Analysis window start in seconds"`
	WindowEnd   float64   `json:"window_end" doc:"Analysis window end in seconds"`
	IsValid     bool      `json:"is_valid" doc:"False when the beat count is not physiologically plausible"`
	Flags       []string  `json:"flags,omitempty" doc:"Advisory or invalidating conditions"`
	CreatedAt   time.Time `json:"created_at" doc:"Metrics creation timestamp"`
}

// GetRecordingMetricsResponse represents the complete heart rate metrics
type GetRecordingMetricsResponse struct {
	Body GetRecordingMetricsResponseBody
}

// StartProcessingRequest represents a request to start processing an uploaded strip
type StartProcessingRequest struct {
	ID string `path:"id" doc:"Recording ID"`
}

// StartProcessingResponse represents the response from starting processing
type StartProcessingResponse struct {
	Body struct {
		Message string `json:"message" doc:"Confirmation message"`
	}
}

// Recording represents the core recording run entity (for internal use)
type Recording struct {
	ID          string     `json:"id"`
	SessionID   string     `json:"session_id"`
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	CSVS3Key    *string    `json:"csv_s3_key,omitempty"`
	WindowStart *float64   `json:"window_start,omitempty"`
	WindowEnd   *float64   `json:"window_end,omitempty"`
	ErrorMsg    *string    `json:"error_message,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// HeartRateMetrics represents the stored metrics for a recording
type HeartRateMetrics struct {
	ID          string    `json:"id"`
	RecordingID string    `json:"recording_id"`
	VoltageMin  float64   `json:"voltage_min"`
	VoltageMax  float64   `json:"voltage_max"`
	Duration    float64   `json:"duration"`
	Beats       []float64 `json:"beats"`
	NumBeats    int       `json:"num_beats"`
	MeanHRBPM   float64   `json:"mean_hr_bpm"`
	WindowStart float64   `json:"window_start"`
	WindowEnd   float64   `json:"window_end"`
	IsValid     bool      `json:"is_valid"`
	Flags       []string  `json:"flags,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
