package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kofferdahl/bme590hrm/internal/pipeline"
	"github.com/kofferdahl/bme590hrm/internal/repository"
	"github.com/kofferdahl/bme590hrm/internal/storage"
	"github.com/kofferdahl/bme590hrm/pkg/models"
)

// RecordingHandler handles recording-related HTTP requests
type RecordingHandler struct {
	repo        repository.RecordingRepository
	s3Service   storage.S3Service
	pipelineSvc pipeline.Service
}

// NewRecordingHandler creates a new recording handler
func NewRecordingHandler(repo repository.RecordingRepository, s3Service storage.S3Service, pipelineSvc pipeline.Service) *RecordingHandler {
	return &RecordingHandler{
		repo:        repo,
		s3Service:   s3Service,
		pipelineSvc: pipelineSvc,
	}
}

// CreateRecording registers a new ECG recording run and returns an upload URL
func (h *RecordingHandler) CreateRecording(ctx context.Context, req *models.CreateRecordingRequest) (*models.CreateRecordingResponse, error) {
	log.Info().Int64("fileSize", req.Body.FileSize).Str("sessionID", req.Body.SessionID).Msg("Creating new recording run")

	recordingID := uuid.New()
	csvKey := fmt.Sprintf("strips/%s.csv", recordingID)

	if req.Body.FileSize < 4 {
		return nil, huma.Error400BadRequest("Strip too small to contain any samples.", nil)
	}
	if req.Body.FileSize > 20*1024*1024 {
		return nil, huma.Error400BadRequest("Strip too large. Please split the recording.", nil)
	}
	if req.Body.WindowStart != nil && req.Body.WindowEnd != nil && *req.Body.WindowStart > *req.Body.WindowEnd {
		return nil, huma.Error400BadRequest("Analysis window start must not exceed its end.", nil)
	}

	uploadURL, err := h.s3Service.GenerateUploadURL(ctx, csvKey, req.Body.MimeType)
	if err != nil {
		if strings.Contains(err.Error(), "invalid content type") {
			return nil, huma.Error400BadRequest("Strip format not supported. Please upload a CSV file.", err)
		}
		return nil, huma.Error400BadRequest("Failed to prepare upload. Please try again.", err)
	}

	recording := &models.Recording{
		ID:          recordingID.String(),
		SessionID:   req.Body.SessionID,
		Status:      "pending",
		Progress:    0,
		CSVS3Key:    &csvKey,
		WindowStart: req.Body.WindowStart,
		WindowEnd:   req.Body.WindowEnd,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := h.repo.Create(ctx, recording); err != nil {
		return nil, huma.Error500InternalServerError("Failed to create recording", err)
	}

	log.Info().Str("recordingID", recordingID.String()).Msg("Recording run created, returning upload URL")
	return &models.CreateRecordingResponse{
		Body: models.CreateRecordingResponseBody{
			ID:        recording.ID,
			UploadURL: uploadURL,
			ExpiresIn: int((15 * time.Minute).Seconds()),
		},
	}, nil
}

// GetRecordingStatus returns the current status of a recording run
func (h *RecordingHandler) GetRecordingStatus(ctx context.Context, req *models.GetRecordingStatusRequest) (*models.GetRecordingStatusResponse, error) {
	recordingID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid recording ID", err)
	}

	recording, err := h.repo.GetByID(ctx, recordingID)
	if err != nil {
		return nil, huma.Error404NotFound("Recording not found", err)
	}

	message := h.generateStatusMessage(recording.Status, recording.Progress)

	var metricsID *string
	if recording.Status == "completed" {
		metrics, err := h.repo.GetMetrics(ctx, recordingID)
		if err == nil && metrics != nil {
			metricsID = &metrics.ID
		}
	}

	return &models.GetRecordingStatusResponse{
		Body: models.GetRecordingStatusResponseBody{
			ID:        recording.ID,
			Status:    recording.Status,
			Progress:  recording.Progress,
			Message:   message,
			MetricsID: metricsID,
		},
	}, nil
}

// GetRecordingMetrics returns the heart rate metrics of a completed run
func (h *RecordingHandler) GetRecordingMetrics(ctx context.Context, req *models.GetRecordingMetricsRequest) (*models.GetRecordingMetricsResponse, error) {
	recordingID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid recording ID", err)
	}

	recording, err := h.repo.GetByID(ctx, recordingID)
	if err != nil {
		return nil, huma.Error404NotFound("Recording not found", err)
	}

	if recording.Status != "completed" {
		return nil, huma.Error409Conflict("Recording not yet processed",
			fmt.Errorf("recording status is %s", recording.Status))
	}

	metrics, err := h.repo.GetMetrics(ctx, recordingID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to get metrics", err)
	}

	return &models.GetRecordingMetricsResponse{
		Body: models.GetRecordingMetricsResponseBody{
			ID:          metrics.ID,
			VoltageMin:  metrics.VoltageMin,
			VoltageMax:  metrics.VoltageMax,
			Duration:    metrics.Duration,
			Beats:       metrics.Beats,
			NumBeats:    metrics.NumBeats,
			MeanHRBPM:   metrics.MeanHRBPM,
			WindowStart: metrics.WindowStart,
			WindowEnd:   metrics.WindowEnd,
			IsValid:     metrics.IsValid,
			Flags:       metrics.Flags,
			CreatedAt:   metrics.CreatedAt,
		},
	}, nil
}

// StartProcessing starts processing an uploaded CSV strip
func (h *RecordingHandler) StartProcessing(ctx context.Context, req *models.StartProcessingRequest) (*models.StartProcessingResponse, error) {
	log.Info().Str("recordingID", req.ID).Msg("Processing start request received")
	recordingID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid recording ID", err)
	}

	_, err = h.repo.GetByID(ctx, recordingID)
	if err != nil {
		return nil, huma.Error404NotFound("Recording not found", err)
	}

	// Process in background; failures land on the run record. The goroutine
	// is outside the router's Recoverer, so a panic here would take down the
	// whole process without its own recover.
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Str("recordingID", recordingID.String()).Interface("panic", r).Msg("Processing panicked")
				h.repo.UpdateError(context.Background(), recordingID, "Processing failed unexpectedly")
			}
		}()
		err := h.pipelineSvc.ProcessRecording(context.Background(), recordingID)
		if err != nil {
			h.repo.UpdateError(context.Background(), recordingID, fmt.Sprintf("Processing failed: %v", err))
		}
	}()

	return &models.StartProcessingResponse{
		Body: struct {
			Message string `json:"message" doc:"Confirmation message"`
		}{
			Message: "Processing started successfully",
		},
	}, nil
}

// generateStatusMessage creates a human-readable status message
func (h *RecordingHandler) generateStatusMessage(status string, progress int) string {
	switch status {
	case "pending":
		return "Recording queued for processing..."
	case "processing":
		if progress < 25 {
			return "Starting analysis..."
		} else if progress < 50 {
			return "Downloading CSV strip..."
		} else if progress < 80 {
			return "Sanitizing signal..."
		} else {
			return "Detecting beats..."
		}
	case "completed":
		return "Analysis complete!"
	case "failed":
		return "Analysis failed. Please try again."
	default:
		return "Unknown status"
	}
}
