// Package pipeline orchestrates one recording run: fetch the CSV strip,
// sanitize the signal, resolve the analysis window, detect beats, and
// persist the resulting metrics.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kofferdahl/bme590hrm/internal/ecg"
	"github.com/kofferdahl/bme590hrm/internal/reader"
	"github.com/kofferdahl/bme590hrm/internal/repository"
	"github.com/kofferdahl/bme590hrm/internal/storage"
	"github.com/kofferdahl/bme590hrm/pkg/models"
)

type Service interface {
	ProcessRecording(ctx context.Context, recordingID uuid.UUID) error
}

type service struct {
	s3         storage.S3Service
	repository repository.RecordingRepository
}

func NewService(s3Service storage.S3Service, repo repository.RecordingRepository) Service {
	return &service{
		s3:         s3Service,
		repository: repo,
	}
}

// ProcessRecording runs the full analysis pipeline for one uploaded strip.
// Data problems (malformed CSV, unrecoverable signal) mark the run as
// failed and return nil; only infrastructure errors propagate. An
// out-of-range analysis window falls back to the full-recording window
// with a warning instead of failing the run.
func (s *service) ProcessRecording(ctx context.Context, recordingID uuid.UUID) error {
	if err := s.repository.UpdateStatus(ctx, recordingID, "processing", 10); err != nil {
		return err
	}

	recording, err := s.repository.GetByID(ctx, recordingID)
	if err != nil {
		return err
	}
	if recording.CSVS3Key == nil {
		s.repository.UpdateError(ctx, recordingID, "No CSV strip uploaded for this recording")
		return nil
	}

	if err := s.repository.UpdateStatus(ctx, recordingID, "processing", 25); err != nil {
		return err
	}

	csvData, err := s.s3.DownloadFile(ctx, *recording.CSVS3Key)
	if err != nil {
		s.repository.UpdateError(ctx, recordingID, "Failed to download CSV strip")
		return nil // Don't return error, status is updated to failed
	}

	times, voltages, err := reader.Parse(bytes.NewReader(csvData))
	if err != nil {
		s.repository.UpdateError(ctx, recordingID, fmt.Sprintf("Failed to parse CSV strip: %v", err))
		return nil
	}

	if err := s.repository.UpdateStatus(ctx, recordingID, "processing", 50); err != nil {
		return err
	}

	rec, err := ecg.Sanitize(times, voltages)
	if err != nil {
		var malformed *ecg.MalformedDataError
		if errors.As(err, &malformed) {
			s.repository.UpdateError(ctx, recordingID, fmt.Sprintf("Recording rejected: %v", malformed))
			return nil
		}
		return err
	}

	window := resolveWindow(rec, recording)

	if err := s.repository.UpdateStatus(ctx, recordingID, "processing", 80); err != nil {
		return err
	}

	metrics := ecg.Analyze(rec, window)
	if !metrics.IsValid {
		log.Warn().
			Str("recordingID", recordingID.String()).
			Int("numBeats", metrics.NumBeats).
			Float64("duration", metrics.Duration).
			Msg("Metrics flagged as physiologically implausible")
	}

	stored := &models.HeartRateMetrics{
		ID:          uuid.New().String(),
		RecordingID: recording.ID,
		VoltageMin:  metrics.VoltageMin,
		VoltageMax:  metrics.VoltageMax,
		Duration:    metrics.Duration,
		Beats:       metrics.Beats,
		NumBeats:    metrics.NumBeats,
		MeanHRBPM:   metrics.MeanHRBPM,
		WindowStart: metrics.Window.Start,
		WindowEnd:   metrics.Window.End,
		IsValid:     metrics.IsValid,
		Flags:       metrics.Flags,
		CreatedAt:   time.Now(),
	}

	if err := s.repository.StoreMetrics(ctx, stored); err != nil {
		return err
	}

	return s.repository.UpdateStatus(ctx, recordingID, "completed", 100)
}

// resolveWindow builds the analysis window from the run's requested bounds,
// falling back to the full recording when the request is out of range or
// absent. The fallback is recoverable and only logged.
func resolveWindow(rec ecg.Recording, recording *models.Recording) ecg.Window {
	var requested *ecg.Window
	if recording.WindowStart != nil && recording.WindowEnd != nil {
		requested = &ecg.Window{Start: *recording.WindowStart, End: *recording.WindowEnd}
	}

	window, err := ecg.ResolveWindow(rec, requested)
	if err != nil {
		var invalid *ecg.InvalidWindowError
		if errors.As(err, &invalid) {
			log.Warn().
				Str("recordingID", recording.ID).
				Float64("requestedStart", invalid.Start).
				Float64("requestedEnd", invalid.End).
				Float64("rangeMin", invalid.Min).
				Float64("rangeMax", invalid.Max).
				Msg("Requested window out of range, falling back to full recording")
		}
		window, _ = ecg.ResolveWindow(rec, nil)
	}
	return window
}
