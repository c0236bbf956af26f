package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/kofferdahl/bme590hrm/internal/repository"
	"github.com/kofferdahl/bme590hrm/pkg/models"
)

// PostgresRecordingRepository implements RecordingRepository for PostgreSQL
type PostgresRecordingRepository struct {
	db *sql.DB
}

// NewPostgresRecordingRepository creates a new PostgreSQL recording repository
func NewPostgresRecordingRepository(db *sql.DB) repository.RecordingRepository {
	return &PostgresRecordingRepository{db: db}
}

// Create inserts a new recording run record
func (r *PostgresRecordingRepository) Create(ctx context.Context, recording *models.Recording) error {
	query := `
		INSERT INTO recordings (id, session_id, status, progress, csv_s3_key, window_start, window_end, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		recording.ID,
		recording.SessionID,
		recording.Status,
		recording.Progress,
		recording.CSVS3Key,
		recording.WindowStart,
		recording.WindowEnd,
		recording.CreatedAt,
		recording.UpdatedAt)

	return err
}

// GetByID retrieves a recording run by ID
func (r *PostgresRecordingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Recording, error) {
	query := `
		SELECT id, session_id, status, progress, csv_s3_key, window_start, window_end, error_message, created_at, updated_at, completed_at
		FROM recordings
		WHERE id = $1`

	return scanRecording(r.db.QueryRowContext(ctx, query, id))
}

// GetBySessionID retrieves recording runs by session ID
func (r *PostgresRecordingRepository) GetBySessionID(ctx context.Context, sessionID string) ([]*models.Recording, error) {
	query := `
		SELECT id, session_id, status, progress, csv_s3_key, window_start, window_end, error_message, created_at, updated_at, completed_at
		FROM recordings
		WHERE session_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recordings []*models.Recording
	for rows.Next() {
		recording, err := scanRecording(rows)
		if err != nil {
			return nil, err
		}
		recordings = append(recordings, recording)
	}

	return recordings, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecording(row rowScanner) (*models.Recording, error) {
	var recording models.Recording
	var csvS3Key, errorMsg sql.NullString
	var windowStart, windowEnd sql.NullFloat64
	var completedAt sql.NullTime

	err := row.Scan(
		&recording.ID,
		&recording.SessionID,
		&recording.Status,
		&recording.Progress,
		&csvS3Key,
		&windowStart,
		&windowEnd,
		&errorMsg,
		&recording.CreatedAt,
		&recording.UpdatedAt,
		&completedAt)

	if err != nil {
		return nil, err
	}

	if csvS3Key.Valid {
		recording.CSVS3Key = &csvS3Key.String
	}
	if windowStart.Valid {
		recording.WindowStart = &windowStart.Float64
	}
	if windowEnd.Valid {
		recording.WindowEnd = &windowEnd.Float64
	}
	if errorMsg.Valid {
		recording.ErrorMsg = &errorMsg.String
	}
	if completedAt.Valid {
		recording.CompletedAt = &completedAt.Time
	}

	return &recording, nil
}

// UpdateStatus updates the status and progress of a recording run
func (r *PostgresRecordingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error {
	query := `
		UPDATE recordings
		SET status = $1, progress = $2, updated_at = NOW(),
		    completed_at = CASE WHEN $1 = 'completed' THEN NOW() ELSE completed_at END
		WHERE id = $3`

	_, err := r.db.ExecContext(ctx, query, status, progress, id)
	return err
}

// UpdateError marks a recording run as failed with an error message
func (r *PostgresRecordingRepository) UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error {
	query := `
		UPDATE recordings
		SET status = 'failed', error_message = $1, updated_at = NOW()
		WHERE id = $2`

	_, err := r.db.ExecContext(ctx, query, errorMsg, id)
	return err
}

// StoreMetrics stores the heart rate metrics for a recording run
func (r *PostgresRecordingRepository) StoreMetrics(ctx context.Context, metrics *models.HeartRateMetrics) error {
	beats, err := json.Marshal(metrics.Beats)
	if err != nil {
		return fmt.Errorf("failed to marshal beats: %w", err)
	}

	flags, err := json.Marshal(metrics.Flags)
	if err != nil {
		return fmt.Errorf("failed to marshal flags: %w", err)
	}

	query := `
		INSERT INTO heart_rate_metrics (id, recording_id, voltage_min, voltage_max, duration, beats, num_beats, mean_hr_bpm, window_start, window_end, is_valid, flags, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = r.db.ExecContext(ctx, query,
		metrics.ID,
		metrics.RecordingID,
		metrics.VoltageMin,
		metrics.VoltageMax,
		metrics.Duration,
		string(beats),
		metrics.NumBeats,
		metrics.MeanHRBPM,
		metrics.WindowStart,
		metrics.WindowEnd,
		metrics.IsValid,
		string(flags),
		metrics.CreatedAt)

	return err
}

// GetMetrics retrieves the heart rate metrics for a recording run
func (r *PostgresRecordingRepository) GetMetrics(ctx context.Context, recordingID uuid.UUID) (*models.HeartRateMetrics, error) {
	query := `
		SELECT id, recording_id, voltage_min, voltage_max, duration, beats, num_beats, mean_hr_bpm, window_start, window_end, is_valid, flags, created_at
		FROM heart_rate_metrics
		WHERE recording_id = $1`

	var metrics models.HeartRateMetrics
	var beatsStr, flagsStr sql.NullString

	err := r.db.QueryRowContext(ctx, query, recordingID).Scan(
		&metrics.ID,
		&metrics.RecordingID,
		&metrics.VoltageMin,
		&metrics.VoltageMax,
		&metrics.Duration,
		&beatsStr,
		&metrics.NumBeats,
		&metrics.MeanHRBPM,
		&metrics.WindowStart,
		&metrics.WindowEnd,
		&metrics.IsValid,
		&flagsStr,
		&metrics.CreatedAt)

	if err != nil {
		return nil, err
	}

	if beatsStr.Valid {
		var beats []float64
		if err := json.Unmarshal([]byte(beatsStr.String), &beats); err != nil {
			return nil, fmt.Errorf("failed to unmarshal beats: %w", err)
		}
		metrics.Beats = beats
	}
	if flagsStr.Valid {
		var flags []string
		if err := json.Unmarshal([]byte(flagsStr.String), &flags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal flags: %w", err)
		}
		metrics.Flags = flags
	}

	return &metrics, nil
}
