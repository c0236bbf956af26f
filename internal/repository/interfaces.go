package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/kofferdahl/bme590hrm/pkg/models"
)

// RecordingRepository defines the interface for recording run data operations
type RecordingRepository interface {
	Create(ctx context.Context, recording *models.Recording) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Recording, error)
	GetBySessionID(ctx context.Context, sessionID string) ([]*models.Recording, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error
	UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error
	StoreMetrics(ctx context.Context, metrics *models.HeartRateMetrics) error
	GetMetrics(ctx context.Context, recordingID uuid.UUID) (*models.HeartRateMetrics, error)
}
