package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kofferdahl/bme590hrm/pkg/models"
)

// MockRecordingRepository implements repository.RecordingRepository for testing
type MockRecordingRepository struct {
	mock.Mock
}

func (m *MockRecordingRepository) Create(ctx context.Context, recording *models.Recording) error {
	args := m.Called(ctx, recording)
	return args.Error(0)
}

func (m *MockRecordingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Recording, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*models.Recording), args.Error(1)
}

func (m *MockRecordingRepository) GetBySessionID(ctx context.Context, sessionID string) ([]*models.Recording, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).([]*models.Recording), args.Error(1)
}

func (m *MockRecordingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error {
	args := m.Called(ctx, id, status, progress)
	return args.Error(0)
}

func (m *MockRecordingRepository) UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error {
	args := m.Called(ctx, id, errorMsg)
	return args.Error(0)
}

func (m *MockRecordingRepository) StoreMetrics(ctx context.Context, metrics *models.HeartRateMetrics) error {
	args := m.Called(ctx, metrics)
	return args.Error(0)
}

func (m *MockRecordingRepository) GetMetrics(ctx context.Context, recordingID uuid.UUID) (*models.HeartRateMetrics, error) {
	args := m.Called(ctx, recordingID)
	return args.Get(0).(*models.HeartRateMetrics), args.Error(1)
}

// MockS3Service implements storage.S3Service for testing
type MockS3Service struct {
	mock.Mock
}

func (m *MockS3Service) GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error) {
	args := m.Called(ctx, key, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockS3Service) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockS3Service) DownloadFile(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockS3Service) DeleteFile(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func pendingRecording(id uuid.UUID, key string) *models.Recording {
	return &models.Recording{
		ID:        id.String(),
		SessionID: "test-session-123",
		Status:    "pending",
		CSVS3Key:  &key,
	}
}

// strip with one spike per second for ten seconds, sampled every 100ms
func testStrip() []byte {
	var out []byte
	for i := 0; i <= 100; i++ {
		ts := float64(i) / 10
		v := 0.1
		if i%10 == 5 {
			v = 10
		}
		out = append(out, []byte(fmt.Sprintf("%g,%g\n", ts, v))...)
	}
	return out
}

// storedMetrics digs the metrics argument out of the StoreMetrics call.
func storedMetrics(t *testing.T, m *MockRecordingRepository) *models.HeartRateMetrics {
	t.Helper()
	for _, call := range m.Calls {
		if call.Method == "StoreMetrics" {
			return call.Arguments.Get(1).(*models.HeartRateMetrics)
		}
	}
	t.Fatal("StoreMetrics was not called")
	return nil
}

func TestProcessRecordingHappyPath(t *testing.T) {
	recordingID := uuid.New()
	mockRepo := &MockRecordingRepository{}
	mockS3 := &MockS3Service{}

	mockRepo.On("UpdateStatus", mock.Anything, recordingID, "processing", mock.Anything).Return(nil)
	mockRepo.On("GetByID", mock.Anything, recordingID).Return(pendingRecording(recordingID, "strips/test.csv"), nil)
	mockS3.On("DownloadFile", mock.Anything, "strips/test.csv").Return(testStrip(), nil)
	mockRepo.On("StoreMetrics", mock.Anything, mock.AnythingOfType("*models.HeartRateMetrics")).Return(nil)
	mockRepo.On("UpdateStatus", mock.Anything, recordingID, "completed", 100).Return(nil)

	svc := NewService(mockS3, mockRepo)
	err := svc.ProcessRecording(context.Background(), recordingID)
	require.NoError(t, err)

	mockRepo.AssertExpectations(t)
	mockS3.AssertExpectations(t)

	stored := storedMetrics(t, mockRepo)
	assert.Equal(t, 10, stored.NumBeats)
	assert.True(t, stored.IsValid)
	assert.InDelta(t, 10.0, stored.Duration, 1e-9)
}

func TestProcessRecordingMalformedStripFailsRun(t *testing.T) {
	recordingID := uuid.New()
	mockRepo := &MockRecordingRepository{}
	mockS3 := &MockS3Service{}

	// Half the time samples are blank: below the interpolation gate.
	csv := []byte("0,1\n,1\n2,1\n,1\n")

	mockRepo.On("UpdateStatus", mock.Anything, recordingID, "processing", mock.Anything).Return(nil)
	mockRepo.On("GetByID", mock.Anything, recordingID).Return(pendingRecording(recordingID, "strips/bad.csv"), nil)
	mockS3.On("DownloadFile", mock.Anything, "strips/bad.csv").Return(csv, nil)
	mockRepo.On("UpdateError", mock.Anything, recordingID, mock.MatchedBy(func(msg string) bool {
		return len(msg) > 0
	})).Return(nil)

	svc := NewService(mockS3, mockRepo)
	err := svc.ProcessRecording(context.Background(), recordingID)

	// Data problems fail the run record, not the call.
	require.NoError(t, err)
	mockRepo.AssertCalled(t, "UpdateError", mock.Anything, recordingID, mock.Anything)
	mockRepo.AssertNotCalled(t, "StoreMetrics", mock.Anything, mock.Anything)
}

func TestProcessRecordingEmptyStripFailsRun(t *testing.T) {
	recordingID := uuid.New()
	mockRepo := &MockRecordingRepository{}
	mockS3 := &MockS3Service{}

	// An empty upload parses to empty arrays; the run must fail cleanly.
	mockRepo.On("UpdateStatus", mock.Anything, recordingID, "processing", mock.Anything).Return(nil)
	mockRepo.On("GetByID", mock.Anything, recordingID).Return(pendingRecording(recordingID, "strips/empty.csv"), nil)
	mockS3.On("DownloadFile", mock.Anything, "strips/empty.csv").Return([]byte{}, nil)
	mockRepo.On("UpdateError", mock.Anything, recordingID, mock.Anything).Return(nil)

	svc := NewService(mockS3, mockRepo)
	err := svc.ProcessRecording(context.Background(), recordingID)

	require.NoError(t, err)
	mockRepo.AssertCalled(t, "UpdateError", mock.Anything, recordingID, mock.Anything)
	mockRepo.AssertNotCalled(t, "StoreMetrics", mock.Anything, mock.Anything)
}

func TestProcessRecordingDownloadFailureFailsRun(t *testing.T) {
	recordingID := uuid.New()
	mockRepo := &MockRecordingRepository{}
	mockS3 := &MockS3Service{}

	mockRepo.On("UpdateStatus", mock.Anything, recordingID, "processing", mock.Anything).Return(nil)
	mockRepo.On("GetByID", mock.Anything, recordingID).Return(pendingRecording(recordingID, "strips/missing.csv"), nil)
	mockS3.On("DownloadFile", mock.Anything, "strips/missing.csv").Return([]byte(nil), assert.AnError)
	mockRepo.On("UpdateError", mock.Anything, recordingID, "Failed to download CSV strip").Return(nil)

	svc := NewService(mockS3, mockRepo)
	err := svc.ProcessRecording(context.Background(), recordingID)

	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestProcessRecordingWindowFallback(t *testing.T) {
	recordingID := uuid.New()
	mockRepo := &MockRecordingRepository{}
	mockS3 := &MockS3Service{}

	start, end := 0.0, 500.0 // far past the 10s strip
	rec := pendingRecording(recordingID, "strips/test.csv")
	rec.WindowStart = &start
	rec.WindowEnd = &end

	mockRepo.On("UpdateStatus", mock.Anything, recordingID, "processing", mock.Anything).Return(nil)
	mockRepo.On("GetByID", mock.Anything, recordingID).Return(rec, nil)
	mockS3.On("DownloadFile", mock.Anything, "strips/test.csv").Return(testStrip(), nil)
	mockRepo.On("StoreMetrics", mock.Anything, mock.AnythingOfType("*models.HeartRateMetrics")).Return(nil)
	mockRepo.On("UpdateStatus", mock.Anything, recordingID, "completed", 100).Return(nil)

	svc := NewService(mockS3, mockRepo)
	require.NoError(t, svc.ProcessRecording(context.Background(), recordingID))

	stored := storedMetrics(t, mockRepo)
	assert.Equal(t, 0.0, stored.WindowStart)
	assert.InDelta(t, 10.0, stored.WindowEnd, 1e-9)
}
