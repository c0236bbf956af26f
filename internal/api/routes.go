package api

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/kofferdahl/bme590hrm/internal/api/handlers"
	"github.com/kofferdahl/bme590hrm/internal/pipeline"
	"github.com/kofferdahl/bme590hrm/internal/repository"
	"github.com/kofferdahl/bme590hrm/internal/storage"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(router *chi.Mux, api huma.API, s3Service storage.S3Service, recordingRepo repository.RecordingRepository, pipelineSvc pipeline.Service) {
	// Initialize handlers
	recordingHandler := handlers.NewRecordingHandler(recordingRepo, s3Service, pipelineSvc)

	// Register recording routes
	huma.Register(api, huma.Operation{
		OperationID: "createRecording",
		Method:      http.MethodPost,
		Path:        "/api/recordings",
		Summary:     "Create a new recording run",
		Description: "Registers an ECG recording and returns an upload URL for the CSV strip",
		Tags:        []string{"Recording"},
	}, recordingHandler.CreateRecording)

	huma.Register(api, huma.Operation{
		OperationID: "getRecordingStatus",
		Method:      http.MethodGet,
		Path:        "/api/recordings/{id}/status",
		Summary:     "Get recording status",
		Description: "Returns the current status and progress of a recording run",
		Tags:        []string{"Recording"},
	}, recordingHandler.GetRecordingStatus)

	huma.Register(api, huma.Operation{
		OperationID: "getRecordingMetrics",
		Method:      http.MethodGet,
		Path:        "/api/recordings/{id}/metrics",
		Summary:     "Get heart rate metrics",
		Description: "Returns the complete heart rate metrics for a processed recording",
		Tags:        []string{"Recording"},
	}, recordingHandler.GetRecordingMetrics)

	huma.Register(api, huma.Operation{
		OperationID: "startProcessing",
		Method:      http.MethodPost,
		Path:        "/api/recordings/{id}/process",
		Summary:     "Start processing a recording",
		Description: "Starts beat detection on an uploaded CSV strip",
		Tags:        []string{"Recording"},
	}, recordingHandler.StartProcessing)
}
