package interfaces

import (
	"context"

	"github.com/m-mizutani/deepcheck/pkg/domain/model"
)

// AnalysisService is the remote endpoint consumed by the upload controller
type AnalysisService interface {
	// Analyze sends the candidate and returns the parsed result.
	// Failures are *model.AnalysisError of kind AnalysisServiceError.
	Analyze(ctx context.Context, candidate *model.UploadCandidate) (*model.AnalysisResult, error)
}

// View receives every state produced by the upload controller
type View interface {
	Render(ctx context.Context, state model.UIState)
}

// Detector is the remote deepfake detection API used by the server
type Detector interface {
	Detect(ctx context.Context, upload *model.MediaUpload) (*model.DetectionOutcome, error)
}

// RecordRepository stores completed analyses
type RecordRepository interface {
	PutRecord(ctx context.Context, record *model.AnalysisRecord) error
	// GetRecord returns nil without error when the record does not exist
	GetRecord(ctx context.Context, requestID string) (*model.AnalysisRecord, error)
}

// MediaArchive keeps a copy of uploaded files
type MediaArchive interface {
	// Put stores the upload and returns its URI
	Put(ctx context.Context, requestID string, upload *model.MediaUpload) (string, error)
}
