package interfaces

import (
	"context"

	"github.com/m-mizutani/deepcheck/pkg/domain/model"
)

// AnalyzeUseCase defines the server side of the /analyze contract
type AnalyzeUseCase interface {
	// Analyze validates an uploaded file, submits it to the detector and returns the result
	Analyze(ctx context.Context, fileName, mimeType string, content []byte) (*model.AnalysisResult, error)

	// GetRecord returns a previously completed analysis
	GetRecord(ctx context.Context, requestID string) (*model.AnalysisRecord, error)
}
