package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/deepcheck/pkg/domain/interfaces"
	"github.com/m-mizutani/deepcheck/pkg/domain/model"
	"github.com/m-mizutani/deepcheck/pkg/infra/memory"
	"github.com/m-mizutani/deepcheck/pkg/utils/errutil"
	"github.com/m-mizutani/goerr/v2"
)

type analyzeUseCase struct {
	detector interfaces.Detector
	records  interfaces.RecordRepository
	archive  interfaces.MediaArchive
	policy   *model.Policy
	now      func() time.Time
}

// AnalyzeOption configures the analyze use case
type AnalyzeOption func(*analyzeUseCase)

// WithRecordRepository sets where completed analyses are stored
func WithRecordRepository(repo interfaces.RecordRepository) AnalyzeOption {
	return func(uc *analyzeUseCase) {
		uc.records = repo
	}
}

// WithArchive enables archiving of uploaded files
func WithArchive(archive interfaces.MediaArchive) AnalyzeOption {
	return func(uc *analyzeUseCase) {
		uc.archive = archive
	}
}

// WithAnalyzePolicy replaces the category policy
func WithAnalyzePolicy(policy *model.Policy) AnalyzeOption {
	return func(uc *analyzeUseCase) {
		uc.policy = policy
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) AnalyzeOption {
	return func(uc *analyzeUseCase) {
		uc.now = now
	}
}

// NewAnalyze creates the server side of the /analyze contract
func NewAnalyze(detector interfaces.Detector, opts ...AnalyzeOption) interfaces.AnalyzeUseCase {
	uc := &analyzeUseCase{
		detector: detector,
		records:  memory.NewRecordRepository(),
		policy:   model.DefaultPolicy(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Analyze validates the upload, runs the detector and stores the record
func (uc *analyzeUseCase) Analyze(ctx context.Context, fileName, mimeType string, content []byte) (*model.AnalysisResult, error) {
	logger := ctxlog.From(ctx)

	upload, err := uc.validate(fileName, mimeType, content)
	if err != nil {
		logger.Info("Rejected upload",
			"file_name", fileName,
			"mime_type", mimeType,
			"size", len(content),
			"error", err,
		)
		return nil, err
	}

	logger.Info("Analyzing upload",
		"file_name", upload.FileName,
		"mime_type", upload.MIMEType,
		"category", upload.Category,
		"size", len(upload.Content),
	)

	outcome, err := uc.detector.Detect(ctx, upload)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to run detector",
			goerr.V("file_name", upload.FileName),
			goerr.V("category", upload.Category),
		)
	}
	if outcome.RequestID == "" {
		outcome.RequestID = uuid.NewString()
	}

	result := outcome.ToResult(upload.Category)
	record := model.NewAnalysisRecord(upload, result, uc.now())

	if uc.archive != nil {
		uri, err := uc.archive.Put(ctx, result.RequestID, upload)
		if err != nil {
			errutil.Handle(ctx, "failed to archive upload", err)
		} else {
			record.ArchiveURI = uri
		}
	}

	if err := uc.records.PutRecord(ctx, record); err != nil {
		errutil.Handle(ctx, "failed to store analysis record", err)
	}

	logger.Info("Analysis finished",
		"request_id", result.RequestID,
		"media_id", result.MediaID,
		"status", result.Status,
		"score", float64(result.Score),
		"model_count", len(result.Models),
	)

	return result, nil
}

// GetRecord returns a stored analysis, or nil if unknown
func (uc *analyzeUseCase) GetRecord(ctx context.Context, requestID string) (*model.AnalysisRecord, error) {
	record, err := uc.records.GetRecord(ctx, requestID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get analysis record", goerr.V("request_id", requestID))
	}
	return record, nil
}

func (uc *analyzeUseCase) validate(fileName, mimeType string, content []byte) (*model.MediaUpload, error) {
	mediaType := strings.TrimSpace(mimeType)
	if mediaType == "" || strings.HasPrefix(mediaType, "application/octet-stream") {
		mediaType = mimetype.Detect(content).String()
	}

	category, ok := uc.policy.ClassifyUpload(fileName, mediaType)
	if !ok {
		ext := strings.ToLower(filepath.Ext(fileName))
		e := model.NewUnsupportedTypeError(fileName, mediaType)
		e.Detail = "Unsupported file type: " + ext
		return nil, e
	}

	rule := uc.policy.Rule(category)
	size := int64(len(content))
	if rule != nil && size > rule.MaxSize {
		e := model.NewFileTooLargeError(category, size, rule.MaxSize)
		e.Detail = fmt.Sprintf("File size exceeds %.1fMB limit for %s files", float64(rule.MaxSize)/float64(model.MB), category)
		return nil, e
	}

	return &model.MediaUpload{
		FileName: fileName,
		MIMEType: mediaType,
		Category: category,
		Content:  content,
	}, nil
}
