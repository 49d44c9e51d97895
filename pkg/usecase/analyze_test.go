package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/deepcheck/pkg/domain/model"
	"github.com/m-mizutani/deepcheck/pkg/infra/memory"
	"github.com/m-mizutani/deepcheck/pkg/usecase"
	"github.com/m-mizutani/gt"
)

type detectorMock struct {
	DetectFunc func(ctx context.Context, upload *model.MediaUpload) (*model.DetectionOutcome, error)
	uploads    []*model.MediaUpload
}

func (m *detectorMock) Detect(ctx context.Context, upload *model.MediaUpload) (*model.DetectionOutcome, error) {
	m.uploads = append(m.uploads, upload)
	return m.DetectFunc(ctx, upload)
}

type archiveMock struct {
	PutFunc func(ctx context.Context, requestID string, upload *model.MediaUpload) (string, error)
}

func (m *archiveMock) Put(ctx context.Context, requestID string, upload *model.MediaUpload) (string, error) {
	return m.PutFunc(ctx, requestID, upload)
}

func detectWith(outcome model.DetectionOutcome) *detectorMock {
	return &detectorMock{
		DetectFunc: func(ctx context.Context, upload *model.MediaUpload) (*model.DetectionOutcome, error) {
			o := outcome
			return &o, nil
		},
	}
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestAnalyze_Success(t *testing.T) {
	ctx := context.Background()
	score := 0.91
	detector := detectWith(model.DetectionOutcome{
		RequestID: "req-1",
		MediaID:   "media-1",
		Status:    "MANIPULATED",
		Score:     0.83,
		Models:    []model.DetectionModel{{Name: "m1", Status: "MANIPULATED", Score: &score}},
	})
	repo := memory.NewRecordRepository()
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	uc := usecase.NewAnalyze(detector,
		usecase.WithRecordRepository(repo),
		usecase.WithClock(func() time.Time { return now }),
	)

	result, err := uc.Analyze(ctx, "face.png", "image/png", pngHeader)
	gt.NoError(t, err)
	gt.V(t, result.RequestID).Equal("req-1")
	gt.V(t, result.MediaID).Equal("media-1")
	gt.V(t, result.Status).Equal("MANIPULATED")
	gt.V(t, result.FileType).Equal(model.CategoryImage)
	gt.V(t, result.Score).Equal(model.Score(0.83))
	gt.V(t, result.Models[0]).Equal(model.ModelVerdict{Name: "m1", Status: "MANIPULATED", Score: 0.91})

	gt.A(t, detector.uploads).Length(1)
	gt.V(t, detector.uploads[0].Category).Equal(model.CategoryImage)

	record, err := uc.GetRecord(ctx, "req-1")
	gt.NoError(t, err)
	gt.V(t, record).Equal(&model.AnalysisRecord{
		RequestID:  "req-1",
		MediaID:    "media-1",
		FileName:   "face.png",
		Category:   model.CategoryImage,
		Size:       int64(len(pngHeader)),
		Status:     "MANIPULATED",
		Score:      0.83,
		ModelCount: 1,
		CreatedAt:  now,
	})
}

func TestAnalyze_SniffsGenericContentType(t *testing.T) {
	detector := detectWith(model.DetectionOutcome{RequestID: "r"})
	uc := usecase.NewAnalyze(detector)

	result, err := uc.Analyze(context.Background(), "upload", "application/octet-stream", pngHeader)
	gt.NoError(t, err)
	gt.V(t, result.FileType).Equal(model.CategoryImage)
	gt.V(t, detector.uploads[0].MIMEType).Equal("image/png")
}

func TestAnalyze_ExtensionFallback(t *testing.T) {
	detector := detectWith(model.DetectionOutcome{RequestID: "r"})
	uc := usecase.NewAnalyze(detector)

	result, err := uc.Analyze(context.Background(), "clip.mov", "application/x-unknown", []byte("moov"))
	gt.NoError(t, err)
	gt.V(t, result.FileType).Equal(model.CategoryVideo)
}

func TestAnalyze_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		fileName   string
		mimeType   string
		content    []byte
		wantKind   model.ErrorKind
		wantDetail string
	}{
		{
			name:       "unsupported extension",
			fileName:   "report.pdf",
			mimeType:   "application/pdf",
			content:    []byte("%PDF-1.7"),
			wantKind:   model.ErrKindUnsupportedType,
			wantDetail: "Unsupported file type: .pdf",
		},
		{
			name:       "text too large",
			fileName:   "big.txt",
			mimeType:   "text/plain",
			content:    bytes.Repeat([]byte("a"), int(5*model.MB)+1),
			wantKind:   model.ErrKindFileTooLarge,
			wantDetail: "File size exceeds 5.0MB limit for text files",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detector := detectWith(model.DetectionOutcome{})
			uc := usecase.NewAnalyze(detector)

			_, err := uc.Analyze(context.Background(), tt.fileName, tt.mimeType, tt.content)
			gt.True(t, model.IsKind(err, tt.wantKind))
			gt.V(t, model.UserMessage(err)).Equal(tt.wantDetail)
			gt.A(t, detector.uploads).Length(0)
		})
	}
}

func TestAnalyze_DetectorFailure(t *testing.T) {
	detector := &detectorMock{
		DetectFunc: func(ctx context.Context, upload *model.MediaUpload) (*model.DetectionOutcome, error) {
			return nil, errors.New("upstream unavailable")
		},
	}
	uc := usecase.NewAnalyze(detector)

	_, err := uc.Analyze(context.Background(), "a.wav", "audio/wav", []byte("RIFF"))
	gt.Error(t, err)
	_, typed := model.AsAnalysisError(err)
	gt.False(t, typed)
}

func TestAnalyze_GeneratesRequestID(t *testing.T) {
	uc := usecase.NewAnalyze(detectWith(model.DetectionOutcome{Score: 0.2}))

	result, err := uc.Analyze(context.Background(), "a.txt", "text/plain", []byte("hello"))
	gt.NoError(t, err)
	_, parseErr := uuid.Parse(result.RequestID)
	gt.NoError(t, parseErr)
}

func TestAnalyze_Archive(t *testing.T) {
	ctx := context.Background()

	t.Run("stores archive URI in record", func(t *testing.T) {
		archive := &archiveMock{
			PutFunc: func(ctx context.Context, requestID string, upload *model.MediaUpload) (string, error) {
				return "gs://bucket/uploads/" + requestID + "/" + upload.FileName, nil
			},
		}
		uc := usecase.NewAnalyze(detectWith(model.DetectionOutcome{RequestID: "req-a"}), usecase.WithArchive(archive))

		_, err := uc.Analyze(ctx, "a.txt", "text/plain", []byte("hello"))
		gt.NoError(t, err)

		record, err := uc.GetRecord(ctx, "req-a")
		gt.NoError(t, err)
		gt.V(t, record.ArchiveURI).Equal("gs://bucket/uploads/req-a/a.txt")
	})

	t.Run("archive failure does not fail the analysis", func(t *testing.T) {
		archive := &archiveMock{
			PutFunc: func(ctx context.Context, requestID string, upload *model.MediaUpload) (string, error) {
				return "", errors.New("bucket not found")
			},
		}
		uc := usecase.NewAnalyze(detectWith(model.DetectionOutcome{RequestID: "req-b"}), usecase.WithArchive(archive))

		result, err := uc.Analyze(ctx, "a.txt", "text/plain", []byte("hello"))
		gt.NoError(t, err)
		gt.V(t, result.RequestID).Equal("req-b")

		record, err := uc.GetRecord(ctx, "req-b")
		gt.NoError(t, err)
		gt.V(t, record.ArchiveURI).Equal("")
	})
}
