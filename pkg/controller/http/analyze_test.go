package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	controller "github.com/m-mizutani/deepcheck/pkg/controller/http"
	"github.com/m-mizutani/deepcheck/pkg/domain/model"
	"github.com/m-mizutani/deepcheck/pkg/usecase"
	"github.com/m-mizutani/gt"
)

type detectorMock struct {
	DetectFunc func(ctx context.Context, upload *model.MediaUpload) (*model.DetectionOutcome, error)
}

func (m *detectorMock) Detect(ctx context.Context, upload *model.MediaUpload) (*model.DetectionOutcome, error) {
	return m.DetectFunc(ctx, upload)
}

func newTestServer(t *testing.T, detector *detectorMock, opts ...controller.Option) *controller.Server {
	t.Helper()
	server, err := controller.NewServer(context.Background(), usecase.NewAnalyze(detector), opts...)
	gt.NoError(t, err)
	return server
}

func multipartBody(t *testing.T, field, fileName, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+fileName+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	gt.NoError(t, err)
	_, err = part.Write(content)
	gt.NoError(t, err)
	gt.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func postAnalyze(t *testing.T, server *controller.Server, field, fileName, contentType string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, field, fileName, contentType, content)
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", ct)
	return serveChecked(t, server, "/analyze", req)
}

func decodeDetail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Detail string `json:"detail"`
	}
	gt.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp.Detail
}

func TestAnalyzeHandler_Success(t *testing.T) {
	score := 0.12
	var received *model.MediaUpload
	detector := &detectorMock{
		DetectFunc: func(ctx context.Context, upload *model.MediaUpload) (*model.DetectionOutcome, error) {
			received = upload
			return &model.DetectionOutcome{
				RequestID: "req-1",
				MediaID:   "media-1",
				Status:    "AUTHENTIC",
				Score:     0.2,
				Models:    []model.DetectionModel{{Name: "m1", Status: "AUTHENTIC", Score: &score}},
			}, nil
		},
	}
	server := newTestServer(t, detector)

	w := postAnalyze(t, server, "file", "voice.mp3", "audio/mpeg", []byte("ID3"))
	gt.V(t, w.Code).Equal(http.StatusOK)

	var result model.AnalysisResult
	gt.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	gt.V(t, result.Score).Equal(model.Score(0.2))
	gt.V(t, result.RequestID).Equal("req-1")
	gt.V(t, result.FileType).Equal(model.CategoryAudio)
	gt.A(t, result.Models).Length(1)
	gt.V(t, result.Models[0].Score).Equal(model.Score(0.12))

	gt.V(t, received.FileName).Equal("voice.mp3")
	gt.V(t, received.MIMEType).Equal("audio/mpeg")
	gt.V(t, string(received.Content)).Equal("ID3")

	t.Run("stored record is readable", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/analyses/req-1", nil)
		w := serveChecked(t, server, "/analyses/{requestID}", req)
		gt.V(t, w.Code).Equal(http.StatusOK)

		var record model.AnalysisRecord
		gt.NoError(t, json.NewDecoder(w.Body).Decode(&record))
		gt.V(t, record.FileName).Equal("voice.mp3")
		gt.V(t, record.ModelCount).Equal(1)
	})
}

func TestAnalyzeHandler_Errors(t *testing.T) {
	failing := &detectorMock{
		DetectFunc: func(ctx context.Context, upload *model.MediaUpload) (*model.DetectionOutcome, error) {
			return nil, errors.New("quota exceeded at https://detector.internal/api/media/users/req-9")
		},
	}

	tests := []struct {
		name        string
		field       string
		fileName    string
		contentType string
		content     []byte
		wantStatus  int
		wantDetail  string
	}{
		{
			name:        "unsupported type",
			field:       "file",
			fileName:    "doc.pdf",
			contentType: "application/pdf",
			content:     []byte("%PDF"),
			wantStatus:  http.StatusBadRequest,
			wantDetail:  "Unsupported file type: .pdf",
		},
		{
			name:        "text too large",
			field:       "file",
			fileName:    "notes.txt",
			contentType: "text/plain",
			content:     bytes.Repeat([]byte("x"), int(5*model.MB)+1),
			wantStatus:  http.StatusBadRequest,
			wantDetail:  "File size exceeds 5.0MB limit for text files",
		},
		{
			name:        "missing file field",
			field:       "upload",
			fileName:    "a.png",
			contentType: "image/png",
			content:     []byte("png"),
			wantStatus:  http.StatusBadRequest,
			wantDetail:  "Missing file field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, failing)
			w := postAnalyze(t, server, tt.field, tt.fileName, tt.contentType, tt.content)
			gt.V(t, w.Code).Equal(tt.wantStatus)
			gt.V(t, decodeDetail(t, w)).Equal(tt.wantDetail)
		})
	}

	t.Run("detector failure", func(t *testing.T) {
		server := newTestServer(t, failing)
		w := postAnalyze(t, server, "file", "a.png", "image/png", []byte("png"))
		gt.V(t, w.Code).Equal(http.StatusInternalServerError)
		detail := decodeDetail(t, w)
		gt.V(t, detail).Equal("Analysis by the detection service failed")
		gt.False(t, strings.Contains(detail, "detector.internal"))
	})

	t.Run("body over the upload limit", func(t *testing.T) {
		server := newTestServer(t, failing, controller.WithMaxUploadSize(1024))
		w := postAnalyze(t, server, "file", "a.txt", "text/plain", bytes.Repeat([]byte("x"), 4096))
		gt.V(t, w.Code).Equal(http.StatusRequestEntityTooLarge)
	})
}

func TestGetRecord_NotFound(t *testing.T) {
	server := newTestServer(t, &detectorMock{})

	req := httptest.NewRequest(http.MethodGet, "/analyses/unknown", nil)
	w := serveChecked(t, server, "/analyses/{requestID}", req)

	gt.V(t, w.Code).Equal(http.StatusNotFound)
	gt.V(t, decodeDetail(t, w)).Equal("Analysis not found")
}
