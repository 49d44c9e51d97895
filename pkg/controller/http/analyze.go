package http

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/deepcheck/pkg/domain/interfaces"
	"github.com/m-mizutani/deepcheck/pkg/domain/model"
	"github.com/m-mizutani/deepcheck/pkg/utils/errutil"
	"github.com/m-mizutani/goerr/v2"
)

// detailAnalysisFailed is sent on unexpected failures. The full error is only logged.
const detailAnalysisFailed = "Analysis by the detection service failed"

// multipartMemory is how much of a multipart form is held in memory before spilling to disk
const multipartMemory = 32 << 20

// AnalyzeHandler serves the upload analysis endpoints
type AnalyzeHandler struct {
	analyzeUC     interfaces.AnalyzeUseCase
	maxUploadSize int64
}

// NewAnalyzeHandler creates a new AnalyzeHandler
func NewAnalyzeHandler(analyzeUC interfaces.AnalyzeUseCase, maxUploadSize int64) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzeUC:     analyzeUC,
		maxUploadSize: maxUploadSize,
	}
}

// Handle accepts a multipart upload in the "file" field and returns the analysis result
func (h *AnalyzeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			writeDetail(w, r, http.StatusRequestEntityTooLarge, "Request body is too large")
			return
		}
		logger.Warn("Invalid multipart request", "error", err)
		writeDetail(w, r, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, r, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		errutil.Handle(ctx, "failed to read uploaded file", goerr.Wrap(err, "failed to read uploaded file"))
		writeDetail(w, r, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	result, err := h.analyzeUC.Analyze(ctx, header.Filename, header.Header.Get("Content-Type"), content)
	if err != nil {
		if model.IsKind(err, model.ErrKindUnsupportedType) || model.IsKind(err, model.ErrKindFileTooLarge) {
			writeDetail(w, r, http.StatusBadRequest, model.UserMessage(err))
			return
		}
		errutil.Handle(ctx, "analysis failed", err)
		writeDetail(w, r, http.StatusInternalServerError, detailAnalysisFailed)
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}

// GetRecord returns a stored analysis record
func (h *AnalyzeHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := chi.URLParam(r, "requestID")

	record, err := h.analyzeUC.GetRecord(ctx, requestID)
	if err != nil {
		errutil.Handle(ctx, "failed to get analysis record", err)
		writeDetail(w, r, http.StatusInternalServerError, "Failed to get analysis record")
		return
	}
	if record == nil {
		writeDetail(w, r, http.StatusNotFound, "Analysis not found")
		return
	}

	writeJSON(w, r, http.StatusOK, record)
}
