package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/deepcheck/pkg/domain/interfaces"
	"github.com/m-mizutani/deepcheck/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

const (
	analyzePath = "/analyze"
	formField   = "file"

	// maxResponseSize bounds the JSON body read from the service
	maxResponseSize = 4 << 20
)

type client struct {
	endpoint   string
	httpClient *http.Client
}

// Option configures the client
type Option func(*client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(cl *client) {
		cl.httpClient = c
	}
}

// NewClient creates an AnalysisService that talks to endpoint (scheme://host[:port][/prefix])
func NewClient(endpoint string, opts ...Option) interfaces.AnalysisService {
	c := &client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Analyze posts the candidate as multipart/form-data and parses the JSON result
func (c *client) Analyze(ctx context.Context, candidate *model.UploadCandidate) (*model.AnalysisResult, error) {
	logger := ctxlog.From(ctx)

	body, contentType, err := encodeForm(candidate)
	if err != nil {
		return nil, model.NewAnalysisServiceError(0, "", err)
	}

	url := c.endpoint + analyzePath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, model.NewAnalysisServiceError(0, "", goerr.Wrap(err, "failed to create request", goerr.V("url", url)))
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	logger.Debug("Sending file to analysis service",
		"url", url,
		"file_name", candidate.Name,
		"size", candidate.Size,
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, model.NewAnalysisServiceError(0, "", goerr.Wrap(err, "failed to send request", goerr.V("url", url)))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, model.NewAnalysisServiceError(0, "", goerr.Wrap(err, "failed to read response body"))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := extractDetail(raw)
		logger.Warn("Analysis service returned error status",
			"status_code", resp.StatusCode,
			"detail", detail,
		)
		return nil, model.NewAnalysisServiceError(resp.StatusCode, detail,
			goerr.New("unexpected status code", goerr.V("status_code", resp.StatusCode)))
	}

	var result *model.AnalysisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, model.NewAnalysisServiceError(0, "", goerr.Wrap(err, "failed to decode analysis result"))
	}
	if result == nil {
		return nil, model.NewAnalysisServiceError(0, "", goerr.New("analysis result is null", goerr.V("status_code", resp.StatusCode)))
	}

	return result, nil
}

func encodeForm(candidate *model.UploadCandidate) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		formField, escapeQuotes(candidate.Name)))
	contentType := candidate.MIMEType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", goerr.Wrap(err, "failed to create form part")
	}
	if _, err := io.Copy(part, candidate.Reader()); err != nil {
		return nil, "", goerr.Wrap(err, "failed to write form part")
	}
	if err := w.Close(); err != nil {
		return nil, "", goerr.Wrap(err, "failed to close multipart writer")
	}

	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// extractDetail returns the "detail" field when it is a string
func extractDetail(raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}

	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err != nil {
		return ""
	}
	return detail
}
