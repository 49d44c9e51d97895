package realitydefender

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/deepcheck/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

const (
	DefaultBaseURL      = "https://api.prd.realitydefender.xyz"
	DefaultPollInterval = 5 * time.Second
	DefaultMaxAttempts  = 120

	statusAnalyzing     = "ANALYZING"
	statusNotApplicable = "NOT_APPLICABLE"

	presignedPath = "/api/files/aws-presigned"
	mediaPath     = "/api/media/users/"

	maxErrorBody = 1024
)

// Client uploads media to the detection API and polls for the verdict
type Client struct {
	apiKey       string
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration
	maxAttempts  int
}

// Option configures Client
type Option func(*Client)

// WithBaseURL overrides the API base URL
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithPollInterval sets the wait between result polls
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		c.pollInterval = d
	}
}

// WithMaxAttempts sets how many times the result is polled before giving up
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		c.maxAttempts = n
	}
}

// New creates a detector client
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:       apiKey,
		baseURL:      DefaultBaseURL,
		httpClient:   &http.Client{Timeout: 2 * time.Minute},
		pollInterval: DefaultPollInterval,
		maxAttempts:  DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type presignedRequest struct {
	FileName string `json:"fileName"`
}

type presignedResponse struct {
	Code     string `json:"code"`
	Response struct {
		SignedURL string `json:"signedUrl"`
	} `json:"response"`
	RequestID string `json:"requestId"`
	MediaID   string `json:"mediaId"`
}

type mediaResponse struct {
	RequestID      string `json:"requestId"`
	MediaID        string `json:"mediaId"`
	ResultsSummary struct {
		Status   string `json:"status"`
		Metadata struct {
			FinalScore *float64 `json:"finalScore"`
		} `json:"metadata"`
	} `json:"resultsSummary"`
	Models []struct {
		Name       string   `json:"name"`
		Status     string   `json:"status"`
		FinalScore *float64 `json:"finalScore"`
	} `json:"models"`
}

// Detect uploads the file and waits for the analysis to finish
func (c *Client) Detect(ctx context.Context, upload *model.MediaUpload) (*model.DetectionOutcome, error) {
	logger := ctxlog.From(ctx)

	presigned, err := c.requestUpload(ctx, upload.FileName)
	if err != nil {
		return nil, err
	}

	logger.Debug("Got presigned upload URL",
		"request_id", presigned.RequestID,
		"media_id", presigned.MediaID,
	)

	if err := c.putFile(ctx, presigned.Response.SignedURL, upload); err != nil {
		return nil, err
	}

	media, err := c.waitResult(ctx, presigned.RequestID)
	if err != nil {
		return nil, err
	}

	outcome := &model.DetectionOutcome{
		RequestID: presigned.RequestID,
		MediaID:   presigned.MediaID,
		Status:    media.ResultsSummary.Status,
		Score:     normalize(media.ResultsSummary.Metadata.FinalScore),
	}
	if outcome.MediaID == "" {
		outcome.MediaID = media.MediaID
	}

	for _, m := range media.Models {
		if m.Status == statusNotApplicable {
			continue
		}
		dm := model.DetectionModel{Name: m.Name, Status: m.Status}
		if m.FinalScore != nil {
			score := normalize(m.FinalScore)
			dm.Score = &score
		}
		outcome.Models = append(outcome.Models, dm)
	}

	return outcome, nil
}

func (c *Client) requestUpload(ctx context.Context, fileName string) (*presignedResponse, error) {
	body, err := json.Marshal(presignedRequest{FileName: fileName})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal presigned request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+presignedPath, bytes.NewReader(body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create presigned request")
	}
	req.Header.Set("Content-Type", "application/json")

	var resp presignedResponse
	if err := c.doJSON(req, &resp); err != nil {
		return nil, goerr.Wrap(err, "failed to request upload URL", goerr.V("file_name", fileName))
	}
	if resp.Response.SignedURL == "" || resp.RequestID == "" {
		return nil, goerr.New("presigned response lacks signed URL or request ID",
			goerr.V("code", resp.Code))
	}
	return &resp, nil
}

func (c *Client) putFile(ctx context.Context, signedURL string, upload *model.MediaUpload) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, signedURL, bytes.NewReader(upload.Content))
	if err != nil {
		return goerr.Wrap(err, "failed to create upload request")
	}
	req.ContentLength = int64(len(upload.Content))

	// the signed URL carries its own credentials
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "failed to upload file", goerr.V("file_name", upload.FileName))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return goerr.New("unexpected status code on upload",
			goerr.V("status_code", resp.StatusCode),
			goerr.V("body", readSnippet(resp.Body)),
		)
	}
	return nil
}

func (c *Client) waitResult(ctx context.Context, requestID string) (*mediaResponse, error) {
	logger := ctxlog.From(ctx)
	u := c.baseURL + mediaPath + url.PathEscape(requestID)

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create result request")
		}

		var media mediaResponse
		if err := c.doJSON(req, &media); err != nil {
			return nil, goerr.Wrap(err, "failed to get result", goerr.V("request_id", requestID))
		}

		if media.ResultsSummary.Status != "" && media.ResultsSummary.Status != statusAnalyzing {
			logger.Debug("Detection finished",
				"request_id", requestID,
				"status", media.ResultsSummary.Status,
				"attempts", attempt,
			)
			return &media, nil
		}

		if attempt == c.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, goerr.Wrap(ctx.Err(), "stopped waiting for result", goerr.V("request_id", requestID))
		case <-time.After(c.pollInterval):
		}
	}

	return nil, goerr.New("timed out waiting for result",
		goerr.V("request_id", requestID),
		goerr.V("attempts", c.maxAttempts),
	)
}

func (c *Client) doJSON(req *http.Request, v any) error {
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "failed to send request", goerr.V("url", req.URL.String()))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return goerr.New("unexpected status code",
			goerr.V("status_code", resp.StatusCode),
			goerr.V("url", req.URL.String()),
			goerr.V("body", readSnippet(resp.Body)),
		)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return goerr.Wrap(err, "failed to decode response", goerr.V("url", req.URL.String()))
	}
	return nil
}

func readSnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return string(b)
}

// normalize converts the 0-100 API score into [0,1]
func normalize(v *float64) float64 {
	if v == nil {
		return 0
	}
	s := *v / 100
	switch {
	case s < 0:
		return 0
	case s > 1:
		return 1
	}
	return s
}
