package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/deepcheck/pkg/domain/interfaces"
	"github.com/m-mizutani/deepcheck/pkg/domain/model"
	"github.com/m-mizutani/deepcheck/pkg/utils/async"
	"github.com/m-mizutani/goerr/v2"
)

// DefaultAnalysisTimeout bounds one request to the analysis service
const DefaultAnalysisTimeout = 5 * time.Minute

var (
	// ErrBusy is returned when a file is selected while another one is processing
	ErrBusy = goerr.New("analysis already in progress")

	// ErrDiscarded is returned when the attempt was reset before the response arrived
	ErrDiscarded = goerr.New("analysis discarded by reset")
)

// UploadController drives one upload-and-analyze transaction at a time and owns the UI state.
// Every transition is pushed to the View while the controller lock is held, so a View
// must not call back into the controller.
type UploadController struct {
	service interfaces.AnalysisService
	view    interfaces.View
	policy  *model.Policy
	timeout time.Duration

	mu      sync.Mutex
	state   model.UIState
	held    *model.UploadCandidate
	cancel  context.CancelFunc
	attempt uint64
}

// ControllerOption configures UploadController
type ControllerOption func(*UploadController)

// WithView sets the view that renders state transitions
func WithView(view interfaces.View) ControllerOption {
	return func(c *UploadController) {
		c.view = view
	}
}

// WithPolicy replaces the category policy
func WithPolicy(policy *model.Policy) ControllerOption {
	return func(c *UploadController) {
		c.policy = policy
	}
}

// WithTimeout sets the upper bound of one request
func WithTimeout(d time.Duration) ControllerOption {
	return func(c *UploadController) {
		c.timeout = d
	}
}

// NewUploadController creates a controller in the upload prompt phase
func NewUploadController(service interfaces.AnalysisService, opts ...ControllerOption) *UploadController {
	c := &UploadController{
		service: service,
		policy:  model.DefaultPolicy(),
		timeout: DefaultAnalysisTimeout,
		state:   model.InitialUIState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout <= 0 {
		c.timeout = DefaultAnalysisTimeout
	}
	return c
}

// State returns a snapshot of the current UI state
func (c *UploadController) State() model.UIState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Acquire starts the pipeline for a file picker or drop selection. Only the first file is used.
func (c *UploadController) Acquire(ctx context.Context, source model.UploadSource, files []*model.UploadCandidate) (*model.ResultView, error) {
	logger := ctxlog.From(ctx)

	if source == model.SourceDrop {
		c.DragLeave(ctx)
	}

	if len(files) == 0 {
		return nil, nil
	}
	if len(files) > 1 {
		logger.Info("Ignoring additional files in selection",
			"source", source,
			"used", files[0].Name,
			"ignored", len(files)-1,
		)
	}

	view, err := c.Submit(ctx, files[0])
	if errors.Is(err, ErrBusy) {
		logger.Warn("Ignoring selection while processing", "file_name", files[0].Name)
	}
	return view, err
}

// AcquireAsync runs Acquire in the background and returns a channel closed when it ends
func (c *UploadController) AcquireAsync(ctx context.Context, source model.UploadSource, files []*model.UploadCandidate) <-chan struct{} {
	return async.Dispatch(ctx, func(ctx context.Context) error {
		_, err := c.Acquire(ctx, source, files)
		if model.IsKind(err, model.ErrKindAnalysisService) {
			return err
		}
		return nil
	})
}

// DragEnter marks the drop target as active
func (c *UploadController) DragEnter(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transition(ctx, c.state.SetDragActive(true))
}

// DragLeave marks the drop target as inactive
func (c *UploadController) DragLeave(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.DragActive {
		c.transition(ctx, c.state.SetDragActive(false))
	}
}

// Classify returns the category of the candidate or an UnsupportedType/FileTooLarge error
func (c *UploadController) Classify(candidate *model.UploadCandidate) (model.MediaCategory, error) {
	return c.policy.Classify(candidate)
}

// Submit validates the candidate, sends it to the analysis service and renders the outcome.
// Expected failures are returned as *model.AnalysisError after the error has been shown.
func (c *UploadController) Submit(ctx context.Context, candidate *model.UploadCandidate) (*model.ResultView, error) {
	logger := ctxlog.From(ctx)

	c.mu.Lock()
	if c.state.Phase == model.PhaseProcessing {
		c.mu.Unlock()
		return nil, ErrBusy
	}

	category, err := c.Classify(candidate)
	if err != nil {
		logger.Info("Rejected file before upload",
			"file_name", candidate.Name,
			"mime_type", candidate.MIMEType,
			"size", candidate.Size,
			"error", err,
		)
		c.transition(ctx, c.state.ShowError(model.UserMessage(err)))
		c.mu.Unlock()
		return nil, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	c.attempt++
	attempt := c.attempt
	c.cancel = cancel
	c.held = candidate
	c.transition(ctx, c.state.BeginProcessing(candidate.Name, category))
	c.mu.Unlock()

	logger.Info("Submitting file for analysis",
		"file_name", candidate.Name,
		"category", category,
		"size", candidate.Size,
	)

	result, err := c.service.Analyze(reqCtx, candidate)

	c.mu.Lock()
	defer c.mu.Unlock()
	cancel()

	if attempt != c.attempt {
		logger.Info("Dropping response of a reset attempt", "file_name", candidate.Name)
		return nil, ErrDiscarded
	}
	c.cancel = nil
	c.held = nil

	if err != nil {
		if _, ok := model.AsAnalysisError(err); !ok {
			err = model.NewAnalysisServiceError(0, "", err)
		}
		logger.Warn("Analysis failed", "file_name", candidate.Name, "error", err)
		c.transition(ctx, c.state.ShowError(model.UserMessage(err)))
		return nil, err
	}

	view := model.RenderResult(result, category)
	logger.Info("Analysis completed",
		"file_name", candidate.Name,
		"score", float64(result.Score),
		"authentic", view.IsAuthentic,
		"model_count", len(view.Models),
	)
	c.transition(ctx, c.state.ShowResults(view))
	return view, nil
}

// Cancel aborts the in-flight request, if any. The attempt ends with an error.
func (c *UploadController) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}

// Reset restarts the workflow. An in-flight request is cancelled and its response dropped.
func (c *UploadController) Reset(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.attempt++
	c.held = nil
	c.transition(ctx, c.state.Reset())
}

// ToggleDetail expands or collapses the per-model breakdown
func (c *UploadController) ToggleDetail(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transition(ctx, c.state.ToggleDetail())
}

// HeldFile returns the file of the in-flight attempt, or nil
func (c *UploadController) HeldFile() *model.UploadCandidate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.held
}

// transition must be called with c.mu held
func (c *UploadController) transition(ctx context.Context, next model.UIState) {
	c.state = next
	if c.view != nil {
		c.view.Render(ctx, next)
	}
}
