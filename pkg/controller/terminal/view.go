package terminal

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/m-mizutani/deepcheck/pkg/domain/model"
)

// View prints upload controller states to a terminal
type View struct {
	w io.Writer

	status    *color.Color
	errorText *color.Color
	authentic *color.Color
	generated *color.Color
	faint     *color.Color

	last       model.Phase
	lastDetail bool
	lastResult *model.ResultView
	lastStatus string
	lastError  string
}

// Option configures View
type Option func(*View)

// WithoutColor disables ANSI colors
func WithoutColor() Option {
	return func(v *View) {
		for _, c := range []*color.Color{v.status, v.errorText, v.authentic, v.generated, v.faint} {
			c.DisableColor()
		}
	}
}

// New creates a terminal view writing to w
func New(w io.Writer, opts ...Option) *View {
	v := &View{
		w:         w,
		status:    color.New(color.FgCyan),
		errorText: color.New(color.FgRed, color.Bold),
		authentic: color.New(color.FgGreen, color.Bold),
		generated: color.New(color.FgRed, color.Bold),
		faint:     color.New(color.Faint),
		last:      model.PhaseUploadPrompt,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Render prints what changed since the previous state. Drag state is not shown.
func (v *View) Render(ctx context.Context, state model.UIState) {
	changed := state.Phase != v.last ||
		state.DetailExpanded != v.lastDetail ||
		state.Result != v.lastResult ||
		state.StatusMessage != v.lastStatus ||
		state.ErrorMessage != v.lastError
	v.last = state.Phase
	v.lastDetail = state.DetailExpanded
	v.lastResult = state.Result
	v.lastStatus = state.StatusMessage
	v.lastError = state.ErrorMessage
	if !changed {
		return
	}

	switch state.Phase {
	case model.PhaseProcessing:
		v.status.Fprintf(v.w, "%s %s\n", state.FileName, state.StatusMessage)

	case model.PhaseErrorShown:
		v.errorText.Fprintf(v.w, "Error: %s\n", state.ErrorMessage)

	case model.PhaseResultsShown:
		if state.Result != nil {
			v.renderResult(state)
		}
	}
}

func (v *View) renderResult(state model.UIState) {
	r := state.Result
	badge := v.generated
	if r.IsAuthentic {
		badge = v.authentic
	}

	fmt.Fprintf(v.w, "%s: ", state.FileName)
	badge.Fprintf(v.w, "%s", r.Badge)
	fmt.Fprintf(v.w, " (%s: %s)\n", r.ConfidenceLabel, r.ScoreText)

	if !state.DetailExpanded {
		return
	}
	if len(r.Models) == 0 {
		v.faint.Fprintln(v.w, "  no model results")
		return
	}
	for _, m := range r.Models {
		c := v.generated
		if m.StatusClass == model.ClassAuthentic {
			c = v.authentic
		}
		fmt.Fprintf(v.w, "  %-32s ", m.Name)
		c.Fprintf(v.w, "%-12s", m.Status)
		fmt.Fprintf(v.w, " %s\n", m.ScoreText)
	}
}
