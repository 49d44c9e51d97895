package model

import "fmt"

// Phase is the active phase of the upload view
type Phase string

const (
	// PhaseUploadPrompt shows the upload prompt only
	PhaseUploadPrompt Phase = "upload_prompt"

	// PhaseProcessing shows the processing indicator while a request is in flight
	PhaseProcessing Phase = "processing"

	// PhaseResultsShown shows the verdict of the last attempt
	PhaseResultsShown Phase = "results_shown"

	// PhaseErrorShown shows the upload prompt together with the error of the last attempt
	PhaseErrorShown Phase = "error_shown"
)

const (
	DetailToggleCollapsed = "View detailed analysis"
	DetailToggleExpanded  = "Hide detailed analysis"
)

// String returns the string representation of Phase
func (p Phase) String() string {
	return string(p)
}

// IsUploadReady returns true if the upload prompt is visible in this phase
func (p Phase) IsUploadReady() bool {
	return p == PhaseUploadPrompt || p == PhaseErrorShown
}

// UIState is the whole view state. It is a value; transitions return a new state.
type UIState struct {
	Phase          Phase
	StatusMessage  string
	ErrorMessage   string
	Category       MediaCategory
	FileName       string
	Result         *ResultView
	DetailExpanded bool
	DragActive     bool
}

// InitialUIState returns the state of a freshly loaded view
func InitialUIState() UIState {
	return UIState{Phase: PhaseUploadPrompt}
}

// DetailToggleLabel returns the label of the detail panel toggle
func (s UIState) DetailToggleLabel() string {
	if s.DetailExpanded {
		return DetailToggleExpanded
	}
	return DetailToggleCollapsed
}

// BeginProcessing enters Processing and clears the error and results of a previous attempt
func (s UIState) BeginProcessing(fileName string, category MediaCategory) UIState {
	s.Phase = PhaseProcessing
	s.StatusMessage = fmt.Sprintf("Analyzing your %s...", category)
	s.ErrorMessage = ""
	s.Result = nil
	s.Category = category
	s.FileName = fileName
	return s
}

// ShowResults ends Processing and shows the rendered verdict
func (s UIState) ShowResults(view *ResultView) UIState {
	s.Phase = PhaseResultsShown
	s.StatusMessage = ""
	s.ErrorMessage = ""
	s.Result = view
	return s
}

// ShowError ends Processing and returns to the upload prompt with the message
func (s UIState) ShowError(message string) UIState {
	s.Phase = PhaseErrorShown
	s.StatusMessage = ""
	s.ErrorMessage = message
	s.Result = nil
	return s
}

// Reset returns to a fresh upload prompt. Drag state is kept as it follows the pointer.
func (s UIState) Reset() UIState {
	return UIState{
		Phase:      PhaseUploadPrompt,
		DragActive: s.DragActive,
	}
}

// ToggleDetail flips the per-model breakdown panel
func (s UIState) ToggleDetail() UIState {
	s.DetailExpanded = !s.DetailExpanded
	return s
}

// SetDragActive sets the cosmetic drag indicator
func (s UIState) SetDragActive(active bool) UIState {
	s.DragActive = active
	return s
}
