package model

import (
	"errors"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
)

// ErrorKind classifies failures of one analysis attempt
type ErrorKind string

const (
	ErrKindUnsupportedType ErrorKind = "unsupported_type"
	ErrKindFileTooLarge    ErrorKind = "file_too_large"
	ErrKindAnalysisService ErrorKind = "analysis_service"
)

const (
	msgUnsupportedType = "Please upload a valid file (image, video, audio, or text)"
	// MsgAnalysisFailed is shown when the service rejects a file without a detail message
	MsgAnalysisFailed = "Analysis failed"
	// MsgFailedToAnalyze is shown on transport failures and unreadable responses
	MsgFailedToAnalyze = "Failed to analyze file"
)

// AnalysisError is the typed failure of an analysis attempt. Every kind is terminal
// for the attempt only.
type AnalysisError struct {
	Kind     ErrorKind
	Category MediaCategory // Set for FileTooLarge
	Detail   string        // Overrides the default user visible message
	Status   int           // HTTP status of the service response, 0 if none
	Err      error         // Underlying cause
}

// NewUnsupportedTypeError creates an UnsupportedType error
func NewUnsupportedTypeError(name, mimeType string) *AnalysisError {
	return &AnalysisError{
		Kind: ErrKindUnsupportedType,
		Err:  goerr.New("no category for file", goerr.V("name", name), goerr.V("mime_type", mimeType)),
	}
}

// NewFileTooLargeError creates a FileTooLarge error
func NewFileTooLargeError(category MediaCategory, size, maxSize int64) *AnalysisError {
	return &AnalysisError{
		Kind:     ErrKindFileTooLarge,
		Category: category,
		Err:      goerr.New("file size exceeds limit", goerr.V("size", size), goerr.V("max_size", maxSize)),
	}
}

// NewAnalysisServiceError creates an AnalysisServiceError. An empty detail falls back
// to a generic message when shown to the user.
func NewAnalysisServiceError(status int, detail string, cause error) *AnalysisError {
	return &AnalysisError{
		Kind:   ErrKindAnalysisService,
		Detail: detail,
		Status: status,
		Err:    cause,
	}
}

// Message returns the user visible text
func (e *AnalysisError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}

	switch e.Kind {
	case ErrKindUnsupportedType:
		return msgUnsupportedType
	case ErrKindFileTooLarge:
		return fmt.Sprintf("File size exceeds limit for %s files", e.Category)
	default:
		if e.Status != 0 {
			return MsgAnalysisFailed
		}
		return MsgFailedToAnalyze
	}
}

func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message(), e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message())
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// AsAnalysisError extracts an *AnalysisError from err
func AsAnalysisError(err error) (*AnalysisError, bool) {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// UserMessage returns the text to show for any error produced by an attempt
func UserMessage(err error) string {
	if ae, ok := AsAnalysisError(err); ok {
		return ae.Message()
	}
	return MsgFailedToAnalyze
}

// IsKind reports whether err is an AnalysisError of the kind
func IsKind(err error, kind ErrorKind) bool {
	ae, ok := AsAnalysisError(err)
	return ok && ae.Kind == kind
}
