package model

import (
	"bytes"
	"io"
)

// UploadSource identifies where a file selection came from
type UploadSource string

const (
	SourcePicker UploadSource = "picker"
	SourceDrop   UploadSource = "drop"
)

// UploadCandidate is a user-selected file. It lives for one analysis attempt.
type UploadCandidate struct {
	Name     string // Original file name
	MIMEType string // Declared media type, may be empty or wrong
	Size     int64  // Size in bytes
	Content  []byte // Raw file content
}

// NewUploadCandidate creates a candidate from raw content
func NewUploadCandidate(name, mimeType string, content []byte) *UploadCandidate {
	return &UploadCandidate{
		Name:     name,
		MIMEType: mimeType,
		Size:     int64(len(content)),
		Content:  content,
	}
}

// Reader returns a reader over the candidate content
func (c *UploadCandidate) Reader() io.Reader {
	return bytes.NewReader(c.Content)
}
