package model

import "time"

// AnalysisRecord is a completed analysis kept by the server
type AnalysisRecord struct {
	RequestID  string        `json:"request_id" firestore:"request_id"`
	MediaID    string        `json:"media_id" firestore:"media_id"`
	FileName   string        `json:"file_name" firestore:"file_name"`
	Category   MediaCategory `json:"file_type" firestore:"file_type"`
	Size       int64         `json:"size" firestore:"size"`
	Status     string        `json:"status" firestore:"status"`
	Score      float64       `json:"score" firestore:"score"`
	ModelCount int           `json:"model_count" firestore:"model_count"`
	ArchiveURI string        `json:"archive_uri,omitempty" firestore:"archive_uri,omitempty"`
	CreatedAt  time.Time     `json:"created_at" firestore:"created_at"`
}

// NewAnalysisRecord builds a record from a finished analysis
func NewAnalysisRecord(upload *MediaUpload, result *AnalysisResult, now time.Time) *AnalysisRecord {
	return &AnalysisRecord{
		RequestID:  result.RequestID,
		MediaID:    result.MediaID,
		FileName:   upload.FileName,
		Category:   upload.Category,
		Size:       int64(len(upload.Content)),
		Status:     result.Status,
		Score:      float64(result.Score),
		ModelCount: len(result.Models),
		CreatedAt:  now,
	}
}

// MediaUpload is a file received by the server after validation
type MediaUpload struct {
	FileName string
	MIMEType string
	Category MediaCategory
	Content  []byte
}

// DetectionOutcome is what the remote detector reports for one upload
type DetectionOutcome struct {
	RequestID string
	MediaID   string
	Status    string
	Score     float64
	Models    []DetectionModel
}

// DetectionModel is one model entry reported by the remote detector.
// Nil pointers mean the detector did not report the field.
type DetectionModel struct {
	Name   string
	Status string
	Score  *float64
}

// ToResult converts the detector outcome into the response returned by /analyze.
// Missing model fields get the same defaults the web client expects.
func (o *DetectionOutcome) ToResult(category MediaCategory) *AnalysisResult {
	status := o.Status
	if status == "" {
		status = "unknown"
	}

	result := &AnalysisResult{
		Score:     Score(o.Score),
		Status:    status,
		MediaID:   o.MediaID,
		RequestID: o.RequestID,
		FileType:  category,
		Models:    make([]ModelVerdict, 0, len(o.Models)),
	}

	for _, m := range o.Models {
		v := ModelVerdict{
			Name:   m.Name,
			Status: m.Status,
		}
		if v.Name == "" {
			v.Name = "Unknown Model"
		}
		if v.Status == "" {
			v.Status = "unknown"
		}
		if m.Score != nil {
			v.Score = Score(*m.Score)
		}
		result.Models = append(result.Models, v)
	}

	return result
}
