package model

import (
	"encoding/json"
	"math"
)

// AuthenticThreshold is the score below which media is considered authentic
const AuthenticThreshold = 0.5

const (
	StatusAuthentic   = "AUTHENTIC"
	StatusManipulated = "MANIPULATED"
)

// Score is a probability in [0,1] that media is synthetic or manipulated.
// Missing, null or non-numeric values decode as 0.
type Score float64

// UnmarshalJSON decodes leniently
func (s *Score) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		*s = 0
		return nil
	}
	if math.IsNaN(v) {
		v = 0
	}
	*s = Score(v)
	return nil
}

// IsAuthentic reports whether the score is under the threshold
func (s Score) IsAuthentic() bool {
	return float64(s) < AuthenticThreshold
}

// Percentage returns the score as a rounded percentage
func (s Score) Percentage() int {
	return int(math.Round(float64(s) * 100))
}

// AnalysisResult is the parsed response of the analysis service
type AnalysisResult struct {
	Score  Score          `json:"score"`
	Models []ModelVerdict `json:"models"`

	Status    string        `json:"status,omitempty"`
	MediaID   string        `json:"media_id,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
	FileType  MediaCategory `json:"file_type,omitempty"`
}

// ModelVerdict is the sub-result of one detection model
type ModelVerdict struct {
	Name   string `json:"name"`
	Score  Score  `json:"score"`
	Status string `json:"status,omitempty"`
}

// DisplayStatus returns the server provided status, or one derived from the score
func (m ModelVerdict) DisplayStatus() string {
	if m.Status != "" {
		return m.Status
	}
	if m.Score.IsAuthentic() {
		return StatusAuthentic
	}
	return StatusManipulated
}
