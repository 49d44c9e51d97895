package model

import (
	"mime"
	"path/filepath"
	"slices"
	"strings"
)

// MediaCategory is the classification of an uploaded file
type MediaCategory string

const (
	CategoryImage   MediaCategory = "image"
	CategoryVideo   MediaCategory = "video"
	CategoryAudio   MediaCategory = "audio"
	CategoryText    MediaCategory = "text"
	CategoryUnknown MediaCategory = "unknown"
)

// MB is the unit used by size ceilings
const MB int64 = 1024 * 1024

// String returns the string representation of MediaCategory
func (c MediaCategory) String() string {
	return string(c)
}

// Label returns the human readable form used in headlines
func (c MediaCategory) Label() string {
	switch c {
	case CategoryImage:
		return "Image"
	case CategoryVideo:
		return "Video"
	case CategoryAudio:
		return "Audio"
	case CategoryText:
		return "Text"
	default:
		return "Media"
	}
}

// CategoryRule describes how a category is recognized and how large a file may be
type CategoryRule struct {
	Category MediaCategory
	MaxSize  int64
	// MIMETypes are matched against the declared type, parameters stripped
	MIMETypes []string
	// NameSuffixes are matched against the file name when the declared type is not recognized
	NameSuffixes []string
	// Extensions are accepted by the server when the part carries no usable type
	Extensions []string
}

// Policy is an ordered list of category rules. The first matching rule wins.
type Policy struct {
	Rules []CategoryRule
}

// DefaultPolicy returns the built-in category table
func DefaultPolicy() *Policy {
	return &Policy{
		Rules: []CategoryRule{
			{
				Category:   CategoryImage,
				MaxSize:    50 * MB,
				MIMETypes:  []string{"image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp"},
				Extensions: []string{".jpg", ".jpeg", ".png", ".gif", ".webp"},
			},
			{
				Category:   CategoryVideo,
				MaxSize:    250 * MB,
				MIMETypes:  []string{"video/mp4", "video/quicktime"},
				Extensions: []string{".mp4", ".mov"},
			},
			{
				Category:     CategoryAudio,
				MaxSize:      20 * MB,
				MIMETypes:    []string{"audio/flac", "audio/wav", "audio/mpeg", "audio/mp3", "audio/mp4", "audio/aac", "audio/ogg"},
				NameSuffixes: []string{".m4a", ".alac"},
				Extensions:   []string{".flac", ".wav", ".mp3", ".m4a", ".aac", ".alac", ".ogg"},
			},
			{
				Category:     CategoryText,
				MaxSize:      5 * MB,
				MIMETypes:    []string{"text/plain"},
				NameSuffixes: []string{".txt"},
				Extensions:   []string{".txt"},
			},
		},
	}
}

// Rule returns the rule for the category, or nil
func (p *Policy) Rule(category MediaCategory) *CategoryRule {
	for i := range p.Rules {
		if p.Rules[i].Category == category {
			return &p.Rules[i]
		}
	}
	return nil
}

// Classify determines the category of a candidate and checks its size ceiling.
// Failures are returned as *AnalysisError of kind UnsupportedType or FileTooLarge.
func (p *Policy) Classify(c *UploadCandidate) (MediaCategory, error) {
	rule := p.match(c.MIMEType, c.Name)
	if rule == nil {
		return CategoryUnknown, NewUnsupportedTypeError(c.Name, c.MIMEType)
	}

	if c.Size > rule.MaxSize {
		return rule.Category, NewFileTooLargeError(rule.Category, c.Size, rule.MaxSize)
	}

	return rule.Category, nil
}

// ClassifyUpload is the server side lookup: the declared type first, then the file extension
func (p *Policy) ClassifyUpload(fileName, mimeType string) (MediaCategory, bool) {
	if rule := p.match(mimeType, fileName); rule != nil {
		return rule.Category, true
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	for _, rule := range p.Rules {
		if slices.Contains(rule.Extensions, ext) {
			return rule.Category, true
		}
	}

	return CategoryUnknown, false
}

func (p *Policy) match(mimeType, name string) *CategoryRule {
	mediaType := normalizeMIMEType(mimeType)
	lowerName := strings.ToLower(name)

	for i := range p.Rules {
		rule := &p.Rules[i]
		if mediaType != "" && slices.Contains(rule.MIMETypes, mediaType) {
			return rule
		}
		for _, suffix := range rule.NameSuffixes {
			if strings.HasSuffix(lowerName, suffix) {
				return rule
			}
		}
	}
	return nil
}

func normalizeMIMEType(v string) string {
	if v == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(v)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(v))
	}
	return mediaType
}

// MaxSize returns the largest size limit of all rules
func (p *Policy) MaxSize() int64 {
	var largest int64
	for _, rule := range p.Rules {
		largest = max(largest, rule.MaxSize)
	}
	return largest
}
