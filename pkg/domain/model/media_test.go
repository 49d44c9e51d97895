package model_test

import (
	"testing"

	"github.com/m-mizutani/deepcheck/pkg/domain/model"
	"github.com/m-mizutani/gt"
)

func TestPolicy_Classify(t *testing.T) {
	policy := model.DefaultPolicy()

	tests := []struct {
		name     string
		fileName string
		mimeType string
		size     int64
		want     model.MediaCategory
		wantKind model.ErrorKind
	}{
		{name: "jpeg image", fileName: "a.jpg", mimeType: "image/jpeg", size: 1024, want: model.CategoryImage},
		{name: "non standard jpg type", fileName: "a.jpg", mimeType: "image/jpg", size: 1, want: model.CategoryImage},
		{name: "png at ceiling", fileName: "a.png", mimeType: "image/png", size: 50 * model.MB, want: model.CategoryImage},
		{name: "webp", fileName: "a.webp", mimeType: "image/webp", size: 10, want: model.CategoryImage},
		{name: "mp4 video", fileName: "a.mp4", mimeType: "video/mp4", size: 250 * model.MB, want: model.CategoryVideo},
		{name: "quicktime video", fileName: "a.mov", mimeType: "video/quicktime", size: 10, want: model.CategoryVideo},
		{name: "mpeg audio", fileName: "a.mp3", mimeType: "audio/mpeg", size: 20 * model.MB, want: model.CategoryAudio},
		{name: "m4a fallback without type", fileName: "voice.m4a", mimeType: "", size: 10, want: model.CategoryAudio},
		{name: "alac fallback with odd type", fileName: "voice.alac", mimeType: "application/octet-stream", size: 10, want: model.CategoryAudio},
		{name: "plain text", fileName: "a.txt", mimeType: "text/plain", size: 5 * model.MB, want: model.CategoryText},
		{name: "text with charset", fileName: "notes", mimeType: "text/plain; charset=utf-8", size: 5, want: model.CategoryText},
		{name: "txt fallback", fileName: "notes.txt", mimeType: "", size: 5, want: model.CategoryText},
		{name: "uppercase type", fileName: "A.PNG", mimeType: "IMAGE/PNG", size: 5, want: model.CategoryImage},

		{name: "image one byte over", fileName: "a.png", mimeType: "image/png", size: 50*model.MB + 1, want: model.CategoryImage, wantKind: model.ErrKindFileTooLarge},
		{name: "video one byte over", fileName: "a.mp4", mimeType: "video/mp4", size: 250*model.MB + 1, want: model.CategoryVideo, wantKind: model.ErrKindFileTooLarge},
		{name: "audio one byte over", fileName: "a.wav", mimeType: "audio/wav", size: 20*model.MB + 1, want: model.CategoryAudio, wantKind: model.ErrKindFileTooLarge},
		{name: "text one byte over", fileName: "a.txt", mimeType: "text/plain", size: 5*model.MB + 1, want: model.CategoryText, wantKind: model.ErrKindFileTooLarge},

		{name: "pdf", fileName: "a.pdf", mimeType: "application/pdf", size: 10, want: model.CategoryUnknown, wantKind: model.ErrKindUnsupportedType},
		{name: "no type no fallback", fileName: "a.bin", mimeType: "", size: 10, want: model.CategoryUnknown, wantKind: model.ErrKindUnsupportedType},
		{name: "extension alone is not a client fallback for images", fileName: "a.png", mimeType: "", size: 10, want: model.CategoryUnknown, wantKind: model.ErrKindUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &model.UploadCandidate{Name: tt.fileName, MIMEType: tt.mimeType, Size: tt.size}
			got, err := policy.Classify(c)
			gt.V(t, got).Equal(tt.want)

			if tt.wantKind == "" {
				gt.NoError(t, err)
				return
			}
			gt.True(t, model.IsKind(err, tt.wantKind))
		})
	}
}

func TestPolicy_Classify_FileTooLargeMessage(t *testing.T) {
	c := &model.UploadCandidate{Name: "a.mp3", MIMEType: "audio/mpeg", Size: 20*model.MB + 1}
	_, err := model.DefaultPolicy().Classify(c)
	gt.Error(t, err)
	gt.V(t, model.UserMessage(err)).Equal("File size exceeds limit for audio files")
}

func TestPolicy_Classify_UnsupportedMessage(t *testing.T) {
	c := &model.UploadCandidate{Name: "a.exe", MIMEType: "application/x-msdownload", Size: 1}
	_, err := model.DefaultPolicy().Classify(c)
	gt.Error(t, err)
	gt.V(t, model.UserMessage(err)).Equal("Please upload a valid file (image, video, audio, or text)")
}

func TestPolicy_ClassifyUpload(t *testing.T) {
	policy := model.DefaultPolicy()

	tests := []struct {
		fileName string
		mimeType string
		want     model.MediaCategory
		ok       bool
	}{
		{"photo.JPEG", "application/octet-stream", model.CategoryImage, true},
		{"clip.mov", "", model.CategoryVideo, true},
		{"song.flac", "", model.CategoryAudio, true},
		{"song.ogg", "application/octet-stream", model.CategoryAudio, true},
		{"notes.txt", "", model.CategoryText, true},
		{"doc", "text/plain", model.CategoryText, true},
		{"archive.zip", "application/zip", model.CategoryUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			got, ok := policy.ClassifyUpload(tt.fileName, tt.mimeType)
			gt.V(t, got).Equal(tt.want)
			gt.V(t, ok).Equal(tt.ok)
		})
	}
}

func TestMediaCategory_Label(t *testing.T) {
	gt.V(t, model.CategoryImage.Label()).Equal("Image")
	gt.V(t, model.CategoryVideo.Label()).Equal("Video")
	gt.V(t, model.CategoryAudio.Label()).Equal("Audio")
	gt.V(t, model.CategoryText.Label()).Equal("Text")
	gt.V(t, model.CategoryUnknown.Label()).Equal("Media")
	gt.V(t, model.MediaCategory("").Label()).Equal("Media")
}
