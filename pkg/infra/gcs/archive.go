package gcs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/deepcheck/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"
)

// Archive copies uploaded files into a Cloud Storage bucket
type Archive struct {
	client *storage.Client
	bucket string
	prefix string
}

// New creates an archive writing to gs://bucket/prefix
func New(ctx context.Context, bucket, prefix string, opts ...option.ClientOption) (*Archive, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}
	return &Archive{client: client, bucket: bucket, prefix: prefix}, nil
}

// Close releases the client
func (a *Archive) Close() error {
	return a.client.Close()
}

// ObjectName returns the object path for an upload
func ObjectName(prefix, requestID, fileName string) string {
	return path.Join(prefix, "uploads", requestID, path.Base("/"+fileName))
}

// Put writes the upload and returns its gs:// URI
func (a *Archive) Put(ctx context.Context, requestID string, upload *model.MediaUpload) (string, error) {
	name := ObjectName(a.prefix, requestID, upload.FileName)

	w := a.client.Bucket(a.bucket).Object(name).NewWriter(ctx)
	w.ContentType = upload.MIMEType
	w.Metadata = map[string]string{
		"request_id": requestID,
		"category":   upload.Category.String(),
	}

	if _, err := io.Copy(w, bytes.NewReader(upload.Content)); err != nil {
		_ = w.Close()
		return "", goerr.Wrap(err, "failed to write object", goerr.V("bucket", a.bucket), goerr.V("object", name))
	}
	if err := w.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to close object writer", goerr.V("bucket", a.bucket), goerr.V("object", name))
	}

	return fmt.Sprintf("gs://%s/%s", a.bucket, name), nil
}
