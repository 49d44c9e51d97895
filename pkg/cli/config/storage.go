package config

import (
	"context"

	"github.com/m-mizutani/deepcheck/pkg/domain/interfaces"
	"github.com/m-mizutani/deepcheck/pkg/infra/firestore"
	"github.com/m-mizutani/deepcheck/pkg/infra/gcs"
	"github.com/m-mizutani/deepcheck/pkg/infra/memory"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"google.golang.org/api/option"
)

// Storage holds the configuration of analysis records and the upload archive
type Storage struct {
	FirestoreProjectID  string
	FirestoreDatabaseID string
	GCSBucket           string
	GCSPrefix           string
	GCSEndpoint         string
}

// Flags returns CLI flags for storage configuration
func (c *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore project ID for analysis records. In-memory storage is used if empty",
			Destination: &c.FirestoreProjectID,
			Sources:     cli.EnvVars("DEEPCHECK_FIRESTORE_PROJECT_ID"),
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore database ID",
			Destination: &c.FirestoreDatabaseID,
			Sources:     cli.EnvVars("DEEPCHECK_FIRESTORE_DATABASE_ID"),
		},
		&cli.StringFlag{
			Name:        "gcs-bucket",
			Usage:       "Cloud Storage bucket to archive uploads. Archiving is disabled if empty",
			Destination: &c.GCSBucket,
			Sources:     cli.EnvVars("DEEPCHECK_GCS_BUCKET"),
		},
		&cli.StringFlag{
			Name:        "gcs-prefix",
			Usage:       "Object prefix in the archive bucket",
			Destination: &c.GCSPrefix,
			Sources:     cli.EnvVars("DEEPCHECK_GCS_PREFIX"),
		},
		&cli.StringFlag{
			Name:        "gcs-endpoint",
			Usage:       "Cloud Storage endpoint, e.g. an emulator. Requests are sent without credentials",
			Destination: &c.GCSEndpoint,
			Sources:     cli.EnvVars("DEEPCHECK_GCS_ENDPOINT"),
		},
	}
}

// NewRecordRepository returns the Firestore repository if configured, otherwise the in-memory one.
// The returned function releases the client.
func (c *Storage) NewRecordRepository(ctx context.Context) (interfaces.RecordRepository, func(), error) {
	if c.FirestoreProjectID == "" {
		return memory.NewRecordRepository(), func() {}, nil
	}

	repo, err := firestore.New(ctx, c.FirestoreProjectID, c.FirestoreDatabaseID)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to create firestore repository",
			goerr.V("project_id", c.FirestoreProjectID),
			goerr.V("database_id", c.FirestoreDatabaseID),
		)
	}
	return repo, func() { _ = repo.Close() }, nil
}

// NewArchive returns the upload archive, or nil if no bucket is configured
func (c *Storage) NewArchive(ctx context.Context) (interfaces.MediaArchive, func(), error) {
	if c.GCSBucket == "" {
		return nil, func() {}, nil
	}

	var opts []option.ClientOption
	if c.GCSEndpoint != "" {
		opts = append(opts, option.WithEndpoint(c.GCSEndpoint), option.WithoutAuthentication())
	}

	archive, err := gcs.New(ctx, c.GCSBucket, c.GCSPrefix, opts...)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to create upload archive", goerr.V("bucket", c.GCSBucket))
	}
	return archive, func() { _ = archive.Close() }, nil
}
