package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/deepcheck/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const collectionAnalyses = "analyses"

// RecordRepository stores analysis records in Firestore, one document per request ID
type RecordRepository struct {
	client *firestore.Client
}

// New connects to the Firestore database
func New(ctx context.Context, projectID, databaseID string) (*RecordRepository, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project_id", projectID),
			goerr.V("database_id", databaseID),
		)
	}

	return &RecordRepository{client: client}, nil
}

// Close releases the client
func (r *RecordRepository) Close() error {
	return r.client.Close()
}

func (r *RecordRepository) PutRecord(ctx context.Context, record *model.AnalysisRecord) error {
	if _, err := r.client.Collection(collectionAnalyses).Doc(record.RequestID).Set(ctx, record); err != nil {
		return goerr.Wrap(err, "failed to put analysis record", goerr.V("request_id", record.RequestID))
	}
	return nil
}

func (r *RecordRepository) GetRecord(ctx context.Context, requestID string) (*model.AnalysisRecord, error) {
	doc, err := r.client.Collection(collectionAnalyses).Doc(requestID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get analysis record", goerr.V("request_id", requestID))
	}

	var record model.AnalysisRecord
	if err := doc.DataTo(&record); err != nil {
		return nil, goerr.Wrap(err, "failed to decode analysis record", goerr.V("request_id", requestID))
	}
	return &record, nil
}
