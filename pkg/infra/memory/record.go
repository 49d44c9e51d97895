package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/deepcheck/pkg/domain/model"
)

// RecordRepository keeps analysis records in process memory
type RecordRepository struct {
	mu      sync.RWMutex
	records map[string]model.AnalysisRecord
}

// NewRecordRepository creates an empty repository
func NewRecordRepository() *RecordRepository {
	return &RecordRepository{
		records: make(map[string]model.AnalysisRecord),
	}
}

func (r *RecordRepository) PutRecord(ctx context.Context, record *model.AnalysisRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.RequestID] = *record
	return nil
}

func (r *RecordRepository) GetRecord(ctx context.Context, requestID string) (*model.AnalysisRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[requestID]
	if !ok {
		return nil, nil
	}
	return &record, nil
}
