// Package repositories defines the storage interfaces the services depend
// on. Implementations live in subpackages (postgres).
package repositories

import (
	"context"

	"github.com/littlebump/sonobot/models"
)

// AnalysisRecordRepository stores the per-image analysis audit log.
type AnalysisRecordRepository interface {
	// Insert stores one analysis record.
	Insert(ctx context.Context, record *models.AnalysisRecord) error

	// ListByUser returns the most recent records for a user, newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.AnalysisRecord, error)
}
