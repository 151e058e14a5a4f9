package postgres

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/littlebump/sonobot/models"
	"github.com/littlebump/sonobot/repositories"
)

// AnalysisRecordRepository implements repositories.AnalysisRecordRepository
// on PostgreSQL.
type AnalysisRecordRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAnalysisRecordRepository creates a new analysis record repository.
func NewAnalysisRecordRepository(db *DB, logger *zap.Logger) repositories.AnalysisRecordRepository {
	return &AnalysisRecordRepository{
		db:     db,
		logger: logger,
	}
}

// Insert stores one analysis record.
func (r *AnalysisRecordRepository) Insert(ctx context.Context, record *models.AnalysisRecord) error {
	query := `
		INSERT INTO analysis_records (
			id, user_id, message_id, provider, model, weeks, weight_status,
			reply_text, latency_ms, status, error_message, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
	`

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.UserID,
		record.MessageID,
		record.Provider,
		record.Model,
		record.Weeks,
		record.WeightStatus,
		record.ReplyText,
		record.LatencyMs,
		record.Status,
		record.ErrorMessage,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis record: %w", err)
	}

	r.logger.Debug("analysis record inserted",
		zap.String("id", record.ID.String()),
		zap.String("status", string(record.Status)))
	return nil
}

// ListByUser returns the most recent records for a user, newest first.
func (r *AnalysisRecordRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*models.AnalysisRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, user_id, message_id, provider, model, weeks, weight_status,
		       reply_text, latency_ms, status, error_message, created_at
		FROM analysis_records
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analysis records: %w", err)
	}
	defer rows.Close()

	var records []*models.AnalysisRecord
	for rows.Next() {
		var rec models.AnalysisRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.MessageID,
			&rec.Provider,
			&rec.Model,
			&rec.Weeks,
			&rec.WeightStatus,
			&rec.ReplyText,
			&rec.LatencyMs,
			&rec.Status,
			&rec.ErrorMessage,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan analysis record: %w", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analysis records: %w", err)
	}

	return records, nil
}
