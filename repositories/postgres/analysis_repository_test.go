package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/littlebump/sonobot/models"
)

func newMockRepo(t *testing.T) (*AnalysisRecordRepository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := &DB{DB: mockDB, logger: zap.NewNop()}
	repo := NewAnalysisRecordRepository(db, zap.NewNop()).(*AnalysisRecordRepository)
	return repo, mock
}

func sampleRecord() *models.AnalysisRecord {
	return &models.AnalysisRecord{
		ID:           uuid.New(),
		UserID:       "U-abc",
		MessageID:    "m-1",
		Provider:     "gemini",
		Model:        "gemini-1.5-pro",
		Weeks:        "20",
		WeightStatus: "正常",
		ReplyText:    "媽咪，我今天很有精神！",
		LatencyMs:    842,
		Status:       models.AnalysisStatusOK,
		CreatedAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestAnalysisRecordRepository_Insert(t *testing.T) {
	repo, mock := newMockRepo(t)
	rec := sampleRecord()

	mock.ExpectExec(`INSERT INTO analysis_records`).
		WithArgs(rec.ID, rec.UserID, rec.MessageID, rec.Provider, rec.Model,
			rec.Weeks, rec.WeightStatus, rec.ReplyText, rec.LatencyMs,
			rec.Status, rec.ErrorMessage, rec.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Insert(context.Background(), rec)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisRecordRepository_InsertError(t *testing.T) {
	repo, mock := newMockRepo(t)
	rec := sampleRecord()

	mock.ExpectExec(`INSERT INTO analysis_records`).
		WillReturnError(errors.New("connection lost"))

	err := repo.Insert(context.Background(), rec)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert analysis record")
}

func TestAnalysisRecordRepository_ListByUser(t *testing.T) {
	repo, mock := newMockRepo(t)
	rec := sampleRecord()

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "message_id", "provider", "model", "weeks",
		"weight_status", "reply_text", "latency_ms", "status",
		"error_message", "created_at",
	}).AddRow(rec.ID, rec.UserID, rec.MessageID, rec.Provider, rec.Model,
		rec.Weeks, rec.WeightStatus, rec.ReplyText, rec.LatencyMs,
		rec.Status, rec.ErrorMessage, rec.CreatedAt)

	mock.ExpectQuery(`SELECT .+ FROM analysis_records`).
		WithArgs("U-abc", 10).
		WillReturnRows(rows)

	records, err := repo.ListByUser(context.Background(), "U-abc", 10)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.ID, records[0].ID)
	assert.Equal(t, "20", records[0].Weeks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisRecordRepository_ListByUserDefaultLimit(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT .+ FROM analysis_records`).
		WithArgs("U-abc", 20).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "message_id", "provider", "model", "weeks",
			"weight_status", "reply_text", "latency_ms", "status",
			"error_message", "created_at",
		}))

	records, err := repo.ListByUser(context.Background(), "U-abc", 0)

	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}
