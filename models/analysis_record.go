package models

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisStatus classifies the outcome of one image analysis.
type AnalysisStatus string

const (
	AnalysisStatusOK     AnalysisStatus = "ok"
	AnalysisStatusFailed AnalysisStatus = "failed"
)

// AnalysisRecord is the audit entry written for each processed image.
type AnalysisRecord struct {
	ID           uuid.UUID      `json:"id"`
	UserID       string         `json:"user_id"`
	MessageID    string         `json:"message_id"`
	Provider     string         `json:"provider"`
	Model        string         `json:"model"`
	Weeks        string         `json:"weeks"`
	WeightStatus string         `json:"weight_status"`
	ReplyText    string         `json:"reply_text"`
	LatencyMs    int64          `json:"latency_ms"`
	Status       AnalysisStatus `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}
