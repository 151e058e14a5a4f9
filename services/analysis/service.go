// Package analysis turns a user's ultrasound photo into a growth report:
// it runs the image through the dispatch layer's provider chain with the
// assistant prompt, parses the model's JSON reply, and writes an audit
// record when storage is configured.
package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/littlebump/sonobot/models"
	"github.com/littlebump/sonobot/repositories"
	"github.com/littlebump/sonobot/services/providers"
)

// analysisPrompt instructs the vision model to act as the pregnancy
// assistant and emit bare JSON. Mirrors the product's original prompt.
const analysisPrompt = `請作為一名「暖心孕期助理」，處理傳入的影像：
- OCR 提取：辨識 GA (週數)、EFW (體重)、EDD (預產期)。
- 語境生成：
  1. 使用「第一人稱寶寶語氣」（例如：媽咪，我今天...）。
  2. 將重量與水果/食物對比（如：200g = 一顆大蘋果）。
  3. 偵測照片內容（若是 3D 臉部，稱讚鼻子或嘴巴；若是黑白 2D，強調心跳與成長）。
- 輸出限制：僅輸出 JSON 格式，包含 weeks, weight_status, message, suggested_color。
請勿輸出任何 markdown 標記 (如 ` + "```json" + ` 等)，直接輸出乾淨的 JSON 字串。`

// Analyzer produces model text for an image and prompt. Implemented by
// dispatch.Coordinator.
type Analyzer interface {
	Analyze(ctx context.Context, image providers.Image, prompt string) (string, error)
}

// Request identifies one image analysis.
type Request struct {
	UserID    string
	MessageID string
	Image     providers.Image
}

// Service orchestrates image analysis and audit recording.
type Service struct {
	analyzer Analyzer
	records  repositories.AnalysisRecordRepository // nil when no DB configured
	provider string
	model    string
	logger   *zap.Logger
}

// NewService creates the analysis service. records may be nil, which
// disables audit recording. provider and model label audit entries with the
// configured primary path.
func NewService(analyzer Analyzer, records repositories.AnalysisRecordRepository, provider, model string, logger *zap.Logger) *Service {
	return &Service{
		analyzer: analyzer,
		records:  records,
		provider: provider,
		model:    model,
		logger:   logger,
	}
}

// Analyze runs the image through the provider chain and returns the parsed
// report. Terminal provider failures are returned as-is; an unparseable
// model reply yields the fallback report instead of an error.
func (s *Service) Analyze(ctx context.Context, req Request) (*Report, error) {
	start := time.Now()

	text, err := s.analyzer.Analyze(ctx, req.Image, analysisPrompt)
	latency := time.Since(start)

	if err != nil {
		s.record(ctx, req, nil, latency, err)
		return nil, err
	}

	report, parsed := ParseReport(text)
	if !parsed {
		s.logger.Warn("model reply was not valid JSON, using fallback report",
			zap.String("message_id", req.MessageID))
	}

	s.record(ctx, req, report, latency, nil)
	return report, nil
}

// record writes the audit entry. Best effort: a storage failure is logged
// and never surfaced to the user path.
func (s *Service) record(ctx context.Context, req Request, report *Report, latency time.Duration, analysisErr error) {
	if s.records == nil {
		return
	}

	rec := &models.AnalysisRecord{
		ID:        uuid.New(),
		UserID:    req.UserID,
		MessageID: req.MessageID,
		Provider:  s.provider,
		Model:     s.model,
		LatencyMs: latency.Milliseconds(),
		Status:    models.AnalysisStatusOK,
		CreatedAt: time.Now().UTC(),
	}
	if report != nil {
		rec.Weeks = report.Weeks
		rec.WeightStatus = report.WeightStatus
		rec.ReplyText = report.Message
	}
	if analysisErr != nil {
		rec.Status = models.AnalysisStatusFailed
		rec.ErrorMessage = analysisErr.Error()
	}

	if err := s.records.Insert(ctx, rec); err != nil {
		s.logger.Warn("failed to store analysis record",
			zap.String("message_id", req.MessageID),
			zap.Error(err))
	}
}
