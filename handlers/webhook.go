package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/littlebump/sonobot/app"
	"github.com/littlebump/sonobot/internal/line"
	"github.com/littlebump/sonobot/services/analysis"
	"github.com/littlebump/sonobot/services/dispatch"
	"github.com/littlebump/sonobot/services/providers"
	"github.com/littlebump/sonobot/utils"
)

const (
	// maxWebhookBody bounds the webhook request body. LINE webhook payloads
	// are small JSON envelopes; anything larger is not a legitimate webhook.
	maxWebhookBody = 1 << 20

	// processTimeout bounds one image event end to end: blob download,
	// analysis (including key rotation waits) and the reply call.
	processTimeout = 5 * time.Minute

	// growthCardImageURL is the hero image of the reply card. Flex Messages
	// require a public URL, and LINE's content endpoint is not public, so a
	// real deployment uploads the blob to object storage first.
	// TODO: wire an object storage upload and use the resulting URL here.
	growthCardImageURL = "https://example.com/placeholder.jpg"
)

// WebhookHandler handles POST /callback from the LINE platform: it verifies
// the request signature, acknowledges immediately, and processes image
// events in the background so the platform never sees analysis latency.
func WebhookHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			deps.Logger.Warn("failed to read webhook body", zap.Error(err))
			_ = utils.WriteBadRequest(w, "unreadable request body", nil)
			return
		}

		signature := r.Header.Get("X-Line-Signature")
		if !line.ValidateSignature(deps.Config.Line.ChannelSecret, body, signature) {
			deps.Logger.Warn("webhook signature mismatch",
				zap.String("remote_addr", r.RemoteAddr))
			_ = utils.WriteBadRequest(w, "invalid signature", nil)
			return
		}

		req, err := line.ParseWebhookRequest(body)
		if err != nil {
			deps.Logger.Warn("malformed webhook payload", zap.Error(err))
			_ = utils.WriteBadRequest(w, "malformed payload", nil)
			return
		}

		// Ack before processing. LINE retries webhooks that take too long,
		// and a full analysis pass can outlast its delivery timeout.
		_ = utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})

		for _, event := range req.Events {
			if !event.IsImageMessage() {
				continue
			}
			go processImageEvent(deps, event)
		}
	}
}

// processImageEvent runs one image event end to end. It owns its own
// context: the webhook request context is already done by the time this
// runs.
func processImageEvent(deps *app.Dependencies, event line.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
	defer cancel()

	logger := deps.Logger.With(
		zap.String("message_id", event.Message.ID),
		zap.String("user_id", event.Source.UserID))

	data, contentType, err := deps.Line.GetMessageContent(ctx, event.Message.ID)
	if err != nil {
		logger.Error("failed to download message content", zap.Error(err))
		return
	}

	report, err := deps.Analysis.Analyze(ctx, analysis.Request{
		UserID:    event.Source.UserID,
		MessageID: event.Message.ID,
		Image: providers.Image{
			Data:     data,
			MIMEType: contentType,
		},
	})
	if err != nil {
		if dispatch.IsQuotaExhausted(err) {
			logger.Warn("analysis refused, all keys cooling down", zap.Error(err))
		} else {
			logger.Error("analysis failed", zap.Error(err))
		}
		return
	}

	card := line.NewGrowthCard(report.Weeks, report.Message, growthCardImageURL)
	if err := deps.Line.ReplyMessage(ctx, event.ReplyToken, card); err != nil {
		logger.Error("failed to send reply", zap.Error(err))
		return
	}

	logger.Info("image event processed",
		zap.String("weeks", report.Weeks),
		zap.String("weight_status", report.WeightStatus))
}
