package line

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestValidateSignature(t *testing.T) {
	secret := "channel-secret"
	body := []byte(`{"events":[]}`)

	t.Run("valid signature", func(t *testing.T) {
		assert.True(t, ValidateSignature(secret, body, sign(secret, body)))
	})

	t.Run("wrong secret", func(t *testing.T) {
		assert.False(t, ValidateSignature(secret, body, sign("other-secret", body)))
	})

	t.Run("tampered body", func(t *testing.T) {
		assert.False(t, ValidateSignature(secret, []byte(`{"events":[{}]}`), sign(secret, body)))
	})

	t.Run("not base64", func(t *testing.T) {
		assert.False(t, ValidateSignature(secret, body, "%%%not-base64%%%"))
	})

	t.Run("empty signature", func(t *testing.T) {
		assert.False(t, ValidateSignature(secret, body, ""))
	})
}

func TestParseWebhookRequest(t *testing.T) {
	body := []byte(`{
		"destination": "U0123",
		"events": [
			{
				"type": "message",
				"timestamp": 1718000000000,
				"replyToken": "rt-1",
				"source": {"type": "user", "userId": "U-abc"},
				"message": {"id": "m-1", "type": "image"}
			},
			{
				"type": "message",
				"replyToken": "rt-2",
				"source": {"type": "user", "userId": "U-abc"},
				"message": {"id": "m-2", "type": "text", "text": "hi"}
			},
			{
				"type": "follow",
				"replyToken": "rt-3",
				"source": {"type": "user", "userId": "U-def"}
			}
		]
	}`)

	req, err := ParseWebhookRequest(body)
	assert.NoError(t, err)
	assert.Len(t, req.Events, 3)

	assert.True(t, req.Events[0].IsImageMessage())
	assert.False(t, req.Events[1].IsImageMessage(), "text messages are not image events")
	assert.False(t, req.Events[2].IsImageMessage(), "non-message events are ignored")
	assert.Equal(t, "m-1", req.Events[0].Message.ID)
}

func TestParseWebhookRequest_Malformed(t *testing.T) {
	_, err := ParseWebhookRequest([]byte(`{not json`))
	assert.Error(t, err)
}
