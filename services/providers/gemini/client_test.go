package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/littlebump/sonobot/services/providers"
)

var testImage = providers.Image{Data: []byte("fake-jpeg"), MIMEType: "image/jpeg"}

func newTestServer(t *testing.T, status int, body string, gotKey *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		if gotKey != nil {
			*gotKey = r.URL.Query().Get("key")
		}

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		require.Len(t, req.Contents[0].Parts, 2)
		assert.NotNil(t, req.Contents[0].Parts[0].InlineData)
		assert.Equal(t, "image/jpeg", req.Contents[0].Parts[0].InlineData.MIMEType)
		assert.NotEmpty(t, req.Contents[0].Parts[1].Text)

		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestClient_Analyze(t *testing.T) {
	respBody := `{"candidates":[{"content":{"parts":[{"text":"{\"weeks\":\"20\"}"}]}}]}`

	var gotKey string
	srv := newTestServer(t, http.StatusOK, respBody, &gotKey)
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, Model: "gemini-1.5-pro"})
	text, err := client.Analyze(context.Background(), "key-123", testImage, "describe this scan")

	require.NoError(t, err)
	assert.Equal(t, `{"weeks":"20"}`, text)
	assert.Equal(t, "key-123", gotKey, "the rotating key rides in the query string")
}

func TestClient_AnalyzeRateLimited(t *testing.T) {
	srv := newTestServer(t, http.StatusTooManyRequests, `{"error":{"code":429}}`, nil)
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	_, err := client.Analyze(context.Background(), "key", testImage, "describe")

	require.Error(t, err)
	assert.True(t, providers.IsRateLimited(err), "429 must map to the rate-limited kind")
}

func TestClient_AnalyzeServerError(t *testing.T) {
	srv := newTestServer(t, http.StatusInternalServerError, `boom`, nil)
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	_, err := client.Analyze(context.Background(), "key", testImage, "describe")

	require.Error(t, err)
	assert.False(t, providers.IsRateLimited(err))

	var pe *providers.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "gemini", pe.Provider)
	assert.Equal(t, http.StatusInternalServerError, pe.StatusCode)
}

func TestClient_AnalyzeEmptyCandidates(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"candidates":[]}`, nil)
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	_, err := client.Analyze(context.Background(), "key", testImage, "describe")

	require.Error(t, err)
	assert.False(t, providers.IsRateLimited(err))
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(Config{})
	assert.Equal(t, defaultBaseURL, client.cfg.BaseURL)
	assert.Equal(t, "gemini-1.5-pro", client.Model())
	assert.NotZero(t, client.cfg.Timeout)
}
