// Package gemini is a minimal client for the Google Generative Language API,
// covering the single generateContent call the bot needs. The API key is
// supplied per call so the dispatch layer can rotate keys freely over one
// shared client.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/littlebump/sonobot/services/providers"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Config holds Gemini client configuration.
type Config struct {
	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string

	// Model is the model identifier (e.g. "gemini-1.5-pro").
	Model string

	// Timeout bounds a single HTTP request.
	Timeout time.Duration
}

// Client calls the Gemini generateContent endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a Gemini client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-pro"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.cfg.Model
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Analyze sends the image and prompt to the model and returns its text
// output. A 429 response comes back as a rate-limited provider error so the
// dispatcher can rotate to the next key; every other failure is KindOther.
func (c *Client) Analyze(ctx context.Context, apiKey string, image providers.Image, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []content{{
			Parts: []part{
				{InlineData: &inlineData{
					MIMEType: image.MIMEType,
					Data:     base64.StdEncoding.EncodeToString(image.Data),
				}},
				{Text: prompt},
			},
		}},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", providers.NewError("gemini", c.cfg.Model, 0, providers.KindOther, "failed to marshal request", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.cfg.BaseURL, c.cfg.Model, apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", providers.NewError("gemini", c.cfg.Model, 0, providers.KindOther, "failed to create request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", providers.NewError("gemini", c.cfg.Model, 0, providers.KindOther, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", providers.NewError("gemini", c.cfg.Model, resp.StatusCode, providers.KindOther, "failed to read response", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", providers.NewError("gemini", c.cfg.Model, resp.StatusCode, providers.KindRateLimited, "quota exhausted", nil)
	case resp.StatusCode != http.StatusOK:
		return "", providers.NewError("gemini", c.cfg.Model, resp.StatusCode, providers.KindOther,
			fmt.Sprintf("unexpected response: %s", truncate(body, 200)), nil)
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", providers.NewError("gemini", c.cfg.Model, resp.StatusCode, providers.KindOther, "failed to unmarshal response", err)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", providers.NewError("gemini", c.cfg.Model, resp.StatusCode, providers.KindOther, "empty response from model", nil)
	}

	return genResp.Candidates[0].Content.Parts[0].Text, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
