// Package openrouter is the fallback vision provider: a plain
// chat-completions client with image content embedded as a data URL.
package openrouter

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

const defaultBaseURL = "https://openrouter.ai/api/v1"

// Config holds OpenRouter client configuration.
type Config struct {
	// APIKey is the single fallback credential.
	APIKey string

	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string

	// Timeout bounds a single HTTP request.
	Timeout time.Duration
}

// Client calls the OpenRouter chat completions endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates an OpenRouter client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type message struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Analyze sends the image and prompt to the given model. Only an HTTP 200
// counts as success; anything else, including transport failure, is a
// per-model failure that makes the coordinator fall through to the next
// model in its list.
func (c *Client) Analyze(ctx context.Context, model string, image providers.Image, prompt string) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", image.MIMEType, base64.StdEncoding.EncodeToString(image.Data))

	reqBody := chatRequest{
		Model: model,
		Messages: []message{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
			},
		}},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", providers.NewError("openrouter", model, 0, providers.KindOther, "failed to marshal request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", providers.NewError("openrouter", model, 0, providers.KindOther, "failed to create request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", providers.NewError("openrouter", model, 0, providers.KindOther, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", providers.NewError("openrouter", model, resp.StatusCode, providers.KindOther, "failed to read response", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", providers.NewError("openrouter", model, resp.StatusCode, providers.KindRateLimited, "quota exhausted", nil)
	case resp.StatusCode != http.StatusOK:
		return "", providers.NewError("openrouter", model, resp.StatusCode, providers.KindOther, "unexpected response", nil)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", providers.NewError("openrouter", model, resp.StatusCode, providers.KindOther, "failed to unmarshal response", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", providers.NewError("openrouter", model, resp.StatusCode, providers.KindOther, "empty response from model", nil)
	}

	return chatResp.Choices[0].Message.Content, nil
}
