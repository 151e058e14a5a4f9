package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/littlebump/sonobot/services/providers"
)

var testImage = providers.Image{Data: []byte{0xFF, 0xD8}, MIMEType: "image/jpeg"}

func primaryStub(errs map[string]error, result string) PrimaryFunc {
	return func(_ context.Context, apiKey string, _ providers.Image, _ string) (string, error) {
		if err, ok := errs[apiKey]; ok {
			return "", err
		}
		return result, nil
	}
}

func TestCoordinator_PrimarySuccessSkipsFallback(t *testing.T) {
	rot := newTestRotator([]string{"a"}, newFakeClock(), DefaultRotatorConfig())

	secondaryCalls := 0
	secondary := func(_ context.Context, model string, _ providers.Image, _ string) (string, error) {
		secondaryCalls++
		return "unused", nil
	}

	coord := NewCoordinator(rot, primaryStub(nil, "primary says hi"), secondary, []string{"m1"}, zap.NewNop())
	text, err := coord.Analyze(context.Background(), testImage, "describe")

	require.NoError(t, err)
	assert.Equal(t, "primary says hi", text)
	assert.Zero(t, secondaryCalls)
}

func TestCoordinator_EmptyPoolFallsThroughToSecondary(t *testing.T) {
	rot := newTestRotator(nil, newFakeClock(), DefaultRotatorConfig())

	var tried []string
	secondary := func(_ context.Context, model string, _ providers.Image, _ string) (string, error) {
		tried = append(tried, model)
		if model == "m1" {
			return "", providers.NewError("openrouter", model, 502, providers.KindOther, "bad gateway", nil)
		}
		return "ok", nil
	}

	coord := NewCoordinator(rot, primaryStub(nil, "x"), secondary, []string{"m1", "m2", "m3"}, zap.NewNop())
	text, err := coord.Analyze(context.Background(), testImage, "describe")

	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, []string{"m1", "m2"}, tried, "stops at the first success")
}

func TestCoordinator_NoProvidersConfigured(t *testing.T) {
	rot := newTestRotator(nil, newFakeClock(), DefaultRotatorConfig())
	coord := NewCoordinator(rot, primaryStub(nil, "x"), nil, nil, zap.NewNop())

	_, err := coord.Analyze(context.Background(), testImage, "describe")

	var ae *AllProvidersError
	require.ErrorAs(t, err, &ae)
	assert.ErrorIs(t, err, ErrNoKeys)
}

func TestCoordinator_PrimaryExhaustedAndAllModelsFail(t *testing.T) {
	rot := newTestRotator([]string{"a"}, newFakeClock(), DefaultRotatorConfig())

	lastModelErr := providers.NewError("openrouter", "m2", 500, providers.KindOther, "server error", nil)
	secondary := func(_ context.Context, model string, _ providers.Image, _ string) (string, error) {
		if model == "m2" {
			return "", lastModelErr
		}
		return "", providers.NewError("openrouter", model, 503, providers.KindOther, "unavailable", nil)
	}

	coord := NewCoordinator(rot,
		primaryStub(map[string]error{"a": rateLimitedErr()}, "x"),
		secondary, []string{"m1", "m2"}, zap.NewNop())

	_, err := coord.Analyze(context.Background(), testImage, "describe")

	var ae *AllProvidersError
	require.ErrorAs(t, err, &ae)
	assert.ErrorIs(t, err, lastModelErr, "carries the last error in try order")
}

func TestCoordinator_PrimaryExhaustedWithoutSecondary(t *testing.T) {
	clock := newFakeClock()
	cfg := DefaultRotatorConfig()
	cfg.KeyCooldown = time.Second
	rot := newTestRotator([]string{"a"}, clock, cfg)

	coord := NewCoordinator(rot,
		primaryStub(map[string]error{"a": rateLimitedErr()}, "x"),
		nil, nil, zap.NewNop())

	_, err := coord.Analyze(context.Background(), testImage, "describe")

	var ae *AllProvidersError
	require.ErrorAs(t, err, &ae)
	assert.True(t, IsQuotaExhausted(ae.Last), "wraps the primary's terminal quota error")
}
