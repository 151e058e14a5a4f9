package dispatch

import (
	"context"

	"go.uber.org/zap"

	"github.com/littlebump/sonobot/services/providers"
)

// PrimaryFunc performs one primary-provider vision call with a rotating key.
type PrimaryFunc func(ctx context.Context, apiKey string, image providers.Image, prompt string) (string, error)

// SecondaryFunc performs one fallback-provider vision call with a fixed key
// and the given model identifier.
type SecondaryFunc func(ctx context.Context, model string, image providers.Image, prompt string) (string, error)

// Coordinator tries the primary rotation first and, when it fails outright,
// walks an ordered list of fallback models, one attempt each with no backoff.
// The first success wins.
type Coordinator struct {
	rotator         *Rotator
	primary         PrimaryFunc
	secondary       SecondaryFunc
	secondaryModels []string
	logger          *zap.Logger
}

// NewCoordinator wires the fallback chain. secondary may be nil (no fallback
// provider configured), in which case primary exhaustion is terminal.
func NewCoordinator(rotator *Rotator, primary PrimaryFunc, secondary SecondaryFunc, secondaryModels []string, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		rotator:         rotator,
		primary:         primary,
		secondary:       secondary,
		secondaryModels: secondaryModels,
		logger:          logger,
	}
}

// Analyze returns the first successful model output for the image, or an
// AllProvidersError once the primary rotation and every fallback model have
// failed. The wrapped error is the last one observed in try order.
func (c *Coordinator) Analyze(ctx context.Context, image providers.Image, prompt string) (string, error) {
	lastErr := error(ErrNoKeys)

	if c.rotator.PoolSize() > 0 {
		text, err := c.rotator.Dispatch(ctx, func(ctx context.Context, apiKey string) (string, error) {
			return c.primary(ctx, apiKey, image, prompt)
		})
		if err == nil {
			return text, nil
		}
		lastErr = err
		c.logger.Warn("primary provider failed, trying fallback models", zap.Error(err))
	}

	if c.secondary != nil {
		for _, model := range c.secondaryModels {
			text, err := c.secondary(ctx, model, image, prompt)
			if err == nil {
				c.logger.Info("fallback model succeeded", zap.String("model", model))
				return text, nil
			}
			lastErr = err
			c.logger.Warn("fallback model failed",
				zap.String("model", model),
				zap.Error(err))
		}
	}

	return "", &AllProvidersError{Last: lastErr}
}
