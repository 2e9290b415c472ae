package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/songzhibin97/splscan/internal/data"
	"github.com/songzhibin97/splscan/internal/models"
)

// MultiSourceCollector implements data.DataSource by falling back across sources in order
type MultiSourceCollector struct {
	sources []data.DataSource
	logger  Logger
}

type Logger interface {
	Error(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
}

func NewMultiSourceCollector(sources []data.DataSource, logger Logger) *MultiSourceCollector {
	return &MultiSourceCollector{
		sources: sources,
		logger:  logger,
	}
}

func (c *MultiSourceCollector) Name() string {
	return "multi"
}

// FetchMetadata implements data.DataSource
func (c *MultiSourceCollector) FetchMetadata(ctx context.Context, address string) (*models.RawMetadata, error) {
	return firstOf(ctx, c, "metadata", address, func(src data.DataSource) (*models.RawMetadata, error) {
		return src.FetchMetadata(ctx, address)
	})
}

// FetchHolders implements data.DataSource
func (c *MultiSourceCollector) FetchHolders(ctx context.Context, address string) ([]models.RawHolder, error) {
	return firstOf(ctx, c, "holders", address, func(src data.DataSource) ([]models.RawHolder, error) {
		return src.FetchHolders(ctx, address)
	})
}

// FetchPrice implements data.DataSource. Sources without a price endpoint
// are skipped; when none offers one the token simply has no price.
func (c *MultiSourceCollector) FetchPrice(ctx context.Context, address string) (*models.PriceInfo, error) {
	info, err := firstOf(ctx, c, "price", address, func(src data.DataSource) (*models.PriceInfo, error) {
		return src.FetchPrice(ctx, address)
	})
	if errors.Is(err, data.ErrNotSupported) {
		return nil, nil
	}
	return info, err
}

func firstOf[T any](ctx context.Context, c *MultiSourceCollector, what, address string, call func(data.DataSource) (T, error)) (T, error) {
	var zero T
	if len(c.sources) == 0 {
		return zero, fmt.Errorf("no data sources configured")
	}

	var lastErr error
	supported := false
	for _, source := range c.sources {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := call(source)
		if err == nil {
			c.logger.Info("collected "+what, "source", source.Name(), "address", address)
			return result, nil
		}
		if errors.Is(err, data.ErrNotSupported) {
			continue
		}

		supported = true
		lastErr = err
		c.logger.Error("failed to collect "+what, "source", source.Name(), "error", err)
	}

	if !supported {
		return zero, data.ErrNotSupported
	}
	return zero, fmt.Errorf("failed to collect %s from all sources: %w", what, lastErr)
}
