package fetch

import (
	"context"

	"go.uber.org/zap"

	"github.com/dazdaz/app-gcp-changelog/internal/metrics"
	"github.com/dazdaz/app-gcp-changelog/internal/source"
)

// Controller wraps a Client with the fallback policy: when the primary URL
// answers 404 and the source has a fallback URL, that URL is fetched once.
// The fallback may live on a different platform, so its kind is re-detected.
type Controller struct {
	client Client
	logger *zap.Logger
}

// NewController builds a Controller around client.
func NewController(client Client, logger *zap.Logger) *Controller {
	return &Controller{client: client, logger: logger}
}

// Fetch retrieves the source's content, applying the 404 fallback at most
// once. The returned kind is the source's kind, or the fallback URL's
// detected kind when the fallback was used.
func (c *Controller) Fetch(ctx context.Context, src source.Source) (*Response, source.Kind, error) {
	resp, err := c.client.Fetch(ctx, src.PrimaryURL)
	if err == nil {
		return resp, src.Kind, nil
	}

	if !IsNotFound(err) || src.FallbackURL == "" || src.FallbackURL == src.PrimaryURL {
		metrics.ObserveFetchFailure(reason(err))
		return nil, src.Kind, err
	}

	c.logger.Info("primary url not found, trying fallback",
		zap.String("source", src.ID),
		zap.String("primary", src.PrimaryURL),
		zap.String("fallback", src.FallbackURL),
	)
	metrics.ObserveFallback()

	resp, ferr := c.client.Fetch(ctx, src.FallbackURL)
	if ferr != nil {
		metrics.ObserveFetchFailure(reason(ferr))
		return nil, src.Kind, ferr
	}
	return resp, source.Detect(src.FallbackURL), nil
}

func reason(err error) string {
	if ne, ok := err.(*NetworkError); ok && ne.StatusCode != 0 {
		if ne.StatusCode == 404 {
			return "not_found"
		}
		if ne.StatusCode >= 500 {
			return "server_error"
		}
		return "http_error"
	}
	return "transport"
}
