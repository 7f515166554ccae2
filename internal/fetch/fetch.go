// Package fetch provides the HTTP layer for source retrieval: a Colly-based
// client presenting browser-like headers, and a controller that applies the
// one-shot HTML fallback on 404.
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// Response is the outcome of a successful fetch.
type Response struct {
	URL         string
	StatusCode  int
	Body        []byte
	ContentType string
}

// Client retrieves one URL. Implementations must honor ctx cancellation.
type Client interface {
	Fetch(ctx context.Context, url string) (*Response, error)
}

// NetworkError reports a failed fetch with whatever status was observed.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a NetworkError carrying a 404.
func IsNotFound(err error) bool {
	ne, ok := err.(*NetworkError)
	return ok && ne.StatusCode == http.StatusNotFound
}

// CollyClient fetches pages through a shared Colly collector. The base
// collector is cloned per fetch so per-request callbacks never leak between
// concurrent fetches.
type CollyClient struct {
	base      *colly.Collector
	userAgent string
	timeout   time.Duration
	logger    *zap.Logger
}

// NewCollyClient builds a CollyClient with browser-like request headers.
func NewCollyClient(userAgent string, timeout time.Duration, logger *zap.Logger) *CollyClient {
	base := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
	)
	base.SetRequestTimeout(timeout)

	return &CollyClient{
		base:      base,
		userAgent: userAgent,
		timeout:   timeout,
		logger:    logger,
	}
}

// Fetch retrieves url and returns its body. Non-2xx statuses surface as
// NetworkError so the caller can distinguish 404 from transport failures.
func (c *CollyClient) Fetch(ctx context.Context, url string) (*Response, error) {
	collector := c.base.Clone()
	collector.Context = ctx

	var (
		once sync.Once
		resp *Response
		ferr error
		done = make(chan struct{})
	)

	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
	})

	collector.OnResponse(func(r *colly.Response) {
		once.Do(func() {
			resp = &Response{
				URL:         r.Request.URL.String(),
				StatusCode:  r.StatusCode,
				Body:        r.Body,
				ContentType: r.Headers.Get("Content-Type"),
			}
			close(done)
		})
	})

	collector.OnError(func(r *colly.Response, err error) {
		once.Do(func() {
			status := 0
			if r != nil {
				status = r.StatusCode
			}
			ferr = &NetworkError{URL: url, StatusCode: status, Err: err}
			close(done)
		})
	})

	if err := collector.Visit(url); err != nil {
		once.Do(func() {
			ferr = &NetworkError{URL: url, Err: err}
			close(done)
		})
	}
	collector.Wait()

	select {
	case <-done:
	case <-ctx.Done():
		return nil, &NetworkError{URL: url, Err: ctx.Err()}
	}

	if ferr != nil {
		c.logger.Debug("fetch failed", zap.String("url", url), zap.Error(ferr))
		return nil, ferr
	}
	return resp, nil
}
