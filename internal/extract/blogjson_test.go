package extract

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dazdaz/app-gcp-changelog/internal/release"
)

const blogPage = `<html><body>
<script>AF_initDataCallback({key:'ds:0',data:[[["Introducing Cloud Run worker pools","Run background workloads without an endpoint",null,null,null,null,null,"https://cloud.google.com/blog/products/serverless/worker-pools",[1736496000],null]]]});</script>
</body></html>`

func TestBlogJSONExtractor(t *testing.T) {
	e := NewBlogJSONExtractor(testNormalizer(), zap.NewNop())
	pageURL := "https://cloud.google.com/blog/products/application-development"

	groups, err := e.Extract(context.Background(), []byte(blogPage), pageURL)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	g := groups[0]
	// 1736496000 = 2025-01-10 08:00 UTC, truncated to midnight.
	assert.Equal(t, time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC), g.Date.Time)
	assert.Equal(t, release.PrecisionExact, g.Date.Precision)

	require.Len(t, g.Fragments, 1)
	f := g.Fragments[0]
	assert.Equal(t, "Introducing Cloud Run worker pools - Run background workloads without an endpoint", f.Text)
	assert.Equal(t, "release-announcement", f.Hint)
	assert.Equal(t, []string{"https://cloud.google.com/blog/products/serverless/worker-pools"}, f.URLs)
}

const blogCardsPage = `<html><body>
<div class="u2M0Kb">
  <a class="w7DBpd" href="/blog/products/ai-machine-learning/gemini-updates"><h5>Gemini model updates for January</h5></a>
</div>
<div class="u2M0Kb">
  <a class="w7DBpd" href="/blog/products/ai-machine-learning/short"><h5>short</h5></a>
</div>
</body></html>`

func TestBlogJSONExtractorCardFallback(t *testing.T) {
	e := NewBlogJSONExtractor(testNormalizer(), zap.NewNop())
	pageURL := "https://cloud.google.com/blog/products/ai-machine-learning"

	groups, err := e.Extract(context.Background(), []byte(blogCardsPage), pageURL)
	require.NoError(t, err)
	require.Len(t, groups, 1, "short titles are dropped")

	g := groups[0]
	assert.False(t, g.Date.Known())
	assert.Equal(t, "Gemini model updates for January", g.Fragments[0].Text)
	assert.Equal(t, []string{"https://cloud.google.com/blog/products/ai-machine-learning/gemini-updates"}, g.Fragments[0].URLs)
}

func TestBlogJSONExtractorIgnoresForeignRecords(t *testing.T) {
	page := `<html><body>
<script>AF_initDataCallback({key:'ds:0',data:[[["Title","Summary",null,null,null,null,null,"https://example.com/not-a-blog-post",[1736496000],null]]]});</script>
</body></html>`

	e := NewBlogJSONExtractor(testNormalizer(), zap.NewNop())
	groups, err := e.Extract(context.Background(), []byte(page), "https://cloud.google.com/blog/products/infrastructure")
	require.NoError(t, err)
	assert.Empty(t, groups)
}
