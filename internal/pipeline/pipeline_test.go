package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dazdaz/app-gcp-changelog/internal/clock"
	"github.com/dazdaz/app-gcp-changelog/internal/extract"
	"github.com/dazdaz/app-gcp-changelog/internal/fetch"
	"github.com/dazdaz/app-gcp-changelog/internal/release"
	"github.com/dazdaz/app-gcp-changelog/internal/source"
)

var pipeNow = time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)

// stubFetcher records calls and serves a fixed body.
type stubFetcher struct {
	mu      sync.Mutex
	failFor map[string]error
	calls   []string
}

func (f *stubFetcher) Fetch(_ context.Context, src source.Source) (*fetch.Response, source.Kind, error) {
	f.mu.Lock()
	f.calls = append(f.calls, src.ID)
	f.mu.Unlock()
	if err, ok := f.failFor[src.ID]; ok {
		return nil, src.Kind, err
	}
	return &fetch.Response{URL: src.PrimaryURL, StatusCode: 200, Body: []byte("body")}, src.Kind, nil
}

// stubExtractors returns canned raw groups per source id.
type stubExtractors struct {
	groups map[string][]extract.RawGroup
}

type stubExtractor struct {
	groups []extract.RawGroup
}

func (e *stubExtractor) Extract(context.Context, []byte, string) ([]extract.RawGroup, error) {
	return e.groups, nil
}

func (s *stubExtractors) Select(src source.Source, _ source.Kind) (extract.Extractor, bool) {
	return &stubExtractor{groups: s.groups[src.ID]}, true
}

func recentDate(daysAgo int) release.Date {
	return release.Date{
		Time:      pipeNow.AddDate(0, 0, -daysAgo),
		Precision: release.PrecisionExact,
	}
}

func newTestPipeline(f Fetcher, e Extractors) *Pipeline {
	return New(f, e, clock.Fixed{T: pipeNow}, 2, zap.NewNop())
}

func TestPipelineRun(t *testing.T) {
	srcA := source.Source{ID: "a", PrimaryURL: "https://example.com/a", Kind: source.KindFeed}
	srcB := source.Source{ID: "b", PrimaryURL: "https://example.com/b", Kind: source.KindFeed}

	fetcher := &stubFetcher{}
	extractors := &stubExtractors{groups: map[string][]extract.RawGroup{
		"a": {{
			Date: recentDate(3),
			Fragments: []release.Fragment{
				{Text: "Vector search is now generally available", Markup: "<li>m1</li>"},
				{Text: "Fixed a scheduler bug", Markup: "<li>m2</li>"},
				// Exact duplicate of the first fragment.
				{Text: "Vector search is now generally available", Markup: "<li>m1</li>"},
			},
			SourceURL: "https://example.com/a#3",
		}},
		"b": {{
			Date:      recentDate(5),
			Fragments: []release.Fragment{{Text: "Something changed: defaults"}},
			SourceURL: "https://example.com/b#5",
		}},
	}}

	groups, err := newTestPipeline(fetcher, extractors).Run(context.Background(), []source.Source{srcA, srcB}, Options{})
	require.NoError(t, err)
	require.Len(t, groups, 2)

	// Source order is preserved regardless of scheduling.
	assert.Equal(t, "a", groups[0].Service)
	assert.Equal(t, "b", groups[1].Service)

	a := groups[0]
	require.Len(t, a.Items, 2, "exact duplicate removed")
	assert.Equal(t, release.CategoryGA, a.Items[0].Category)
	assert.Equal(t, release.CategoryFixed, a.Items[1].Category)
	// No fragment URLs: fall back to the group's own URL.
	assert.Equal(t, []string{"https://example.com/a#3"}, a.Items[0].URLs)
}

func TestPipelineSiblingIsolation(t *testing.T) {
	srcA := source.Source{ID: "a", PrimaryURL: "https://example.com/a", Kind: source.KindFeed}
	srcB := source.Source{ID: "b", PrimaryURL: "https://example.com/b", Kind: source.KindFeed}

	fetcher := &stubFetcher{failFor: map[string]error{"a": errors.New("boom")}}
	extractors := &stubExtractors{groups: map[string][]extract.RawGroup{
		"b": {{
			Date:      recentDate(1),
			Fragments: []release.Fragment{{Text: "Still works fine here"}},
		}},
	}}

	groups, err := newTestPipeline(fetcher, extractors).Run(context.Background(), []source.Source{srcA, srcB}, Options{})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "b", groups[0].Service)
}

func TestPipelineCategoryFilter(t *testing.T) {
	src := source.Source{ID: "a", PrimaryURL: "https://example.com/a", Kind: source.KindFeed}
	extractors := &stubExtractors{groups: map[string][]extract.RawGroup{
		"a": {
			{
				Date: recentDate(2),
				Fragments: []release.Fragment{
					{Text: "Fixed the thing"},
					{Text: "Announced another thing"},
				},
			},
			{
				Date:      recentDate(4),
				Fragments: []release.Fragment{{Text: "Announced only here"}},
			},
		},
	}}

	groups, err := newTestPipeline(&stubFetcher{}, extractors).Run(
		context.Background(),
		[]source.Source{src},
		Options{Categories: []release.Category{release.CategoryFixed}},
	)
	require.NoError(t, err)
	// The second group loses all items to the filter and disappears.
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Items, 1)
	assert.Equal(t, release.CategoryFixed, groups[0].Items[0].Category)
}

func TestPipelineWindowFilter(t *testing.T) {
	src := source.Source{ID: "a", PrimaryURL: "https://example.com/a", Kind: source.KindFeed}
	extractors := &stubExtractors{groups: map[string][]extract.RawGroup{
		"a": {
			{Date: recentDate(2), Fragments: []release.Fragment{{Text: "inside the window"}}},
			{Date: recentDate(30), Fragments: []release.Fragment{{Text: "outside the window"}}},
			{Date: release.MissingDate(""), Fragments: []release.Fragment{{Text: "undated, dropped in strict mode"}}},
		},
	}}

	groups, err := newTestPipeline(&stubFetcher{}, extractors).Run(
		context.Background(), []source.Source{src}, Options{Days: 7})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "inside the window", groups[0].Items[0].Text)
}

func TestPipelineHeadlessSkipsFetch(t *testing.T) {
	src := source.Source{ID: "medium", PrimaryURL: "https://medium.com/google-cloud", Kind: source.KindBlogHeadless}
	fetcher := &stubFetcher{}
	extractors := &stubExtractors{groups: map[string][]extract.RawGroup{
		"medium": {{
			Date:      recentDate(1),
			Fragments: []release.Fragment{{Text: "Rendered client side only"}},
		}},
	}}

	groups, err := newTestPipeline(fetcher, extractors).Run(context.Background(), []source.Source{src}, Options{})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Empty(t, fetcher.calls, "headless sources bypass the http fetcher")
	// With no group URL either, the primary URL is the last resort.
	assert.Equal(t, []string{src.PrimaryURL}, groups[0].Items[0].URLs)
}
