package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dazdaz/app-gcp-changelog/internal/config"
	"github.com/dazdaz/app-gcp-changelog/internal/release"
)

func testApp() *App {
	return &App{Config: config.Config{Scrape: config.ScrapeConfig{DefaultMonths: 12}}}
}

func TestResolveSources(t *testing.T) {
	sources, err := resolveSources(scrapeFlags{service: "cloud-run"})
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "cloud-run", sources[0].ID)

	sources, err = resolveSources(scrapeFlags{group: "gke"})
	require.NoError(t, err)
	assert.Len(t, sources, 4)

	sources, err = resolveSources(scrapeFlags{blogs: true})
	require.NoError(t, err)
	assert.NotEmpty(t, sources)

	sources, err = resolveSources(scrapeFlags{url: "https://cloud.google.com/run/docs/release-notes"})
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "custom", sources[0].ID)
}

func TestResolveSourcesValidation(t *testing.T) {
	_, err := resolveSources(scrapeFlags{})
	assert.Error(t, err, "a selector is required")

	_, err = resolveSources(scrapeFlags{service: "cloud-run", group: "gke"})
	assert.Error(t, err, "selectors are mutually exclusive")

	_, err = resolveSources(scrapeFlags{service: "no-such-service"})
	assert.Error(t, err)

	_, err = resolveSources(scrapeFlags{group: "no-such-group"})
	assert.Error(t, err)
}

func TestResolveOptions(t *testing.T) {
	opts, err := resolveOptions(scrapeFlags{days: 7}, testApp())
	require.NoError(t, err)
	assert.Equal(t, 7, opts.Days)

	opts, err = resolveOptions(scrapeFlags{startDate: "2025-01-01", endDate: "2025-02-01"}, testApp())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), opts.Start)
	assert.Equal(t, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), opts.End)

	// No window flags: the configured default applies.
	opts, err = resolveOptions(scrapeFlags{}, testApp())
	require.NoError(t, err)
	assert.Equal(t, 12, opts.Months)

	opts, err = resolveOptions(scrapeFlags{categories: []string{"ga", "fixed"}}, testApp())
	require.NoError(t, err)
	assert.Equal(t, []release.Category{release.CategoryGA, release.CategoryFixed}, opts.Categories)
}

func TestResolveOptionsValidation(t *testing.T) {
	_, err := resolveOptions(scrapeFlags{days: 7, months: 2}, testApp())
	assert.Error(t, err, "window flags are mutually exclusive")

	_, err = resolveOptions(scrapeFlags{startDate: "January 1"}, testApp())
	assert.Error(t, err)

	_, err = resolveOptions(scrapeFlags{endDate: "bad"}, testApp())
	assert.Error(t, err)

	_, err = resolveOptions(scrapeFlags{categories: []string{"shiny"}}, testApp())
	assert.Error(t, err)
}
