package render

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dazdaz/app-gcp-changelog/internal/release"
)

var renderNow = time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)

func sampleGroups() []release.Group {
	return []release.Group{
		{
			Date: release.Date{
				Time:      time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
				Precision: release.PrecisionExact,
			},
			Service:   "cloud-run",
			SourceURL: "https://cloud.google.com/run/docs/release-notes",
			Items: []release.Item{
				{
					Text:     "Sidecars are generally available",
					Category: release.CategoryGA,
					URLs:     []string{"https://cloud.google.com/run/docs/sidecars"},
				},
			},
		},
		{
			Date:      release.MissingDate(""),
			Service:   "medium",
			SourceURL: "https://medium.com/google-cloud",
			Items: []release.Item{
				{Text: "An undated community post", Category: release.CategoryAnnouncement, URLs: []string{"https://medium.com/google-cloud/p"}},
			},
		},
		{
			Date: release.Date{
				Time:      time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
				Precision: release.PrecisionExact,
			},
			Service:   "bigquery",
			SourceURL: "https://cloud.google.com/bigquery/docs/release-notes",
			Items: []release.Item{
				{Text: "Fixed a query planner regression", Category: release.CategoryFixed, URLs: nil},
			},
		},
	}
}

func TestRenderSortsNewestFirst(t *testing.T) {
	out, err := Render(FormatText, sampleGroups(), renderNow)
	require.NoError(t, err)

	bq := strings.Index(out, "bigquery")
	run := strings.Index(out, "cloud-run")
	undated := strings.Index(out, "Unknown date")
	require.True(t, bq >= 0 && run >= 0 && undated >= 0)
	assert.Less(t, bq, run, "June 10 before June 1")
	assert.Less(t, run, undated, "undated groups sink to the bottom")
}

func TestRenderText(t *testing.T) {
	out, err := Render(FormatText, sampleGroups(), renderNow)
	require.NoError(t, err)

	assert.Contains(t, out, "Release Notes Summary")
	assert.Contains(t, out, "3 updates across 3 release groups from 3 services")
	assert.Contains(t, out, "June 10, 2025 (bigquery)")
	assert.Contains(t, out, "[ga] Sidecars are generally available")
	assert.Contains(t, out, "https://cloud.google.com/run/docs/sidecars")
	assert.Contains(t, out, "By category:")
	// Separators stay plain ASCII.
	assert.NotContains(t, out, "—")
}

func TestRenderMarkdown(t *testing.T) {
	out, err := Render(FormatMarkdown, sampleGroups(), renderNow)
	require.NoError(t, err)

	assert.Contains(t, out, "# Release Notes")
	assert.Contains(t, out, "## June 10, 2025 (bigquery)")
	assert.Contains(t, out, "**ga** Sidecars are generally available")
	assert.Contains(t, out, "([link](https://cloud.google.com/run/docs/sidecars))")
}

func TestRenderJSON(t *testing.T) {
	out, err := Render(FormatJSON, sampleGroups(), renderNow)
	require.NoError(t, err)

	var doc jsonDocument
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	assert.Equal(t, "2025-06-15T10:00:00Z", doc.Metadata.GeneratedAt)
	assert.Equal(t, []string{"bigquery", "cloud-run", "medium"}, doc.Metadata.Services)
	assert.Equal(t, 3, doc.Statistics.TotalItems)
	assert.Equal(t, 1, doc.Statistics.ByCategory["fixed"])

	require.Len(t, doc.Releases, 3)
	assert.Equal(t, "2025-06-10", doc.Releases[0].Date)
	assert.Equal(t, "missing", doc.Releases[2].Precision)
	assert.Empty(t, doc.Releases[2].Date)
}

func TestRenderHTML(t *testing.T) {
	out, err := Render(FormatHTML, sampleGroups(), renderNow)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<h2>June 1, 2025 (cloud-run)</h2>")
	assert.Contains(t, out, `<a href="https://cloud.google.com/run/docs/sidecars">link</a>`)
}

func TestRenderHTMLEscapes(t *testing.T) {
	groups := []release.Group{{
		Date:    release.MissingDate(""),
		Service: "test",
		Items: []release.Item{{
			Text:     `<script>alert("x")</script>`,
			Category: release.CategoryUpdate,
		}},
	}}
	out, err := Render(FormatHTML, groups, renderNow)
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>alert")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestRenderUnknownFormat(t *testing.T) {
	_, err := Render(Format("yaml"), nil, renderNow)
	require.Error(t, err)
	assert.False(t, ValidFormat("yaml"))
	assert.True(t, ValidFormat("markdown"))
}
