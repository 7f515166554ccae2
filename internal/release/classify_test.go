package release

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyHints(t *testing.T) {
	tests := []struct {
		name string
		hint string
		text string
		want Category
	}{
		{"feature is ga", "release-feature", "Cloud Run now supports sidecars", CategoryGA},
		{"feature with preview marker", "release-feature", "Sidecar support (Preview) is available", CategoryPublicPreview},
		{"feature with lowercase preview", "release-feature", "Available now (preview) in all regions", CategoryPublicPreview},
		{"changed", "release-changed", "anything at all", CategoryChange},
		{"announcement", "release-announcement", "anything at all", CategoryAnnouncement},
		{"breaking", "release-breaking", "anything at all", CategoryBreaking},
		{"issue", "release-issue", "anything at all", CategoryIssue},
		{"accordion improvements", "accordion:improvements", "Faster agent startup", CategoryGA},
		{"accordion fixes", "accordion:fixes", "Crash on empty workspace", CategoryFixed},
		{"accordion patches", "accordion:patches", "Minor rendering patch", CategoryFixed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.hint, tc.text))
		})
	}
}

func TestClassifyKeywords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Category
	}{
		// Security outranks everything that follows it.
		{"security beats breaking", "Security patch introduces a breaking change", CategorySecurity},
		{"cve", "CVE-2025-1234 affects the agent", CategorySecurity},
		{"breaking", "Breaking change: the v1 endpoint is gone", CategoryBreaking},
		{"preview beats ga", "Feature X is generally available, Feature Y is in preview", CategoryPublicPreview},
		{"ga", "Vector search is now generally available", CategoryGA},
		{"deprecated", "The legacy runtime is deprecated", CategoryDeprecated},
		{"fixed", "Fixed a race in the scheduler", CategoryFixed},
		{"known issue", "Known issue: uploads over 5 GB stall", CategoryIssue},
		{"changed", "Changed: default region is now us-central1", CategoryChange},
		{"announcement", "Introducing the new pricing calculator", CategoryAnnouncement},
		{"libraries", "The Go client library gained retries", CategoryLibraries},
		{"default", "Documentation refresh for the console", CategoryUpdate},
		{"empty", "", CategoryUpdate},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify("", tc.text))
		})
	}
}

func TestClassifyAlwaysValid(t *testing.T) {
	inputs := []string{
		"", "random text", "fix and breaking and preview and sdk",
		"ANNOUNCED loudly", "beta beta beta",
	}
	for _, text := range inputs {
		got := Classify("", text)
		assert.True(t, ValidCategory(string(got)), "category %q for %q", got, text)
	}
	// Unknown hints fall through to keyword scanning.
	assert.Equal(t, CategoryUpdate, Classify("release-unknown", "plain text"))
}
