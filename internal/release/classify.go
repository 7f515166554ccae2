package release

import "strings"

// hintCategories maps source marker classes to categories. The
// release-feature marker alone is preview-sensitive and is handled in
// Classify before this table applies.
var hintCategories = map[string]Category{
	"release-changed":        CategoryChange,
	"release-announcement":   CategoryAnnouncement,
	"release-breaking":       CategoryBreaking,
	"release-issue":          CategoryIssue,
	"accordion:improvements": CategoryGA,
	"accordion:fixes":        CategoryFixed,
	"accordion:patches":      CategoryFixed,
}

// keywordGroup is one ordered rule of the keyword classifier.
type keywordGroup struct {
	category Category
	keywords []string
}

// keywordGroups is evaluated top to bottom on lowercased text; the first
// group with a match wins. Order is deliberate: a security patch that
// introduces a breaking change is security, and preview beats GA so that
// "generally available ... (preview)" items stay preview.
var keywordGroups = []keywordGroup{
	{CategorySecurity, []string{"security", "vulnerability", "cve", "patch"}},
	{CategoryBreaking, []string{"breaking change", "breaking change:", "migration required", "major version update"}},
	{CategoryPublicPreview, []string{"(preview)", "public preview", "in preview", "preview)", "early access", "beta"}},
	{CategoryGA, []string{"generally available", "general availability", "(ga)", "is now ga", "is in ga", "in general availability"}},
	{CategoryDeprecated, []string{"deprecated", "deprecation", "obsolete", "removed", "discontinued"}},
	{CategoryFixed, []string{"fixed", "fix:", "resolved", "bug"}},
	{CategoryIssue, []string{"issue", "known issue", "workaround"}},
	{CategoryChange, []string{"changed:", "migration required", "version updates"}},
	{CategoryAnnouncement, []string{"announced", "announcement", "introducing"}},
	{CategoryLibraries, []string{"library", "sdk", "api", "client library", "framework"}},
}

// Classify assigns a category to a release note. A source hint, when
// present, is authoritative; keyword scanning is the fallback and Update
// the default.
func Classify(hint, text string) Category {
	if hint == "release-feature" {
		if strings.Contains(text, "(preview)") || strings.Contains(text, "(Preview)") {
			return CategoryPublicPreview
		}
		return CategoryGA
	}
	if c, ok := hintCategories[hint]; ok {
		return c
	}

	lower := strings.ToLower(text)
	for _, group := range keywordGroups {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.category
			}
		}
	}
	return CategoryUpdate
}
