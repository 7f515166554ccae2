// Package release defines the normalized release-note model shared by all
// extractors, plus date normalization and category classification.
package release

import "time"

// Precision qualifies how a release date was obtained.
type Precision string

// Date precisions.
const (
	PrecisionExact        Precision = "exact"
	PrecisionYearInferred Precision = "year_inferred"
	PrecisionRelative     Precision = "relative"
	PrecisionMissing      Precision = "missing"
)

// Date is a canonical, timezone-naive release date. Missing dates are
// retained, not discarded; the strict-mode filter decides their fate.
type Date struct {
	Time      time.Time
	Original  string
	Precision Precision
}

// Known reports whether the date was resolved at all.
func (d Date) Known() bool {
	return d.Precision != PrecisionMissing
}

// MissingDate returns a Date carrying only the original string.
func MissingDate(original string) Date {
	return Date{Original: original, Precision: PrecisionMissing}
}

// Category is the fixed classification label assigned to a release item.
type Category string

// The closed category set. Update is the default when no rule matches.
const (
	CategoryGA            Category = "ga"
	CategoryPublicPreview Category = "public-preview"
	CategoryBreaking      Category = "breaking"
	CategorySecurity      Category = "security"
	CategoryDeprecated    Category = "deprecated"
	CategoryFixed         Category = "fixed"
	CategoryIssue         Category = "issue"
	CategoryChange        Category = "change"
	CategoryAnnouncement  Category = "announcement"
	CategoryLibraries     Category = "libraries"
	CategoryUpdate        Category = "update"
)

// Categories lists every valid category, in classifier priority order.
var Categories = []Category{
	CategorySecurity,
	CategoryBreaking,
	CategoryPublicPreview,
	CategoryGA,
	CategoryDeprecated,
	CategoryFixed,
	CategoryIssue,
	CategoryChange,
	CategoryAnnouncement,
	CategoryLibraries,
	CategoryUpdate,
}

// ValidCategory reports whether s names a known category.
func ValidCategory(s string) bool {
	for _, c := range Categories {
		if string(c) == s {
			return true
		}
	}
	return false
}

// Fragment is an unclassified, undated piece of content produced by an
// extractor. Markup keeps the raw source markup for exact-match dedup;
// Hint carries a marker class (or accordion label) from the source.
type Fragment struct {
	Text   string
	Markup string
	Hint   string
	URLs   []string
}

// Item is one classified release note.
type Item struct {
	Text     string   `json:"text"`
	Category Category `json:"category"`
	URLs     []string `json:"urls"`
}

// Group holds all items associated with one resolved date from one
// extraction pass. Groups with equal dates from the same source are never
// merged here; merging is a rendering concern.
type Group struct {
	Date      Date
	Items     []Item
	SourceURL string
	Service   string
}
