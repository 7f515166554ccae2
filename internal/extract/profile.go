package extract

import "regexp"

// CardProfile describes one card shape on a blog index page.
type CardProfile struct {
	Container string
	Title     string
	Link      string
	Date      string
}

// Profile tunes the HTML extractor for one documentation platform.
// The zero selectors of GenericProfile make every strategy best-effort.
type Profile struct {
	// Containers are tried in order; the first that selects anything
	// scopes the rest of the extraction.
	Containers []string

	// HeaderTags is the selector for date-bearing section headers.
	HeaderTags string

	// DatePatterns are tried in order against header and cell text.
	DatePatterns []*regexp.Regexp

	// MinText is the minimum fragment text length.
	MinText int

	// Cards, when set, are tried before any structural strategy.
	Cards []CardProfile

	// UseTables enables the row-per-release table strategy.
	UseTables bool
}

var (
	monthDatePattern = regexp.MustCompile(`(\w+\s+\d{1,2},\s+\d{4})`)
	isoDatePattern   = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`)
	slashDatePattern = regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{4})`)
)

var defaultDatePatterns = []*regexp.Regexp{
	monthDatePattern,
	isoDatePattern,
	slashDatePattern,
}

// GoogleCloudProfile matches cloud.google.com and developers.google.com
// release-notes pages: devsite layout, date-per-h2 sections.
var GoogleCloudProfile = Profile{
	Containers: []string{
		"main",
		"article",
		`[role="main"]`,
		".devsite-article-body",
		"div.release-notes-container",
	},
	HeaderTags:   "h2, h3",
	DatePatterns: defaultDatePatterns,
	MinText:      10,
}

// FirebaseProfile matches firebase.google.com release notes, which mix
// dated headers with per-SDK version tables.
var FirebaseProfile = Profile{
	Containers: []string{
		"main",
		"article",
		".devsite-article-body",
	},
	HeaderTags:   "h2, h3, h4",
	DatePatterns: defaultDatePatterns,
	MinText:      10,
	UseTables:    true,
}

// DevBlogProfile matches developers.googleblog.com, a card-grid index.
var DevBlogProfile = Profile{
	Containers:   []string{"main", "body"},
	HeaderTags:   "h2, h3",
	DatePatterns: defaultDatePatterns,
	MinText:      10,
	Cards: []CardProfile{
		{
			Container: "div.post-item",
			Title:     ".glue-headline",
			Link:      "a.post-item__link",
			Date:      ".post-item__top",
		},
		{
			Container: "a.glue-card",
			Title:     ".post-title, .glue-headline",
			Date:      ".glue-card__date, time",
		},
	},
}

// GenericProfile is the fallback for unknown pages.
var GenericProfile = Profile{
	Containers:   []string{"main", "article", "body"},
	HeaderTags:   "h2, h3, h4",
	DatePatterns: defaultDatePatterns,
	MinText:      10,
}
