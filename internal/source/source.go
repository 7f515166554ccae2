// Package source defines scrape sources, the static service registry, and
// URL-based platform detection.
package source

import "strings"

// Kind identifies the extraction strategy a source requires.
type Kind string

// Platform kinds. The set is closed; extraction dispatch is an explicit
// Kind -> extractor table in the pipeline.
const (
	KindFeed           Kind = "feed"
	KindDocStructured  Kind = "doc_structured"
	KindDocFirebase    Kind = "doc_firebase"
	KindDocDevBlog     Kind = "doc_devblog"
	KindDocGeneric     Kind = "doc_generic"
	KindScriptEmbedded Kind = "script_embedded"
	KindBlogJSON       Kind = "blog_json"
	KindBlogHeadless   Kind = "blog_headless"
)

// Source is one configured origin to be scraped. It is immutable and
// constructed once per scrape request.
type Source struct {
	ID          string
	PrimaryURL  string
	FallbackURL string
	Kind        Kind

	// TitleOnly marks feeds whose entries duplicate entire articles; only
	// the headline is wanted. This is explicit per-source configuration:
	// nothing in a feed reliably signals it.
	TitleOnly bool
}

// Detect classifies a URL into a platform kind. Matching is ordered
// substring matching, first match wins: hosts carrying JS-bundle changelogs
// are special-cased ahead of everything, feed markers beat generic blog
// heuristics (a feed URL could otherwise match a blog substring rule), and
// doc hosts come last before the generic default. No network I/O.
func Detect(url string) Kind {
	switch {
	case strings.Contains(url, "antigravity.google"):
		return KindScriptEmbedded
	case IsFeedURL(url):
		return KindFeed
	case strings.Contains(url, "cloud.google.com/blog"):
		return KindBlogJSON
	case strings.Contains(url, "medium.com/google-cloud"):
		return KindBlogHeadless
	case strings.Contains(url, "developers.googleblog.com"):
		return KindDocDevBlog
	case strings.Contains(url, "firebase.google.com"):
		return KindDocFirebase
	case strings.Contains(url, "cloud.google.com"), strings.Contains(url, "developers.google.com"):
		return KindDocStructured
	default:
		return KindDocGeneric
	}
}

// IsFeedURL reports whether a URL points at an XML/Atom/RSS feed.
func IsFeedURL(url string) bool {
	if strings.Contains(url, "medium.com/feed/") {
		return true
	}
	if strings.Contains(url, "feeds.feedburner.com") || strings.Contains(url, "feedburner.google.com") {
		return true
	}
	return strings.HasSuffix(url, ".xml") || strings.HasSuffix(url, ".atom") || strings.Contains(url, "/feeds/")
}

// isTitleOnlyURL reports whether a feed URL belongs to the fixed list of
// aggregator hosts whose entries carry full article bodies.
func isTitleOnlyURL(url string) bool {
	return strings.Contains(url, "medium.com/feed/") ||
		strings.Contains(url, "feeds.feedburner.com") ||
		strings.Contains(url, "feedburner.google.com")
}

// FromURL builds an ad-hoc Source for a caller-supplied URL.
func FromURL(id, url string) Source {
	return Source{
		ID:         id,
		PrimaryURL: url,
		Kind:       Detect(url),
		TitleOnly:  isTitleOnlyURL(url),
	}
}
