package pipeline

import (
	"go.uber.org/zap"

	"github.com/dazdaz/app-gcp-changelog/internal/config"
	"github.com/dazdaz/app-gcp-changelog/internal/extract"
	"github.com/dazdaz/app-gcp-changelog/internal/fetch"
	"github.com/dazdaz/app-gcp-changelog/internal/release"
	"github.com/dazdaz/app-gcp-changelog/internal/source"
)

// Set is the default Extractors implementation: one extractor per
// platform kind, built once and shared across the run.
type Set struct {
	feed          *extract.FeedExtractor
	feedTitleOnly *extract.FeedExtractor
	docStructured *extract.HTMLExtractor
	docFirebase   *extract.HTMLExtractor
	docDevBlog    *extract.HTMLExtractor
	docGeneric    *extract.HTMLExtractor
	script        *extract.ScriptExtractor
	blogJSON      *extract.BlogJSONExtractor
	headless      *extract.HeadlessExtractor
}

// NewSet wires every extractor from config. client is used by extractors
// that fetch beyond the primary page (the JS bundle). When headless
// browsing is disabled, headless sources report no extractor instead of
// silently producing nothing.
func NewSet(client fetch.Client, n *release.Normalizer, cfg config.Config, logger *zap.Logger) *Set {
	titleOnly := extract.NewFeedExtractor(n, logger)
	titleOnly.TitleOnly = true

	s := &Set{
		feed:          extract.NewFeedExtractor(n, logger),
		feedTitleOnly: titleOnly,
		docStructured: extract.NewHTMLExtractor(extract.GoogleCloudProfile, n, logger),
		docFirebase:   extract.NewHTMLExtractor(extract.FirebaseProfile, n, logger),
		docDevBlog:    extract.NewHTMLExtractor(extract.DevBlogProfile, n, logger),
		docGeneric:    extract.NewHTMLExtractor(extract.GenericProfile, n, logger),
		script:        extract.NewScriptExtractor(client, n, logger),
		blogJSON:      extract.NewBlogJSONExtractor(n, logger),
	}
	if cfg.Headless.Enabled {
		s.headless = extract.NewHeadlessExtractor(
			n, cfg.HTTP.UserAgent, cfg.NavTimeout(), 2, logger)
	}
	return s
}

// Select returns the extractor for a source's effective kind.
func (s *Set) Select(src source.Source, kind source.Kind) (extract.Extractor, bool) {
	switch kind {
	case source.KindFeed:
		if src.TitleOnly {
			return s.feedTitleOnly, true
		}
		return s.feed, true
	case source.KindDocStructured:
		return s.docStructured, true
	case source.KindDocFirebase:
		return s.docFirebase, true
	case source.KindDocDevBlog:
		return s.docDevBlog, true
	case source.KindDocGeneric:
		return s.docGeneric, true
	case source.KindScriptEmbedded:
		return s.script, true
	case source.KindBlogJSON:
		return s.blogJSON, true
	case source.KindBlogHeadless:
		if s.headless == nil {
			return nil, false
		}
		return s.headless, true
	default:
		return nil, false
	}
}
