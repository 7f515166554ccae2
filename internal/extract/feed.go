package extract

import (
	"context"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/dazdaz/app-gcp-changelog/internal/release"
)

// FeedExtractor parses Atom and RSS feeds. Each entry becomes one group;
// entries whose timestamp cannot be parsed are skipped rather than
// surfacing undated noise from an otherwise well-dated feed.
type FeedExtractor struct {
	parser     *gofeed.Parser
	normalizer *release.Normalizer
	logger     *zap.Logger

	// TitleOnly reduces each entry to its headline, for aggregator feeds
	// that embed whole articles.
	TitleOnly bool
}

// NewFeedExtractor builds a FeedExtractor.
func NewFeedExtractor(n *release.Normalizer, logger *zap.Logger) *FeedExtractor {
	return &FeedExtractor{
		parser:     gofeed.NewParser(),
		normalizer: n,
		logger:     logger,
	}
}

// Extract parses the feed body into one RawGroup per entry.
func (e *FeedExtractor) Extract(_ context.Context, body []byte, pageURL string) ([]RawGroup, error) {
	feed, err := e.parser.ParseString(string(body))
	if err != nil {
		return nil, &ParseError{URL: pageURL, Err: err}
	}

	groups := make([]RawGroup, 0, len(feed.Items))
	for _, item := range feed.Items {
		raw := item.Published
		if raw == "" {
			raw = item.Updated
		}
		date, ok := e.normalizer.ParseFeedTime(raw)
		if !ok {
			e.logger.Debug("skipping entry with unparseable date",
				zap.String("feed", pageURL),
				zap.String("title", item.Title),
				zap.String("date", raw),
			)
			continue
		}

		link := entryLink(item)
		if link == "" {
			link = pageURL
		}

		var fragments []release.Fragment
		if e.TitleOnly {
			if item.Title != "" {
				fragments = []release.Fragment{{
					Text: item.Title,
					URLs: []string{link},
				}}
			}
		} else {
			content := item.Content
			if content == "" {
				content = item.Description
			}
			fragments = splitFragments(content, link)
			// A dated entry with an empty body is still a release; the
			// headline carries it.
			if len(fragments) == 0 {
				if title := collapseSpace(item.Title); title != "" {
					fragments = []release.Fragment{{
						Text: title,
						URLs: []string{link},
					}}
				}
			}
		}
		if len(fragments) == 0 {
			continue
		}

		groups = append(groups, RawGroup{
			Date:      date,
			Fragments: fragments,
			SourceURL: link,
		})
	}
	return groups, nil
}

// entryLink prefers the entry's own link, falling back to the FeedBurner
// origLink extension used by the Workspace updates feed.
func entryLink(item *gofeed.Item) string {
	if item.Link != "" {
		return item.Link
	}
	if exts, ok := item.Extensions["feedburner"]; ok {
		if orig, ok := exts["origLink"]; ok && len(orig) > 0 {
			return orig[0].Value
		}
	}
	return ""
}
