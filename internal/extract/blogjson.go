package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/dazdaz/app-gcp-changelog/internal/release"
)

// BlogJSONExtractor handles the Cloud blog, which hydrates its listing
// from an AF_initDataCallback payload rather than server-rendered HTML.
// Post records are recognized positionally inside the untyped JSON: a
// wide array whose seventh element is a blog post URL.
type BlogJSONExtractor struct {
	normalizer *release.Normalizer
	logger     *zap.Logger
}

// NewBlogJSONExtractor builds a BlogJSONExtractor.
func NewBlogJSONExtractor(n *release.Normalizer, logger *zap.Logger) *BlogJSONExtractor {
	return &BlogJSONExtractor{normalizer: n, logger: logger}
}

var afDataRe = regexp.MustCompile(`(?s)data:(\[.*\])\}\);`)

const blogPostPrefix = "https://cloud.google.com/blog/"

// Extract mines the hydration payload for posts, falling back to the
// rendered card markup when the payload is absent.
func (e *BlogJSONExtractor) Extract(_ context.Context, body []byte, pageURL string) ([]RawGroup, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{URL: pageURL, Err: err}
	}

	var groups []RawGroup
	doc.Find("script").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		js := sel.Text()
		if !strings.Contains(js, "AF_initDataCallback") {
			return true
		}
		m := afDataRe.FindStringSubmatch(js)
		if m == nil {
			return true
		}

		var data interface{}
		if err := json.Unmarshal([]byte(m[1]), &data); err != nil {
			e.logger.Debug("hydration payload is not valid json",
				zap.String("url", pageURL), zap.Error(err))
			return true
		}
		groups = append(groups, e.walk(data, pageURL)...)
		return len(groups) == 0
	})

	if len(groups) > 0 {
		return groups, nil
	}
	return e.extractCards(doc, pageURL), nil
}

// walk recursively scans the untyped payload for post-shaped arrays.
func (e *BlogJSONExtractor) walk(node interface{}, pageURL string) []RawGroup {
	list, ok := node.([]interface{})
	if !ok {
		return nil
	}

	if group, ok := e.postGroup(list, pageURL); ok {
		return []RawGroup{group}
	}

	var groups []RawGroup
	for _, child := range list {
		groups = append(groups, e.walk(child, pageURL)...)
	}
	return groups
}

// postGroup recognizes one post record: title at index 0, summary at 1,
// canonical URL at 7, and a unix timestamp nested at index 8.
func (e *BlogJSONExtractor) postGroup(list []interface{}, pageURL string) (RawGroup, bool) {
	if len(list) <= 8 {
		return RawGroup{}, false
	}
	title, ok := list[0].(string)
	if !ok || title == "" {
		return RawGroup{}, false
	}
	summary, ok := list[1].(string)
	if !ok {
		return RawGroup{}, false
	}
	postURL, ok := list[7].(string)
	if !ok || !strings.HasPrefix(postURL, blogPostPrefix) {
		return RawGroup{}, false
	}

	date := release.MissingDate("")
	if ts, ok := list[8].([]interface{}); ok && len(ts) > 0 {
		if secs, ok := ts[0].(float64); ok {
			t := time.Unix(int64(secs), 0).UTC()
			date = release.Date{
				Time:      time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC),
				Original:  t.Format("2006-01-02"),
				Precision: release.PrecisionExact,
			}
		}
	}

	text := collapseSpace(title)
	if s := collapseSpace(summary); s != "" {
		text += " - " + s
	}

	return RawGroup{
		Date: date,
		Fragments: []release.Fragment{{
			Text: text,
			Hint: "release-announcement",
			URLs: []string{postURL},
		}},
		SourceURL: pageURL,
	}, true
}

// extractCards scrapes the rendered card markup. The cards carry no
// dates; the notes surface as undated announcements.
func (e *BlogJSONExtractor) extractCards(doc *goquery.Document, pageURL string) []RawGroup {
	var groups []RawGroup
	doc.Find("div.u2M0Kb").Each(func(_ int, sel *goquery.Selection) {
		title := collapseSpace(sel.Find("h5").First().Text())
		if len(title) < 10 {
			return
		}
		href, _ := sel.Find("a.w7DBpd").First().Attr("href")
		groups = append(groups, RawGroup{
			Date: release.MissingDate(""),
			Fragments: []release.Fragment{{
				Text: title,
				Hint: "release-announcement",
				URLs: release.NormalizeURLs([]string{href}, pageURL),
			}},
			SourceURL: pageURL,
		})
	})
	return groups
}
