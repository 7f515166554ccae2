package extract

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/dazdaz/app-gcp-changelog/internal/release"
)

// HeadlessExtractor drives a headless browser for blogs that render
// entirely client-side. It ignores any pre-fetched body and performs its
// own navigation. Concurrent sessions are capped by a limiter channel so
// a wide scrape cannot fork a browser per source.
type HeadlessExtractor struct {
	normalizer *release.Normalizer
	logger     *zap.Logger
	userAgent  string
	navTimeout time.Duration
	limiter    chan struct{}
}

// NewHeadlessExtractor builds a HeadlessExtractor allowing at most
// maxSessions concurrent browser sessions.
func NewHeadlessExtractor(n *release.Normalizer, userAgent string, navTimeout time.Duration, maxSessions int, logger *zap.Logger) *HeadlessExtractor {
	if maxSessions <= 0 {
		maxSessions = 1
	}
	return &HeadlessExtractor{
		normalizer: n,
		logger:     logger,
		userAgent:  userAgent,
		navTimeout: navTimeout,
		limiter:    make(chan struct{}, maxSessions),
	}
}

// Extract renders the page in a browser session and scrapes the result.
// body is ignored; the browser fetches the page itself.
func (e *HeadlessExtractor) Extract(ctx context.Context, _ []byte, pageURL string) ([]RawGroup, error) {
	select {
	case e.limiter <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-e.limiter }()

	html, err := e.render(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return e.parse(html, pageURL)
}

func (e *HeadlessExtractor) render(ctx context.Context, pageURL string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(e.userAgent),
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.NoSandbox,
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, e.navTimeout)
	defer cancelTimeout()

	e.logger.Debug("rendering page headlessly", zap.String("url", pageURL))

	var html string
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible("article", chromedp.ByQuery),
		// Late-loading cards settle after the first article appears.
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", err
	}
	return html, nil
}

var relativeSpanRe = regexp.MustCompile(`^\d+[dhm]\s*ago$`)

func (e *HeadlessExtractor) parse(html, pageURL string) ([]RawGroup, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &ParseError{URL: pageURL, Err: err}
	}

	var groups []RawGroup
	doc.Find("article").Each(func(_ int, article *goquery.Selection) {
		title := ""
		article.Find("h1, h2, h3").EachWithBreak(func(_ int, h *goquery.Selection) bool {
			if text := collapseSpace(h.Text()); len(text) >= 10 {
				title = text
				return false
			}
			return true
		})
		if title == "" {
			return
		}

		link := ""
		if href, ok := article.Find("a[href]").First().Attr("href"); ok {
			link = absoluteMediumURL(href)
		}

		groups = append(groups, RawGroup{
			Date: e.articleDate(article),
			Fragments: []release.Fragment{{
				Text: title,
				Hint: "release-announcement",
				URLs: release.NormalizeURLs([]string{link}, pageURL),
			}},
			SourceURL: pageURL,
		})
	})

	if len(groups) == 0 {
		groups = e.parseLinks(doc, pageURL)
	}
	return groups, nil
}

// articleDate hunts for a date inside one article card: a proper time
// element first, then relative or month-style span text, then anything
// date-shaped in the card's text.
func (e *HeadlessExtractor) articleDate(article *goquery.Selection) release.Date {
	if dt, ok := article.Find("time[datetime]").First().Attr("datetime"); ok {
		if date, parsed := e.normalizer.ParseFeedTime(dt); parsed {
			return date
		}
	}
	if t := article.Find("time").First(); t.Length() > 0 {
		if date := e.normalizer.Parse(collapseSpace(t.Text())); date.Known() {
			return date
		}
	}

	date := release.MissingDate("")
	article.Find("span").EachWithBreak(func(_ int, span *goquery.Selection) bool {
		text := collapseSpace(span.Text())
		if relativeSpanRe.MatchString(text) || monthDatePattern.MatchString(text) {
			if d := e.normalizer.Parse(text); d.Known() {
				date = d
				return false
			}
		}
		return true
	})
	if date.Known() {
		return date
	}

	if m := monthDatePattern.FindStringSubmatch(article.Text()); m != nil {
		return e.normalizer.ParseAbsolute(m[1])
	}
	return release.MissingDate("")
}

// parseLinks is the fallback when no article elements survived
// rendering: collect publication post links directly. These carry no
// dates.
func (e *HeadlessExtractor) parseLinks(doc *goquery.Document, pageURL string) []RawGroup {
	var groups []RawGroup
	seen := make(map[string]struct{})

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !strings.Contains(href, "/google-cloud/") ||
			strings.HasSuffix(href, "/all") ||
			strings.Contains(href, "?") {
			return
		}
		title := collapseSpace(a.Text())
		if len(title) <= 15 {
			return
		}
		if _, dup := seen[title]; dup {
			return
		}
		seen[title] = struct{}{}

		groups = append(groups, RawGroup{
			Date: release.MissingDate(""),
			Fragments: []release.Fragment{{
				Text: title,
				Hint: "release-announcement",
				URLs: release.NormalizeURLs([]string{absoluteMediumURL(href)}, pageURL),
			}},
			SourceURL: pageURL,
		})
	})
	return groups
}

func absoluteMediumURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return "https://medium.com" + href
}
