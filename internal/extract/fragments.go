package extract

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dazdaz/app-gcp-changelog/internal/release"
)

// markerClasses are the div classes docs pages use to tag note kinds.
// The class doubles as the classification hint downstream.
var markerClasses = []string{
	"release-feature",
	"release-changed",
	"release-announcement",
	"release-breaking",
	"release-issue",
}

var bareURLRe = regexp.MustCompile(`https?://[^\s"<>\]]+`)

// splitFragments breaks a blob of HTML (or plain text that may contain
// HTML) into note-sized fragments. The ladder goes from the most
// structured shape to the least: marker divs, then a single whole-text
// item for prose pages, then list items, then paragraphs, then the raw
// text as a last resort.
func splitFragments(content, pageURL string) []release.Fragment {
	unescaped := html.UnescapeString(content)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(unescaped))
	if err != nil {
		text := collapseSpace(unescaped)
		if text == "" {
			return nil
		}
		return []release.Fragment{{Text: text, Markup: content}}
	}

	allURLs := collectURLs(doc, unescaped, pageURL)

	var fragments []release.Fragment
	for _, class := range markerClasses {
		doc.Find("div." + class).Each(func(_ int, sel *goquery.Selection) {
			text := collapseSpace(sel.Text())
			if len(text) <= 5 {
				return
			}
			urls := anchorURLs(sel, pageURL)
			if len(urls) == 0 {
				urls = headURLs(allURLs, 3)
			}
			markup, _ := goquery.OuterHtml(sel)
			fragments = append(fragments, release.Fragment{
				Text:   text,
				Markup: markup,
				Hint:   class,
				URLs:   urls,
			})
		})
	}
	if len(fragments) > 0 {
		return fragments
	}

	fullText := collapseSpace(doc.Text())

	// Prose pages (feed entries describing one release) stay one item.
	if doc.Find("h1,h2,h3,h4").Length() > 0 || len(fullText) > 200 {
		if len(fullText) > 10 {
			return []release.Fragment{{
				Text:   fullText,
				Markup: unescaped,
				URLs:   headURLs(allURLs, 5),
			}}
		}
	}

	doc.Find("li").Each(func(_ int, sel *goquery.Selection) {
		text := collapseSpace(sel.Text())
		if len(text) <= 5 {
			return
		}
		markup, _ := goquery.OuterHtml(sel)
		fragments = append(fragments, release.Fragment{
			Text:   text,
			Markup: markup,
			URLs:   anchorURLs(sel, pageURL),
		})
	})
	if len(fragments) > 0 {
		return fragments
	}

	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		text := collapseSpace(sel.Text())
		if len(text) <= 10 {
			return
		}
		markup, _ := goquery.OuterHtml(sel)
		fragments = append(fragments, release.Fragment{
			Text:   text,
			Markup: markup,
			URLs:   anchorURLs(sel, pageURL),
		})
	})
	if len(fragments) > 0 {
		return fragments
	}

	if len(fullText) > 0 {
		return []release.Fragment{{
			Text:   fullText,
			Markup: unescaped,
			URLs:   headURLs(allURLs, 5),
		}}
	}
	return nil
}

// collectURLs gathers every link in the document: anchor hrefs first,
// then bare URLs spotted in the text. Image and in-page links are noise.
func collectURLs(doc *goquery.Document, text, pageURL string) []string {
	var urls []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok {
			urls = append(urls, href)
		}
	})
	for _, m := range bareURLRe.FindAllString(text, -1) {
		urls = append(urls, strings.TrimRight(m, `.,;:!?)'"]`))
	}

	normalized := release.NormalizeURLs(urls, pageURL)
	filtered := normalized[:0]
	for _, u := range normalized {
		if isImageURL(u) {
			continue
		}
		filtered = append(filtered, u)
	}
	return filtered
}

func anchorURLs(sel *goquery.Selection, pageURL string) []string {
	var urls []string
	sel.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok {
			urls = append(urls, href)
		}
	})
	return release.NormalizeURLs(urls, pageURL)
}

func isImageURL(u string) bool {
	lower := strings.ToLower(u)
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func headURLs(urls []string, n int) []string {
	if len(urls) <= n {
		return urls
	}
	return urls[:n]
}

var spaceRe = regexp.MustCompile(`\s+`)

func collapseSpace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}
