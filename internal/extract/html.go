package extract

import (
	"bytes"
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	xhtml "golang.org/x/net/html"

	"github.com/dazdaz/app-gcp-changelog/internal/release"
)

// HTMLExtractor scrapes documentation-style release-notes pages. It tries
// progressively looser strategies and stops at the first one that finds
// dated groups: cards, dated section headers, version tables, then a
// last-resort scan for dates anywhere in the markup.
type HTMLExtractor struct {
	profile    Profile
	normalizer *release.Normalizer
	logger     *zap.Logger
}

// NewHTMLExtractor builds an extractor for the given platform profile.
func NewHTMLExtractor(profile Profile, n *release.Normalizer, logger *zap.Logger) *HTMLExtractor {
	return &HTMLExtractor{profile: profile, normalizer: n, logger: logger}
}

// Extract parses the page and returns its dated release groups.
func (e *HTMLExtractor) Extract(_ context.Context, body []byte, pageURL string) ([]RawGroup, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{URL: pageURL, Err: err}
	}

	scope := doc.Selection
	for _, sel := range e.profile.Containers {
		if found := doc.Find(sel); found.Length() > 0 {
			scope = found.First()
			break
		}
	}

	if len(e.profile.Cards) > 0 {
		if groups := e.extractCards(scope, pageURL); len(groups) > 0 {
			return groups, nil
		}
	}
	if groups := e.extractStructured(scope, pageURL); len(groups) > 0 {
		return groups, nil
	}
	if e.profile.UseTables {
		if groups := e.extractTables(scope, pageURL); len(groups) > 0 {
			return groups, nil
		}
	}
	groups := e.extractUnstructured(scope, pageURL)
	if len(groups) == 0 {
		e.logger.Debug("no release groups found in page", zap.String("url", pageURL))
	}
	return groups, nil
}

// extractCards handles blog index pages built from repeated card elements.
func (e *HTMLExtractor) extractCards(scope *goquery.Selection, pageURL string) []RawGroup {
	var groups []RawGroup
	for _, card := range e.profile.Cards {
		scope.Find(card.Container).Each(func(_ int, sel *goquery.Selection) {
			title := collapseSpace(sel.Find(card.Title).First().Text())
			if len(title) < 10 {
				return
			}

			link := ""
			if card.Link != "" {
				link, _ = sel.Find(card.Link).First().Attr("href")
			}
			if link == "" {
				// The card itself may be the anchor.
				link, _ = sel.Attr("href")
			}
			urls := release.NormalizeURLs([]string{link}, pageURL)

			date := release.MissingDate("")
			if card.Date != "" {
				raw := collapseSpace(sel.Find(card.Date).First().Text())
				date = e.parseCardDate(raw)
			}

			markup, _ := goquery.OuterHtml(sel)
			groups = append(groups, RawGroup{
				Date: date,
				Fragments: []release.Fragment{{
					Text:   title,
					Markup: markup,
					Hint:   "release-announcement",
					URLs:   urls,
				}},
				SourceURL: pageURL,
			})
		})
		if len(groups) > 0 {
			return groups
		}
	}
	return groups
}

var cardMonthRe = regexp.MustCompile(`(?i)\b([a-z]{3,9})\.?\s+(\d{1,2}),?\s+(\d{4})`)

// parseCardDate handles card date spellings like "DEC. 16, 2025": the dot
// is dropped and the month recased, since time.Parse is case-sensitive.
func (e *HTMLExtractor) parseCardDate(raw string) release.Date {
	m := cardMonthRe.FindStringSubmatch(raw)
	if m == nil {
		return e.normalizer.ParseAbsolute(raw)
	}
	month := strings.ToUpper(m[1][:1]) + strings.ToLower(m[1][1:])
	return e.normalizer.ParseAbsolute(month + " " + m[2] + ", " + m[3])
}

// extractStructured handles the canonical docs layout: a date header
// followed by sibling elements holding that day's notes, until the next
// header of the same or a higher level.
func (e *HTMLExtractor) extractStructured(scope *goquery.Selection, pageURL string) []RawGroup {
	var groups []RawGroup
	scope.Find(e.profile.HeaderTags).Each(func(_ int, header *goquery.Selection) {
		raw := e.matchDate(header.Text())
		if raw == "" {
			return
		}
		date := e.normalizer.ParseAbsolute(raw)
		if !date.Known() {
			return
		}

		headerTag := goquery.NodeName(header)
		var fragments []release.Fragment
		for sib := header.Next(); sib.Length() > 0; sib = sib.Next() {
			tag := goquery.NodeName(sib)
			// "h1" < "h2" lexicographically, so this stops at the next
			// section of equal or higher rank.
			if isHeaderTag(tag) && tag <= headerTag {
				break
			}
			fragments = append(fragments, e.sectionFragments(sib, pageURL)...)
		}
		if len(fragments) == 0 {
			return
		}
		groups = append(groups, RawGroup{Date: date, Fragments: fragments, SourceURL: pageURL})
	})
	return groups
}

// sectionFragments extracts the fragments carried by one element between
// two date headers.
func (e *HTMLExtractor) sectionFragments(sel *goquery.Selection, pageURL string) []release.Fragment {
	var fragments []release.Fragment

	switch tag := goquery.NodeName(sel); tag {
	case "div":
		if class, ok := sel.Attr("class"); ok {
			for _, marker := range markerClasses {
				if strings.Contains(class, marker) {
					text := collapseSpace(sel.Text())
					if len(text) <= 5 {
						return nil
					}
					markup, _ := goquery.OuterHtml(sel)
					return []release.Fragment{{
						Text:   text,
						Markup: markup,
						Hint:   marker,
						URLs:   anchorURLs(sel, pageURL),
					}}
				}
			}
		}
		// Plain divs may nest marker divs.
		nested := sel.Find("div")
		found := false
		nested.Each(func(_ int, inner *goquery.Selection) {
			class, _ := inner.Attr("class")
			for _, marker := range markerClasses {
				if strings.Contains(class, marker) {
					text := collapseSpace(inner.Text())
					if len(text) <= 5 {
						return
					}
					markup, _ := goquery.OuterHtml(inner)
					fragments = append(fragments, release.Fragment{
						Text:   text,
						Markup: markup,
						Hint:   marker,
						URLs:   anchorURLs(inner, pageURL),
					})
					found = true
				}
			}
		})
		if found {
			return fragments
		}
		text := collapseSpace(sel.Text())
		if len(text) > e.profile.MinText {
			markup, _ := goquery.OuterHtml(sel)
			fragments = append(fragments, release.Fragment{
				Text:   text,
				Markup: markup,
				URLs:   anchorURLs(sel, pageURL),
			})
		}
	case "ul", "ol":
		sel.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
			text := collapseSpace(li.Text())
			if len(text) <= 5 {
				return
			}
			markup, _ := goquery.OuterHtml(li)
			fragments = append(fragments, release.Fragment{
				Text:   text,
				Markup: markup,
				URLs:   anchorURLs(li, pageURL),
			})
		})
	case "p":
		text := collapseSpace(sel.Text())
		if len(text) > e.profile.MinText {
			markup, _ := goquery.OuterHtml(sel)
			fragments = append(fragments, release.Fragment{
				Text:   text,
				Markup: markup,
				URLs:   anchorURLs(sel, pageURL),
			})
		}
	}
	return fragments
}

// extractTables handles version tables: one row per release, the date in
// the first cell.
func (e *HTMLExtractor) extractTables(scope *goquery.Selection, pageURL string) []RawGroup {
	var groups []RawGroup
	scope.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < 2 {
			return
		}
		raw := e.matchDate(cells.First().Text())
		if raw == "" {
			return
		}
		date := e.normalizer.ParseAbsolute(raw)
		if !date.Known() {
			return
		}

		var parts []string
		cells.Slice(1, cells.Length()).Each(func(_ int, cell *goquery.Selection) {
			if text := collapseSpace(cell.Text()); text != "" {
				parts = append(parts, text)
			}
		})
		text := strings.Join(parts, " ")
		if len(text) <= e.profile.MinText {
			return
		}

		markup, _ := goquery.OuterHtml(row)
		groups = append(groups, RawGroup{
			Date: date,
			Fragments: []release.Fragment{{
				Text:   text,
				Markup: markup,
				URLs:   anchorURLs(row, pageURL),
			}},
			SourceURL: pageURL,
		})
	})
	return groups
}

// extractUnstructured is the last resort: marker divs wherever they sit,
// dated from nearby elements, then a raw scan of all text nodes for
// anything that looks like a date.
func (e *HTMLExtractor) extractUnstructured(scope *goquery.Selection, pageURL string) []RawGroup {
	var groups []RawGroup

	for _, marker := range markerClasses {
		scope.Find("div." + marker).Each(func(_ int, sel *goquery.Selection) {
			text := collapseSpace(sel.Text())
			if len(text) <= 20 {
				return
			}
			date := e.nearbyDate(sel)
			markup, _ := goquery.OuterHtml(sel)
			groups = append(groups, RawGroup{
				Date: date,
				Fragments: []release.Fragment{{
					Text:   text,
					Markup: markup,
					Hint:   marker,
					URLs:   anchorURLs(sel, pageURL),
				}},
				SourceURL: pageURL,
			})
		})
	}
	if len(groups) > 0 {
		return groups
	}

	return e.scanTextNodes(scope, pageURL)
}

// nearbyDate looks for a date in the elements around a marker div.
func (e *HTMLExtractor) nearbyDate(sel *goquery.Selection) release.Date {
	for _, candidate := range []*goquery.Selection{sel.Prev(), sel.Parent(), sel.Next()} {
		if candidate.Length() == 0 {
			continue
		}
		if raw := e.matchDate(candidate.Text()); raw != "" {
			if date := e.normalizer.ParseAbsolute(raw); date.Known() {
				return date
			}
		}
	}
	return release.MissingDate("")
}

// scanTextNodes walks the raw node tree looking for date-bearing text and
// treats each hit's parent element as one note.
func (e *HTMLExtractor) scanTextNodes(scope *goquery.Selection, pageURL string) []RawGroup {
	var groups []RawGroup
	seen := make(map[*xhtml.Node]struct{})

	var walk func(n *xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == xhtml.TextNode {
			raw := e.matchDate(n.Data)
			if raw != "" && n.Parent != nil {
				if _, dup := seen[n.Parent]; !dup {
					seen[n.Parent] = struct{}{}
					parent := goquery.NewDocumentFromNode(n.Parent).Selection
					text := collapseSpace(parent.Text())
					if len(text) > 20 {
						if date := e.normalizer.ParseAbsolute(raw); date.Known() {
							markup, _ := goquery.OuterHtml(parent)
							groups = append(groups, RawGroup{
								Date: date,
								Fragments: []release.Fragment{{
									Text:   text,
									Markup: markup,
									URLs:   anchorURLs(parent, pageURL),
								}},
								SourceURL: pageURL,
							})
						}
					}
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for _, node := range scope.Nodes {
		walk(node)
	}
	return groups
}

// matchDate returns the first date-looking substring, per the profile's
// pattern order.
func (e *HTMLExtractor) matchDate(text string) string {
	for _, re := range e.profile.DatePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

func isHeaderTag(tag string) bool {
	return len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6'
}
