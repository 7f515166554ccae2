package extract

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/dazdaz/app-gcp-changelog/internal/fetch"
	"github.com/dazdaz/app-gcp-changelog/internal/release"
)

// ScriptExtractor handles changelogs compiled into a JavaScript bundle.
// The page itself is an empty shell; the release data lives as object
// literals inside a fingerprinted main-*.js file, which this extractor
// fetches and mines with progressively cruder patterns. A bundle that
// matches nothing yields an empty result, never an error, since the
// bundle format changes without notice.
type ScriptExtractor struct {
	client     fetch.Client
	normalizer *release.Normalizer
	logger     *zap.Logger
}

// NewScriptExtractor builds a ScriptExtractor. client fetches the bundle.
func NewScriptExtractor(client fetch.Client, n *release.Normalizer, logger *zap.Logger) *ScriptExtractor {
	return &ScriptExtractor{client: client, normalizer: n, logger: logger}
}

var (
	bundleNameRe = regexp.MustCompile(`src="(main-[A-Za-z0-9]+\.js)"`)

	// changelogAnchor pins the extraction to the changelog page object so
	// that unrelated sections arrays in the bundle are ignored.
	changelogAnchor = "Google Antigravity Changelog"

	richVersionRe = regexp.MustCompile(`version:\s*"([^"]*?)<br>([^"]*?)"`)
	descriptionRe = regexp.MustCompile(`description:\s*"([^"]*?)"`)
	changesRe     = regexp.MustCompile(`changes:\s*"([^"]*?)"`)
	accordionRe   = regexp.MustCompile(`(?s)\{title:\s*"([^"]+)"[^}]*accordion_items:\s*\[(.*?)\]\s*\}`)
	itemTextRe    = regexp.MustCompile(`\{text:\s*"([^"]+)"\}`)

	simpleEntryRe = regexp.MustCompile(`(?s)\{[^{]*?version:\s*"([^"]+)"[^}]*?description:\s*"([^"]+)"`)
	versionDateRe = regexp.MustCompile(`"(\d+\.\d+\.\d+)<br>(\w+\s+\d+,\s+\d{4})"`)
)

// Extract locates the JS bundle referenced by the page, fetches it, and
// mines it for changelog entries.
func (e *ScriptExtractor) Extract(ctx context.Context, body []byte, pageURL string) ([]RawGroup, error) {
	m := bundleNameRe.FindSubmatch(body)
	if m == nil {
		e.logger.Debug("no js bundle reference in page", zap.String("url", pageURL))
		return nil, nil
	}
	bundleURL := release.BaseOf(pageURL) + "/" + string(m[1])

	resp, err := e.client.Fetch(ctx, bundleURL)
	if err != nil {
		return nil, err
	}
	js := string(resp.Body)

	sections := e.sectionsBlob(js)
	if sections == "" {
		e.logger.Debug("changelog sections not found in bundle", zap.String("bundle", bundleURL))
		return nil, nil
	}

	if groups := e.parseRich(sections, pageURL); len(groups) > 0 {
		return groups, nil
	}
	if groups := e.parseSimple(sections, pageURL); len(groups) > 0 {
		return groups, nil
	}
	return e.parseVersionDates(js, pageURL), nil
}

// sectionsBlob isolates the changelog sections array from the bundle.
// Regex alone cannot balance nested brackets, so after finding the
// anchored statement the array is cut out by bracket counting.
func (e *ScriptExtractor) sectionsBlob(js string) string {
	for _, stmt := range strings.Split(js, ";") {
		if !strings.Contains(stmt, changelogAnchor) {
			continue
		}
		idx := strings.Index(stmt, "sections:[")
		if idx < 0 {
			continue
		}
		return balancedArray(stmt[idx+len("sections:"):])
	}
	// No anchored statement: fall back to the whole bundle and let the
	// entry patterns fend for themselves.
	if strings.Contains(js, changelogAnchor) {
		return js
	}
	return ""
}

// balancedArray returns the leading [...] of s, nested brackets included.
func balancedArray(s string) string {
	if s == "" || s[0] != '[' {
		return ""
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}

// parseRich handles the full entry shape: version and date split by <br>,
// a description, and an accordion of titled item lists. The blob is
// sliced at each version marker so nested brackets inside one entry
// cannot swallow the next.
func (e *ScriptExtractor) parseRich(sections, pageURL string) []RawGroup {
	locs := richVersionRe.FindAllStringSubmatchIndex(sections, -1)
	var groups []RawGroup
	for i, loc := range locs {
		end := len(sections)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		entry := sections[loc[0]:end]
		version := sections[loc[2]:loc[3]]
		rawDate := sections[loc[4]:loc[5]]

		date := e.normalizer.ParseAbsolute(strings.TrimSpace(rawDate))
		var fragments []release.Fragment
		if m := descriptionRe.FindStringSubmatch(entry); m != nil {
			if text := collapseSpace(m[1]); len(text) > 5 {
				fragments = append(fragments, release.Fragment{Text: version + ": " + text})
			}
		}
		if m := changesRe.FindStringSubmatch(entry); m != nil {
			if text := collapseSpace(m[1]); len(text) > 5 {
				fragments = append(fragments, release.Fragment{Text: text})
			}
		}
		fragments = append(fragments, accordionFragments(entry)...)

		if len(fragments) == 0 {
			continue
		}
		groups = append(groups, RawGroup{Date: date, Fragments: fragments, SourceURL: pageURL})
	}
	return groups
}

// accordionFragments expands the titled item lists of one entry. The
// section title maps to a classification hint and prefixes each item.
func accordionFragments(blob string) []release.Fragment {
	var fragments []release.Fragment
	for _, sec := range accordionRe.FindAllStringSubmatch(blob, -1) {
		title, items := sec[1], sec[2]

		hint := ""
		switch strings.ToLower(title) {
		case "improvements":
			hint = "accordion:improvements"
		case "fixes":
			hint = "accordion:fixes"
		case "patches":
			hint = "accordion:patches"
		}

		for _, item := range itemTextRe.FindAllStringSubmatch(items, -1) {
			text := collapseSpace(item[1])
			if text == "" {
				continue
			}
			fragments = append(fragments, release.Fragment{
				Text: "[" + title + "] " + text,
				Hint: hint,
			})
		}
	}
	return fragments
}

// parseSimple handles entries that only carry version and description.
func (e *ScriptExtractor) parseSimple(sections, pageURL string) []RawGroup {
	var groups []RawGroup
	for _, m := range simpleEntryRe.FindAllStringSubmatch(sections, -1) {
		version, description := m[1], m[2]

		rawDate := ""
		if parts := strings.SplitN(version, "<br>", 2); len(parts) == 2 {
			version, rawDate = parts[0], parts[1]
		}
		date := e.normalizer.ParseAbsolute(strings.TrimSpace(rawDate))

		text := collapseSpace(description)
		if len(text) <= 5 {
			continue
		}
		groups = append(groups, RawGroup{
			Date:      date,
			Fragments: []release.Fragment{{Text: version + ": " + text}},
			SourceURL: pageURL,
		})
	}
	return groups
}

// parseVersionDates is the final fallback: bare "x.y.z<br>Month D, YYYY"
// strings anywhere in the bundle, emitted as version-only notes.
func (e *ScriptExtractor) parseVersionDates(js, pageURL string) []RawGroup {
	var groups []RawGroup
	for _, m := range versionDateRe.FindAllStringSubmatch(js, -1) {
		version, rawDate := m[1], m[2]
		date := e.normalizer.ParseAbsolute(rawDate)
		if !date.Known() {
			continue
		}
		groups = append(groups, RawGroup{
			Date:      date,
			Fragments: []release.Fragment{{Text: "Version " + version}},
			SourceURL: pageURL,
		})
	}
	return groups
}
