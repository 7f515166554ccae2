// Package render turns release groups into the output formats of the CLI
// and API: plain text, Markdown, JSON, and a standalone HTML page.
package render

import (
	"encoding/json"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/dazdaz/app-gcp-changelog/internal/release"
)

// Format names an output format.
type Format string

// Supported output formats.
const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
)

// ValidFormat reports whether s names a supported format.
func ValidFormat(s string) bool {
	switch Format(s) {
	case FormatText, FormatMarkdown, FormatJSON, FormatHTML:
		return true
	}
	return false
}

// categoryIcons decorate the text and markdown renderings.
var categoryIcons = map[release.Category]string{
	release.CategoryGA:            "🚀",
	release.CategoryPublicPreview: "🔬",
	release.CategoryBreaking:      "💥",
	release.CategorySecurity:      "🔒",
	release.CategoryDeprecated:    "⚠️",
	release.CategoryFixed:         "🔧",
	release.CategoryIssue:         "❗",
	release.CategoryChange:        "♻️",
	release.CategoryAnnouncement:  "📣",
	release.CategoryLibraries:     "📚",
	release.CategoryUpdate:        "📝",
}

// Render formats groups, newest first. generatedAt stamps the output.
func Render(format Format, groups []release.Group, generatedAt time.Time) (string, error) {
	sorted := sortGroups(groups)
	switch format {
	case FormatText:
		return renderText(sorted, generatedAt), nil
	case FormatMarkdown:
		return renderMarkdown(sorted, generatedAt), nil
	case FormatJSON:
		return renderJSON(sorted, generatedAt)
	case FormatHTML:
		return renderHTML(sorted, generatedAt), nil
	default:
		return "", fmt.Errorf("unknown format %q", format)
	}
}

// sortGroups orders newest first without mutating the input. Undated
// groups sink to the bottom.
func sortGroups(groups []release.Group) []release.Group {
	sorted := append([]release.Group(nil), groups...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sortKey(sorted[i].Date).After(sortKey(sorted[j].Date))
	})
	return sorted
}

func sortKey(d release.Date) time.Time {
	if !d.Known() {
		return time.Time{}
	}
	return d.Time
}

// stats aggregates item counts for the summary blocks.
type stats struct {
	groups     int
	items      int
	services   map[string]int
	categories map[release.Category]int
}

func collectStats(groups []release.Group) stats {
	s := stats{
		groups:     len(groups),
		services:   make(map[string]int),
		categories: make(map[release.Category]int),
	}
	for _, g := range groups {
		s.services[g.Service] += len(g.Items)
		for _, item := range g.Items {
			s.items++
			s.categories[item.Category]++
		}
	}
	return s
}

func dateLabel(d release.Date) string {
	if !d.Known() {
		return "Unknown date"
	}
	label := d.Time.Format("January 2, 2006")
	if d.Precision == release.PrecisionRelative || d.Precision == release.PrecisionYearInferred {
		label += " (approximate)"
	}
	return label
}

func renderText(groups []release.Group, generatedAt time.Time) string {
	var b strings.Builder
	st := collectStats(groups)

	line := strings.Repeat("=", 64)
	b.WriteString(line + "\n")
	b.WriteString("  Release Notes Summary\n")
	fmt.Fprintf(&b, "  Generated: %s\n", generatedAt.Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&b, "  %d updates across %d release groups from %d services\n",
		st.items, st.groups, len(st.services))
	b.WriteString(line + "\n\n")

	for _, g := range groups {
		fmt.Fprintf(&b, "%s (%s)\n", dateLabel(g.Date), g.Service)
		b.WriteString(strings.Repeat("-", 40) + "\n")
		for _, item := range g.Items {
			fmt.Fprintf(&b, "  %s [%s] %s\n", categoryIcons[item.Category], item.Category, item.Text)
			for _, u := range item.URLs {
				fmt.Fprintf(&b, "      %s\n", u)
			}
		}
		b.WriteString("\n")
	}

	if st.items > 0 {
		b.WriteString("By category:\n")
		for _, c := range release.Categories {
			if n := st.categories[c]; n > 0 {
				fmt.Fprintf(&b, "  %s %-15s %d\n", categoryIcons[c], c, n)
			}
		}
	}
	return b.String()
}

func renderMarkdown(groups []release.Group, generatedAt time.Time) string {
	var b strings.Builder
	st := collectStats(groups)

	b.WriteString("# Release Notes\n\n")
	fmt.Fprintf(&b, "_Generated %s - %d updates from %d services_\n\n",
		generatedAt.Format("2006-01-02"), st.items, len(st.services))

	for _, g := range groups {
		fmt.Fprintf(&b, "## %s (%s)\n\n", dateLabel(g.Date), g.Service)
		for _, item := range g.Items {
			fmt.Fprintf(&b, "- %s **%s** %s", categoryIcons[item.Category], item.Category, item.Text)
			if len(item.URLs) > 0 {
				fmt.Fprintf(&b, " ([link](%s))", item.URLs[0])
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// jsonDocument is the wire shape of the JSON rendering and the API body.
type jsonDocument struct {
	Metadata   jsonMetadata   `json:"metadata"`
	Statistics jsonStatistics `json:"statistics"`
	Releases   []jsonGroup    `json:"releases"`
}

type jsonMetadata struct {
	GeneratedAt string   `json:"generated_at"`
	Services    []string `json:"services"`
}

type jsonStatistics struct {
	TotalItems  int            `json:"total_items"`
	TotalGroups int            `json:"total_groups"`
	ByCategory  map[string]int `json:"by_category"`
}

type jsonGroup struct {
	Date      string         `json:"date,omitempty"`
	Precision string         `json:"date_precision"`
	Service   string         `json:"service"`
	SourceURL string         `json:"source_url"`
	Items     []release.Item `json:"items"`
}

func renderJSON(groups []release.Group, generatedAt time.Time) (string, error) {
	st := collectStats(groups)

	services := make([]string, 0, len(st.services))
	for svc := range st.services {
		services = append(services, svc)
	}
	sort.Strings(services)

	byCategory := make(map[string]int, len(st.categories))
	for c, n := range st.categories {
		byCategory[string(c)] = n
	}

	doc := jsonDocument{
		Metadata: jsonMetadata{
			GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
			Services:    services,
		},
		Statistics: jsonStatistics{
			TotalItems:  st.items,
			TotalGroups: st.groups,
			ByCategory:  byCategory,
		},
		Releases: make([]jsonGroup, 0, len(groups)),
	}
	for _, g := range groups {
		jg := jsonGroup{
			Precision: string(g.Date.Precision),
			Service:   g.Service,
			SourceURL: g.SourceURL,
			Items:     g.Items,
		}
		if g.Date.Known() {
			jg.Date = g.Date.Time.Format("2006-01-02")
		}
		doc.Releases = append(doc.Releases, jg)
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func renderHTML(groups []release.Group, generatedAt time.Time) string {
	var b strings.Builder
	st := collectStats(groups)

	b.WriteString(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Release Notes</title>
<style>
body{font-family:system-ui,sans-serif;margin:2rem auto;max-width:60rem;color:#222}
h2{border-bottom:1px solid #ddd;padding-bottom:.2rem}
.cat{display:inline-block;font-size:.75rem;padding:.1rem .4rem;border-radius:.3rem;background:#eef;margin-right:.4rem}
.meta{color:#666;font-size:.9rem}
li{margin:.3rem 0}
</style>
</head>
<body>
`)
	b.WriteString("<h1>Release Notes</h1>\n")
	fmt.Fprintf(&b, `<p class="meta">Generated %s - %d updates from %d services</p>`+"\n",
		generatedAt.Format("2006-01-02 15:04"), st.items, len(st.services))

	for _, g := range groups {
		fmt.Fprintf(&b, "<h2>%s (%s)</h2>\n<ul>\n",
			html.EscapeString(dateLabel(g.Date)), html.EscapeString(g.Service))
		for _, item := range g.Items {
			fmt.Fprintf(&b, `<li><span class="cat">%s</span>%s`,
				html.EscapeString(string(item.Category)), html.EscapeString(item.Text))
			if len(item.URLs) > 0 {
				fmt.Fprintf(&b, ` <a href="%s">link</a>`, html.EscapeString(item.URLs[0]))
			}
			b.WriteString("</li>\n")
		}
		b.WriteString("</ul>\n")
	}
	b.WriteString("</body>\n</html>\n")
	return b.String()
}
