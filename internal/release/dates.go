package release

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dazdaz/app-gcp-changelog/internal/clock"
)

// Normalizer converts the date strings found in release notes, headers, and
// feeds into canonical Dates. All relative and year-inference arithmetic is
// anchored on the injected clock, never on the wall clock directly.
type Normalizer struct {
	clock clock.Clock
}

// NewNormalizer returns a Normalizer anchored on c.
func NewNormalizer(c clock.Clock) *Normalizer {
	return &Normalizer{clock: c}
}

// Longer unit alternatives come first: RE2 alternation is leftmost-first,
// so "minute" must not lose its tail to a bare "m" match.
var relativeRe = regexp.MustCompile(`(\d+)\s*(day|d|hour|hr|h|minute|min|m|week|w)s?\s*ago`)

// Absolute formats that carry an explicit year.
var withYearFormats = []string{
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"January 2 2006",
}

// Formats with no year; the year is inferred from the clock.
var noYearFormats = []string{
	"Jan 2",
	"January 2",
}

// Header formats tried by ParseAbsolute. Slash dates are ambiguous; the
// US month-first reading is tried before day-first.
var headerFormats = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"2006-01-02",
	"1/2/2006",
	"2/1/2006",
}

// Parse normalizes a free-form date string from release content. Unparseable
// input yields a missing-precision Date, never an error: a bad date must not
// discard the note it annotates.
func (n *Normalizer) Parse(raw string) Date {
	s := strings.TrimSpace(raw)
	if s == "" {
		return MissingDate(raw)
	}
	lower := strings.ToLower(s)

	if m := relativeRe.FindStringSubmatch(lower); m != nil {
		count, err := strconv.Atoi(m[1])
		if err == nil {
			var delta time.Duration
			switch m[2][0] {
			case 'd':
				delta = time.Duration(count) * 24 * time.Hour
			case 'h':
				delta = time.Duration(count) * time.Hour
			case 'm':
				delta = time.Duration(count) * time.Minute
			case 'w':
				delta = time.Duration(count) * 7 * 24 * time.Hour
			}
			return Date{Time: n.clock.Now().Add(-delta), Original: raw, Precision: PrecisionRelative}
		}
	}

	if lower == "just now" || lower == "now" {
		return Date{Time: n.clock.Now(), Original: raw, Precision: PrecisionRelative}
	}
	if lower == "yesterday" {
		return Date{Time: n.clock.Now().Add(-24 * time.Hour), Original: raw, Precision: PrecisionRelative}
	}

	for _, layout := range withYearFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t, Original: raw, Precision: PrecisionExact}
		}
	}

	if t, err := time.Parse("2006-01-02", s); err == nil {
		return Date{Time: t, Original: raw, Precision: PrecisionExact}
	}

	for _, layout := range noYearFormats {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		now := n.clock.Now()
		t = time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		if t.After(now) {
			// "Dec 10" seen in January is last December, not next.
			t = t.AddDate(-1, 0, 0)
		}
		return Date{Time: t, Original: raw, Precision: PrecisionYearInferred}
	}

	return MissingDate(raw)
}

// ParseAbsolute parses date strings lifted from section headers. Unlike
// Parse it accepts slash dates but no relative phrases.
func (n *Normalizer) ParseAbsolute(raw string) Date {
	s := strings.TrimSpace(raw)
	for _, layout := range headerFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t, Original: raw, Precision: PrecisionExact}
		}
	}
	return MissingDate(raw)
}

var feedOffsetRe = regexp.MustCompile(`([+-]\d{2}):(\d{2})$`)
var feedISORe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// Feed timestamp layouts, most common first. The ".999" fraction is
// optional under time.Parse so the fractional variants also cover whole
// seconds with the same offset shape.
var feedFormats = []string{
	"2006-01-02T15:04:05.999Z",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05.999-0700",
	time.RFC1123,
	time.RFC1123Z,
	"2006-01-02",
}

// ParseFeedTime parses the timestamp strings found in Atom and RSS feeds.
// The result is reduced to a timezone-naive instant so that dates compare
// consistently with those scraped from HTML pages.
func (n *Normalizer) ParseFeedTime(raw string) (Date, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return MissingDate(raw), false
	}
	// "+05:30" -> "+0530" so one layout covers both offset spellings.
	s = feedOffsetRe.ReplaceAllString(s, "$1$2")

	for _, layout := range feedFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: naive(t), Original: raw, Precision: PrecisionExact}, true
		}
	}

	if iso := feedISORe.FindString(s); iso != "" {
		if t, err := time.Parse("2006-01-02", iso); err == nil {
			return Date{Time: t, Original: raw, Precision: PrecisionExact}, true
		}
	}

	return MissingDate(raw), false
}

// naive strips the zone, keeping the literal clock reading.
func naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
