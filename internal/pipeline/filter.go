package pipeline

import (
	"time"

	"github.com/dazdaz/app-gcp-changelog/internal/release"
)

// Options narrows a scrape run: at most one of Days, Months, Start may be
// set (the CLI enforces mutual exclusion), plus an optional end bound and
// category allowlist.
type Options struct {
	Days   int
	Months int
	Start  time.Time
	End    time.Time

	Categories []release.Category
}

// Window is the resolved date window of one run.
//
// Strict mode drops undated items; it engages only when the caller asked
// for a precise window (days or an explicit start date). Month-sized
// windows are fuzzy by nature, so undated items pass through them.
type Window struct {
	Cutoff time.Time
	End    time.Time
	Strict bool
}

// defaultMonths applies when no window option is given.
const defaultMonths = 12

// NewWindow resolves opts against now.
func NewWindow(now time.Time, opts Options) Window {
	w := Window{End: now}

	switch {
	case !opts.Start.IsZero():
		w.Cutoff = opts.Start
		w.Strict = true
	case opts.Days > 0:
		w.Cutoff = midnight(now.AddDate(0, 0, -opts.Days))
		w.Strict = true
	case opts.Months > 0:
		w.Cutoff = midnight(now.AddDate(0, 0, -30*opts.Months))
	default:
		w.Cutoff = midnight(now.AddDate(0, 0, -30*defaultMonths))
	}

	if !opts.End.IsZero() {
		// A bare end date means the whole of that day.
		e := opts.End
		w.End = time.Date(e.Year(), e.Month(), e.Day(), 23, 59, 59, 0, time.UTC)
	}
	return w
}

// Allows reports whether a date falls inside the window. Bounds are
// inclusive. Undated items pass unless the window is strict.
func (w Window) Allows(d release.Date) bool {
	if !d.Known() {
		return !w.Strict
	}
	if d.Time.Before(w.Cutoff) || d.Time.After(w.End) {
		return false
	}
	return true
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
