package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dazdaz/app-gcp-changelog/internal/release"
)

var filterNow = time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)

func exactDate(t time.Time) release.Date {
	return release.Date{Time: t, Precision: release.PrecisionExact}
}

func TestNewWindowDefaults(t *testing.T) {
	w := NewWindow(filterNow, Options{})

	assert.Equal(t, midnight(filterNow.AddDate(0, 0, -360)), w.Cutoff)
	assert.Equal(t, filterNow, w.End)
	assert.False(t, w.Strict)
}

func TestNewWindowPrecedence(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	// An explicit start beats days and months.
	w := NewWindow(filterNow, Options{Start: start, Days: 7, Months: 3})
	assert.Equal(t, start, w.Cutoff)
	assert.True(t, w.Strict)

	// Days beat months.
	w = NewWindow(filterNow, Options{Days: 7, Months: 3})
	assert.Equal(t, midnight(filterNow.AddDate(0, 0, -7)), w.Cutoff)
	assert.True(t, w.Strict)

	// Months alone are fuzzy.
	w = NewWindow(filterNow, Options{Months: 3})
	assert.Equal(t, midnight(filterNow.AddDate(0, 0, -90)), w.Cutoff)
	assert.False(t, w.Strict)
}

func TestNewWindowEndWidened(t *testing.T) {
	end := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	w := NewWindow(filterNow, Options{End: end})
	assert.Equal(t, time.Date(2025, time.June, 1, 23, 59, 59, 0, time.UTC), w.End)
}

func TestWindowBoundsInclusive(t *testing.T) {
	w := NewWindow(filterNow, Options{Days: 7})

	assert.True(t, w.Allows(exactDate(w.Cutoff)), "cutoff itself is in")
	assert.True(t, w.Allows(exactDate(w.End)), "end itself is in")
	assert.False(t, w.Allows(exactDate(w.Cutoff.Add(-time.Second))))
	assert.False(t, w.Allows(exactDate(w.End.Add(time.Second))))
}

func TestWindowUndated(t *testing.T) {
	undated := release.MissingDate("")

	assert.False(t, NewWindow(filterNow, Options{Days: 7}).Allows(undated))
	assert.False(t, NewWindow(filterNow, Options{Start: filterNow.AddDate(0, -1, 0)}).Allows(undated))
	assert.True(t, NewWindow(filterNow, Options{Months: 3}).Allows(undated))
	assert.True(t, NewWindow(filterNow, Options{}).Allows(undated))
}
