// Package extract turns fetched source content into raw release groups.
// Each platform gets its own extractor; all of them emit the same
// RawGroup shape so the pipeline can classify and filter uniformly.
package extract

import (
	"context"
	"fmt"

	"github.com/dazdaz/app-gcp-changelog/internal/release"
)

// RawGroup is one dated bundle of fragments as found in the source,
// before classification and dedup.
type RawGroup struct {
	Date      release.Date
	Fragments []release.Fragment
	SourceURL string
}

// Extractor parses one platform's content shape.
//
// body is the fetched page or feed; extractors that drive their own
// retrieval (the headless browser) receive nil and ignore it. A source
// with no recognizable content yields an empty slice, not an error:
// errors are reserved for structurally broken input.
type Extractor interface {
	Extract(ctx context.Context, body []byte, pageURL string) ([]RawGroup, error)
}

// ParseError reports content that could not be parsed at all.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
