// Package pipeline orchestrates a scrape run: fetch each source, extract
// its raw groups, then classify, dedup, and filter them into the final
// release groups.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dazdaz/app-gcp-changelog/internal/extract"
	"github.com/dazdaz/app-gcp-changelog/internal/fetch"
	"github.com/dazdaz/app-gcp-changelog/internal/logging"
	"github.com/dazdaz/app-gcp-changelog/internal/metrics"
	"github.com/dazdaz/app-gcp-changelog/internal/release"
	"github.com/dazdaz/app-gcp-changelog/internal/source"
)

// Fetcher retrieves a source's content, applying fallback policy. The
// returned kind may differ from the source's when a fallback was used.
type Fetcher interface {
	Fetch(ctx context.Context, src source.Source) (*fetch.Response, source.Kind, error)
}

// Extractors selects the extractor for a source and its effective kind.
type Extractors interface {
	Select(src source.Source, kind source.Kind) (extract.Extractor, bool)
}

// Clock is the time source for window resolution.
type Clock interface {
	Now() time.Time
}

// Pipeline runs scrapes across many sources with bounded concurrency.
// One failing source never aborts its siblings.
type Pipeline struct {
	fetcher     Fetcher
	extractors  Extractors
	clk         Clock
	logger      *zap.Logger
	concurrency int
}

// New builds a Pipeline.
func New(fetcher Fetcher, extractors Extractors, clk Clock, concurrency int, logger *zap.Logger) *Pipeline {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Pipeline{
		fetcher:     fetcher,
		extractors:  extractors,
		clk:         clk,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Run scrapes all sources and returns their filtered release groups in
// source order. Per-source failures are logged and counted, not returned;
// only context cancellation fails the run.
func (p *Pipeline) Run(ctx context.Context, sources []source.Source, opts Options) ([]release.Group, error) {
	window := NewWindow(p.clk.Now(), opts)
	log := p.logger.With(zap.String("run_id", uuid.NewString()))
	log.Info("starting scrape run",
		zap.Int("sources", len(sources)),
		zap.Time("cutoff", window.Cutoff),
		zap.Time("end", window.End),
		zap.Bool("strict", window.Strict),
	)

	results := make([][]release.Group, len(sources))
	sem := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup

	for i, src := range sources {
		wg.Add(1)
		go func(i int, src source.Source) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			slog := logging.ForSource(log, src.ID, src.PrimaryURL)
			raw, err := p.scrapeSource(ctx, src, slog)
			if err != nil {
				slog.Warn("source scrape failed", zap.Error(err))
				metrics.ObserveScrape(src.ID, "error")
				return
			}
			groups := finalize(raw, src, window, opts.Categories)
			metrics.ObserveScrape(src.ID, "ok")
			metrics.ObserveGroups(src.ID, len(groups))
			slog.Info("source scraped",
				zap.Int("raw_groups", len(raw)),
				zap.Int("groups", len(groups)),
			)
			results[i] = groups
		}(i, src)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var all []release.Group
	for _, groups := range results {
		all = append(all, groups...)
	}
	return all, nil
}

// scrapeSource fetches and extracts one source. Headless sources skip the
// HTTP fetch entirely: the browser retrieves the page itself.
func (p *Pipeline) scrapeSource(ctx context.Context, src source.Source, log *zap.Logger) ([]extract.RawGroup, error) {
	kind := src.Kind
	pageURL := src.PrimaryURL
	var body []byte

	if kind != source.KindBlogHeadless {
		resp, effective, err := p.fetcher.Fetch(ctx, src)
		if err != nil {
			return nil, err
		}
		body = resp.Body
		pageURL = resp.URL
		if effective != kind {
			log.Info("fallback changed source kind",
				zap.String("from", string(kind)),
				zap.String("to", string(effective)),
			)
			kind = effective
		}
	}

	ex, ok := p.extractors.Select(src, kind)
	if !ok {
		return nil, fmt.Errorf("no extractor for kind %q", kind)
	}
	return ex.Extract(ctx, body, pageURL)
}

// finalize turns raw groups into classified, deduplicated, filtered
// release groups. Dedup is exact-match per source within one run, keyed
// on the fragment's markup when present so that differently-rendered
// duplicates of the same text survive.
func finalize(raw []extract.RawGroup, src source.Source, window Window, categories []release.Category) []release.Group {
	var allowed map[release.Category]struct{}
	if len(categories) > 0 {
		allowed = make(map[release.Category]struct{}, len(categories))
		for _, c := range categories {
			allowed[c] = struct{}{}
		}
	}

	seen := make(map[string]struct{})
	var out []release.Group
	for _, g := range raw {
		if !window.Allows(g.Date) {
			continue
		}

		sourceURL := g.SourceURL
		if sourceURL == "" {
			sourceURL = src.PrimaryURL
		}

		var items []release.Item
		for _, f := range g.Fragments {
			key := f.Markup
			if key == "" {
				key = f.Text
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			cat := release.Classify(f.Hint, f.Text)
			if allowed != nil {
				if _, ok := allowed[cat]; !ok {
					continue
				}
			}

			urls := f.URLs
			if len(urls) == 0 {
				urls = []string{sourceURL}
			}
			items = append(items, release.Item{Text: f.Text, Category: cat, URLs: urls})
		}
		if len(items) == 0 {
			continue
		}
		out = append(out, release.Group{
			Date:      g.Date,
			Items:     items,
			SourceURL: sourceURL,
			Service:   src.ID,
		})
	}
	return out
}
