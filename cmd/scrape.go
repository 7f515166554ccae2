package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dazdaz/app-gcp-changelog/internal/pipeline"
	"github.com/dazdaz/app-gcp-changelog/internal/release"
	"github.com/dazdaz/app-gcp-changelog/internal/render"
	"github.com/dazdaz/app-gcp-changelog/internal/source"
)

type scrapeFlags struct {
	service string
	group   string
	url     string
	blogs   bool

	days      int
	months    int
	startDate string
	endDate   string

	categories []string
	output     string
	file       string
}

func newScrapeCmd() *cobra.Command {
	var flags scrapeFlags

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape release notes from one service, a group, or the blogs.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			sources, err := resolveSources(flags)
			if err != nil {
				return err
			}
			opts, err := resolveOptions(flags, app)
			if err != nil {
				return err
			}
			if !render.ValidFormat(flags.output) {
				return fmt.Errorf("unknown output format %q", flags.output)
			}

			groups, err := app.Pipeline.Run(cmd.Context(), sources, opts)
			if err != nil {
				return err
			}
			app.Logger.Info("scrape finished",
				zap.Int("sources", len(sources)),
				zap.Int("groups", len(groups)),
			)

			out, err := render.Render(render.Format(flags.output), groups, app.Clock.Now())
			if err != nil {
				return err
			}

			if flags.file != "" {
				if err := os.WriteFile(flags.file, []byte(out), 0o644); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", flags.file)
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.service, "service", "s", "", "service id to scrape")
	cmd.Flags().StringVarP(&flags.group, "group", "g", "", "service group to scrape")
	cmd.Flags().StringVarP(&flags.url, "url", "u", "", "arbitrary URL to scrape")
	cmd.Flags().BoolVar(&flags.blogs, "blogs", false, "scrape the configured blogs")

	cmd.Flags().IntVarP(&flags.days, "days", "d", 0, "only include the last N days (strict)")
	cmd.Flags().IntVarP(&flags.months, "months", "m", 0, "only include the last N months")
	cmd.Flags().StringVar(&flags.startDate, "start-date", "", "window start, YYYY-MM-DD (strict)")
	cmd.Flags().StringVar(&flags.endDate, "end-date", "", "window end, YYYY-MM-DD")

	cmd.Flags().StringArrayVarP(&flags.categories, "category", "c", nil, "only include these categories (repeatable)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", string(render.FormatText), "output format: text, markdown, json, html")
	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "write output to a file instead of stdout")

	return cmd
}

// resolveSources maps the selector flags to sources. Exactly one selector
// must be given.
func resolveSources(flags scrapeFlags) ([]source.Source, error) {
	selectors := 0
	var sources []source.Source

	if flags.service != "" {
		selectors++
		src, ok := source.Lookup(flags.service)
		if !ok {
			return nil, fmt.Errorf("unknown service %q (try 'changelog list')", flags.service)
		}
		sources = []source.Source{src}
	}
	if flags.group != "" {
		selectors++
		grp, ok := source.Group(flags.group)
		if !ok {
			return nil, fmt.Errorf("unknown group %q (try 'changelog list')", flags.group)
		}
		sources = grp
	}
	if flags.url != "" {
		selectors++
		sources = []source.Source{source.FromURL("custom", flags.url)}
	}
	if flags.blogs {
		selectors++
		sources = source.Blogs()
	}

	if selectors != 1 {
		return nil, fmt.Errorf("exactly one of --service, --group, --url, --blogs is required")
	}
	return sources, nil
}

// resolveOptions maps the window and category flags to pipeline options.
// Days, months, and start-date are mutually exclusive.
func resolveOptions(flags scrapeFlags, app *App) (pipeline.Options, error) {
	var opts pipeline.Options

	windows := 0
	if flags.days > 0 {
		opts.Days = flags.days
		windows++
	}
	if flags.months > 0 {
		opts.Months = flags.months
		windows++
	}
	if flags.startDate != "" {
		t, err := time.Parse("2006-01-02", flags.startDate)
		if err != nil {
			return opts, fmt.Errorf("--start-date must be YYYY-MM-DD")
		}
		opts.Start = t
		windows++
	}
	if windows > 1 {
		return opts, fmt.Errorf("--days, --months, and --start-date are mutually exclusive")
	}
	if windows == 0 {
		opts.Months = app.Config.Scrape.DefaultMonths
	}

	if flags.endDate != "" {
		t, err := time.Parse("2006-01-02", flags.endDate)
		if err != nil {
			return opts, fmt.Errorf("--end-date must be YYYY-MM-DD")
		}
		opts.End = t
	}

	for _, c := range flags.categories {
		if !release.ValidCategory(c) {
			return opts, fmt.Errorf("unknown category %q", c)
		}
		opts.Categories = append(opts.Categories, release.Category(c))
	}
	return opts, nil
}
