package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/rubiojr/cmdk/pkg/core"
	"github.com/rubiojr/cmdk/pkg/palette"
)

// SearchCommand creates the search command
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search the palette",
		ArgsUsage: "QUERY",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "source",
				Usage: "Restrict the search to these sources",
			},
			&cli.StringFlag{
				Name:  "org",
				Usage: "Organization slug, overrides the configured one",
			},
			&cli.StringFlag{
				Name:  "project",
				Usage: "Project slug, overrides the configured one",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of results, 0 for the configured value",
			},
			&cli.IntFlag{
				Name:  "select",
				Usage: "Select the result at this index",
				Value: -1,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			query := c.Args().First()
			if query == "" {
				return fmt.Errorf("a query is required")
			}
			return searchPalette(ctx, os.Stdout, c.String("config"), query, searchOptions{
				sources: c.StringSlice("source"),
				org:     c.String("org"),
				project: c.String("project"),
				limit:   int(c.Int("limit")),
				selectI: int(c.Int("select")),
			})
		},
	}
}

type searchOptions struct {
	sources []string
	org     string
	project string
	limit   int
	selectI int
}

// terminal prints selections instead of performing them.
type terminal struct {
	w io.Writer
}

func (t terminal) Navigate(ctx context.Context, path, prefetchURL string) error {
	if prefetchURL != "" {
		_, err := fmt.Fprintf(t.w, "navigate %s (prefetch %s)\n", path, prefetchURL)
		return err
	}
	_, err := fmt.Fprintf(t.w, "navigate %s\n", path)
	return err
}

func (t terminal) Open(ctx context.Context, url string) error {
	_, err := fmt.Fprintf(t.w, "open %s\n", url)
	return err
}

func (t terminal) ShowError(message string) {
	fmt.Fprintf(t.w, "error: %s\n", message)
}

func withOverrides(sc core.Context, org, project string) core.Context {
	params := make(map[string]string, len(sc.Params)+2)
	for k, v := range sc.Params {
		params[k] = v
	}
	if org != "" {
		o := core.Organization{Slug: org}
		if sc.Organization != nil {
			o = *sc.Organization
			o.Slug = org
		}
		sc.Organization = &o
		params["orgId"] = org
	}
	if project != "" {
		p := core.Project{Slug: project}
		if sc.Project != nil {
			p = *sc.Project
			p.Slug = project
		}
		sc.Project = &p
		params["projectId"] = project
	}
	sc.Params = params
	return sc
}

func searchPalette(ctx context.Context, w io.Writer, configPath, query string, opts searchOptions) error {
	p, err := newPipeline(configPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close pipeline: %v\n", err)
		}
	}()
	p.waitReady()

	popts := p.paletteOptions()
	popts.Sources = opts.sources
	if opts.limit > 0 {
		popts.MaxResults = opts.limit
	}
	sc := withOverrides(p.cfg.Context(), opts.org, opts.project)

	session := palette.NewSession(p.search, sc, popts)
	defer session.Close()
	term := terminal{w: w}
	session.Navigator, session.Opener, session.Notifier = term, term, term

	report := session.SetQuery(ctx, query)
	fmt.Fprint(w, renderResults(query, report, session.View(report)))

	if opts.selectI < 0 {
		return nil
	}
	sel, err := session.SelectIndex(ctx, opts.selectI)
	if err != nil {
		return err
	}
	if sel.Kind == palette.SelectedAction || sel.Kind == palette.SelectedNothing {
		fmt.Fprintf(w, "%s\n", sel.Kind)
	}
	return nil
}
