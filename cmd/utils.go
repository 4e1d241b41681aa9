package cmd

import (
	"errors"
	"fmt"

	"github.com/rubiojr/cmdk/pkg/apiclient"
	"github.com/rubiojr/cmdk/pkg/config"
	"github.com/rubiojr/cmdk/pkg/core"
	"github.com/rubiojr/cmdk/pkg/log"
	"github.com/rubiojr/cmdk/pkg/navigation"
	"github.com/rubiojr/cmdk/pkg/palette"
	"github.com/rubiojr/cmdk/pkg/reporter"
	"github.com/rubiojr/cmdk/pkg/search"
	"github.com/rubiojr/cmdk/pkg/sources/actions"
	"github.com/rubiojr/cmdk/pkg/sources/forms"
	"github.com/rubiojr/cmdk/pkg/sources/remote"
	"github.com/rubiojr/cmdk/pkg/sources/routes"
	"github.com/rubiojr/cmdk/pkg/storage"
	"github.com/rubiojr/cmdk/pkg/store"
)

// pipeline is everything a command needs to answer palette queries.
type pipeline struct {
	cfg      *config.Config
	db       *storage.DB
	store    *store.Store
	reporter *reporter.Reporter
	registry *core.Registry
	search   *search.Service
	actions  *actions.Source
	routes   *routes.Source
	fields   *forms.FieldMap
}

// newPipeline loads the configuration and wires storage, the sources and
// the search service. Callers must Close the result.
func newPipeline(configPath string) (*pipeline, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	db, err := storage.Open(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	p := &pipeline{
		cfg:      cfg,
		db:       db,
		store:    store.New(),
		reporter: reporter.New(db),
		registry: core.NewRegistry(),
	}

	if err := p.store.WithPersister(db); err != nil {
		log.ForService("cmd").Warnf("restoring settings: %v", err)
	}

	if err := p.registerSources(); err != nil {
		_ = p.Close()
		return nil, err
	}
	p.search = search.NewService(p.registry, p.reporter)
	return p, nil
}

func (p *pipeline) registerSources() error {
	defs, err := navigation.Definitions(p.cfg.Search.NavigationFile)
	if err != nil {
		return fmt.Errorf("loading navigation: %w", err)
	}

	p.actions = actions.New(actions.DefaultActions(p.store))
	p.routes = routes.New(defs...)
	p.fields = forms.NewFieldMap(p.store, nil)

	sources := []core.Source{p.actions, p.routes, forms.New(p.fields)}

	if p.cfg.API.BaseURL != "" {
		client, err := apiclient.New(apiclient.Config{
			BaseURL:   p.cfg.API.BaseURL,
			Token:     p.cfg.API.Token,
			RateLimit: p.cfg.API.RateLimit,
			Timeout:   p.cfg.API.Timeout.Duration,
		})
		if err != nil {
			return fmt.Errorf("creating api client: %w", err)
		}
		sources = append(sources, remote.New(client,
			remote.WithDebounce(p.cfg.Search.Debounce.Duration),
			remote.WithReporter(p.reporter),
		))
	}

	for _, s := range sources {
		if err := p.registry.Register(s); err != nil {
			return fmt.Errorf("registering source %s: %w", s.Name(), err)
		}
	}
	return nil
}

func (p *pipeline) paletteOptions() palette.Options {
	return palette.Options{
		MinQueryLength:    p.cfg.Search.MinQueryLength,
		MaxResults:        p.cfg.Search.MaxResults,
		AnalyticsDebounce: p.cfg.Search.AnalyticsDebounce.Duration,
	}
}

// waitReady blocks until the action index has been built so one-shot
// commands don't see a loading report.
func (p *pipeline) waitReady() {
	<-p.actions.Ready()
}

func (p *pipeline) Close() error {
	var errs []error
	if p.registry != nil {
		errs = append(errs, p.registry.Close())
	}
	p.reporter.Wait()
	errs = append(errs, p.db.Close())
	return errors.Join(errs...)
}
