// Package remote is the palette source backed by the console REST API.
//
// A query runs in two phases. Direct lookups resolve queries shaped like an
// event id or an issue short id. Indexed lookups fetch organizations,
// projects, teams, members, plugins, integrations, published apps and doc
// integrations, and index them for fuzzy matching. Network work is debounced
// and cached per palette session, organization and two-character prefix;
// longer queries refine the cached corpus in memory.
package remote

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rubiojr/cmdk/pkg/apiclient"
	"github.com/rubiojr/cmdk/pkg/core"
	"github.com/rubiojr/cmdk/pkg/fuzzy"
	"github.com/rubiojr/cmdk/pkg/log"
	"github.com/rubiojr/cmdk/pkg/reporter"
	"github.com/rubiojr/cmdk/pkg/sources"
)

// DefaultDebounce delays network work after a query change.
const DefaultDebounce = 150 * time.Millisecond

// DirectScore is the score of direct lookup hits.
const DirectScore = 1.0

// Client fetches API resources. *apiclient.Client satisfies it.
type Client interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
}

// ErrorReporter receives endpoint failures. *reporter.Reporter satisfies it.
type ErrorReporter interface {
	Report(err error, context map[string]string) string
}

type Option func(*Source)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(s *Source) { s.debounce = d }
}

// WithReporter sends endpoint failures to r.
func WithReporter(r ErrorReporter) Option {
	return func(s *Source) { s.reporter = r }
}

// maxCallers bounds the per-caller caches; the least recently used one is
// dropped first.
const maxCallers = 256

// callerKey identifies whose cache a query uses. Palette sessions get their
// own; anonymous callers of an organization share one.
type callerKey struct {
	session string
	org     string
}

// caller is the query state of one session in one organization.
type caller struct {
	prefix    string
	wasDirect bool
	index     *fuzzy.Index[core.Item]
	// fetchGen numbers corpus fetches. A fetch installs its corpus only if
	// no newer one started meanwhile; stale stays set until one does.
	fetchGen uint64
	stale    bool
	direct   []core.Result
	directQ  string
	lastUsed time.Time
}

// Source matches API resources. A query is superseded only through its own
// context; concurrent callers never cancel each other.
type Source struct {
	client   Client
	reporter ErrorReporter
	debounce time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	callers map[callerKey]*caller
	fetches int
}

func New(client Client, opts ...Option) *Source {
	s := &Source{
		client:   client,
		debounce: DefaultDebounce,
		logger:   log.ForService("remote"),
		callers:  make(map[callerKey]*caller),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Source) Name() string { return "remote" }

// Fetches returns how many network fan-outs completed.
func (s *Source) Fetches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

// callerLocked returns the state for key, creating it and evicting the
// least recently used entry when full. Callers hold s.mu.
func (s *Source) callerLocked(key callerKey) *caller {
	c, ok := s.callers[key]
	if !ok {
		if len(s.callers) >= maxCallers {
			var (
				oldest callerKey
				at     time.Time
			)
			for k, v := range s.callers {
				if at.IsZero() || v.lastUsed.Before(at) {
					oldest, at = k, v.lastUsed
				}
			}
			delete(s.callers, oldest)
		}
		c = &caller{}
		s.callers[key] = c
	}
	c.lastUsed = time.Now()
	return c
}

// plan is the network work a query needs.
type plan struct {
	corpus bool
	direct bool
}

func (p plan) none() bool { return !p.corpus && !p.direct }

func prefixOf(q string) string {
	r := []rune(q)
	if len(r) > 2 {
		r = r[:2]
	}
	return string(r)
}

// planFor applies the refetch rules to the caller's previous query.
func (c *caller) planFor(q string) plan {
	direct := isDirect(q)
	p := plan{direct: direct && q != c.directQ}
	switch {
	case c.index == nil, c.stale:
		p.corpus = true
	case len([]rune(q)) <= 2 && prefixOf(q) != c.prefix:
		p.corpus = true
	case direct && !c.wasDirect:
		p.corpus = true
	}
	return p
}

func (s *Source) Query(ctx context.Context, query string, sc core.Context) core.Report {
	org := sc.OrgSlug()
	if org == "" {
		return core.EmptyReport()
	}
	key := callerKey{session: sc.Session, org: org}

	s.mu.Lock()
	c := s.callerLocked(key)
	p := c.planFor(query)
	if p.none() {
		c.wasDirect = isDirect(query)
		results := resultsFor(c.index, query, c.directFor(query))
		s.mu.Unlock()
		return core.Report{Results: results}
	}
	var gen uint64
	if p.corpus {
		c.fetchGen++
		gen = c.fetchGen
		c.stale = true
	}
	index := c.index
	s.mu.Unlock()

	timer := time.NewTimer(s.debounce)
	select {
	case <-timer.C:
	case <-ctx.Done():
		timer.Stop()
		return core.LoadingReport()
	}

	var (
		corpus []core.Item
		direct []core.Result
	)
	g, gctx := errgroup.WithContext(ctx)
	if p.corpus {
		g.Go(func() error {
			corpus = s.fetchCorpus(gctx, query, org)
			return nil
		})
	}
	if p.direct {
		g.Go(func() error {
			direct = s.fetchDirect(gctx, query, org)
			return nil
		})
	}
	_ = g.Wait()
	if ctx.Err() != nil {
		return core.LoadingReport()
	}

	if p.corpus {
		var err error
		index, err = sources.NewIndex(corpus)
		if err != nil {
			s.logger.Errorf("building index: %v", err)
			return core.EmptyReport()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c = s.callerLocked(key)
	if p.corpus {
		s.fetches++
		if c.fetchGen == gen {
			c.index, c.prefix, c.stale = index, prefixOf(query), false
		}
	}
	if p.direct {
		c.direct, c.directQ = direct, query
	} else {
		direct = c.directFor(query)
	}
	c.wasDirect = isDirect(query)
	return core.Report{Results: resultsFor(index, query, direct)}
}

func (c *caller) directFor(query string) []core.Result {
	if c.directQ == query {
		return c.direct
	}
	return nil
}

// resultsFor searches index and appends the direct hits of query.
func resultsFor(index *fuzzy.Index[core.Item], query string, direct []core.Result) []core.Result {
	results := sources.ToResults(index.Search(query), nil)
	return append(results, direct...)
}

// fetchCorpus runs every indexed lookup in parallel. Failed endpoints
// contribute nothing.
func (s *Source) fetchCorpus(ctx context.Context, query, org string) []core.Item {
	parts := make([][]core.Item, len(endpoints))
	g, gctx := errgroup.WithContext(ctx)
	for i, ep := range endpoints {
		g.Go(func() error {
			path := ep.path(org)
			items, err := ep.fetch(s.getter(gctx), path, ep.query(query), org)
			if err != nil {
				s.fail(ctx, err, ep.name, path, org)
				return nil
			}
			parts[i] = items
			return nil
		})
	}
	_ = g.Wait()

	var items []core.Item
	for _, p := range parts {
		items = append(items, p...)
	}
	return items
}

// fetchDirect resolves query as an event id or short id.
func (s *Source) fetchDirect(ctx context.Context, query, org string) []core.Result {
	var (
		mu      sync.Mutex
		results = []core.Result{}
	)
	add := func(it core.Item) {
		mu.Lock()
		defer mu.Unlock()
		results = append(results, core.Result{Item: it, Score: DirectScore})
	}

	g, gctx := errgroup.WithContext(ctx)
	if IsEventID(query) {
		g.Go(func() error {
			path := "/organizations/" + org + "/eventids/" + query + "/"
			var r eventIDLookup
			if err := s.client.Get(gctx, path, nil, &r); err != nil {
				s.fail(ctx, err, "eventid", path, org)
				return nil
			}
			add(eventIDItem(org, r))
			return nil
		})
	}
	if IsShortID(query) {
		g.Go(func() error {
			path := "/organizations/" + org + "/shortids/" + query + "/"
			var r shortIDLookup
			if err := s.client.Get(gctx, path, nil, &r); err != nil {
				s.fail(ctx, err, "shortid", path, org)
				return nil
			}
			add(shortIDItem(org, r))
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (s *Source) getter(ctx context.Context) getFunc {
	return func(path string, query url.Values, out any) error {
		return s.client.Get(ctx, path, query, out)
	}
}

// fail reports err unless it is a 404 or the query was superseded.
func (s *Source) fail(ctx context.Context, err error, endpoint, path, org string) {
	if apiclient.IsNotFound(err) {
		return
	}
	if ctx.Err() != nil {
		s.logger.Debugf("%s aborted: %v", endpoint, err)
		return
	}
	if s.reporter == nil {
		s.logger.Warnf("%s: %v", endpoint, err)
		return
	}
	s.reporter.Report(err, map[string]string{
		"source":   s.Name(),
		"endpoint": endpoint,
		"url":      reporter.RedactURL(path, org),
	})
}
