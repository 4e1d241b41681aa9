package search

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rubiojr/cmdk/pkg/core"
	"github.com/rubiojr/cmdk/pkg/log"
)

// ErrorReporter receives recovered source panics.
type ErrorReporter interface {
	Report(err error, context map[string]string) string
}

// Service runs a query against the sources of a registry.
type Service struct {
	registry *core.Registry
	reporter ErrorReporter
	logger   *log.Logger
}

// NewService returns a service over registry. reporter may be nil.
func NewService(registry *core.Registry, reporter ErrorReporter) *Service {
	return &Service{
		registry: registry,
		reporter: reporter,
		logger:   log.ForService("search"),
	}
}

// Search queries every registered source, or only the named ones, and
// merges their reports.
//
// All sources run concurrently and the merge happens once every source has
// answered. If any source is still loading the whole report is loading and
// carries no results. Otherwise results are concatenated in registration
// order and stably sorted by ascending score, so equal scores keep source
// order and then the source's own order.
func (s *Service) Search(ctx context.Context, query string, sc core.Context, names ...string) core.AggregatedReport {
	srcs := s.registry.Sources(names...)
	start := time.Now()

	reports := make([]core.Report, len(srcs))
	var g errgroup.Group
	for i, src := range srcs {
		g.Go(func() error {
			reports[i] = s.query(ctx, src, query, sc)
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		return loading()
	}

	report := Merge(reports)
	s.logger.Debugf("%q: %d results from %d sources in %s (loading=%v)",
		query, len(report.Results), len(srcs), time.Since(start), report.Loading)
	return report
}

// query runs one source, turning a panic into a settled empty report.
func (s *Service) query(ctx context.Context, src core.Source, query string, sc core.Context) (report core.Report) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("source %s panicked: %v", src.Name(), r)
			if s.reporter != nil {
				s.reporter.Report(err, map[string]string{"source": src.Name()})
			} else {
				s.logger.Errorf("%v", err)
			}
			report = core.EmptyReport()
		}
	}()
	return src.Query(ctx, query, sc)
}

// Merge combines per-source reports given in source order.
func Merge(reports []core.Report) core.AggregatedReport {
	total := 0
	for _, r := range reports {
		if !r.Usable() {
			return loading()
		}
		total += len(r.Results)
	}

	results := make([]core.Result, 0, total)
	for _, r := range reports {
		results = append(results, r.Results...)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score < results[j].Score
	})

	return core.AggregatedReport{
		Results:       results,
		HasAnyResults: len(results) > 0,
	}
}

func loading() core.AggregatedReport {
	return core.AggregatedReport{Loading: true, Results: []core.Result{}}
}
