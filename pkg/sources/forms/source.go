// Package forms is the palette source for individual settings form fields.
//
// Form definitions register themselves at init time. A shared FieldMap
// flattens them once and publishes the result through the store; each
// Source subscribes and keeps its own index of the published fields.
package forms

import (
	"context"
	"net/url"
	"sync"

	"github.com/rubiojr/cmdk/pkg/core"
	"github.com/rubiojr/cmdk/pkg/fuzzy"
	"github.com/rubiojr/cmdk/pkg/sources"
)

// Source matches form fields and links to the field's anchor on its page.
type Source struct {
	mu          sync.RWMutex
	index       *fuzzy.Index[core.Item]
	unsubscribe func()
	fm          *FieldMap
}

// New subscribes to fm and triggers its load. If fm was loaded by another
// consumer already, the published fields are indexed right away.
func New(fm *FieldMap) *Source {
	s := &Source{fm: fm}
	s.unsubscribe = fm.Subscribe(s.rebuild)
	if !fm.Load() {
		if items := fm.Fields(); items != nil {
			s.rebuild(items)
		}
	}
	return s
}

func (s *Source) Name() string { return "forms" }

func (s *Source) rebuild(fields []FieldItem) {
	items := make([]core.Item, 0, len(fields))
	for _, f := range fields {
		items = append(items, core.Item{
			Title:       f.Title,
			Description: f.Description,
			SourceType:  core.SourceField,
			ResultType:  core.ResultField,
			To:          f.Route,
			Extra:       f.Name,
		})
	}

	index, err := sources.NewIndex(items)
	if err != nil {
		s.fm.logger.Errorf("building index: %v", err)
		return
	}
	s.mu.Lock()
	s.index = index
	s.mu.Unlock()
}

func (s *Source) Query(ctx context.Context, query string, sc core.Context) core.Report {
	s.mu.RLock()
	index := s.index
	s.mu.RUnlock()

	if index == nil {
		return core.LoadingReport()
	}

	results := sources.ToResults(index.Search(query), func(it core.Item) core.Item {
		it.To = core.ReplaceRouterParams(it.To, sc.Params) + "#" + url.QueryEscape(it.Extra)
		return it
	})
	return core.Report{Results: results}
}

// Close stops following field map updates.
func (s *Source) Close() error {
	s.unsubscribe()
	return nil
}
