// Package actions is the palette source for static commands such as
// toggling dark mode or opening the help search.
package actions

import (
	"context"
	"sync"

	"github.com/rubiojr/cmdk/pkg/core"
	"github.com/rubiojr/cmdk/pkg/fuzzy"
	"github.com/rubiojr/cmdk/pkg/log"
	"github.com/rubiojr/cmdk/pkg/sources"
	"github.com/rubiojr/cmdk/pkg/store"
)

// Store keys written by the default actions.
const (
	KeyModal              = "ui.modal"
	KeyDarkMode           = "theme.dark"
	KeyTranslationMarkers = "i18n.markers"
)

// DefaultActions returns the built-in commands. Their effects land in st so
// clients subscribed to the store can react.
func DefaultActions(st *store.Store) []core.Item {
	open := func(modal string) core.ActionFunc {
		return func(context.Context) error {
			st.Set(KeyModal, modal)
			return nil
		}
	}
	toggle := func(key string) core.ActionFunc {
		return func(context.Context) error {
			st.Toggle(key)
			return nil
		}
	}

	return []core.Item{
		{
			Title:       "Open Sudo Modal",
			Description: "Open Sudo Modal to re-identify yourself.",
			Action:      open("sudo"),
		},
		{
			Title:       "Open Help Search",
			Description: "Search documentation and FAQs",
			Action:      open("help-search"),
		},
		{
			Title:       "Toggle dark mode",
			Description: "Toggle dark mode (superuser only atm)",
			Action:      toggle(KeyDarkMode),
		},
		{
			Title:             "Toggle Translation Markers",
			Description:       "Toggles translation markers on or off in the application",
			Action:            toggle(KeyTranslationMarkers),
			RequiresSuperuser: true,
		},
		{
			Title:       "Toggle Debug Logging",
			Description: "Toggles verbose logging of every palette service",
			Action: func(context.Context) error {
				log.SetGlobalDebug(!log.GlobalDebug())
				return nil
			},
			RequiresSuperuser: true,
		},
	}
}

// Source matches the static actions.
type Source struct {
	items []core.Item
	ready chan struct{}

	mu    sync.RWMutex
	index *fuzzy.Index[core.Item]
	err   error
}

// New builds the action index in the background. Until it is ready queries
// report loading.
func New(items []core.Item) *Source {
	for i := range items {
		items[i].SourceType = core.SourceCommand
		items[i].ResultType = core.ResultCommand
	}

	s := &Source{items: items, ready: make(chan struct{})}
	go func() {
		defer close(s.ready)
		index, err := sources.NewIndex(items)
		s.mu.Lock()
		s.index, s.err = index, err
		s.mu.Unlock()
		if err != nil {
			log.ForService("actions").Errorf("building index: %v", err)
		}
	}()
	return s
}

func (s *Source) Name() string { return "actions" }

// Ready is closed once the index has been built.
func (s *Source) Ready() <-chan struct{} {
	return s.ready
}

// Items returns the actions in declaration order.
func (s *Source) Items() []core.Item {
	return s.items
}

func (s *Source) Query(ctx context.Context, query string, sc core.Context) core.Report {
	s.mu.RLock()
	index, err := s.index, s.err
	s.mu.RUnlock()

	if err != nil {
		return core.EmptyReport()
	}
	if index == nil {
		return core.LoadingReport()
	}

	matches := index.Search(query)
	results := make([]core.Result, 0, len(matches))
	for _, r := range sources.ToResults(matches, nil) {
		if r.Item.RequiresSuperuser && !sc.Superuser {
			continue
		}
		results = append(results, r)
	}
	return core.Report{Results: results}
}
