// Package palette drives one open command palette: it owns the query and
// the caller's context, asks the search service for results on every
// keystroke and dispatches the user's selection.
package palette

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rubiojr/cmdk/pkg/core"
	"github.com/rubiojr/cmdk/pkg/log"
)

// ErrPopupBlocked is returned by an Opener that could not open a window.
var ErrPopupBlocked = errors.New("popup blocked")

// Searcher runs a query. *search.Service satisfies it.
type Searcher interface {
	Search(ctx context.Context, query string, sc core.Context, names ...string) core.AggregatedReport
}

// Navigator performs in-app navigation. prefetchURL, when not empty, should
// be requested before the destination renders.
type Navigator interface {
	Navigate(ctx context.Context, path, prefetchURL string) error
}

// Opener opens external links.
type Opener interface {
	Open(ctx context.Context, url string) error
}

// Notifier shows user-facing errors.
type Notifier interface {
	ShowError(message string)
}

// Analytics records settled query changes.
type Analytics interface {
	QueryChanged(sessionID, query string, results int)
}

const (
	DefaultMinQueryLength    = 1
	DefaultMaxResults        = 10
	DefaultAnalyticsDebounce = 500 * time.Millisecond
)

// Options tunes a session. Zero fields take the defaults.
type Options struct {
	MinQueryLength    int
	MaxResults        int
	AnalyticsDebounce time.Duration
	// Sources restricts the session to the named sources.
	Sources []string
}

func (o Options) withDefaults() Options {
	if o.MinQueryLength <= 0 {
		o.MinQueryLength = DefaultMinQueryLength
	}
	if o.MaxResults <= 0 {
		o.MaxResults = DefaultMaxResults
	}
	if o.AnalyticsDebounce <= 0 {
		o.AnalyticsDebounce = DefaultAnalyticsDebounce
	}
	return o
}

// Session is one palette instance. It is safe for concurrent use; a new
// query supersedes the one in flight.
type Session struct {
	id       string
	searcher Searcher
	opts     Options

	Navigator Navigator
	Opener    Opener
	Notifier  Notifier
	Analytics Analytics

	mu             sync.Mutex
	query          string
	sc             core.Context
	cancel         context.CancelFunc
	view           []core.Result
	analyticsTimer *time.Timer
	logger         *log.Logger
}

func NewSession(searcher Searcher, sc core.Context, opts Options) *Session {
	id := uuid.NewString()
	return &Session{
		id:       id,
		searcher: searcher,
		opts:     opts.withDefaults(),
		sc:       sc,
		logger:   log.ForService("palette").With("session", id[:8]),
	}
}

func (s *Session) ID() string { return s.id }

// Query returns the latest query.
func (s *Session) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Context returns the caller context used for searches.
func (s *Session) Context() core.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sc
}

// SetContext replaces the caller context for subsequent queries.
func (s *Session) SetContext(sc core.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sc = sc
}

// SetQuery records q and returns its merged report. Queries shorter than
// MinQueryLength settle empty without searching. Starting a query cancels
// the previous one, which then returns a loading report.
func (s *Session) SetQuery(ctx context.Context, q string) core.AggregatedReport {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.query = q
	sc := s.sc
	sc.Session = s.id

	if len([]rune(q)) < s.opts.MinQueryLength {
		s.view = nil
		s.stopAnalyticsLocked()
		s.mu.Unlock()
		return core.AggregatedReport{Results: []core.Result{}}
	}

	qctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	report := s.searcher.Search(qctx, q, sc, s.opts.Sources...)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.query != q || qctx.Err() != nil {
		return core.AggregatedReport{Loading: true, Results: []core.Result{}}
	}
	s.cancel = nil
	if !report.Loading {
		s.view = s.viewLocked(report)
		s.scheduleAnalyticsLocked(q, len(report.Results))
	}
	return report
}

// View returns at most MaxResults results of report.
func (s *Session) View(report core.AggregatedReport) []core.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(report)
}

func (s *Session) viewLocked(report core.AggregatedReport) []core.Result {
	if report.Loading {
		return []core.Result{}
	}
	if len(report.Results) > s.opts.MaxResults {
		return report.Results[:s.opts.MaxResults]
	}
	return report.Results
}

// Visible returns the view of the last settled query.
func (s *Session) Visible() []core.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Result(nil), s.view...)
}

func (s *Session) scheduleAnalyticsLocked(q string, n int) {
	s.stopAnalyticsLocked()
	if s.Analytics == nil {
		return
	}
	analytics, id := s.Analytics, s.id
	s.analyticsTimer = time.AfterFunc(s.opts.AnalyticsDebounce, func() {
		analytics.QueryChanged(id, q, n)
	})
}

func (s *Session) stopAnalyticsLocked() {
	if s.analyticsTimer != nil {
		s.analyticsTimer.Stop()
		s.analyticsTimer = nil
	}
}

// SelectionKind tells what a selection did.
type SelectionKind string

const (
	SelectedAction   SelectionKind = "action"
	SelectedNothing  SelectionKind = "none"
	SelectedExternal SelectionKind = "external"
	SelectedBlocked  SelectionKind = "blocked"
	SelectedNavigate SelectionKind = "navigate"
)

type Selection struct {
	Kind   SelectionKind `json:"kind"`
	Target string        `json:"target,omitempty"`
}

// Select dispatches item. In order: an item with an action runs it; an
// item without a destination does nothing; http(s) destinations are opened
// externally; anything else is resolved against the context parameters and
// navigated to.
func (s *Session) Select(ctx context.Context, item core.Item) (Selection, error) {
	if item.HasAction() {
		if err := item.Action(ctx); err != nil {
			return Selection{Kind: SelectedAction}, fmt.Errorf("running %q: %w", item.Title, err)
		}
		s.logger.Debugf("ran action %q", item.Title)
		return Selection{Kind: SelectedAction}, nil
	}

	if item.To == "" {
		return Selection{Kind: SelectedNothing}, nil
	}

	if strings.HasPrefix(item.To, "http") {
		if s.Opener == nil {
			return Selection{}, errors.New("no opener configured")
		}
		err := s.Opener.Open(ctx, item.To)
		switch {
		case errors.Is(err, ErrPopupBlocked):
			if s.Notifier != nil {
				s.Notifier.ShowError("Unable to open link, please allow popups for this site")
			}
			return Selection{Kind: SelectedBlocked, Target: item.To}, nil
		case err != nil:
			return Selection{}, fmt.Errorf("opening %s: %w", item.To, err)
		}
		return Selection{Kind: SelectedExternal, Target: item.To}, nil
	}

	if s.Navigator == nil {
		return Selection{}, errors.New("no navigator configured")
	}
	target := core.ReplaceRouterParams(item.To, s.Context().Params)
	if err := s.Navigator.Navigate(ctx, target, item.ConfigURL); err != nil {
		return Selection{}, fmt.Errorf("navigating to %s: %w", target, err)
	}
	return Selection{Kind: SelectedNavigate, Target: target}, nil
}

// SelectIndex selects the i-th visible result.
func (s *Session) SelectIndex(ctx context.Context, i int) (Selection, error) {
	visible := s.Visible()
	if i < 0 || i >= len(visible) {
		return Selection{}, fmt.Errorf("no result at index %d", i)
	}
	return s.Select(ctx, visible[i].Item)
}

// Close cancels the query in flight and drops pending analytics.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.stopAnalyticsLocked()
}
