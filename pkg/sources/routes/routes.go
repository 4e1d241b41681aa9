// Package routes is the palette source for static console pages.
//
// Pages come from navigation definitions: either fixed lists of groups or
// factories computing groups from the current organization and project.
// The flattened, visible pages are indexed once per organization, project
// and set of access scopes and features, and re-indexed only when one of
// them changes.
package routes

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/rubiojr/cmdk/pkg/core"
	"github.com/rubiojr/cmdk/pkg/fuzzy"
	"github.com/rubiojr/cmdk/pkg/log"
	"github.com/rubiojr/cmdk/pkg/sources"
)

// NavContext is what navigation factories and Show predicates see.
type NavContext struct {
	Organization *core.Organization
	Project      *core.Project
	Access       map[string]bool
	Features     map[string]bool
}

// NewNavContext derives access and feature sets from sc.
func NewNavContext(sc core.Context) NavContext {
	nc := NavContext{
		Organization: sc.Organization,
		Project:      sc.Project,
		Access:       map[string]bool{},
		Features:     map[string]bool{},
	}
	if sc.Organization != nil {
		for _, a := range sc.Organization.Access {
			nc.Access[a] = true
		}
		for _, f := range sc.Organization.Features {
			nc.Features[f] = true
		}
	}
	if sc.Project != nil {
		for _, f := range sc.Project.Features {
			nc.Features[f] = true
		}
	}
	return nc
}

// RouteItem is a single page. Path may contain :orgId / :projectId style
// placeholders. A nil Show always shows the item.
type RouteItem struct {
	Path        string
	Title       string
	Description string
	Show        func(NavContext) bool
}

type Group struct {
	Name  string
	Items []RouteItem
}

// Definition is either a fixed list of groups or a factory.
type Definition struct {
	Groups  []Group
	Factory func(NavContext) []Group
}

func Static(groups ...Group) Definition {
	return Definition{Groups: groups}
}

func Dynamic(fn func(NavContext) []Group) Definition {
	return Definition{Factory: fn}
}

func (d Definition) groups(nc NavContext) []Group {
	if d.Factory != nil {
		return d.Factory(nc)
	}
	return d.Groups
}

// Flatten returns the items of every definition visible in nc.
func Flatten(defs []Definition, nc NavContext) []core.Item {
	var items []core.Item
	for _, def := range defs {
		for _, g := range def.groups(nc) {
			for _, ri := range g.Items {
				if ri.Show != nil && !ri.Show(nc) {
					continue
				}
				items = append(items, core.Item{
					Title:       ri.Title,
					Description: ri.Description,
					SourceType:  core.SourceRoute,
					ResultType:  core.ResultRoute,
					To:          ri.Path,
					Extra:       g.Name,
				})
			}
		}
	}
	return items
}

// Source matches console pages.
type Source struct {
	mu     sync.Mutex
	defs   []Definition
	key    string
	built  bool
	index  *fuzzy.Index[core.Item]
	logger *log.Logger
}

func New(defs ...Definition) *Source {
	return &Source{defs: defs, logger: log.ForService("routes")}
}

func (s *Source) Name() string { return "routes" }

// SetDefinitions replaces the navigation definitions; the next query
// rebuilds the index.
func (s *Source) SetDefinitions(defs []Definition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defs = defs
	s.built = false
}

func (s *Source) Query(ctx context.Context, query string, sc core.Context) core.Report {
	index, err := s.indexFor(sc)
	if err != nil {
		s.logger.Errorf("building index: %v", err)
		return core.EmptyReport()
	}

	params := routeParams(sc)
	results := sources.ToResults(index.Search(query), func(it core.Item) core.Item {
		it.To = core.ReplaceRouterParams(it.To, params)
		return it
	})
	return core.Report{Results: results}
}

// indexKey identifies everything Show predicates and factories can see.
func indexKey(sc core.Context) string {
	var access, features []string
	if sc.Organization != nil {
		access = append(access, sc.Organization.Access...)
		features = append(features, sc.Organization.Features...)
	}
	if sc.Project != nil {
		features = append(features, sc.Project.Features...)
	}
	slices.Sort(access)
	slices.Sort(features)
	return strings.Join([]string{
		sc.OrgSlug(),
		sc.ProjectSlug(),
		strings.Join(slices.Compact(access), ","),
		strings.Join(slices.Compact(features), ","),
	}, "\x00")
}

// indexFor returns the index for sc, rebuilding it when the organization,
// project, access scopes or features changed.
func (s *Source) indexFor(sc core.Context) (*fuzzy.Index[core.Item], error) {
	key := indexKey(sc)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.built && s.key == key {
		return s.index, nil
	}

	items := Flatten(s.defs, NewNavContext(sc))
	index, err := sources.NewIndex(items)
	if err != nil {
		return nil, err
	}
	s.logger.Debugf("indexed %d routes for %s/%s", len(items), sc.OrgSlug(), sc.ProjectSlug())
	s.index, s.key, s.built = index, key, true
	return index, nil
}

// routeParams returns sc.Params completed with the organization and project
// slugs when the caller did not provide them.
func routeParams(sc core.Context) map[string]string {
	params := make(map[string]string, len(sc.Params)+2)
	if slug := sc.OrgSlug(); slug != "" {
		params["orgId"] = slug
	}
	if slug := sc.ProjectSlug(); slug != "" {
		params["projectId"] = slug
	}
	for k, v := range sc.Params {
		params[k] = v
	}
	return params
}
