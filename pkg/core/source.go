package core

import (
	"context"
)

// Organization is the organization the palette is operating in.
type Organization struct {
	ID       string   `json:"id" toml:"id"`
	Slug     string   `json:"slug" toml:"slug"`
	Name     string   `json:"name" toml:"name"`
	Access   []string `json:"access,omitempty" toml:"access"`
	Features []string `json:"features,omitempty" toml:"features"`
}

// Project is the currently selected project, if any.
type Project struct {
	ID       string   `json:"id" toml:"id"`
	Slug     string   `json:"slug" toml:"slug"`
	Name     string   `json:"name" toml:"name"`
	Features []string `json:"features,omitempty" toml:"features"`
}

// Context carries everything a source needs to know about where the user
// is. It is passed by value to every source on every query.
type Context struct {
	// Params are the current route parameters (orgId, projectId, ...).
	Params       map[string]string
	Organization *Organization
	Project      *Project
	// Superuser unlocks actions that require elevated privileges.
	Superuser bool
	// Session identifies the palette session issuing the query. Sources
	// that keep per-caller state key it by Session; empty means an
	// anonymous one-shot caller.
	Session string
}

// OrgSlug returns the organization slug or an empty string.
func (c Context) OrgSlug() string {
	if c.Organization == nil {
		return ""
	}
	return c.Organization.Slug
}

// ProjectSlug returns the project slug or an empty string.
func (c Context) ProjectSlug() string {
	if c.Project == nil {
		return ""
	}
	return c.Project.Slug
}

// Report is a single source's answer to a single query.
//
// While Loading is true, Results must be ignored whatever its value. A nil
// Results slice is also treated as loading by the aggregator.
type Report struct {
	Loading bool
	Results []Result
}

// LoadingReport is returned by sources that cannot answer yet.
func LoadingReport() Report {
	return Report{Loading: true}
}

// EmptyReport is a settled report without matches.
func EmptyReport() Report {
	return Report{Results: []Result{}}
}

// Usable reports whether the aggregator may consume the results.
func (r Report) Usable() bool {
	return !r.Loading && r.Results != nil
}

// AggregatedReport is the merged answer of every source for one query.
type AggregatedReport struct {
	Loading       bool     `json:"loading"`
	Results       []Result `json:"results"`
	HasAnyResults bool     `json:"has_any_results"`
}

// Source contributes one category of results to the palette.
//
// Implementations must never panic or block past ctx cancellation. Errors
// are handled inside the source and surface as an empty contribution.
//
// Example implementation pattern:
//
//	type MySource struct {
//		index *fuzzy.Index[core.Item]
//	}
//
//	func (s *MySource) Name() string { return "mine" }
//	func (s *MySource) Query(ctx context.Context, q string, sc core.Context) core.Report {
//		if s.index == nil {
//			return core.LoadingReport()
//		}
//		return core.Report{Results: toResults(s.index.Search(q))}
//	}
type Source interface {
	// Name returns the unique instance name of the source.
	Name() string

	// Query answers a query. Cancelling ctx supersedes the query; the
	// source then returns a loading report and abandons any pending I/O.
	Query(ctx context.Context, query string, sc Context) Report
}
