// Package search merges the reports of every palette source into one
// ranked answer.
//
// # Overview
//
// A query fans out to every palette source at once. Each source answers
// with a report that is either loading or settled. The service waits for
// all of them and merges:
//
//   - any loading source makes the merged report loading, with no results
//   - settled results are concatenated in source registration order
//   - the concatenation is stably sorted by ascending score
//
// Scores are compared as returned by each source. Sources that score on
// different scales (for instance direct API hits with a fixed score of 1)
// are not normalized against the fuzzy sources.
//
// # Usage
//
//	registry := core.NewRegistry()
//	registry.Register(actions.New(actions.DefaultActions(st)))
//	registry.Register(routes.New(navigation.Builtin()...))
//
//	service := search.NewService(registry, rep)
//	report := service.Search(ctx, "members", sc)
//
// Restricting a search to some sources:
//
//	report := service.Search(ctx, "members", sc, "routes", "forms")
//
// HTTP handlers parse their parameters with ParseSearchParams and slice the
// merged report with Paginate:
//
//	params := search.ParseSearchParams(r.URL.Query())
//	report := service.Search(ctx, params.Query, sc, params.SourceFilters...)
//	page := search.Paginate(report, params.Page, params.Limit)
package search
