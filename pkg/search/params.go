package search

import (
	"strconv"

	"github.com/rubiojr/cmdk/pkg/core"
)

// SearchParams represents all parameters for a search request.
type SearchParams struct {
	// Query is the search term.
	Query string

	// SourceFilters limits the search to the named sources.
	// If empty, every registered source is queried.
	SourceFilters []string

	// Page is the page number for pagination (1-based).
	// Defaults to 1 if not specified.
	Page int

	// Limit is the maximum number of results per page.
	// Defaults to 30 if not specified.
	Limit int
}

// ParseSearchParams parses HTTP query parameters into a SearchParams struct.
//
// Supported parameters:
//   - q: Search query string
//   - source: Source filter (can be specified multiple times)
//   - page: Page number (positive integer, defaults to 1)
//   - limit: Results per page (positive integer, defaults to 30)
//
// Invalid numbers fall back to the defaults.
func ParseSearchParams(queryParams map[string][]string) SearchParams {
	params := SearchParams{
		Page:  1,
		Limit: 30,
	}

	if q := queryParams["q"]; len(q) > 0 {
		params.Query = q[0]
	}

	if sources := queryParams["source"]; len(sources) > 0 {
		params.SourceFilters = sources
	}

	if limitStr := queryParams["limit"]; len(limitStr) > 0 && limitStr[0] != "" {
		if parsed, err := strconv.Atoi(limitStr[0]); err == nil && parsed > 0 {
			params.Limit = parsed
		}
	}

	if pageStr := queryParams["page"]; len(pageStr) > 0 && pageStr[0] != "" {
		if parsed, err := strconv.Atoi(pageStr[0]); err == nil && parsed > 0 {
			params.Page = parsed
		}
	}

	return params
}

// Page is one page of an aggregated report.
type Page struct {
	Results    []core.Result `json:"results"`
	Loading    bool          `json:"loading"`
	TotalCount int           `json:"total_count"`
	HasMore    bool          `json:"has_more"`
	TotalPages int           `json:"total_pages"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
}

// Paginate slices report. Pages past the end are empty; a loading report
// yields an empty loading page.
func Paginate(report core.AggregatedReport, page, limit int) Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 30
	}

	p := Page{
		Results: []core.Result{},
		Loading: report.Loading,
		Page:    page,
		Limit:   limit,
	}
	if report.Loading {
		p.TotalPages = page
		return p
	}

	total := len(report.Results)
	p.TotalCount = total
	p.TotalPages = max(1, (total+limit-1)/limit)

	start := (page - 1) * limit
	if start >= total {
		return p
	}
	end := min(start+limit, total)
	p.Results = report.Results[start:end]
	p.HasMore = end < total
	return p
}
