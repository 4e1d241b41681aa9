package api

import (
	"time"

	"github.com/rubiojr/cmdk/pkg/core"
	"github.com/rubiojr/cmdk/pkg/storage"
)

type ResultResponse struct {
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	SourceType  core.SourceType `json:"source_type"`
	ResultType  core.ResultType `json:"result_type"`
	To          string          `json:"to,omitempty"`
	ConfigURL   string          `json:"config_url,omitempty"`
	HasAction   bool            `json:"has_action"`
	Score       float64         `json:"score"`
	Matches     []core.Match    `json:"matches,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type SearchResponse struct {
	Query         string           `json:"query"`
	Loading       bool             `json:"loading"`
	HasAnyResults bool             `json:"has_any_results"`
	Results       []ResultResponse `json:"results"`
	TotalCount    int              `json:"total_count"`
	Page          int              `json:"page"`
	Limit         int              `json:"limit"`
	TotalPages    int              `json:"total_pages"`
	HasMore       bool             `json:"has_more"`
}

type ListSourcesResponse struct {
	Sources []string `json:"sources"`
	Count   int      `json:"count"`
}

type ActionResponse struct {
	Title             string `json:"title"`
	Description       string `json:"description,omitempty"`
	RequiresSuperuser bool   `json:"requires_superuser"`
}

type ListActionsResponse struct {
	Actions []ActionResponse `json:"actions"`
	Count   int              `json:"count"`
}

type ListReportsResponse struct {
	Reports []storage.ErrorReport `json:"reports"`
	Count   int                   `json:"count"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// Palette websocket messages.

type ClientMessage struct {
	Type  string `json:"type"`
	Query string `json:"query,omitempty"`
	Index int    `json:"index,omitempty"`
}

type ServerMessage struct {
	Type          string           `json:"type"`
	Session       string           `json:"session,omitempty"`
	Sources       []string         `json:"sources,omitempty"`
	Query         string           `json:"query,omitempty"`
	Loading       bool             `json:"loading,omitempty"`
	HasAnyResults bool             `json:"has_any_results,omitempty"`
	Results       []ResultResponse `json:"results,omitempty"`
	Target        string           `json:"target,omitempty"`
	Prefetch      string           `json:"prefetch,omitempty"`
	Message       string           `json:"message,omitempty"`
	Source        string           `json:"source,omitempty"`
	Key           string           `json:"key,omitempty"`
	Value         any              `json:"value,omitempty"`
	Selection     string           `json:"selection,omitempty"`
}

func toResultResponses(results []core.Result) []ResultResponse {
	out := make([]ResultResponse, len(results))
	for i, r := range results {
		out[i] = ResultResponse{
			Title:       r.Item.Title,
			Description: r.Item.Description,
			SourceType:  r.Item.SourceType,
			ResultType:  r.Item.ResultType,
			To:          r.Item.To,
			ConfigURL:   r.Item.ConfigURL,
			HasAction:   r.Item.HasAction(),
			Score:       r.Score,
			Matches:     r.Matches,
		}
	}
	return out
}
