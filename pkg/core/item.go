package core

import (
	"context"
)

// SourceType identifies where a searchable item came from.
type SourceType string

const (
	SourceOrganization   SourceType = "organization"
	SourceMember         SourceType = "member"
	SourceProject        SourceType = "project"
	SourceTeam           SourceType = "team"
	SourcePlugin         SourceType = "plugin"
	SourceIntegration    SourceType = "integration"
	SourceSentryApp      SourceType = "sentryApp"
	SourceDocIntegration SourceType = "docIntegration"
	SourceIssue          SourceType = "issue"
	SourceEvent          SourceType = "event"
	SourceField          SourceType = "field"
	SourceRoute          SourceType = "route"
	SourceCommand        SourceType = "command"
)

// ResultType drives icon selection in clients. It plays no part in matching.
type ResultType string

const (
	ResultSettings       ResultType = "settings"
	ResultField          ResultType = "field"
	ResultRoute          ResultType = "route"
	ResultIntegration    ResultType = "integration"
	ResultSentryApp      ResultType = "sentryApp"
	ResultDocIntegration ResultType = "docIntegration"
	ResultIssue          ResultType = "issue"
	ResultEvent          ResultType = "event"
	ResultCommand        ResultType = "command"
)

// ActionFunc is invoked instead of navigating when an item is selected.
type ActionFunc func(ctx context.Context) error

// Item is a normalized record exposed by a source to the fuzzy index and,
// once matched, to the palette.
//
// An item either navigates (To) or runs a callback (Action). When both are
// set the action wins.
type Item struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	SourceType  SourceType `json:"source_type"`
	ResultType  ResultType `json:"result_type"`

	// Model is the originating domain entity, passed through untouched.
	Model any `json:"model,omitempty"`

	// To may still contain :param placeholders, see ReplaceRouterParams.
	To        string     `json:"to,omitempty"`
	Action    ActionFunc `json:"-"`
	ConfigURL string     `json:"config_url,omitempty"`
	Extra     string     `json:"extra,omitempty"`

	RequiresSuperuser bool `json:"-"`
}

// HasAction reports whether selecting the item runs a callback.
func (i Item) HasAction() bool {
	return i.Action != nil
}

// Match records which characters of an indexed field matched the query.
// Indices are inclusive [start, end] rune offsets into Value, ascending and
// non-overlapping.
type Match struct {
	Key     string   `json:"key"`
	Value   string   `json:"value"`
	Indices [][2]int `json:"indices"`
}

// Result is a matched item with its relevance score. Lower scores are better;
// 0 is an exact match.
type Result struct {
	Item     Item    `json:"item"`
	Score    float64 `json:"score"`
	RefIndex int     `json:"ref_index"`
	Matches  []Match `json:"matches,omitempty"`
}
