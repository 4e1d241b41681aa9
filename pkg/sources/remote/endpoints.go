package remote

import (
	"fmt"
	"net/url"
	"regexp"

	"github.com/rubiojr/cmdk/pkg/core"
)

var (
	eventIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)
	shortIDPattern = regexp.MustCompile(`^\w+-\w+$`)
)

// IsEventID reports whether q looks like an event id.
func IsEventID(q string) bool { return eventIDPattern.MatchString(q) }

// IsShortID reports whether q looks like an issue short id such as PROJ-12.
func IsShortID(q string) bool { return shortIDPattern.MatchString(q) }

func isDirect(q string) bool { return IsEventID(q) || IsShortID(q) }

type organization struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type project struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type team struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type member struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type pluginConfig struct {
	ID          string  `json:"id"`
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Enabled     bool    `json:"enabled"`
	Project     project `json:"project"`
}

type integrationProvider struct {
	Key      string `json:"key"`
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	Metadata struct {
		Description string `json:"description"`
	} `json:"metadata"`
}

type integrationProviders struct {
	Providers []integrationProvider `json:"providers"`
}

type sentryApp struct {
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	Overview string `json:"overview"`
}

type docIntegration struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type eventIDLookup struct {
	OrganizationSlug string `json:"organizationSlug"`
	ProjectSlug      string `json:"projectSlug"`
	GroupID          string `json:"groupId"`
	EventID          string `json:"eventId"`
	Event            struct {
		Title string `json:"title"`
	} `json:"event"`
}

type shortIDLookup struct {
	OrganizationSlug string `json:"organizationSlug"`
	ProjectSlug      string `json:"projectSlug"`
	GroupID          string `json:"groupId"`
	ShortID          string `json:"shortId"`
	Group            struct {
		Title   string `json:"title"`
		Culprit string `json:"culprit"`
	} `json:"group"`
}

// endpoint is one indexed lookup: where to fetch and how to turn the
// response into items.
type endpoint struct {
	name  string
	path  func(org string) string
	query func(q string) url.Values
	fetch func(get getFunc, path string, query url.Values, org string) ([]core.Item, error)
}

type getFunc func(path string, query url.Values, out any) error

// list decodes a JSON array of T and maps every element.
func list[T any](toItems func(org string, v T) []core.Item) func(getFunc, string, url.Values, string) ([]core.Item, error) {
	return func(get getFunc, path string, query url.Values, org string) ([]core.Item, error) {
		var vs []T
		if err := get(path, query, &vs); err != nil {
			return nil, err
		}
		var items []core.Item
		for _, v := range vs {
			items = append(items, toItems(org, v)...)
		}
		return items, nil
	}
}

func withQuery(q string) url.Values {
	return url.Values{"query": {q}}
}

func noQuery(string) url.Values { return nil }

var endpoints = []endpoint{
	{
		name:  "organizations",
		path:  func(string) string { return "/organizations/" },
		query: withQuery,
		fetch: list(func(_ string, o organization) []core.Item {
			return []core.Item{{
				Title:       o.Name,
				Description: "Organization Dashboard",
				SourceType:  core.SourceOrganization,
				ResultType:  core.ResultRoute,
				Model:       o,
				To:          fmt.Sprintf("/%s/", o.Slug),
			}}
		}),
	},
	{
		name:  "projects",
		path:  func(org string) string { return fmt.Sprintf("/organizations/%s/projects/", org) },
		query: withQuery,
		fetch: list(func(org string, p project) []core.Item {
			base := core.Item{Title: p.Slug, SourceType: core.SourceProject, Model: p}
			dashboard, settings, alerts := base, base, base

			dashboard.Description = "Project Details"
			dashboard.ResultType = core.ResultRoute
			dashboard.To = fmt.Sprintf("/organizations/%s/projects/%s/?project=%s", org, p.Slug, p.ID)

			settings.Description = "Project Settings"
			settings.ResultType = core.ResultSettings
			settings.To = fmt.Sprintf("/settings/%s/projects/%s/", org, p.Slug)

			alerts.Description = "Project Alerts"
			alerts.ResultType = core.ResultSettings
			alerts.To = fmt.Sprintf("/settings/%s/projects/%s/alerts/", org, p.Slug)

			return []core.Item{dashboard, settings, alerts}
		}),
	},
	{
		name:  "teams",
		path:  func(org string) string { return fmt.Sprintf("/organizations/%s/teams/", org) },
		query: withQuery,
		fetch: list(func(org string, t team) []core.Item {
			return []core.Item{{
				Title:       "#" + t.Slug,
				Description: "Team Settings",
				SourceType:  core.SourceTeam,
				ResultType:  core.ResultSettings,
				Model:       t,
				To:          fmt.Sprintf("/settings/%s/teams/%s/", org, t.Slug),
			}}
		}),
	},
	{
		name:  "members",
		path:  func(org string) string { return fmt.Sprintf("/organizations/%s/members/", org) },
		query: withQuery,
		fetch: list(func(org string, m member) []core.Item {
			return []core.Item{{
				Title:       m.Name,
				Description: m.Email,
				SourceType:  core.SourceMember,
				ResultType:  core.ResultSettings,
				Model:       m,
				To:          fmt.Sprintf("/settings/%s/members/%s/", org, m.ID),
			}}
		}),
	},
	{
		name:  "plugins",
		path:  func(org string) string { return fmt.Sprintf("/organizations/%s/plugins/configs/", org) },
		query: noQuery,
		fetch: list(func(org string, p pluginConfig) []core.Item {
			return []core.Item{{
				Title:       p.Name,
				Description: fmt.Sprintf("%s (%s)", p.Description, p.Project.Slug),
				SourceType:  core.SourcePlugin,
				ResultType:  core.ResultIntegration,
				Model:       p,
				To:          fmt.Sprintf("/settings/%s/projects/%s/plugins/%s/", org, p.Project.Slug, p.ID),
			}}
		}),
	},
	{
		name:  "integrations",
		path:  func(org string) string { return fmt.Sprintf("/organizations/%s/config/integrations/", org) },
		query: noQuery,
		fetch: func(get getFunc, path string, query url.Values, org string) ([]core.Item, error) {
			var resp integrationProviders
			if err := get(path, query, &resp); err != nil {
				return nil, err
			}
			items := make([]core.Item, 0, len(resp.Providers))
			for _, p := range resp.Providers {
				items = append(items, core.Item{
					Title:       p.Name,
					Description: p.Metadata.Description,
					SourceType:  core.SourceIntegration,
					ResultType:  core.ResultIntegration,
					Model:       p,
					To:          fmt.Sprintf("/settings/%s/integrations/%s/", org, p.Slug),
					ConfigURL:   fmt.Sprintf("/organizations/%s/config/integrations/?provider_key=%s", org, url.QueryEscape(p.Key)),
				})
			}
			return items, nil
		},
	},
	{
		name:  "sentry-apps",
		path:  func(string) string { return "/sentry-apps/" },
		query: func(string) url.Values { return url.Values{"status": {"published"}} },
		fetch: list(func(org string, a sentryApp) []core.Item {
			return []core.Item{{
				Title:       a.Name,
				Description: a.Overview,
				SourceType:  core.SourceSentryApp,
				ResultType:  core.ResultSentryApp,
				Model:       a,
				To:          fmt.Sprintf("/settings/%s/sentry-apps/%s/", org, a.Slug),
			}}
		}),
	},
	{
		name:  "doc-integrations",
		path:  func(string) string { return "/doc-integrations/" },
		query: noQuery,
		fetch: list(func(org string, d docIntegration) []core.Item {
			return []core.Item{{
				Title:       d.Name,
				Description: d.Description,
				SourceType:  core.SourceDocIntegration,
				ResultType:  core.ResultDocIntegration,
				Model:       d,
				To:          fmt.Sprintf("/settings/%s/document-integrations/%s/", org, d.Slug),
			}}
		}),
	},
}

func eventIDItem(org string, r eventIDLookup) core.Item {
	title := r.Event.Title
	if title == "" {
		title = r.EventID
	}
	return core.Item{
		Title:       title,
		Description: fmt.Sprintf("Event %s in %s", r.EventID, r.ProjectSlug),
		SourceType:  core.SourceEvent,
		ResultType:  core.ResultEvent,
		Model:       r,
		To:          fmt.Sprintf("/organizations/%s/issues/%s/events/%s/?project=%s", org, r.GroupID, r.EventID, r.ProjectSlug),
	}
}

func shortIDItem(org string, r shortIDLookup) core.Item {
	title := r.Group.Title
	if title == "" {
		title = r.ShortID
	}
	return core.Item{
		Title:       title,
		Description: r.Group.Culprit,
		SourceType:  core.SourceIssue,
		ResultType:  core.ResultIssue,
		Model:       r,
		To:          fmt.Sprintf("/organizations/%s/issues/%s/", org, r.GroupID),
	}
}
