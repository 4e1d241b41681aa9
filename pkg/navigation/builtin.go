package navigation

import (
	"github.com/rubiojr/cmdk/pkg/sources/routes"
)

func hasAccess(scope string) func(routes.NavContext) bool {
	return func(nc routes.NavContext) bool { return nc.Access[scope] }
}

func hasFeature(feature string) func(routes.NavContext) bool {
	return func(nc routes.NavContext) bool { return nc.Features[feature] }
}

// Builtin returns the console's own navigation.
func Builtin() []routes.Definition {
	return []routes.Definition{accountNavigation, organizationNavigation(), projectNavigation()}
}

var accountNavigation = routes.Static(
	routes.Group{
		Name: "Account",
		Items: []routes.RouteItem{
			{Path: "/settings/account/details/", Title: "Account Details", Description: "Change your account details and preferences (e.g. timezone/clock, avatar, language)"},
			{Path: "/settings/account/security/", Title: "Security", Description: "Change your account password and/or two factor authentication"},
			{Path: "/settings/account/notifications/", Title: "Notifications", Description: "Configure what email notifications to receive"},
			{Path: "/settings/account/emails/", Title: "Email Addresses", Description: "Add or remove secondary emails, change your primary email, verify your emails"},
			{Path: "/settings/account/subscriptions/", Title: "Subscriptions", Description: "Change Sentry marketing subscriptions you are subscribed to (GDPR)"},
			{Path: "/settings/account/authorizations/", Title: "Authorized Applications", Description: "Manage third-party applications that have access to your account"},
			{Path: "/settings/account/identities/", Title: "Identities", Description: "Manage your third-party identities that are associated to Sentry"},
			{Path: "/settings/account/close-account/", Title: "Close Account", Description: "Permanently close your account"},
		},
	},
	routes.Group{
		Name: "API",
		Items: []routes.RouteItem{
			{Path: "/settings/account/api/applications/", Title: "Applications", Description: "Add and configure OAuth2 applications"},
			{Path: "/settings/account/api/auth-tokens/", Title: "User Auth Tokens", Description: "Authentication tokens allow you to perform actions against the API on behalf of your account"},
		},
	},
)

func organizationNavigation() routes.Definition {
	return routes.Dynamic(func(nc routes.NavContext) []routes.Group {
		if nc.Organization == nil {
			return nil
		}
		return []routes.Group{
			{
				Name: "Organization",
				Items: []routes.RouteItem{
					{Path: "/settings/:orgId/", Title: "General Settings", Description: "Configure general settings for an organization", Show: hasAccess("org:write")},
					{Path: "/settings/:orgId/projects/", Title: "Projects", Description: "View and manage an organization's projects"},
					{Path: "/settings/:orgId/teams/", Title: "Teams", Description: "Manage an organization's teams"},
					{Path: "/settings/:orgId/members/", Title: "Members", Description: "Manage user membership for an organization"},
					{Path: "/settings/:orgId/security-and-privacy/", Title: "Security & Privacy", Description: "Configure security and privacy settings for an organization", Show: hasAccess("org:write")},
					{Path: "/settings/:orgId/auth/", Title: "Auth", Description: "Configure single sign-on", Show: hasAccess("org:write")},
					{Path: "/settings/:orgId/api-keys/", Title: "API Keys", Show: hasAccess("org:admin")},
					{Path: "/settings/:orgId/audit-log/", Title: "Audit Log", Description: "View the audit log for an organization", Show: hasAccess("org:write")},
					{Path: "/settings/:orgId/rate-limits/", Title: "Rate Limits", Description: "Configure rate limits for all projects in the organization", Show: hasFeature("legacy-rate-limits")},
					{Path: "/settings/:orgId/relay/", Title: "Relay", Description: "Manage relays connected to the organization", Show: hasFeature("relay")},
					{Path: "/settings/:orgId/repos/", Title: "Repositories", Description: "Manage repositories connected to the organization"},
					{Path: "/settings/:orgId/integrations/", Title: "Integrations", Description: "Manage organization-level integrations, including: Slack, Github, Bitbucket, Jira, and Azure DevOps"},
					{Path: "/settings/:orgId/developer-settings/", Title: "Developer Settings", Description: "Manage developer applications"},
				},
			},
			{
				Name: "Usage & Billing",
				Items: []routes.RouteItem{
					{Path: "/settings/:orgId/billing/overview/", Title: "Subscription", Description: "Current plan, usage and on-demand budget", Show: hasAccess("org:billing")},
					{Path: "/settings/:orgId/billing/history/", Title: "Usage History", Show: hasAccess("org:billing")},
					{Path: "/settings/:orgId/billing/receipts/", Title: "Receipts", Show: hasAccess("org:billing")},
				},
			},
		}
	})
}

func projectNavigation() routes.Definition {
	return routes.Dynamic(func(nc routes.NavContext) []routes.Group {
		if nc.Organization == nil || nc.Project == nil {
			return nil
		}
		return []routes.Group{
			{
				Name: "Project",
				Items: []routes.RouteItem{
					{Path: "/settings/:orgId/projects/:projectId/", Title: "General Settings", Description: "Configure general settings for a project"},
					{Path: "/settings/:orgId/projects/:projectId/teams/", Title: "Project Teams", Description: "Manage team access for a project"},
					{Path: "/settings/:orgId/projects/:projectId/alerts/", Title: "Alert Settings", Description: "Project alert settings"},
					{Path: "/settings/:orgId/projects/:projectId/tags/", Title: "Tags", Description: "View and manage a  project's tags"},
					{Path: "/settings/:orgId/projects/:projectId/environments/", Title: "Environments", Description: "Manage environments in a project"},
					{Path: "/settings/:orgId/projects/:projectId/ownership/", Title: "Ownership Rules", Description: "Manage ownership rules for a project"},
					{Path: "/settings/:orgId/projects/:projectId/data-forwarding/", Title: "Data Forwarding", Show: hasAccess("project:write")},
				},
			},
			{
				Name: "Processing",
				Items: []routes.RouteItem{
					{Path: "/settings/:orgId/projects/:projectId/filters/", Title: "Inbound Filters", Description: "Configure a project's inbound filters (e.g. browsers, messages)"},
					{Path: "/settings/:orgId/projects/:projectId/security-and-privacy/", Title: "Security & Privacy", Description: "Configure security and privacy settings for a project"},
					{Path: "/settings/:orgId/projects/:projectId/issue-grouping/", Title: "Issue Grouping"},
					{Path: "/settings/:orgId/projects/:projectId/debug-symbols/", Title: "Debug Files", Show: hasAccess("project:write")},
					{Path: "/settings/:orgId/projects/:projectId/replays/", Title: "Replays", Show: hasFeature("session-replay")},
				},
			},
			{
				Name: "SDK Setup",
				Items: []routes.RouteItem{
					{Path: "/settings/:orgId/projects/:projectId/install/", Title: "Instrumentation"},
					{Path: "/settings/:orgId/projects/:projectId/keys/", Title: "Client Keys (DSN)", Description: "View and manage the project's client keys (DSN)"},
					{Path: "/settings/:orgId/projects/:projectId/release-tracking/", Title: "Releases"},
					{Path: "/settings/:orgId/projects/:projectId/security-headers/", Title: "Security Headers"},
				},
			},
		}
	})
}
