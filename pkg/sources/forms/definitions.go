package forms

import (
	"sort"
	"sync"
)

// Field is a single settings form field. Label and Help are usually strings;
// anything else (for instance a render function) is indexed as empty text.
type Field struct {
	Name  string
	Label any
	Help  any
}

type FormGroup struct {
	Title  string
	Fields []Field
}

// FormDefinition describes the fields of the form rendered at Route. Fields
// are either listed in groups or keyed by name.
type FormDefinition struct {
	Route      string
	Fields     map[string]Field
	FormGroups []FormGroup
}

var (
	registryMu  sync.Mutex
	definitions []FormDefinition
)

// Register adds def to the definitions flattened by every FieldMap created
// with Registered. Form modules call it from init.
func Register(def FormDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()
	definitions = append(definitions, def)
}

// Registered returns a copy of the registered definitions.
func Registered() []FormDefinition {
	registryMu.Lock()
	defer registryMu.Unlock()
	return append([]FormDefinition(nil), definitions...)
}

// fields returns the definition's fields in a stable order: grouped fields
// first, then named fields sorted by name.
func (d FormDefinition) fields() []Field {
	var out []Field
	for _, g := range d.FormGroups {
		out = append(out, g.Fields...)
	}

	names := make([]string, 0, len(d.Fields))
	for name := range d.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f := d.Fields[name]
		if f.Name == "" {
			f.Name = name
		}
		out = append(out, f)
	}
	return out
}

func init() {
	Register(FormDefinition{
		Route: "/settings/account/details/",
		FormGroups: []FormGroup{
			{Title: "Account Details", Fields: []Field{
				{Name: "name", Label: "Name", Help: "Your full name"},
				{Name: "username", Label: "Username"},
			}},
		},
	})
	Register(FormDefinition{
		Route: "/settings/account/details/",
		FormGroups: []FormGroup{
			{Title: "Preferences", Fields: []Field{
				{Name: "theme", Label: "Theme", Help: "Select your theme preference. It can be synced to your system's theme, always light mode, or always dark mode."},
				{Name: "language", Label: "Language"},
				{Name: "timezone", Label: "Timezone"},
				{Name: "clock24Hours", Label: "Use a 24-hour clock"},
				{Name: "stacktraceOrder", Label: "Stack Trace Order", Help: "Choose the default ordering of frames in stack traces"},
			}},
		},
	})
	Register(FormDefinition{
		Route: "/settings/:orgId/",
		FormGroups: []FormGroup{
			{Title: "General", Fields: []Field{
				{Name: "slug", Label: "Organization Slug", Help: "A unique ID used to identify this organization"},
				{Name: "name", Label: "Display Name", Help: "A human-friendly name for the organization"},
				{Name: "isEarlyAdopter", Label: "Early Adopter", Help: "Opt-in to new features before they're released to the public"},
			}},
			{Title: "Membership", Fields: []Field{
				{Name: "defaultRole", Label: "Default Role", Help: "The default role new members will receive"},
				{Name: "openMembership", Label: "Open Membership", Help: "Allow organization members to freely join any team"},
				{Name: "allowJoinRequests", Label: "Let Members Request to Join"},
			}},
		},
	})
	Register(FormDefinition{
		Route: "/settings/:orgId/security-and-privacy/",
		FormGroups: []FormGroup{
			{Title: "Security & Privacy", Fields: []Field{
				{Name: "require2FA", Label: "Require Two-Factor Authentication", Help: "Require and enforce two-factor authentication for all members"},
				{Name: "allowSharedIssues", Label: "Allow Shared Issues", Help: "Enable sharing of limited details on issues to anonymous users"},
				{Name: "enhancedPrivacy", Label: "Enhanced Privacy", Help: "Enable enhanced privacy controls to limit personally identifiable information (PII) as well as source code in things like notifications"},
				{Name: "scrapeJavaScript", Label: "Allow JavaScript Source Fetching", Help: "Allow Sentry to scrape missing JavaScript source context when possible"},
				{Name: "dataScrubber", Label: "Require Data Scrubber", Help: "Require server-side data scrubbing be enabled for all projects"},
				{Name: "sensitiveFields", Label: "Global Sensitive Fields"},
				{Name: "safeFields", Label: "Global Safe Fields"},
			}},
		},
	})
	Register(FormDefinition{
		Route: "/settings/:orgId/projects/:projectId/",
		FormGroups: []FormGroup{
			{Title: "Project Details", Fields: []Field{
				{Name: "slug", Label: "Name", Help: "A unique ID used to identify this project"},
				{Name: "platform", Label: "Platform"},
			}},
			{Title: "Email", Fields: []Field{
				{Name: "subjectTemplate", Label: "Subject Template", Help: "The email subject to use (excluding the prefix) for individual alerts"},
			}},
			{Title: "Event Settings", Fields: []Field{
				{Name: "resolveAge", Label: "Auto Resolve", Help: "Automatically resolve an issue if it hasn't been seen for this amount of time"},
			}},
		},
	})
	Register(FormDefinition{
		Route: "/settings/:orgId/projects/:projectId/alerts/",
		Fields: map[string]Field{
			"digestsMinDelay": {Label: "Minimum delivery interval", Help: "Notifications will be delivered at most this often."},
			"digestsMaxDelay": {Label: "Maximum delivery interval", Help: "Notifications will be delivered at least this often."},
		},
	})
}
