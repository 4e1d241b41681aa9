package core

import "testing"

func TestReplaceRouterParams(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		params map[string]string
		want   string
	}{
		{
			name:   "org and project",
			path:   "/settings/:orgId/projects/:projectId/",
			params: map[string]string{"orgId": "acme", "projectId": "web"},
			want:   "/settings/acme/projects/web/",
		},
		{
			name:   "missing param kept",
			path:   "/settings/:orgId/teams/:teamId/",
			params: map[string]string{"orgId": "acme"},
			want:   "/settings/acme/teams/:teamId/",
		},
		{
			name:   "no params",
			path:   "/settings/account/details/",
			params: nil,
			want:   "/settings/account/details/",
		},
		{
			name:   "absolute url untouched",
			path:   "https://docs.example.com/:orgId",
			params: map[string]string{"orgId": "acme"},
			want:   "https://docs.example.com/acme",
		},
		{
			name:   "fragment kept",
			path:   "/settings/:orgId/#name",
			params: map[string]string{"orgId": "acme"},
			want:   "/settings/acme/#name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReplaceRouterParams(tt.path, tt.params); got != tt.want {
				t.Errorf("ReplaceRouterParams(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestReportUsable(t *testing.T) {
	if LoadingReport().Usable() {
		t.Error("loading report must not be usable")
	}
	if (Report{}).Usable() {
		t.Error("report with nil results must not be usable")
	}
	if !EmptyReport().Usable() {
		t.Error("empty settled report should be usable")
	}
	if (Report{Loading: true, Results: []Result{{Score: 0.1}}}).Usable() {
		t.Error("results of a loading report must be ignored")
	}
}
