package core

import (
	"strings"
)

// ReplaceRouterParams resolves :name placeholders in a route template using
// params. Placeholders without a value are left as-is so callers can spot
// them.
//
//	ReplaceRouterParams("/settings/:orgId/projects/:projectId/",
//		map[string]string{"orgId": "acme", "projectId": "web"})
//	// "/settings/acme/projects/web/"
func ReplaceRouterParams(path string, params map[string]string) string {
	if len(params) == 0 || !strings.Contains(path, ":") {
		return path
	}

	var b strings.Builder
	b.Grow(len(path))
	for i := 0; i < len(path); {
		if path[i] != ':' {
			b.WriteByte(path[i])
			i++
			continue
		}
		j := i + 1
		for j < len(path) && isParamChar(path[j]) {
			j++
		}
		name := path[i+1 : j]
		if value, ok := params[name]; ok && name != "" {
			b.WriteString(value)
		} else {
			b.WriteString(path[i:j])
		}
		i = j
	}
	return b.String()
}

func isParamChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
