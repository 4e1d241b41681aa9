package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rubiojr/cmdk/pkg/core"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	matchStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("33"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	noDataStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

var titleCaser = cases.Title(language.English)

// highlight renders the matched character ranges of value in bold.
func highlight(value string, indices [][2]int) string {
	if len(indices) == 0 {
		return value
	}
	runes := []rune(value)
	var b strings.Builder
	pos := 0
	for _, span := range indices {
		start, end := span[0], span[1]
		if start < pos || end >= len(runes) || start > end {
			continue
		}
		b.WriteString(string(runes[pos:start]))
		b.WriteString(matchStyle.Render(string(runes[start : end+1])))
		pos = end + 1
	}
	b.WriteString(string(runes[pos:]))
	return b.String()
}

func titleMatch(r core.Result) [][2]int {
	for _, m := range r.Matches {
		if m.Key == "title" && m.Value == r.Item.Title {
			return m.Indices
		}
	}
	return nil
}

// renderResults formats the visible results of a query, one per line.
func renderResults(query string, report core.AggregatedReport, visible []core.Result) string {
	var out strings.Builder
	out.WriteString(titleStyle.Render(fmt.Sprintf("Results for %q", query)))
	out.WriteString("\n\n")

	if report.Loading {
		out.WriteString(noDataStyle.Render("Still loading, try again"))
		out.WriteString("\n")
		return out.String()
	}
	if len(visible) == 0 {
		out.WriteString(noDataStyle.Render("No results found"))
		out.WriteString("\n")
		return out.String()
	}

	for i, r := range visible {
		kind := headerStyle.Render(titleCaser.String(string(r.Item.SourceType)))
		fmt.Fprintf(&out, "%2d. %s %s\n", i, kind, highlight(r.Item.Title, titleMatch(r)))

		meta := []string{fmt.Sprintf("score %.3f", r.Score)}
		if r.Item.To != "" {
			meta = append(meta, r.Item.To)
		}
		if r.Item.HasAction() {
			meta = append(meta, "action")
		}
		if r.Item.Description != "" {
			meta = append(meta, r.Item.Description)
		}
		out.WriteString("    " + metaStyle.Render(strings.Join(meta, " · ")) + "\n")
	}
	return out.String()
}

// formatTime formats a time relative to now or as an absolute date
func formatTime(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(diff.Hours()/24))
	}
	return t.Format("Jan 2, 2006")
}
