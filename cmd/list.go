package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/rubiojr/cmdk/pkg/sources/forms"
)

// ActionsCommand lists the palette commands
func ActionsCommand() *cli.Command {
	return &cli.Command{
		Name:  "actions",
		Usage: "List palette commands",
		Action: func(ctx context.Context, c *cli.Command) error {
			return listActions(c.String("config"))
		},
	}
}

func listActions(configPath string) error {
	p, err := newPipeline(configPath)
	if err != nil {
		return err
	}
	defer p.Close()

	fmt.Println(titleStyle.Render("Commands"))
	for _, item := range p.actions.Items() {
		name := item.Title
		if item.RequiresSuperuser {
			name += metaStyle.Render(" (superuser)")
		}
		fmt.Printf("  %s\n", headerStyle.Render(name))
		if item.Description != "" {
			fmt.Printf("    %s\n", metaStyle.Render(item.Description))
		}
	}
	return nil
}

// FieldsCommand lists the searchable settings fields
func FieldsCommand() *cli.Command {
	return &cli.Command{
		Name:  "fields",
		Usage: "List searchable settings fields",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "route",
				Usage: "Only show fields of routes containing this text",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return listFields(c.String("config"), c.String("route"))
		},
	}
}

func listFields(configPath, route string) error {
	p, err := newPipeline(configPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close pipeline: %v\n", err)
		}
	}()

	p.fields.Load()
	byRoute := make(map[string][]forms.FieldItem)
	var order []string
	for _, f := range p.fields.Fields() {
		if route != "" && !strings.Contains(f.Route, route) {
			continue
		}
		if _, ok := byRoute[f.Route]; !ok {
			order = append(order, f.Route)
		}
		byRoute[f.Route] = append(byRoute[f.Route], f)
	}

	if len(order) == 0 {
		fmt.Println(noDataStyle.Render("No fields found"))
		return nil
	}

	total := 0
	for _, r := range order {
		fmt.Println(titleStyle.Render(r))
		for _, f := range byRoute[r] {
			label := f.Title
			if label == "" {
				label = f.Name
			}
			fmt.Printf("  %s %s\n", headerStyle.Render(label), metaStyle.Render("#"+f.Name))
			if f.Description != "" {
				fmt.Printf("    %s\n", metaStyle.Render(f.Description))
			}
			total++
		}
		fmt.Println()
	}
	fmt.Printf("Total: %s fields across %d forms\n", formatNumber(total), len(order))
	return nil
}

// ReportsCommand lists recently recorded errors
func ReportsCommand() *cli.Command {
	return &cli.Command{
		Name:  "reports",
		Usage: "List recent error reports",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of reports",
				Value: 20,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return listReports(c.String("config"), int(c.Int("limit")))
		},
	}
}

func listReports(configPath string, limit int) error {
	p, err := newPipeline(configPath)
	if err != nil {
		return err
	}
	defer p.Close()

	reports, err := p.db.RecentReports(limit)
	if err != nil {
		return fmt.Errorf("listing reports: %w", err)
	}
	if len(reports) == 0 {
		fmt.Println(noDataStyle.Render("No error reports"))
		return nil
	}
	for _, r := range reports {
		fmt.Printf("%s %s\n", headerStyle.Render(r.Message), metaStyle.Render(formatTime(r.CreatedAt)))
		for k, v := range r.Context {
			fmt.Printf("    %s=%s\n", k, v)
		}
	}
	return nil
}

// formatNumber formats a number with K/M suffixes for readability
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	} else if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}
