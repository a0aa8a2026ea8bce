package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/david/voluntrack/internal/auth"
	"github.com/david/voluntrack/internal/config"
	"github.com/david/voluntrack/internal/db"
	"github.com/david/voluntrack/internal/hours"
	"github.com/david/voluntrack/internal/views"
)

// impact_report prints the community dashboard figures from the configured store.
func main() {
	limit := flag.Int("recent", 10, "Number of recent logs to list")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, err := config.NewLogger("warn", "console")
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}

	ctx := context.Background()
	kv, closeKV, err := db.OpenKV(ctx, cfg.Storage, cfg.DatabaseURL, logger)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer closeKV()

	svc := hours.NewService(kv, nil, auth.NewService(kv, logger), nil, logger)
	logs, err := svc.All(ctx)
	if err != nil {
		log.Fatalf("Failed to read logged hours: %v", err)
	}
	impact := views.BuildCollectiveImpact(logs, cfg.CommunityHourGoal)

	summary := table.NewWriter()
	summary.SetOutputMirror(os.Stdout)
	summary.SetTitle("Community Impact")
	summary.AppendRows([]table.Row{
		{"Total hours", impact.TotalHours},
		{"Volunteers", impact.Volunteers},
		{"Opportunities", impact.Opportunities},
		{"Activities", impact.Activities},
		{"Goal", impact.GoalHours},
		{"Progress %", int(impact.GoalProgress)},
	})
	summary.Render()

	byCategory := table.NewWriter()
	byCategory.SetOutputMirror(os.Stdout)
	byCategory.SetTitle("Hours by Category")
	byCategory.AppendHeader(table.Row{"Category", "Hours"})
	for _, c := range impact.ByCategory {
		byCategory.AppendRow(table.Row{c.Category, c.Hours})
	}
	byCategory.Render()

	byOrg := table.NewWriter()
	byOrg.SetOutputMirror(os.Stdout)
	byOrg.SetTitle("Top Organizations")
	byOrg.AppendHeader(table.Row{"#", "Organization", "Hours"})
	for i, o := range impact.TopOrganizations {
		byOrg.AppendRow(table.Row{i + 1, o.Name, o.Hours})
	}
	byOrg.Render()

	recent := table.NewWriter()
	recent.SetOutputMirror(os.Stdout)
	recent.SetTitle("Recent Activity")
	recent.AppendHeader(table.Row{"Date", "User", "Opportunity", "Hours", "Status"})
	for _, l := range views.RecentActivity(logs, *limit) {
		recent.AppendRow(table.Row{l.Date, l.UserID, l.OpportunityTitle, l.Hours, l.Status})
	}
	recent.Render()
}
