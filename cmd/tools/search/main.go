package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/david/voluntrack/internal/ai"
	"github.com/david/voluntrack/internal/config"
	"github.com/david/voluntrack/internal/ingest"
	"github.com/david/voluntrack/internal/models"
	"github.com/david/voluntrack/internal/seed"
)

// search runs one ingestion batch against the configured model and prints
// what would be shown, without starting the server.
func main() {
	term := flag.String("q", "", "Search term")
	category := flag.String("category", "", "Category filter, e.g. \"Animal Welfare\"")
	location := flag.String("location", "", "Location filter")
	timeout := flag.Duration("timeout", 0, "Generation timeout (defaults to AI_TIMEOUT)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, err := config.NewLogger(cfg.LogLevel, "console")
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}

	data, err := seed.Load("internal/seed/data/seed.yaml")
	if err != nil {
		log.Fatalf("Failed to load bundled data: %v", err)
	}

	q := models.Query{SearchTerm: *term, Category: models.Category(*category), Location: *location}
	if q.Category != "" && !q.Category.Valid() {
		log.Fatalf("Unknown category %q", *category)
	}

	opts := ingest.Options{Enabled: true, Timeout: cfg.AI.Timeout}
	if *timeout > 0 {
		opts.Timeout = *timeout
	}
	orch := ingest.NewOrchestrator(
		ai.NewOllamaClient(cfg.AI.OllamaHost, cfg.AI.OllamaModel),
		ingest.Fallback{Organizations: data.Organizations, Opportunities: data.Opportunities},
		opts, logger)

	log.Printf("Searching %s (%s)...", cfg.AI.OllamaHost, cfg.AI.OllamaModel)
	start := time.Now()
	snap := orch.Refresh(context.Background(), q)
	log.Printf("Batch finished in %s with state %s", time.Since(start).Round(time.Millisecond), snap.State)
	if snap.Error != "" {
		log.Printf("Fell back to bundled data (%s): %s", snap.ErrorKind, snap.Error)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Title", "Organization", "Category", "Time", "Remote"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Title", WidthMax: 40},
		{Name: "Organization", WidthMax: 30},
		{Name: "Remote", Align: text.AlignCenter},
	})
	for _, opp := range snap.Opportunities {
		t.AppendRow(table.Row{opp.ID, opp.Title, opp.Organization.Name, opp.Category, opp.TimeCommitment, opp.RemoteOrOnline})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d opportunities", len(snap.Opportunities)), fmt.Sprintf("%d organizations", len(snap.Organizations))})
	t.Render()
}
