package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/rodaine/table"
	"github.com/urfave/cli/v2"

	"github.com/hanmaru/kordict/internal/app"
	"github.com/hanmaru/kordict/internal/app/ingest"
	"github.com/hanmaru/kordict/internal/config"
)

// ingestTimeout bounds a full three-source run; the largest export takes
// well under an hour on commodity disks.
const ingestTimeout = 2 * time.Hour

var ingestCommand = &cli.Command{
	Name:  "ingest",
	Usage: "convert the XML dictionary exports into sharded JSON entry files",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to ingest YAML config `FILE`",
		},
		&cli.StringFlag{
			Name:  "source",
			Usage: "comma-separated sources to run: krdict,stdict,opendict (default: all)",
		},
		&cli.StringFlag{
			Name:  "out-dir",
			Usage: "override the shard output `DIR`",
		},
	},
	Action: runIngest,
}

func runIngest(c *cli.Context) error {
	appCfg, err := config.Load()
	if err != nil {
		return cli.Exit(fmt.Sprintf("load app config: %v", err), 1)
	}
	logger := app.NewLogger(appCfg.Log)

	ingestCfg, err := ingest.LoadConfig(c.String("config"))
	if err != nil {
		logger.Error("load ingest config", slog.String("error", err.Error()))
		return cli.Exit("", 1)
	}

	// CLI flags override config.
	if dir := c.String("out-dir"); dir != "" {
		ingestCfg.OutDir = dir
	}

	var sources []string
	if s := c.String("source"); s != "" {
		sources = strings.Split(s, ",")
		for i := range sources {
			sources[i] = strings.TrimSpace(sources[i])
		}
	}

	ctx, cancel := context.WithTimeout(c.Context, ingestTimeout)
	defer cancel()

	pipeline := ingest.NewPipeline(logger, *ingestCfg)
	if err := pipeline.Run(ctx, sources); err != nil {
		logger.Error("ingest failed", slog.String("error", err.Error()))
		return cli.Exit("", 1)
	}

	printResults(c.App.Writer, pipeline.Results())

	if pipeline.HasErrors() {
		logger.Warn("ingest completed with errors")
		return cli.Exit("", 1)
	}
	return nil
}

// printResults renders the per-source outcome table.
func printResults(w io.Writer, results map[string]ingest.SourceResult) {
	sources := make([]string, 0, len(results))
	for s := range results {
		sources = append(sources, s)
	}
	sort.Strings(sources)

	tbl := table.New("SOURCE", "FILES", "ENTRIES", "DROPPED", "DURATION", "STATUS").WithWriter(w)
	for _, s := range sources {
		r := results[s]
		status := "ok"
		if r.Err != nil {
			status = r.Err.Error()
		}
		tbl.AddRow(s, r.Files, r.Entries, r.Dropped, r.Duration.Round(time.Millisecond), status)
	}
	tbl.Print()
}
