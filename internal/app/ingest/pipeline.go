// Package ingest orchestrates the streaming conversion of the three XML
// dictionary exports into unified, first-character-sharded JSON entry
// files plus an attribute vocabulary summary.
package ingest

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/hanmaru/kordict/internal/app/ingest/item"
	"github.com/hanmaru/kordict/internal/app/ingest/lmf"
	"github.com/hanmaru/kordict/internal/app/ingest/shard"
	"github.com/hanmaru/kordict/internal/app/ingest/summary"
	"github.com/hanmaru/kordict/internal/app/ingest/xmlstream"
	"github.com/hanmaru/kordict/internal/domain"
)

// allSources defines the canonical execution order.
var allSources = []string{domain.SourceKRDict, domain.SourceStdDict, domain.SourceOpenDict}

// SourceResult holds the outcome of ingesting a single source.
type SourceResult struct {
	Files    int
	Entries  int
	Dropped  int
	Duration time.Duration
	Err      error
}

// adapter is the per-source state machine driven by the event stream.
type adapter interface {
	xmlstream.Handler
	Reset()
	Emitted() int
	Dropped() int
}

// Pipeline runs the three sources sequentially against one sharded writer
// and one summary collector. Everything is single-threaded: the adapters'
// per-entry state machines and the writer's buffers need no locking.
type Pipeline struct {
	log     *slog.Logger
	cfg     Config
	runID   uuid.UUID
	started time.Time
	results map[string]SourceResult
}

// NewPipeline creates a new Pipeline.
func NewPipeline(log *slog.Logger, cfg Config) *Pipeline {
	return &Pipeline{
		log:     log,
		cfg:     cfg,
		runID:   uuid.New(),
		results: make(map[string]SourceResult),
	}
}

// RunID returns the unique identifier of this run.
func (p *Pipeline) RunID() uuid.UUID {
	return p.runID
}

// Results returns per-source results after Run completes.
func (p *Pipeline) Results() map[string]SourceResult {
	return p.results
}

// HasErrors returns true if any source recorded an error.
func (p *Pipeline) HasErrors() bool {
	for _, r := range p.results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// Run executes the pipeline. If sources is non-empty, only the listed
// sources run. A failing file is isolated: its error is recorded in the
// source's result and the run continues, so HasErrors reports the
// aggregate outcome. On an unrecoverable writer error the partially
// written shard files are discarded rather than left as invalid JSON.
func (p *Pipeline) Run(ctx context.Context, sources []string) (err error) {
	p.started = time.Now()
	log := p.log.With(slog.String("run_id", p.runID.String()))

	writer, err := shard.NewWriter(p.cfg.OutDir, p.cfg.FlushBytes)
	if err != nil {
		return fmt.Errorf("create shard writer: %w", err)
	}
	defer func() {
		if err != nil {
			if derr := writer.Discard(); derr != nil {
				log.Warn("discard shard files", slog.String("error", derr.Error()))
			}
		}
	}()

	vocab := summary.New()

	toRun := allSources
	if len(sources) > 0 {
		filter := make(map[string]bool, len(sources))
		for _, s := range sources {
			filter[s] = true
		}
		var filtered []string
		for _, s := range allSources {
			if filter[s] {
				filtered = append(filtered, s)
			}
		}
		toRun = filtered
	}

	for _, source := range toRun {
		start := time.Now()
		log.Info("starting source", slog.String("source", source))

		result := p.runSource(ctx, source, writer, vocab)
		result.Duration = time.Since(start)
		p.results[source] = result

		if result.Err != nil {
			log.Warn("source failed",
				slog.String("source", source),
				slog.String("error", result.Err.Error()),
				slog.Duration("duration", result.Duration),
			)
		} else {
			log.Info("source completed",
				slog.String("source", source),
				slog.Int("files", result.Files),
				slog.Int("entries", result.Entries),
				slog.Int("dropped", result.Dropped),
				slog.Duration("duration", result.Duration),
			)
		}

		if ctx.Err() != nil {
			return fmt.Errorf("ingest canceled: %w", ctx.Err())
		}
	}

	if err := writer.Finalize(); err != nil {
		return fmt.Errorf("finalize shards: %w", err)
	}

	if err := vocab.WriteFile(p.cfg.SummaryPath); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	if err := p.writeManifest(); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	log.Info("ingest completed",
		slog.Int("sources_run", len(toRun)),
		slog.Int("shards", len(writer.Counts())),
	)
	return nil
}

// runSource streams every .xml file of one source, in sorted filename
// order, through the source's adapter into the shared writer.
func (p *Pipeline) runSource(ctx context.Context, source string, writer *shard.Writer, vocab *summary.Collector) SourceResult {
	dir := p.sourceDir(source)
	if dir == "" {
		return SourceResult{Err: fmt.Errorf("%s: input dir not configured", source)}
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.xml"))
	if err != nil {
		return SourceResult{Err: fmt.Errorf("%s: list files: %w", source, err)}
	}
	if len(files) == 0 {
		return SourceResult{Err: fmt.Errorf("%s: no .xml files in %s", source, dir)}
	}
	sort.Strings(files)

	a := p.newAdapter(source, writer, vocab)

	var result SourceResult
	var fileErrs []error
	for _, path := range files {
		if ctx.Err() != nil {
			fileErrs = append(fileErrs, ctx.Err())
			break
		}
		if err := streamFile(path, a); err != nil {
			// Isolate the failing file; entries already emitted stay.
			fileErrs = append(fileErrs, fmt.Errorf("%s: %w", filepath.Base(path), err))
			a.Reset()
			continue
		}
		result.Files++
	}

	result.Entries = a.Emitted()
	result.Dropped = a.Dropped()
	result.Err = errors.Join(fileErrs...)
	return result
}

func (p *Pipeline) sourceDir(source string) string {
	switch source {
	case domain.SourceKRDict:
		return p.cfg.KRDictDir
	case domain.SourceStdDict:
		return p.cfg.StdDictDir
	case domain.SourceOpenDict:
		return p.cfg.OpenDictDir
	default:
		return ""
	}
}

func (p *Pipeline) newAdapter(source string, writer *shard.Writer, vocab *summary.Collector) adapter {
	switch source {
	case domain.SourceStdDict:
		return item.New(item.StdDict, writer.Write, vocab)
	case domain.SourceOpenDict:
		return item.New(item.OpenDict, writer.Write, vocab)
	default:
		return lmf.New(writer.Write, vocab)
	}
}

func streamFile(path string, h xmlstream.Handler) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return xmlstream.Stream(bufio.NewReaderSize(f, 1<<20), h)
}
