package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Manifest is the machine-readable run record written next to the shard
// files. It surfaces the silently-dropped entry counts for auditability.
type Manifest struct {
	RunID      string                   `json:"runId"`
	StartedAt  time.Time                `json:"startedAt"`
	FinishedAt time.Time                `json:"finishedAt"`
	Sources    map[string]ManifestStats `json:"sources"`
}

// ManifestStats holds one source's counters.
type ManifestStats struct {
	Files   int    `json:"files"`
	Entries int    `json:"entries"`
	Dropped int    `json:"dropped"`
	Error   string `json:"error,omitempty"`
}

func (p *Pipeline) writeManifest() error {
	m := Manifest{
		RunID:      p.runID.String(),
		StartedAt:  p.started,
		FinishedAt: time.Now(),
		Sources:    make(map[string]ManifestStats, len(p.results)),
	}
	for source, r := range p.results {
		stats := ManifestStats{Files: r.Files, Entries: r.Entries, Dropped: r.Dropped}
		if r.Err != nil {
			stats.Error = r.Err.Error()
		}
		m.Sources[source] = stats
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	data = append(data, '\n')

	path := filepath.Join(p.cfg.OutDir, "manifest.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
