// Package summary accumulates the distinct attribute and tag vocabulary
// observed per source during a run, for the diagnostic summary document.
package summary

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Vocabulary categories. The classes differ by schema: the LMF adapter
// records feature-attribute names, the item adapters record leaf tag names.
const (
	CategoryEntryFeatures = "entry_features"
	CategorySenseFeatures = "sense_features"
	CategoryWordInfoTags  = "word_info_tags"
	CategorySenseInfoTags = "sense_info_tags"
)

// Collector holds per-source, per-category sets of vocabulary names.
// It lives for the whole run and is serialized exactly once at the end.
// Not safe for concurrent use; sources are processed sequentially.
type Collector struct {
	sources map[string]map[string]map[string]struct{}
}

// New creates an empty Collector.
func New() *Collector {
	return &Collector{sources: make(map[string]map[string]map[string]struct{})}
}

// Add records name under the source's category set.
func (c *Collector) Add(source, category, name string) {
	if name == "" {
		return
	}
	cats, ok := c.sources[source]
	if !ok {
		cats = make(map[string]map[string]struct{})
		c.sources[source] = cats
	}
	set, ok := cats[category]
	if !ok {
		set = make(map[string]struct{})
		cats[category] = set
	}
	set[name] = struct{}{}
}

// Snapshot returns the collected vocabulary as sorted lists, keyed by
// source then category.
func (c *Collector) Snapshot() map[string]map[string][]string {
	out := make(map[string]map[string][]string, len(c.sources))
	for source, cats := range c.sources {
		outCats := make(map[string][]string, len(cats))
		for category, set := range cats {
			names := make([]string, 0, len(set))
			for name := range set {
				names = append(names, name)
			}
			sort.Strings(names)
			outCats[category] = names
		}
		out[source] = outCats
	}
	return out
}

// WriteFile serializes the snapshot as indented JSON to path, creating
// parent directories as needed.
func (c *Collector) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create summary dir: %w", err)
	}

	data, err := json.MarshalIndent(c.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
