// Package item ingests the two near-identical item-based exports (stdict
// and opendict), where each dictionary entry is an item element holding a
// word-info block and repeatable sense-info blocks with data carried as
// leaf tag text. One adapter serves both by taking a Schema of wrapper tag
// names and container tag sets.
package item

import (
	"github.com/hanmaru/kordict/internal/app/ingest/summary"
	"github.com/hanmaru/kordict/internal/app/ingest/xmlstream"
	"github.com/hanmaru/kordict/internal/domain"
)

// Leaf tags with fixed routing, common to both schemas.
const (
	wordLeaf       = "word"
	definitionLeaf = "definition"
)

// frame is one open element with its accumulated text. Character data can
// arrive as several chunks before the matching close, so text grows until
// the frame is popped.
type frame struct {
	name string
	text []byte
}

// Adapter is the per-entry state machine for an item-based schema.
type Adapter struct {
	schema Schema
	emit   func(domain.Entry) error
	vocab  *summary.Collector

	stack      []frame
	wordDepth  int
	senseDepth int
	term       string
	attrs      domain.Record
	sense      domain.Record
	senses     []domain.Record
	defs       []string

	emitted int
	dropped int
}

// New creates an Adapter for schema, emitting completed entries into emit
// and recording observed leaf tag names into vocab.
func New(schema Schema, emit func(domain.Entry) error, vocab *summary.Collector) *Adapter {
	a := &Adapter{schema: schema, emit: emit, vocab: vocab}
	a.Reset()
	return a
}

// Reset discards the tag stack and any partially accumulated entry.
func (a *Adapter) Reset() {
	a.stack = a.stack[:0]
	a.resetEntry()
}

func (a *Adapter) resetEntry() {
	a.wordDepth = 0
	a.senseDepth = 0
	a.term = ""
	a.attrs = domain.Record{}
	a.sense = nil
	a.senses = nil
	a.defs = nil
}

// Emitted returns the number of entries emitted so far.
func (a *Adapter) Emitted() int { return a.emitted }

// Dropped returns the number of entries discarded for lacking a
// resolvable term.
func (a *Adapter) Dropped() int { return a.dropped }

// HandleEvent advances the state machine by one structural event.
func (a *Adapter) HandleEvent(ev xmlstream.Event) error {
	switch ev.Kind {
	case xmlstream.StartElement:
		switch ev.Name {
		case a.schema.EntryTag:
			a.resetEntry()
		case a.schema.WordInfoTag:
			a.wordDepth++
		case a.schema.SenseInfoTag:
			a.senseDepth++
			if a.senseDepth == 1 {
				a.sense = domain.Record{}
			}
		}
		a.stack = append(a.stack, frame{name: ev.Name})

	case xmlstream.CharData:
		if n := len(a.stack); n > 0 {
			a.stack[n-1].text = append(a.stack[n-1].text, ev.Text...)
		}

	case xmlstream.EndElement:
		return a.closeTag()
	}
	return nil
}

// closeTag pops the top frame and routes its normalized text, then handles
// wrapper and entry closes.
func (a *Adapter) closeTag() error {
	n := len(a.stack)
	if n == 0 {
		return nil
	}
	f := a.stack[n-1]
	a.stack = a.stack[:n-1]

	if text := domain.NormalizeSpace(string(f.text)); text != "" {
		a.leaf(f.name, text)
	}

	switch f.name {
	case a.schema.SenseInfoTag:
		if a.senseDepth > 0 {
			if a.senseDepth == 1 {
				if len(a.sense) > 0 {
					a.senses = append(a.senses, a.sense)
				}
				a.sense = nil
			}
			a.senseDepth--
		}
	case a.schema.WordInfoTag:
		if a.wordDepth > 0 {
			a.wordDepth--
		}
	case a.schema.EntryTag:
		return a.finish()
	}
	return nil
}

// leaf routes one closed tag's non-empty text. Sense-info context wins
// when sense-info blocks nest inside word-info. Unknown tags are captured
// generically under their tag name: tolerance of schema drift.
func (a *Adapter) leaf(tag, text string) {
	switch {
	case a.senseDepth > 0:
		if tag == definitionLeaf {
			a.defs = append(a.defs, text)
		}
		if !a.schema.SenseContainers[tag] {
			if a.sense != nil {
				a.sense.Merge(tag, text)
			}
			a.vocab.Add(a.schema.Source, summary.CategorySenseInfoTags, tag)
		}

	case a.wordDepth > 0:
		if tag == wordLeaf && a.term == "" {
			a.term = text
		}
		if !a.schema.WordContainers[tag] {
			a.attrs.Merge(tag, text)
			a.vocab.Add(a.schema.Source, summary.CategoryWordInfoTags, tag)
		}
	}
}

// finish normalizes and emits the accumulated entry, then clears all
// per-entry state.
func (a *Adapter) finish() error {
	defer a.resetEntry()

	if a.term == "" {
		a.dropped++
		return nil
	}

	defs := domain.DedupeDefinitions(a.defs)
	if defs == nil {
		// Downstream readers expect a JSON array, not null.
		defs = []string{}
	}

	entry := domain.Entry{
		Term:        a.term,
		Definitions: defs,
		Source:      a.schema.Source,
		Senses:      a.senses,
	}
	if len(a.attrs) > 0 {
		entry.Attrs = a.attrs
	}

	a.emitted++
	return a.emit(entry)
}
