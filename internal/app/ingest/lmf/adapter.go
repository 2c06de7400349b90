// Package lmf ingests the LMF-style krdict export, where each dictionary
// entry is a lexicalentry carrying its data as feat (attribute, value)
// pairs nested under lemma, wordform, and sense elements.
package lmf

import (
	"strings"

	"github.com/hanmaru/kordict/internal/app/ingest/summary"
	"github.com/hanmaru/kordict/internal/app/ingest/xmlstream"
	"github.com/hanmaru/kordict/internal/domain"
)

// Element and feature names matched by the state machine. The event source
// lowercases element names; feature attribute names are compared
// case-insensitively where they carry routing meaning.
const (
	entryTag    = "lexicalentry"
	lemmaTag    = "lemma"
	wordFormTag = "wordform"
	senseTag    = "sense"
	featTag     = "feat"

	writtenFormAttr = "writtenform"
	definitionAttr  = "definition"
)

// Adapter is the per-entry state machine for the krdict schema. Feed it
// the event stream of one or more documents; completed entries are pushed
// into the emit callback.
type Adapter struct {
	emit  func(domain.Entry) error
	vocab *summary.Collector

	term       string
	attrs      domain.Record
	forms      []domain.Record
	form       domain.Record
	sense      domain.Record
	senses     []domain.Record
	defs       []string
	senseDepth int
	inLemma    bool

	emitted int
	dropped int
}

// New creates an Adapter emitting completed entries into emit and
// recording observed feature-attribute names into vocab.
func New(emit func(domain.Entry) error, vocab *summary.Collector) *Adapter {
	a := &Adapter{emit: emit, vocab: vocab}
	a.Reset()
	return a
}

// Reset discards any partially accumulated entry, e.g. after a mid-file
// parse error.
func (a *Adapter) Reset() {
	a.term = ""
	a.attrs = domain.Record{}
	a.forms = nil
	a.form = nil
	a.sense = nil
	a.senses = nil
	a.defs = nil
	a.senseDepth = 0
	a.inLemma = false
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
		case entryTag:
			a.Reset()
		case lemmaTag:
			a.inLemma = true
		case wordFormTag:
			a.form = domain.Record{}
		case senseTag:
			a.senseDepth++
			// Nested sense elements are ignored as structure; only the
			// outermost sense opens a record.
			if a.senseDepth == 1 {
				a.sense = domain.Record{}
			}
		case featTag:
			a.feature(ev.Attr["att"], ev.Attr["val"])
		}

	case xmlstream.EndElement:
		switch ev.Name {
		case lemmaTag:
			a.inLemma = false
		case wordFormTag:
			if len(a.form) > 0 {
				a.forms = append(a.forms, a.form)
			}
			a.form = nil
		case senseTag:
			if a.senseDepth > 0 {
				a.senseDepth--
				if a.senseDepth == 0 {
					if len(a.sense) > 0 {
						a.senses = append(a.senses, a.sense)
					}
					a.sense = nil
				}
			}
		case entryTag:
			return a.finish()
		}
	}
	return nil
}

// feature routes one (attribute, value) pair by precedence: open word-form
// record, then open sense record, then the entry-level attribute map.
func (a *Adapter) feature(att, val string) {
	if att == "" {
		return
	}

	switch {
	case a.form != nil:
		a.form.Merge(att, val)
		a.vocab.Add(domain.SourceKRDict, summary.CategoryEntryFeatures, att)

	case a.senseDepth > 0:
		if a.sense != nil {
			a.sense.Merge(att, val)
		}
		if strings.EqualFold(att, definitionAttr) {
			a.defs = append(a.defs, val)
		}
		a.vocab.Add(domain.SourceKRDict, summary.CategorySenseFeatures, att)

	default:
		a.attrs.Merge(att, val)
		if a.term == "" && a.inLemma && strings.EqualFold(att, writtenFormAttr) {
			a.term = strings.TrimSpace(val)
		}
		a.vocab.Add(domain.SourceKRDict, summary.CategoryEntryFeatures, att)
	}
}

// finish normalizes and emits the accumulated entry, then clears all
// per-entry state.
func (a *Adapter) finish() error {
	defer a.Reset()

	attrs := domain.Record{}
	attrs.MergeRecord(a.attrs)
	// Word-form records (pronunciation variants, conjugations) flatten
	// into the entry attributes pair by pair; repeated feature names
	// accumulate as ordered lists.
	for _, form := range a.forms {
		attrs.MergeRecord(form)
	}

	term := a.term
	if term == "" {
		// Fallback: an entry-level writtenForm feature captured outside
		// the lemma element.
		if v, ok := attrs.Lookup(writtenFormAttr); ok {
			term = strings.TrimSpace(v)
		}
	}
	if term == "" {
		a.dropped++
		return nil
	}

	defs := domain.DedupeDefinitions(a.defs)
	if defs == nil {
		// Downstream readers expect a JSON array, not null.
		defs = []string{}
	}

	entry := domain.Entry{
		Term:        term,
		Definitions: defs,
		Source:      domain.SourceKRDict,
		Senses:      a.senses,
	}
	if len(attrs) > 0 {
		entry.Attrs = attrs
	}

	a.emitted++
	return a.emit(entry)
}
