package item

import "github.com/hanmaru/kordict/internal/domain"

// Schema parameterizes the adapter for one item-based export: the wrapper
// tag names plus the container tags that are structural and must never be
// captured as leaf data. All names are lowercase; the event source
// lowercases element names before they reach the adapter.
type Schema struct {
	Source string

	EntryTag     string
	WordInfoTag  string
	SenseInfoTag string

	// Containers in word-info context. Includes the wrappers themselves.
	WordContainers map[string]bool
	// Containers in sense-info context.
	SenseContainers map[string]bool
}

// StdDict describes the stdict export (snake_case wrappers).
var StdDict = Schema{
	Source:       domain.SourceStdDict,
	EntryTag:     "item",
	WordInfoTag:  "word_info",
	SenseInfoTag: "sense_info",
	WordContainers: map[string]bool{
		"word_info":              true,
		"conju_info":             true,
		"conjugation_info":       true,
		"abbreviation_info":      true,
		"original_language_info": true,
		"pronunciation_info":     true,
	},
	SenseContainers: map[string]bool{
		"sense_info":       true,
		"example_info":     true,
		"pattern_info":     true,
		"relation_info":    true,
		"translation_info": true,
		"cat_info":         true,
	},
}

// OpenDict describes the opendict export, structurally identical to
// StdDict but with camelCase wrappers (lowercased by the event source).
var OpenDict = Schema{
	Source:       domain.SourceOpenDict,
	EntryTag:     "item",
	WordInfoTag:  "wordinfo",
	SenseInfoTag: "senseinfo",
	WordContainers: map[string]bool{
		"wordinfo":          true,
		"conjuinfo":         true,
		"conjugationinfo":   true,
		"abbreviationinfo":  true,
		"originallanguage":  true,
		"pronunciationinfo": true,
	},
	SenseContainers: map[string]bool{
		"senseinfo":       true,
		"exampleinfo":     true,
		"patterninfo":     true,
		"relationinfo":    true,
		"translationinfo": true,
		"catinfo":         true,
	},
}
