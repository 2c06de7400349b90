// Package domain defines the unified dictionary entry model shared by the
// ingestion adapters, the sharded writer, and downstream tooling.
package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Source tags identifying which schema produced an entry.
const (
	SourceKRDict   = "krdict"   // LMF feature/lemma export
	SourceStdDict  = "stdict"   // item export, word_info/sense_info wrappers
	SourceOpenDict = "opendict" // item export, wordinfo/senseinfo wrappers
)

// Value is a field value that starts as a single string and becomes an
// ordered list once the same key is merged again. It marshals to a bare
// JSON string while single and to a string array once repeated.
type Value struct {
	vals []string
}

// NewValue creates a scalar Value.
func NewValue(s string) Value {
	return Value{vals: []string{s}}
}

// Strings returns the ordered values.
func (v Value) Strings() []string {
	return v.vals
}

// First returns the first value, or "" when empty.
func (v Value) First() string {
	if len(v.vals) == 0 {
		return ""
	}
	return v.vals[0]
}

// IsList reports whether the value has been promoted to a list.
func (v Value) IsList() bool {
	return len(v.vals) > 1
}

// MarshalJSON emits a string for scalars and an array once repeated.
func (v Value) MarshalJSON() ([]byte, error) {
	if len(v.vals) == 1 {
		return json.Marshal(v.vals[0])
	}
	return json.Marshal(v.vals)
}

// UnmarshalJSON accepts either a string or an array of strings.
func (v *Value) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v.vals = []string{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("value must be string or string array: %w", err)
	}
	v.vals = list
	return nil
}

// Record is a free-form field mapping under the scalar-or-array rule.
type Record map[string]Value

// Merge adds val under key. An absent key stores a scalar; a present key
// promotes to (or extends) an ordered list. Repeated values are never
// dropped or overwritten.
func (r Record) Merge(key, val string) {
	v, ok := r[key]
	if !ok {
		r[key] = NewValue(val)
		return
	}
	v.vals = append(v.vals, val)
	r[key] = v
}

// MergeRecord merges every value of src into r in src's per-key order.
func (r Record) MergeRecord(src Record) {
	for key, v := range src {
		for _, s := range v.vals {
			r.Merge(key, s)
		}
	}
}

// Lookup returns the first value stored under key, compared
// case-insensitively.
func (r Record) Lookup(key string) (string, bool) {
	for k, v := range r {
		if strings.EqualFold(k, key) && len(v.vals) > 0 {
			return v.vals[0], true
		}
	}
	return "", false
}

// Entry is the unified normalized dictionary record produced by the
// ingestion adapters. Every written Entry has a non-empty Term and a
// duplicate-free Definitions list.
type Entry struct {
	Term        string   `json:"term"`
	Definitions []string `json:"definitions"`
	Source      string   `json:"source"`
	Attrs       Record   `json:"attrs,omitempty"`
	Senses      []Record `json:"senses,omitempty"`
}

// DedupeDefinitions trims each candidate, discards empties, and keeps the
// first occurrence of each distinct trimmed string in encounter order.
func DedupeDefinitions(defs []string) []string {
	if len(defs) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(defs))
	var out []string
	for _, d := range defs {
		d = strings.TrimSpace(d)
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}
