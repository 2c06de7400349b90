// Package shard writes entries into per-first-character JSON array files.
//
// Entries are buffered per shard and appended to the shard's file whenever
// the buffer crosses a byte threshold, so no output array is ever
// materialized in memory. After Finalize every touched file is one
// syntactically valid JSON array regardless of how many separate appends
// produced it.
package shard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/hanmaru/kordict/internal/domain"
)

const (
	// DefaultFlushBytes is the per-shard buffer threshold.
	DefaultFlushBytes = 64 << 10

	// SentinelKey collects terms whose first character cannot name a file.
	SentinelKey = "_etc"
)

// Key derives the shard key from a term: the first character of the
// trimmed, NFC-composed term. Empty, non-graphic, or path-hostile first
// characters collapse to SentinelKey. Case and form are otherwise
// preserved, so 가게 and 가방 share the 가 shard.
func Key(term string) string {
	t := norm.NFC.String(strings.TrimSpace(term))
	if t == "" {
		return SentinelKey
	}

	r, size := utf8.DecodeRuneInString(t)
	if r == utf8.RuneError && size <= 1 {
		return SentinelKey
	}
	switch r {
	case '/', '\\', '.', 0:
		return SentinelKey
	}
	if !unicode.IsGraphic(r) {
		return SentinelKey
	}
	return string(r)
}

// state tracks one shard's open file and pending buffer.
type state struct {
	file  *os.File
	buf   bytes.Buffer
	count int
}

// Writer appends entries to shard files named <key>.json under dir.
//
// Write order is preserved within each shard; entries from different
// source files interleave in write order. Exactly one of Finalize or
// Discard must be called; the writer is unusable afterwards.
type Writer struct {
	dir        string
	flushBytes int
	shards     map[string]*state
	closed     bool
}

// NewWriter creates the output directory and an empty Writer.
// flushBytes <= 0 selects DefaultFlushBytes.
func NewWriter(dir string, flushBytes int) (*Writer, error) {
	if flushBytes <= 0 {
		flushBytes = DefaultFlushBytes
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create shard dir: %w", err)
	}
	return &Writer{
		dir:        dir,
		flushBytes: flushBytes,
		shards:     make(map[string]*state),
	}, nil
}

// Write appends entry to its shard, creating the shard file lazily on the
// first write for that key.
func (w *Writer) Write(entry domain.Entry) error {
	if w.closed {
		return errors.New("shard writer already finalized")
	}

	key := Key(entry.Term)
	s, ok := w.shards[key]
	if !ok {
		f, err := os.OpenFile(w.path(key), os.O_CREATE|os.O_WRONLY|os.O_APPEND|os.O_TRUNC, 0o644)
		if err != nil {
			return fmt.Errorf("open shard %s: %w", key, err)
		}
		s = &state{file: f}
		w.shards[key] = s
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry %q: %w", entry.Term, err)
	}

	if s.count == 0 {
		s.buf.WriteString("[\n")
	} else {
		s.buf.WriteString(",\n")
	}
	s.buf.Write(data)
	s.count++

	if s.buf.Len() >= w.flushBytes {
		if err := w.flush(key, s); err != nil {
			return err
		}
	}
	return nil
}

// Finalize flushes every pending buffer, appends the closing array marker
// to every file that received at least one write, and closes all files.
func (w *Writer) Finalize() error {
	if w.closed {
		return errors.New("shard writer already finalized")
	}
	w.closed = true

	var errs []error
	for key, s := range w.shards {
		if s.count > 0 {
			s.buf.WriteString("\n]\n")
		}
		if err := w.flush(key, s); err != nil {
			errs = append(errs, err)
		}
		if err := s.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close shard %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// Discard closes and removes every shard file. Called instead of Finalize
// when a run aborts, so no half-written array is left looking valid.
func (w *Writer) Discard() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var errs []error
	for key, s := range w.shards {
		if err := s.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close shard %s: %w", key, err))
		}
		if err := os.Remove(w.path(key)); err != nil {
			errs = append(errs, fmt.Errorf("remove shard %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// Counts returns the number of entries written per shard key.
func (w *Writer) Counts() map[string]int {
	counts := make(map[string]int, len(w.shards))
	for key, s := range w.shards {
		counts[key] = s.count
	}
	return counts
}

func (w *Writer) path(key string) string {
	return filepath.Join(w.dir, key+".json")
}

func (w *Writer) flush(key string, s *state) error {
	if s.buf.Len() == 0 {
		return nil
	}
	if _, err := s.file.Write(s.buf.Bytes()); err != nil {
		return fmt.Errorf("append shard %s: %w", key, err)
	}
	s.buf.Reset()
	return nil
}
