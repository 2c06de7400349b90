package shard

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanmaru/kordict/internal/domain"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name string
		term string
		want string
	}{
		{"hangul", "가게", "가"},
		{"same first syllable", "가방", "가"},
		{"latin", "apple", "a"},
		{"leading whitespace trimmed", "  사과", "사"},
		{"empty", "", SentinelKey},
		{"whitespace only", " \t", SentinelKey},
		{"path separator", "/etc", SentinelKey},
		{"backslash", `\x`, SentinelKey},
		{"dot", ".hidden", SentinelKey},
		{"control character", "\x01a", SentinelKey},
		{"invalid utf8", string([]byte{0xff, 0xfe}), SentinelKey},
		// NFD input composes to the same shard as NFC input.
		{"decomposed hangul", "\u1100\u1161게", "가"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Key(tt.term))
		})
	}
}

func readShard(t *testing.T, dir, key string) []domain.Entry {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, key+".json"))
	require.NoError(t, err)

	var entries []domain.Entry
	require.NoError(t, json.Unmarshal(data, &entries), "shard %s must be a valid JSON array", key)
	return entries
}

func TestWriter_RoundTripAcrossFlushes(t *testing.T) {
	dir := t.TempDir()

	// Tiny threshold so nearly every write crosses a flush boundary.
	w, err := NewWriter(dir, 16)
	require.NoError(t, err)

	const n = 137
	for i := 0; i < n; i++ {
		err := w.Write(domain.Entry{
			Term:        fmt.Sprintf("가게%d", i),
			Definitions: []string{fmt.Sprintf("뜻 %d", i)},
			Source:      domain.SourceStdDict,
		})
		require.NoError(t, err)
	}
	require.NoError(t, w.Finalize())

	entries := readShard(t, dir, "가")
	require.Len(t, entries, n)
	for i, e := range entries {
		assert.Equal(t, fmt.Sprintf("가게%d", i), e.Term, "write order must be preserved")
	}
}

func TestWriter_ShardingAndSentinel(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, 0)
	require.NoError(t, err)

	for _, term := range []string{"가게", "가방", "사과", "\x01"} {
		require.NoError(t, w.Write(domain.Entry{Term: term, Source: domain.SourceKRDict}))
	}
	require.NoError(t, w.Finalize())

	assert.Len(t, readShard(t, dir, "가"), 2)
	assert.Len(t, readShard(t, dir, "사"), 1)
	assert.Len(t, readShard(t, dir, SentinelKey), 1)

	counts := w.Counts()
	assert.Equal(t, 2, counts["가"])
}

func TestWriter_InterleavedSourcesKeepWriteOrder(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, 0)
	require.NoError(t, err)

	require.NoError(t, w.Write(domain.Entry{Term: "가게", Source: domain.SourceStdDict}))
	require.NoError(t, w.Write(domain.Entry{Term: "가방", Source: domain.SourceOpenDict}))
	require.NoError(t, w.Write(domain.Entry{Term: "가을", Source: domain.SourceStdDict}))
	require.NoError(t, w.Finalize())

	entries := readShard(t, dir, "가")
	require.Len(t, entries, 3)
	assert.Equal(t, domain.SourceStdDict, entries[0].Source)
	assert.Equal(t, domain.SourceOpenDict, entries[1].Source)
	assert.Equal(t, domain.SourceStdDict, entries[2].Source)
}

func TestWriter_WriteAfterFinalizeFails(t *testing.T) {
	w, err := NewWriter(t.TempDir(), 0)
	require.NoError(t, err)
	require.NoError(t, w.Finalize())

	assert.Error(t, w.Write(domain.Entry{Term: "가게"}))
	assert.Error(t, w.Finalize())
}

func TestWriter_DiscardRemovesFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, 0)
	require.NoError(t, err)

	require.NoError(t, w.Write(domain.Entry{Term: "가게"}))
	require.NoError(t, w.Discard())

	_, err = os.Stat(filepath.Join(dir, "가.json"))
	assert.True(t, os.IsNotExist(err), "discarded shard file must not remain")
}

func TestWriter_ValueShapesSurviveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, 0)
	require.NoError(t, err)

	attrs := domain.Record{}
	attrs.Merge("pos", "명사")
	attrs.Merge("pronunciation", "사과")
	attrs.Merge("pronunciation", "사:과")

	sense := domain.Record{}
	sense.Merge("definition", "배나무의 열매")
	sense.Merge("example", "사과가 빨갛다.")

	require.NoError(t, w.Write(domain.Entry{
		Term:        "사과",
		Definitions: []string{"배나무의 열매"},
		Source:      domain.SourceOpenDict,
		Attrs:       attrs,
		Senses:      []domain.Record{sense},
	}))
	require.NoError(t, w.Finalize())

	entries := readShard(t, dir, "사")
	require.Len(t, entries, 1)

	got := entries[0]
	assert.Equal(t, []string{"명사"}, got.Attrs["pos"].Strings())
	assert.Equal(t, []string{"사과", "사:과"}, got.Attrs["pronunciation"].Strings())
	require.Len(t, got.Senses, 1)
	assert.Equal(t, "사과가 빨갛다.", got.Senses[0]["example"].First())
}
