package ingest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanmaru/kordict/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

const krdictDoc = `<LexicalResource>
  <LexicalEntry>
    <Lemma><feat att="writtenForm" val="달리다"/></Lemma>
    <Sense><feat att="definition" val="빨리 뛰어가다."/></Sense>
    <Sense><feat att="definition" val="기계가 작동하다."/></Sense>
  </LexicalEntry>
</LexicalResource>`

const stdictDoc = `<channel>
  <item>
    <word_info>
      <word>가게</word>
      <pos>명사</pos>
      <sense_info><definition>물건을 파는 집.</definition></sense_info>
    </word_info>
  </item>
  <item>
    <word_info>
      <word>가방</word>
      <sense_info><definition>물건을 넣어 드는 물건.</definition></sense_info>
    </word_info>
  </item>
</channel>`

const opendictDoc = `<channel>
  <item>
    <wordInfo><word>사과</word></wordInfo>
    <senseInfo>
      <definition>사과나무의 열매.</definition>
      <example>사과를 먹는다.</example>
    </senseInfo>
  </item>
</channel>`

func testConfig(t *testing.T) Config {
	t.Helper()
	root := t.TempDir()

	cfg := Config{
		KRDictDir:   filepath.Join(root, "krdict"),
		StdDictDir:  filepath.Join(root, "stdict"),
		OpenDictDir: filepath.Join(root, "opendict"),
		OutDir:      filepath.Join(root, "out", "entries"),
		SummaryPath: filepath.Join(root, "out", "attribute-summary.json"),
	}
	for _, dir := range []string{cfg.KRDictDir, cfg.StdDictDir, cfg.OpenDictDir} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}

	writeFile(t, cfg.KRDictDir, "krdict_a.xml", krdictDoc)
	writeFile(t, cfg.StdDictDir, "stdict_a.xml", stdictDoc)
	writeFile(t, cfg.OpenDictDir, "open_a.xml", opendictDoc)
	return cfg
}

func readShardFile(t *testing.T, cfg Config, key string) []domain.Entry {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(cfg.OutDir, key+".json"))
	require.NoError(t, err)

	var entries []domain.Entry
	require.NoError(t, json.Unmarshal(data, &entries))
	return entries
}

func TestPipeline_RunAllSources(t *testing.T) {
	cfg := testConfig(t)
	p := NewPipeline(discardLogger(), cfg)

	require.NoError(t, p.Run(context.Background(), nil))
	assert.False(t, p.HasErrors())

	// 가게 and 가방 share the 가 shard.
	ga := readShardFile(t, cfg, "가")
	require.Len(t, ga, 2)
	assert.Equal(t, "가게", ga[0].Term)
	assert.Equal(t, "가방", ga[1].Term)

	dal := readShardFile(t, cfg, "달")
	require.Len(t, dal, 1)
	assert.Equal(t, []string{"빨리 뛰어가다.", "기계가 작동하다."}, dal[0].Definitions)

	sa := readShardFile(t, cfg, "사")
	require.Len(t, sa, 1)
	assert.Equal(t, "사과를 먹는다.", sa[0].Senses[0]["example"].First())

	// Summary has per-source, per-category sorted vocabularies.
	data, err := os.ReadFile(cfg.SummaryPath)
	require.NoError(t, err)
	var summaryDoc map[string]map[string][]string
	require.NoError(t, json.Unmarshal(data, &summaryDoc))
	assert.Contains(t, summaryDoc[domain.SourceStdDict]["word_info_tags"], "pos")
	assert.Contains(t, summaryDoc[domain.SourceKRDict]["entry_features"], "writtenForm")

	// Manifest records per-source counters.
	data, err = os.ReadFile(filepath.Join(cfg.OutDir, "manifest.json"))
	require.NoError(t, err)
	var m Manifest
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, p.RunID().String(), m.RunID)
	assert.Equal(t, 2, m.Sources[domain.SourceStdDict].Entries)
	assert.Equal(t, 1, m.Sources[domain.SourceKRDict].Entries)
}

func TestPipeline_SourceFilter(t *testing.T) {
	cfg := testConfig(t)
	p := NewPipeline(discardLogger(), cfg)

	require.NoError(t, p.Run(context.Background(), []string{domain.SourceStdDict}))

	results := p.Results()
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[domain.SourceStdDict].Entries)
}

func TestPipeline_MalformedFileIsolated(t *testing.T) {
	cfg := testConfig(t)
	// Sorted order puts the broken file first; the good file must still
	// be ingested afterwards.
	writeFile(t, cfg.StdDictDir, "aaa_broken.xml", `<channel><item><word_info>`)

	p := NewPipeline(discardLogger(), cfg)
	require.NoError(t, p.Run(context.Background(), []string{domain.SourceStdDict}))

	result := p.Results()[domain.SourceStdDict]
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "aaa_broken.xml")
	assert.Equal(t, 1, result.Files)
	assert.Equal(t, 2, result.Entries)
	assert.True(t, p.HasErrors())

	// Shards written before and after the failure are still valid JSON.
	entries := readShardFile(t, cfg, "가")
	assert.Len(t, entries, 2)
}

func TestPipeline_MissingDirRecordedAsError(t *testing.T) {
	cfg := testConfig(t)
	cfg.OpenDictDir = ""

	p := NewPipeline(discardLogger(), cfg)
	require.NoError(t, p.Run(context.Background(), nil))

	assert.True(t, p.HasErrors())
	assert.Error(t, p.Results()[domain.SourceOpenDict].Err)
	assert.NoError(t, p.Results()[domain.SourceKRDict].Err)
}

func TestPipeline_DroppedCounted(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, cfg.StdDictDir, "zzz_nameless.xml",
		`<channel><item><word_info><pos>명사</pos></word_info></item></channel>`)

	p := NewPipeline(discardLogger(), cfg)
	require.NoError(t, p.Run(context.Background(), []string{domain.SourceStdDict}))

	assert.Equal(t, 1, p.Results()[domain.SourceStdDict].Dropped)
	assert.Equal(t, 2, p.Results()[domain.SourceStdDict].Entries)
}

func TestPipeline_CanceledContext(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPipeline(discardLogger(), cfg)
	err := p.Run(ctx, nil)
	require.Error(t, err)

	// Aborted runs leave no half-written shard arrays behind.
	matches, globErr := filepath.Glob(filepath.Join(cfg.OutDir, "*.json"))
	require.NoError(t, globErr)
	assert.Empty(t, matches)
}
