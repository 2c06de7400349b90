package ingest

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds ingestion pipeline settings.
type Config struct {
	KRDictDir   string `yaml:"krdict_dir"   env:"INGEST_KRDICT_DIR"`
	StdDictDir  string `yaml:"stdict_dir"   env:"INGEST_STDICT_DIR"`
	OpenDictDir string `yaml:"opendict_dir" env:"INGEST_OPENDICT_DIR"`
	OutDir      string `yaml:"out_dir"      env:"INGEST_OUT_DIR"      env-default:"out/entries"`
	SummaryPath string `yaml:"summary_path" env:"INGEST_SUMMARY_PATH" env-default:"out/attribute-summary.json"`
	FlushBytes  int    `yaml:"flush_bytes"  env:"INGEST_FLUSH_BYTES"  env-default:"65536"`
}

// LoadConfig reads ingestion configuration from a YAML file and environment
// variables. Priority: ENV > YAML > defaults (via env-default tags).
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return nil, fmt.Errorf("ingest config: read %s: %w", path, err)
			}
			return &cfg, nil
		}
		return nil, fmt.Errorf("ingest config: file %s not found", path)
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("ingest config: read env: %w", err)
	}

	return &cfg, nil
}
