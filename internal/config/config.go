package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/kbgraph/internal/graph"
)

// ProjectConfig holds settings loaded from kbgraph.yml.
type ProjectConfig struct {
	DataDir  string       `yaml:"dataDir,omitempty"`
	GraphDir string       `yaml:"graphDir,omitempty"`
	GraphDB  string       `yaml:"graphDB,omitempty"` // Kuzu directory or .sqlite file; empty keeps the graph in memory
	Policy   graph.Policy `yaml:"policy,omitempty"`
	Indexed  bool         `yaml:"indexed,omitempty"` // also write integer node maps for node2vec
	Parquet  bool         `yaml:"parquet,omitempty"` // also write a Parquet edge table
	Logging  Logging      `yaml:"logging,omitempty"`

	KnowledgeBases []KnowledgeBase `yaml:"knowledgeBases,omitempty"`
}

// Logging selects the slog handler.
type Logging struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty"` // text, json
}

// KnowledgeBase overrides or adds one registry entry.
type KnowledgeBase struct {
	Name   string           `yaml:"name"`
	Format string           `yaml:"format"`
	File   string           `yaml:"file,omitempty"`
	Root   string           `yaml:"root,omitempty"`
	TSV    *graph.TSVLayout `yaml:"tsv,omitempty"`
	OBO    graph.OBOOptions `yaml:"obo,omitempty"`
}

// Load attempts to read kbgraph.yml or kbgraph.yaml from the given
// directory. Returns a zero-value config (not an error) if no config file
// exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"kbgraph.yml", "kbgraph.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}

// Validate checks enumerated fields.
func (c *ProjectConfig) Validate() error {
	switch c.Policy {
	case "", graph.PolicyFail, graph.PolicySkip:
	default:
		return fmt.Errorf("policy %q: want fail or skip", c.Policy)
	}
	for i, kb := range c.KnowledgeBases {
		if kb.Name == "" {
			return fmt.Errorf("knowledgeBases[%d]: name is required", i)
		}
		if _, err := graph.ParseFormat(kb.Format); err != nil {
			return fmt.Errorf("knowledgeBases[%d] (%s): %w", i, kb.Name, err)
		}
		if kb.TSV != nil && kb.TSV.IDField == kb.TSV.ParentsField {
			return fmt.Errorf("knowledgeBases[%d] (%s): tsv idField and parentsField are both %d", i, kb.Name, kb.TSV.IDField)
		}
	}
	return nil
}
