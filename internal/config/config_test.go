package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/kbgraph/internal/graph"
)

func TestLoad_MissingFileIsZeroConfig(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, &ProjectConfig{}, cfg)
}

func TestLoad_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	yml := `dataDir: /srv/kbs
graphDir: /srv/graphs
policy: skip
indexed: true
logging:
  level: debug
  format: json
knowledgeBases:
  - name: mesh
    format: tsv
    file: mesh/terms.tsv
    root: MESH:ROOT
    tsv:
      comment: "!"
      idField: 0
      nameField: 1
      parentsField: -1
      synonymsField: 2
  - name: cellosaurus
    format: obo
    obo:
      relationships:
        - name: derived_from
          reverse: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kbgraph.yml"), []byte(yml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "/srv/kbs", cfg.DataDir)
	assert.Equal(t, "/srv/graphs", cfg.GraphDir)
	assert.Equal(t, graph.PolicySkip, cfg.Policy)
	assert.True(t, cfg.Indexed)
	assert.Equal(t, Logging{Level: "debug", Format: "json"}, cfg.Logging)

	require.Len(t, cfg.KnowledgeBases, 2)
	mesh := cfg.KnowledgeBases[0]
	require.NotNil(t, mesh.TSV)
	assert.Equal(t, graph.TSVLayout{Comment: "!", ListSeparator: "|", IDField: 0, NameField: 1, ParentsField: -1, SynonymsField: 2}, *mesh.TSV)
	assert.Equal(t, "MESH:ROOT", mesh.Root)

	cello := cfg.KnowledgeBases[1]
	assert.Nil(t, cello.TSV)
	assert.Equal(t, []graph.RelationshipRule{{Name: "derived_from", Reverse: true}}, cello.OBO.Relationships)
}

func TestLoad_PartialTSVLayoutKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	yml := `knowledgeBases:
  - name: ctd_gene
    format: tsv
    tsv:
      parentsField: 5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kbgraph.yml"), []byte(yml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	want := graph.DefaultTSVLayout()
	want.ParentsField = 5
	require.NotNil(t, cfg.KnowledgeBases[0].TSV)
	assert.Equal(t, want, *cfg.KnowledgeBases[0].TSV)
}

func TestLoad_YAMLExtension(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kbgraph.yaml"), []byte("policy: fail\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, graph.PolicyFail, cfg.Policy)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kbgraph.yml"), []byte("policy: [unclosed\n"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]struct {
		cfg     ProjectConfig
		wantErr string
	}{
		"zero":        {cfg: ProjectConfig{}},
		"bad policy":  {cfg: ProjectConfig{Policy: "ignore"}, wantErr: "policy"},
		"no name":     {cfg: ProjectConfig{KnowledgeBases: []KnowledgeBase{{Format: "obo"}}}, wantErr: "name is required"},
		"bad format":  {cfg: ProjectConfig{KnowledgeBases: []KnowledgeBase{{Name: "x", Format: "xml"}}}, wantErr: "unsupported format"},
		"good format": {cfg: ProjectConfig{KnowledgeBases: []KnowledgeBase{{Name: "x", Format: "TXT"}}}},
		"tsv id is parents": {
			cfg:     ProjectConfig{KnowledgeBases: []KnowledgeBase{{Name: "x", Format: "tsv", TSV: &graph.TSVLayout{IDField: 4, ParentsField: 4}}}},
			wantErr: "idField and parentsField",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
