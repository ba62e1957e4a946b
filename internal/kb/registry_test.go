package kb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/kbgraph/internal/config"
	"github.com/dusk-indust/kbgraph/internal/graph"
)

func TestResolve_Builtin(t *testing.T) {
	r := NewRegistry("/data", "/out")

	src, err := r.Resolve("go_bp", graph.FormatOBO)
	require.NoError(t, err)

	assert.Equal(t, "go_bp", src.KB)
	assert.Equal(t, graph.FormatOBO, src.Format)
	assert.Equal(t, filepath.Join("/data", "go-basic.obo"), src.InputPath)
	assert.Equal(t, filepath.Join("/out", "go_bp.edgelist"), src.OutputPath)
	assert.Equal(t, filepath.Join("/data", "go_bp"), src.MapDir)
	assert.Equal(t, "GO:0008150", src.Root)
	assert.Equal(t, "biological_process", src.OBO.Namespace)
}

func TestResolve_SameNameDifferentFormats(t *testing.T) {
	r := NewRegistry("/data", "/out")

	obo, err := r.Resolve("medic", graph.FormatOBO)
	require.NoError(t, err)
	tsv, err := r.Resolve("medic", graph.FormatTSV)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/data", "CTD_diseases.obo"), obo.InputPath)
	assert.Equal(t, filepath.Join("/data", "medic", "CTD_diseases.tsv"), tsv.InputPath)
	assert.Equal(t, obo.OutputPath, tsv.OutputPath)
	assert.Equal(t, graph.DefaultTSVLayout(), tsv.TSV)
}

func TestResolve_ConventionalPaths(t *testing.T) {
	r := NewRegistry("", "")

	obo, err := r.Resolve("mondo", graph.FormatOBO)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(DefaultDataDir, "mondo", "mondo.obo"), obo.InputPath)
	assert.Equal(t, filepath.Join(DefaultGraphDir, "mondo.edgelist"), obo.OutputPath)
	assert.Empty(t, obo.Root)

	txt, err := r.Resolve("ppi", graph.FormatTXT)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(DefaultDataDir, "ppi", "edges.txt"), txt.InputPath)
}

func TestResolve_RejectsPathNames(t *testing.T) {
	r := NewRegistry("", "")
	for _, name := range []string{"", ".", "..", "a/b", `a\b`} {
		_, err := r.Resolve(name, graph.FormatOBO)
		assert.Error(t, err, name)
	}
}

func TestRegister_AbsoluteFileAndLayout(t *testing.T) {
	r := NewRegistry("/data", "/out")
	layout := graph.TSVLayout{IDField: 0, ParentsField: -1}
	r.Register("custom", graph.FormatTSV, Definition{File: "/srv/custom.tsv", TSV: &layout, Root: "R"})

	src, err := r.Resolve("custom", graph.FormatTSV)
	require.NoError(t, err)
	assert.Equal(t, "/srv/custom.tsv", src.InputPath)
	assert.Equal(t, layout, src.TSV)
	assert.Equal(t, "R", src.Root)
}

func TestNames_SortedAndUnique(t *testing.T) {
	names := NewRegistry("", "").Names()

	assert.IsIncreasing(t, names)
	assert.Contains(t, names, "hp")
	assert.Contains(t, names, "ctd_chem")
	count := 0
	for _, n := range names {
		if n == "medic" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestApplyConfig_OverridesBuiltin(t *testing.T) {
	r := NewRegistry("/data", "/out")
	r.ApplyConfig(&config.ProjectConfig{KnowledgeBases: []config.KnowledgeBase{
		{Name: "hp", Format: "OBO", File: "hp-2024.obo", Root: "HP:0000118"},
		{Name: "string_ppi", Format: "txt", File: "string/links.txt"},
		{Name: "broken", Format: "xml"},
	}})

	hp, err := r.Resolve("hp", graph.FormatOBO)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data", "hp-2024.obo"), hp.InputPath)
	assert.Equal(t, "HP:0000118", hp.Root)

	ppi, err := r.Resolve("string_ppi", graph.FormatTXT)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data", "string", "links.txt"), ppi.InputPath)

	assert.NotContains(t, r.Names(), "broken")
}

func TestEntries_SortedByNameThenFormat(t *testing.T) {
	r := NewRegistry("", "")
	entries := r.Entries()

	var medic []graph.Format
	for i, e := range entries {
		if i > 0 {
			prev := entries[i-1]
			assert.True(t, prev.KB < e.KB || (prev.KB == e.KB && prev.Format < e.Format), "%v before %v", prev, e)
		}
		if e.KB == "medic" {
			medic = append(medic, e.Format)
		}
	}
	assert.Equal(t, []graph.Format{graph.FormatOBO, graph.FormatTSV}, medic)
}
