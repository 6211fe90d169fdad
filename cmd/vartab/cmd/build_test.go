package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alulab/vartab/pkg/tab"
	"github.com/alulab/vartab/pkg/tabio"
)

const buildTestManifest = `table: work/variants.csv
sources:
  - name: clinvar
    type: tabular
    path: data/clinvar.csv
  - name: gnomad
    type: tabular
    path: data/gnomad.csv
enrich:
  source_count: true
export:
  path: out/variants.csv
  report: true
`

func writeBuildFixtures(t *testing.T) (dir, manifestPath string) {
	t.Helper()
	dir = t.TempDir()

	manifestPath = filepath.Join(dir, "vartab.yaml")
	require.NoError(t, os.WriteFile(manifestPath, []byte(buildTestManifest), 0o644))

	dataDir := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "clinvar.csv"), []byte(
		"chr,pos,ref,alt,significance\n"+
			"1,100,A,G,pathogenic\n"+
			"2,200,C,T,benign\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "gnomad.csv"), []byte(
		"chr,pos,ref,alt,af\n"+
			"2,200,C,T,0.01\n"+
			"3,300,G,A,0.002\n"), 0o644))
	return dir, manifestPath
}

func newTestCommand(t *testing.T) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	return cmd
}

func setBuildFlags(t *testing.T, manifestPath string) {
	t.Helper()
	prev := buildFlagManifest
	buildFlagManifest = manifestPath
	t.Cleanup(func() {
		buildFlagManifest = prev
		buildFlagTable = ""
		buildFlagSkipValidate = false
		buildFlagSkipEnrich = false
		buildFlagReport = false
	})
}

func TestRunBuild(t *testing.T) {
	dir, manifestPath := writeBuildFixtures(t)
	setBuildFlags(t, manifestPath)

	require.NoError(t, runBuild(newTestCommand(t), nil))

	// The working table holds all three variants with indicator and
	// enrichment columns.
	tbl, err := tabio.ReadTable(filepath.Join(dir, "work", "variants.csv"), tab.Default())
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())
	assert.Contains(t, tbl.Columns(), "clinvar")
	assert.Contains(t, tbl.Columns(), "gnomad")
	assert.Contains(t, tbl.Columns(), "significance")
	assert.Contains(t, tbl.Columns(), "dbs_count")
	assert.Equal(t, tab.String("2"), tbl.Value(1, "dbs_count"))

	// Export and report land next to each other.
	_, err = os.Stat(filepath.Join(dir, "out", "variants.csv"))
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "out", "variants_report.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Variant Table Build")
	assert.Contains(t, string(data), "clinvar")
}

func TestRunBuildIncremental(t *testing.T) {
	dir, manifestPath := writeBuildFixtures(t)
	setBuildFlags(t, manifestPath)

	require.NoError(t, runBuild(newTestCommand(t), nil))
	require.NoError(t, runBuild(newTestCommand(t), nil))

	// The second run resumes from the saved table and finds every
	// variant already present.
	tbl, err := tabio.ReadTable(filepath.Join(dir, "work", "variants.csv"), tab.Default())
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())
}

func TestRunBuildBadManifest(t *testing.T) {
	setBuildFlags(t, filepath.Join(t.TempDir(), "absent.yaml"))

	err := runBuild(newTestCommand(t), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading manifest")
}

func TestRunEnrich(t *testing.T) {
	dir, manifestPath := writeBuildFixtures(t)
	setBuildFlags(t, manifestPath)
	buildFlagSkipEnrich = true
	require.NoError(t, runBuild(newTestCommand(t), nil))

	tbl, err := tabio.ReadTable(filepath.Join(dir, "work", "variants.csv"), tab.Default())
	require.NoError(t, err)
	require.NotContains(t, tbl.Columns(), "dbs_count")

	prev := enrichFlagManifest
	enrichFlagManifest = manifestPath
	t.Cleanup(func() {
		enrichFlagManifest = prev
		enrichFlagTable = ""
	})

	require.NoError(t, runEnrich(newTestCommand(t), nil))

	tbl, err = tabio.ReadTable(filepath.Join(dir, "work", "variants.csv"), tab.Default())
	require.NoError(t, err)
	assert.Contains(t, tbl.Columns(), "dbs_count")
	assert.Equal(t, tab.String("1"), tbl.Value(0, "dbs_count"))
}

func TestRunInspect(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "variants.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"chr,pos,ref,alt\n1,100,A,G\n"), 0o644))

	prevRows := inspectFlagRows
	inspectFlagRows = 5
	t.Cleanup(func() {
		inspectFlagRows = prevRows
		inspectFlagKeys = nil
	})

	require.NoError(t, runInspect(newTestCommand(t), []string{path}))

	// A file without the key columns fails with a useful error.
	bad := filepath.Join(dir, "other.csv")
	require.NoError(t, os.WriteFile(bad, []byte("a,b\n1,2\n"), 0o644))
	err := runInspect(newTestCommand(t), []string{bad})
	require.Error(t, err)
}
