package deps

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	t.Run("resolves command from path", func(t *testing.T) {
		status := Check(Dependency{
			Name:        "shell",
			DisplayName: "POSIX shell",
			Commands:    []string{"sh"},
		})
		assert.True(t, status.Available)
		assert.NotEmpty(t, status.Path)
		assert.NoError(t, status.CheckError)
	})

	t.Run("tries alternatives in order", func(t *testing.T) {
		status := Check(Dependency{
			Name:        "shell",
			DisplayName: "POSIX shell",
			Commands:    []string{"no-such-binary-vartab-test", "sh"},
		})
		assert.True(t, status.Available)
		assert.NotEmpty(t, status.Path)
	})

	t.Run("missing command", func(t *testing.T) {
		status := Check(Dependency{
			Name:        "vep",
			DisplayName: "VEP wrapper",
			Commands:    []string{"no-such-binary-vartab-test"},
		})
		assert.False(t, status.Available)
		require.Error(t, status.CheckError)
		assert.Contains(t, status.CheckError.Error(), "not found in PATH")
		assert.Contains(t, status.CheckError.Error(), "VEP wrapper")
	})

	t.Run("files must exist", func(t *testing.T) {
		dir := t.TempDir()
		script := filepath.Join(dir, "vep_ann.sh")
		require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\n"), 0o755))

		status := Check(Dependency{
			Name:        "vep",
			DisplayName: "VEP wrapper",
			Commands:    []string{"sh"},
			Files:       []string{script},
		})
		assert.True(t, status.Available)

		status = Check(Dependency{
			Name:        "vep",
			DisplayName: "VEP wrapper",
			Commands:    []string{"sh"},
			Files:       []string{filepath.Join(dir, "missing.sh")},
		})
		assert.False(t, status.Available)
		require.Error(t, status.CheckError)
		assert.Contains(t, status.CheckError.Error(), "does not exist")
	})

	t.Run("files only", func(t *testing.T) {
		dir := t.TempDir()
		fasta := filepath.Join(dir, "hg38.fa")
		require.NoError(t, os.WriteFile(fasta, []byte(">chr1\nACGT\n"), 0o644))

		status := Check(Dependency{
			Name:        "refseq",
			DisplayName: "reference FASTA",
			Files:       []string{fasta},
		})
		assert.True(t, status.Available)
		assert.Empty(t, status.Path)
	})
}

func TestCheckAll(t *testing.T) {
	deps := []Dependency{
		{Name: "shell", DisplayName: "POSIX shell", Commands: []string{"sh"}},
		{Name: "vep", DisplayName: "VEP wrapper", Commands: []string{"no-such-binary-vartab-test"}},
		{Name: "liftover:gnomad", DisplayName: "liftOver wrapper", Files: []string{"/no/such/dir/lift.sh"}},
	}

	statuses := CheckAll(deps)
	require.Len(t, statuses, 3)
	assert.True(t, statuses["shell"].Available)
	assert.False(t, statuses["vep"].Available)
	assert.False(t, statuses["liftover:gnomad"].Available)

	assert.Equal(t, []string{"liftover:gnomad", "vep"}, Missing(statuses))
}

func TestCheckAllEmpty(t *testing.T) {
	assert.Nil(t, CheckAll(nil))
	assert.Empty(t, Missing(nil))
}
