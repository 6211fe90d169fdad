package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alulab/vartab"
	"github.com/alulab/vartab/internal/manifest"
	"github.com/alulab/vartab/pkg/errors"
)

var (
	enrichFlagManifest string
	enrichFlagTable    string
)

// enrichCmd represents the enrich command
var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Run enrichment steps over an existing table",
	Long: `Enrich runs the manifest's enrichment steps over an already built
table and writes the result back in place. Use it to add or refresh
derived columns without re-merging the sources.`,
	Example: `  vartab enrich
  vartab enrich --manifest builds/cohort.yaml
  vartab enrich --table work/variants.csv`,
	RunE: runEnrich,
}

func init() {
	rootCmd.AddCommand(enrichCmd)

	enrichCmd.Flags().StringVarP(&enrichFlagManifest, "manifest", "m", "vartab.yaml", "Manifest file describing the build")
	enrichCmd.Flags().StringVar(&enrichFlagTable, "table", "", "Table file to enrich (overrides the manifest table entry)")
}

func runEnrich(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	m, err := manifest.Load(enrichFlagManifest)
	if err != nil {
		return fmt.Errorf("loading manifest: %w", err)
	}
	steps, err := m.Enrichers()
	if err != nil {
		return fmt.Errorf("building enrichment steps: %w", err)
	}
	if len(steps) == 0 {
		fmt.Fprintln(os.Stderr, "Manifest configures no enrichment steps")
		return nil
	}

	path := enrichFlagTable
	if path == "" {
		path = m.TablePath()
	}
	if path == "" {
		path = m.ExportPath()
	}
	if path == "" {
		return errors.NewConfigError("table", nil,
			"no table file to enrich; set table or export.path in the manifest")
	}

	schema, err := m.Schema()
	if err != nil {
		return err
	}
	client, err := vartab.New(
		vartab.WithSchema(schema),
		vartab.WithTableFile(path),
	)
	if err != nil {
		return fmt.Errorf("loading table: %w", err)
	}

	if err := client.Enrich(ctx, steps...); err != nil {
		return fmt.Errorf("enriching table: %w", err)
	}
	if err := client.Export(path); err != nil {
		return fmt.Errorf("saving table: %w", err)
	}

	for _, step := range steps {
		fmt.Printf("wrote %s (%s)\n", step.Column(), step.Name())
	}
	return nil
}
