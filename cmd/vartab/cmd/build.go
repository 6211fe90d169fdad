package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentstation/utc"
	"github.com/spf13/cobra"

	"github.com/alulab/vartab"
	"github.com/alulab/vartab/internal/cmd/output"
	"github.com/alulab/vartab/internal/deps"
	"github.com/alulab/vartab/internal/manifest"
	"github.com/alulab/vartab/internal/report"
	"github.com/alulab/vartab/pkg/constants"
	"github.com/alulab/vartab/pkg/logging"
	"github.com/alulab/vartab/pkg/merge"
	"github.com/alulab/vartab/pkg/tabio"
)

var (
	buildFlagManifest     string
	buildFlagTable        string
	buildFlagSkipValidate bool
	buildFlagSkipEnrich   bool
	buildFlagReport       bool
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the consolidated variant table from a manifest",
	Long: `Build runs a complete table build as described by a manifest.

The command will:
1. Seed the table from the manifest's table file, if it exists
2. Merge every contributor source in manifest order
3. Run validation sources against the merged table
4. Run the configured enrichment steps
5. Save the table, write the export, and optionally a markdown report

A source that fails to load or violates the table contract aborts the
build; merges that already completed stay in the saved table.`,
	Example: `  vartab build
  vartab build --manifest builds/cohort.yaml
  vartab build --table work/variants.csv --skip-enrich
  vartab build --report`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&buildFlagManifest, "manifest", "m", "vartab.yaml", "Manifest file describing the build")
	buildCmd.Flags().StringVar(&buildFlagTable, "table", "", "Table file to seed and save (overrides the manifest table entry)")
	buildCmd.Flags().BoolVar(&buildFlagSkipValidate, "skip-validate", false, "Skip validation sources")
	buildCmd.Flags().BoolVar(&buildFlagSkipEnrich, "skip-enrich", false, "Skip enrichment steps")
	buildCmd.Flags().BoolVar(&buildFlagReport, "report", false, "Write a markdown build report next to the export")
}

func runBuild(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	m, err := manifest.Load(buildFlagManifest)
	if err != nil {
		return fmt.Errorf("loading manifest: %w", err)
	}
	schema, err := m.Schema()
	if err != nil {
		return fmt.Errorf("reading key schema: %w", err)
	}
	registry, err := m.Registry()
	if err != nil {
		return fmt.Errorf("building sources: %w", err)
	}

	// Fail on missing wrapper scripts and reference files up front rather
	// than partway through a merge.
	statuses := deps.CheckAll(m.Dependencies())
	if missing := deps.Missing(statuses); len(missing) > 0 {
		for _, name := range missing {
			fmt.Fprintf(os.Stderr, "missing dependency %s: %v\n", name, statuses[name].CheckError)
		}
		return fmt.Errorf("missing build dependencies: %s", strings.Join(missing, ", "))
	}

	opts := []vartab.Option{
		vartab.WithSchema(schema),
		vartab.WithRegistry(registry),
	}

	// The table file seeds the build when it exists and receives the
	// result either way, so repeated builds are incremental.
	tablePath := buildFlagTable
	if tablePath == "" {
		tablePath = m.TablePath()
	}
	if tablePath != "" {
		if _, serr := os.Stat(tablePath); serr == nil {
			opts = append(opts, vartab.WithTableFile(tablePath))
			logging.Info().Str("table", tablePath).Msg("Resuming from existing table")
		}
	}

	client, err := vartab.New(opts...)
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}
	client.OnMerge(func(stats merge.Stats) {
		fmt.Printf("merged %s: %d existing, %d new, %d dropped\n",
			stats.Source, stats.Existing, stats.New, stats.Dropped)
	})

	merges, err := client.MergeAll(ctx)
	if err != nil {
		return fmt.Errorf("merging sources: %w", err)
	}

	var validations []*merge.Stats
	if !buildFlagSkipValidate {
		validations, err = client.Validate(ctx)
		if err != nil {
			return fmt.Errorf("validating table: %w", err)
		}
		for _, stats := range validations {
			fmt.Printf("validated %s: %d of %d loaded variants in table\n",
				stats.Source, stats.Existing, stats.Loaded)
		}
	}

	var enriched []string
	if !buildFlagSkipEnrich {
		steps, serr := m.Enrichers()
		if serr != nil {
			return fmt.Errorf("building enrichment steps: %w", serr)
		}
		if len(steps) > 0 {
			if err := client.Enrich(ctx, steps...); err != nil {
				return fmt.Errorf("enriching table: %w", err)
			}
			for _, step := range steps {
				enriched = append(enriched, step.Column())
			}
		}
	}

	tbl, err := client.Table()
	if err != nil {
		return err
	}

	if tablePath != "" {
		if err := ensureDir(tablePath); err != nil {
			return fmt.Errorf("saving table: %w", err)
		}
		if err := client.Export(tablePath); err != nil {
			return fmt.Errorf("saving table: %w", err)
		}
	}

	exportPath := m.ExportPath()
	var format tabio.Format
	if exportPath != "" {
		format, err = m.ExportFormat()
		if err != nil {
			return err
		}
		if err := ensureDir(exportPath); err != nil {
			return fmt.Errorf("exporting table: %w", err)
		}
		if err := client.ExportAs(exportPath, format); err != nil {
			return fmt.Errorf("exporting table: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Exported %d rows to %s\n", tbl.Len(), exportPath)
	}

	if exportPath != "" && (buildFlagReport || m.Export.Report) {
		rep := &report.Report{
			Table:       exportPath,
			Format:      format.String(),
			Rows:        tbl.Len(),
			Columns:     len(tbl.Columns()),
			Merges:      merges,
			Validations: validations,
			Enrichments: enriched,
			FinishedAt:  utc.Now(),
		}
		reportPath := report.PathFor(exportPath)
		if err := rep.WriteFile(reportPath); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Wrote report to %s\n", reportPath)
	}

	fmt.Printf("\ntable: %d rows, %d columns\n\n", tbl.Len(), len(tbl.Columns()))
	return output.Stats(os.Stdout, output.Format(globalFlags.Output), merges)
}

// ensureDir creates the parent directory for an output file.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, constants.DirPermissions)
}
