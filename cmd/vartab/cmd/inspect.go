package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alulab/vartab/internal/cmd/output"
	"github.com/alulab/vartab/pkg/constants"
	"github.com/alulab/vartab/pkg/tab"
	"github.com/alulab/vartab/pkg/tabio"
)

var (
	inspectFlagRows int
	inspectFlagKeys []string
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <table-file>",
	Short: "Preview rows of a table file",
	Long: `Inspect reads a table file (csv or tsv, optionally gzipped) and prints
its dimensions and the first rows in the selected output format.`,
	Example: `  vartab inspect work/variants.csv
  vartab inspect work/variants.tsv.gz --rows 50
  vartab inspect work/variants.csv -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().IntVar(&inspectFlagRows, "rows", constants.DefaultPreviewRows, "Number of rows to show")
	inspectCmd.Flags().StringSliceVar(&inspectFlagKeys, "keys", nil, "Key columns of the table (default chr,pos,ref,alt)")
}

func runInspect(_ *cobra.Command, args []string) error {
	schema := tab.Default()
	if len(inspectFlagKeys) > 0 {
		var err error
		schema, err = tab.NewSchema(inspectFlagKeys...)
		if err != nil {
			return err
		}
	}

	tbl, err := tabio.ReadTable(args[0], schema)
	if err != nil {
		return fmt.Errorf("reading table: %w", err)
	}

	rows := inspectFlagRows
	if rows > constants.MaxPreviewRows {
		rows = constants.MaxPreviewRows
	}

	fmt.Fprintf(os.Stderr, "%s: %d rows, %d columns\n", args[0], tbl.Len(), len(tbl.Columns()))
	return output.Preview(os.Stdout, output.Format(globalFlags.Output), tbl, rows)
}
