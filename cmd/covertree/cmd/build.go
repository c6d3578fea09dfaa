package cmd

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/ssargent/covertree/pkg/covertree"
)

// buildCmd represents the build command.
var buildCmd = &cobra.Command{
	Use:   "build <csv-file>",
	Short: "Bulk-load a tree from a CSV file of points",
	Long: `Build reads a CSV file with one point per row (no header, all
columns numeric) and inserts every row into a fresh tree using bounded
worker concurrency, then writes the result to --tree-file.

Example:
  covertree build points.csv --workers 8`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workers, err := cmd.Flags().GetInt("workers")
		if err != nil {
			return err
		}

		matrix, err := readMatrixCSV(args[0])
		if err != nil {
			return err
		}

		opts, err := treeOptionsFromFlags(cmd)
		if err != nil {
			return err
		}

		tree, err := covertree.NewFromMatrix(context.Background(), matrix, workers, opts)
		if err != nil {
			return fmt.Errorf("failed to build tree: %w", err)
		}

		if err := saveTree(cmd, tree); err != nil {
			return err
		}
		fmt.Printf("Built tree with %d points (dim=%d) from %s\n", tree.Len(), tree.Dim(), args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().Int("workers", 4, "number of concurrent insertion workers")
}

// readMatrixCSV parses a headerless, all-numeric CSV file into a
// covertree.Matrix, row-major.
func readMatrixCSV(path string) (covertree.Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return covertree.Matrix{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return covertree.Matrix{}, fmt.Errorf("failed to parse %s as CSV: %w", path, err)
	}
	if len(records) == 0 {
		return covertree.Matrix{}, fmt.Errorf("%s contains no rows", path)
	}

	cols := len(records[0])
	data := make([]float64, 0, len(records)*cols)
	for i, row := range records {
		if len(row) != cols {
			return covertree.Matrix{}, fmt.Errorf("row %d has %d columns, want %d", i, len(row), cols)
		}
		for _, field := range row {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return covertree.Matrix{}, fmt.Errorf("row %d: %w", i, err)
			}
			data = append(data, v)
		}
	}
	return covertree.Matrix{Data: data, Rows: len(records), Cols: cols}, nil
}
