package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ssargent/covertree/pkg/covertree"
	"github.com/ssargent/covertree/pkg/point"
)

// insertCmd represents the insert command.
var insertCmd = &cobra.Command{
	Use:   "insert <uid> <comma,separated,coords>",
	Short: "Insert a single point into the tree",
	Long: `Insert adds one point to the tree at --tree-file, creating the
file with the given dimension if it does not exist yet.

Example:
  covertree insert point-42 "1.0,2.0,3.0"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid := args[0]
		coords, err := parseCoords(args[1])
		if err != nil {
			return err
		}

		tree, ok := treeFromContext(cmd)
		if !ok {
			opts, err := treeOptionsFromFlags(cmd)
			if err != nil {
				return err
			}
			tree = covertree.NewEmpty(len(coords), opts)
		}

		inserted, err := tree.Insert(point.New(coords), uid, nil)
		if err != nil {
			return fmt.Errorf("insert failed: %w", err)
		}
		if err := saveTree(cmd, tree); err != nil {
			return err
		}
		if inserted {
			fmt.Printf("Inserted %s (n=%d)\n", uid, tree.Len())
		} else {
			fmt.Printf("%s already present at that location, tree unchanged\n", uid)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(insertCmd)
}

func parseCoords(s string) ([]float64, error) {
	fields := strings.Split(s, ",")
	coords := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid coordinate %q: %w", f, err)
		}
		coords[i] = v
	}
	return coords, nil
}
