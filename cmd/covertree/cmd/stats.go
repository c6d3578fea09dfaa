package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// statsCmd represents the stats command.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print summary statistics for the tree at --tree-file",
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := requireTree(cmd)
		if err != nil {
			return err
		}
		fmt.Printf("points:      %d\n", tree.Len())
		fmt.Printf("dimension:   %d\n", tree.Dim())
		fmt.Printf("base:        %g\n", tree.Base())
		fmt.Printf("min scale:   %d\n", tree.MinScale())
		fmt.Printf("max scale:   %d\n", tree.MaxScale())
		fmt.Println()
		tree.PrintStats(os.Stdout)
		return nil
	},
}

var statsLevelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "Print a per-level node count histogram",
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := requireTree(cmd)
		if err != nil {
			return err
		}
		tree.PrintLevels(os.Stdout)
		return nil
	},
}

var statsDegreesCmd = &cobra.Command{
	Use:   "degrees",
	Short: "Print a child-count histogram",
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := requireTree(cmd)
		if err != nil {
			return err
		}
		tree.PrintDegrees(os.Stdout)
		return nil
	},
}

var statsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the covering and separation invariants hold",
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := requireTree(cmd)
		if err != nil {
			return err
		}
		if err := tree.CheckCovering(); err != nil {
			return fmt.Errorf("invariant violation: %w", err)
		}
		fmt.Println("ok: covering and separation invariants hold")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.AddCommand(statsLevelsCmd, statsDegreesCmd, statsCheckCmd)
}
