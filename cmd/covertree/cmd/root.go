/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ssargent/covertree/pkg/covertree"
)

type treeCtxKey struct{}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "covertree",
	Short: "covertree - a concurrent cover-tree spatial index",
	Long: `covertree builds, queries, and serves a cover-tree nearest-neighbour
index over fixed-dimension points, persisted to a single flat-buffer file.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		treeFile, _ := cmd.Flags().GetString("tree-file")
		if treeFile == "" {
			return nil
		}
		buf, err := os.ReadFile(treeFile)
		if os.IsNotExist(err) {
			// Commands that need a tree to already exist (query, stats)
			// report a "no tree loaded" error of their own (see
			// requireTree); commands
			// that create one (build, insert on a fresh file) tolerate a
			// missing file.
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read tree file %s: %w", treeFile, err)
		}

		opts, err := treeOptionsFromFlags(cmd)
		if err != nil {
			return err
		}
		// A loaded tree keeps the base stored in the file.
		opts.Base = 0
		tree, err := covertree.Deserialize(buf, opts)
		if err != nil {
			return fmt.Errorf("failed to deserialize tree file %s: %w", treeFile, err)
		}
		cmd.SetContext(context.WithValue(cmd.Context(), treeCtxKey{}, tree))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("tree-file", "./covertree.db", "path to the serialized tree file")
	rootCmd.PersistentFlags().Float64("base", covertree.DefaultBase, "cover-tree geometric base (used only when creating a new tree)")
	rootCmd.PersistentFlags().Int("truncate-level", covertree.Unbounded, "depth below the root at which insertion stops descending; Unbounded (-2147483648) sets no floor")
}

// treeOptionsFromFlags reads the tree-construction flags shared by every
// subcommand that can create a tree from scratch.
func treeOptionsFromFlags(cmd *cobra.Command) (covertree.TreeOptions, error) {
	base, err := cmd.Flags().GetFloat64("base")
	if err != nil {
		return covertree.TreeOptions{}, err
	}
	truncateLevel, err := cmd.Flags().GetInt("truncate-level")
	if err != nil {
		return covertree.TreeOptions{}, err
	}
	return covertree.TreeOptions{Base: base, TruncateLevel: truncateLevel}, nil
}

// treeFromContext fetches the tree loaded by PersistentPreRunE, if any.
func treeFromContext(cmd *cobra.Command) (*covertree.Tree, bool) {
	tree, ok := cmd.Context().Value(treeCtxKey{}).(*covertree.Tree)
	return tree, ok
}

// saveTree serializes tree and writes it to the path carried by the
// --tree-file flag.
func saveTree(cmd *cobra.Command, tree *covertree.Tree) error {
	treeFile, _ := cmd.Flags().GetString("tree-file")
	buf, err := tree.Serialize()
	if err != nil {
		return fmt.Errorf("failed to serialize tree: %w", err)
	}
	if err := os.WriteFile(treeFile, buf, 0600); err != nil {
		return fmt.Errorf("failed to write tree file %s: %w", treeFile, err)
	}
	return nil
}
