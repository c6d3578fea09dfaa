package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/ssargent/covertree/pkg/covertree"
	"github.com/ssargent/covertree/pkg/point"
)

// queryCmd is the parent of the nearest/knn/range/furthest query verbs.
var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the tree at --tree-file",
}

var queryNearestCmd = &cobra.Command{
	Use:   "nearest <comma,separated,coords>",
	Short: "Find the nearest neighbour of a point",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := requireTree(cmd)
		if err != nil {
			return err
		}
		q, err := parseCoords(args[0])
		if err != nil {
			return err
		}
		n, d, err := tree.NearestNeighbour(point.New(q))
		if err != nil {
			return err
		}
		fmt.Printf("%s\tdist=%g\tlevel=%d\n", n.UID(), d, n.Level())
		return nil
	},
}

var queryKNNCmd = &cobra.Command{
	Use:   "knn <k> <comma,separated,coords>",
	Short: "Find the k nearest neighbours of a point",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := requireTree(cmd)
		if err != nil {
			return err
		}
		k, err := parsePositiveInt(args[0])
		if err != nil {
			return err
		}
		q, err := parseCoords(args[1])
		if err != nil {
			return err
		}

		beamWidth, err := cmd.Flags().GetInt("beam-width")
		if err != nil {
			return err
		}

		var results []covertree.Neighbour
		if beamWidth > 0 {
			results, err = tree.KNearestNeighboursBeam(point.New(q), k, beamWidth)
		} else {
			results, err = tree.KNearestNeighbours(point.New(q), k)
		}
		if err != nil {
			return err
		}
		for _, r := range results {
			fmt.Printf("%s\tdist=%g\tlevel=%d\n", r.Node.UID(), r.Dist, r.Node.Level())
		}
		return nil
	},
}

var queryRangeCmd = &cobra.Command{
	Use:   "range <radius> <comma,separated,coords>",
	Short: "Find every point within radius of a point",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := requireTree(cmd)
		if err != nil {
			return err
		}
		r, err := parseFloat(args[0])
		if err != nil {
			return err
		}
		q, err := parseCoords(args[1])
		if err != nil {
			return err
		}
		results, err := tree.RangeNeighbours(point.New(q), r)
		if err != nil {
			return err
		}
		for _, n := range results {
			fmt.Printf("%s\tdist=%g\tlevel=%d\n", n.Node.UID(), n.Dist, n.Node.Level())
		}
		return nil
	},
}

var queryFurthestCmd = &cobra.Command{
	Use:   "furthest <comma,separated,coords>",
	Short: "Find the furthest neighbour of a point",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := requireTree(cmd)
		if err != nil {
			return err
		}
		q, err := parseCoords(args[0])
		if err != nil {
			return err
		}
		n, d, err := tree.FurthestNeighbour(point.New(q))
		if err != nil {
			return err
		}
		fmt.Printf("%s\tdist=%g\tlevel=%d\n", n.UID(), d, n.Level())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.AddCommand(queryNearestCmd, queryKNNCmd, queryRangeCmd, queryFurthestCmd)
	queryKNNCmd.Flags().Int("beam-width", 0, "cap on children pushed per expanded node; 0 disables beam pruning")
}

// requireTree fetches the tree loaded from --tree-file by
// PersistentPreRunE, erroring out for queries since there is nothing
// useful to query against a tree that was never built.
func requireTree(cmd *cobra.Command) (*covertree.Tree, error) {
	tree, ok := treeFromContext(cmd)
	if !ok {
		return nil, fmt.Errorf("no tree loaded from %s; run build or insert first", mustGetString(cmd, "tree-file"))
	}
	return tree, nil
}

func mustGetString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func parsePositiveInt(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q: %w", s, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("k must be positive, got %d", v)
	}
	return v, nil
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return v, nil
}
