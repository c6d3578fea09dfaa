package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssargent/covertree/pkg/api"
	"github.com/ssargent/covertree/pkg/config"
	"github.com/ssargent/covertree/pkg/covertree"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the diagnostics and query HTTP server",
	Long: `Start an HTTP server exposing the tree at --tree-file for
queries, insertion, and Prometheus metrics scraping.

Example:
  covertree serve --config ~/.config/covertree/config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		var cfg *config.Config
		if config.ConfigExists(configPath) {
			loaded, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg = loaded
		} else {
			cfg = config.DefaultConfig()
		}

		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.Port = port
		}
		if bind, _ := cmd.Flags().GetString("bind"); bind != "" {
			cfg.Bind = bind
		}

		truncateLevel := cfg.TruncateLevel
		if truncateLevel == config.Unbounded {
			truncateLevel = covertree.Unbounded
		}

		tree, ok := treeFromContext(cmd)
		if !ok {
			tree = covertree.NewEmpty(cfg.Dimension, covertree.TreeOptions{
				Base:          cfg.Base,
				TruncateLevel: truncateLevel,
			})
		}

		return api.StartServer(tree, api.ServerConfig{Port: cfg.Port, Bind: cfg.Bind})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("config", "", "path to a covertree config.yaml; defaults to ~/.config/covertree/config.yaml")
	serveCmd.Flags().IntP("port", "p", 0, "override the configured port")
	serveCmd.Flags().String("bind", "", "override the configured bind address")
}
