package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/water-fountains/datablue/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "datablue",
	Short: "Water fountain data aggregation service",
	Long:  "Aggregates drinking-water fountain records from OpenStreetMap and Wikidata, conflates them into one collection per location, enriches them with galleries, summaries and attribution, and serves the result over a read-only API.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
