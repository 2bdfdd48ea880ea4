package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var generateEssential bool

var generateCmd = &cobra.Command{
	Use:   "generate <location>",
	Short: "Generate the enriched collection for one location and print it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initPipeline()
		if err != nil {
			return err
		}

		coll, err := e.Pipeline.Run(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if generateEssential {
			return enc.Encode(e.Pipeline.Essence(coll))
		}
		zap.L().Info("generate: writing full collection", zap.Int("features", coll.Len()))
		return enc.Encode(coll)
	},
}

func init() {
	generateCmd.Flags().BoolVar(&generateEssential, "essential", false, "print the compact essence projection instead of the full collection")
	rootCmd.AddCommand(generateCmd)
}
