package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/water-fountains/datablue/internal/registry"
)

var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "List the configured processing locations",
	RunE: func(cmd *cobra.Command, args []string) error {
		locations, err := registry.LoadLocations(cfg.Registry.LocationsPath)
		if err != nil {
			return err
		}
		for _, name := range locations.Names() {
			loc, _ := locations.Get(name)
			b := loc.BoundingBox
			fmt.Printf("%-10s %-12s lat %.4f..%.4f lng %.4f..%.4f\n",
				name, loc.Label, b.LatMin, b.LatMax, b.LngMin, b.LngMax)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(locationsCmd)
}
