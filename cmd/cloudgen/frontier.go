package main

import (
	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Frontier/internal/frontier"
)

var frontierCmd = &cobra.Command{
	Use:   "frontier",
	Short: "Reduce the input points to their non-dominated subset",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ind, err := frontier.ParseIndustry(industry)
		if err != nil {
			return err
		}
		points, err := readFrontier(cmd)
		if err != nil {
			return err
		}
		front := frontier.ComputeFrontier(points, ind.Directions())
		logger.Debug("frontier computed", "in", len(points), "out", len(front))
		return writeJSON(cmd.OutOrStdout(), front)
	},
}

var shapesCmd = &cobra.Command{
	Use:   "shapes",
	Short: "List cloud shape presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		shapes := make([]frontier.Shape, 0, len(frontier.ShapeNames()))
		for _, name := range frontier.ShapeNames() {
			s, err := frontier.ShapeByName(name)
			if err != nil {
				return err
			}
			shapes = append(shapes, s)
		}
		return writeJSON(cmd.OutOrStdout(), shapes)
	},
}
