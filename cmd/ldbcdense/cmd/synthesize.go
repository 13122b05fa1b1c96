package cmd

import (
	"github.com/athapong/ldbc-dense/pkg/runner"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var synthesizeCmd = &cobra.Command{
	Use:   "synthesize",
	Short: "Build plain vertex and edge lists from a transformed directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := runner.Synthesize(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{
			"vertices":      result.Vertices,
			"static_edges":  result.StaticEdges,
			"dynamic_edges": result.DynamicEdges,
		}).Info("Synthesis finished")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(synthesizeCmd)
}
