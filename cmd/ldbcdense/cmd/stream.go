package cmd

import (
	"github.com/athapong/ldbc-dense/pkg/runner"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Merge updateStream*.csv files into vertex and edge event logs",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := runner.Stream(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{
			"files":    result.Files,
			"vertices": result.VertexEvents,
			"edges":    result.EdgeEvents,
		}).Info("Stream ingest finished")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(streamCmd)
}
