package cmd

import (
	"fmt"

	"github.com/athapong/ldbc-dense/pkg/runner"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that plain vertex ids are unique and every edge endpoint exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := runner.Verify(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		entry := logger.WithFields(logrus.Fields{
			"vertices":      report.Vertices,
			"static_edges":  report.StaticEdges,
			"dynamic_edges": report.DynamicEdges,
			"duplicates":    len(report.DuplicateVertices),
			"dangling":      len(report.DanglingEndpoints),
		})
		if !report.OK() {
			entry.Error("Integrity check failed")
			return fmt.Errorf("integrity check failed: %d duplicate vertices, %d dangling endpoints",
				len(report.DuplicateVertices), len(report.DanglingEndpoints))
		}
		entry.Info("Integrity check passed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
