package cmd

import (
	"github.com/athapong/ldbc-dense/pkg/runner"
	"github.com/spf13/cobra"
)

var (
	neo4jURI       string
	neo4jUsername  string
	neo4jPassword  string
	neo4jBatchSize int
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load plain vertex and edge lists into Neo4j",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if flags.Changed("neo4j-uri") {
			cfg.Neo4j.URI = neo4jURI
		}
		if flags.Changed("neo4j-user") {
			cfg.Neo4j.Username = neo4jUsername
		}
		if flags.Changed("neo4j-password") {
			cfg.Neo4j.Password = neo4jPassword
		}
		if flags.Changed("batch-size") {
			cfg.Neo4j.BatchSize = neo4jBatchSize
		}
		return runner.Load(cmd.Context(), cfg, logger)
	},
}

func init() {
	flags := loadCmd.Flags()
	flags.StringVar(&neo4jURI, "neo4j-uri", "", "Neo4j bolt URI")
	flags.StringVar(&neo4jUsername, "neo4j-user", "", "Neo4j user")
	flags.StringVar(&neo4jPassword, "neo4j-password", "", "Neo4j password")
	flags.IntVar(&neo4jBatchSize, "batch-size", 0, "rows per write transaction")
	rootCmd.AddCommand(loadCmd)
}
