package cmd

import (
	"github.com/athapong/ldbc-dense/pkg/runner"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	hashIDs           bool
	hashSeed          uint64
	workers           int
	scaleFactor       string
	reserveDictionary bool
)

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Densify the static/ and dynamic/ LDBC directories",
	Long: `Transform rewrites every vertex and edge file of <input>/static and
<input>/dynamic with dense ids. Output goes to <output>/vertex,
<output>/edges/static, <output>/edges/dynamic and <output>/dic.json.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if flags.Changed("hash") {
			cfg.HashIDs = hashIDs
		}
		if flags.Changed("seed") {
			cfg.HashSeed = hashSeed
		}
		if flags.Changed("workers") {
			cfg.Workers = workers
		}
		if flags.Changed("sf") {
			cfg.ScaleFactor = scaleFactor
		}

		summary, err := runner.Transform(cmd.Context(), cfg, runner.TransformOptions{
			ReserveDictionary: reserveDictionary,
		}, logger)
		if err != nil {
			return err
		}

		logger.WithFields(logrus.Fields{
			"run_id":     summary.RunID,
			"files":      len(summary.Outputs),
			"dictionary": summary.DictionarySize,
			"time_cost":  summary.Duration.String(),
		}).Info("Transform finished")
		return nil
	},
}

func init() {
	flags := transformCmd.Flags()
	flags.BoolVar(&hashIDs, "hash", false, "assign hashed dense ids instead of prefixed ids")
	flags.Uint64Var(&hashSeed, "seed", 0, "seed for hash collision suffixes")
	flags.IntVar(&workers, "workers", 1, "files transformed concurrently within a pass")
	flags.StringVar(&scaleFactor, "sf", "0.1", "LDBC scale factor of the input")
	flags.BoolVar(&reserveDictionary, "reserve-dictionary", false, "never reuse dense ids of an existing dic.json")
	rootCmd.AddCommand(transformCmd)
}
