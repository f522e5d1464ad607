package main

import (
	"github.com/go-sif/progressive/config"
	"github.com/spf13/cobra"
)

var (
	configPath string
	settings   = config.New()

	rootCmd = &cobra.Command{
		Use:   "progressive",
		Short: "Progressive, partition-parallel aggregate queries over partitioned datasets",
		Long: `progressive answers Select, Aggregate, Frequency and Histogram queries over a
dataset split into partitions, reporting a refined result after every partition.`,
		SilenceUsage: true,
	}

	runCmd = &cobra.Command{
		Use:   "run [submission files...]",
		Short: "Run queries over a dataset, printing snapshots as they progress",
		Long: `Run reads query submissions, one JSON object per line, from the given files
or from stdin, and prints a JSON snapshot of each query whenever it progresses.`,
		RunE: runQueriesCmd,
	}

	workerCmd = &cobra.Command{
		Use:   "worker",
		Short: "Serve the Jobs of a remote run over a local copy of a dataset",
		RunE:  runWorkerCmd,
	}

	splitCmd = &cobra.Command{
		Use:   "split <output dir> <input files...>",
		Short: "Split CSV files into a partitioned dataset directory",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runSplitCmd,
	}
)

// mustBind panics if binding a flag to a configuration key failed
func mustBind(err error) {
	if err != nil {
		panic(err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML, JSON or TOML configuration file")
	rootCmd.PersistentFlags().String("log-level", "info", "minimum level of logged messages")
	rootCmd.PersistentFlags().String("data-dir", ".", "dataset directory containing a metadata.json")
	mustBind(settings.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level")))
	mustBind(settings.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir")))

	runCmd.Flags().Int("num-workers", 0, "number of concurrently executing jobs (defaults to the number of CPUs)")
	runCmd.Flags().StringSlice("workers", nil, "addresses of remote workers; jobs run locally if empty")
	runCmd.Flags().String("metrics-addr", "", "address to serve Prometheus metrics on")
	runCmd.Flags().Duration("snapshot-interval", 0, "period between progress reports")
	mustBind(settings.BindPFlag("num_workers", runCmd.Flags().Lookup("num-workers")))
	mustBind(settings.BindPFlag("workers", runCmd.Flags().Lookup("workers")))
	mustBind(settings.BindPFlag("metrics_addr", runCmd.Flags().Lookup("metrics-addr")))
	mustBind(settings.BindPFlag("snapshot_interval", runCmd.Flags().Lookup("snapshot-interval")))

	workerCmd.Flags().String("host", "", "address to bind to")
	workerCmd.Flags().Int("port", 0, "port to bind to")
	mustBind(settings.BindPFlag("host", workerCmd.Flags().Lookup("host")))
	mustBind(settings.BindPFlag("port", workerCmd.Flags().Lookup("port")))

	splitCmd.Flags().Int("num-rows", 0, "number of rows in each batch")
	splitCmd.Flags().Int("num-batches", 0, "number of batches to scatter rows across at random")
	splitCmd.Flags().StringSlice("fields", nil, "columns to keep, in order")
	splitCmd.Flags().Bool("shuffle", false, "shuffle rows within each batch")
	splitCmd.Flags().Bool("compress", false, "write zstd-compressed batches")
	splitCmd.Flags().Bool("infer-types", true, "record the type of each column in metadata.json")
	splitCmd.Flags().Int64("seed", 0, "seed for random assignment and shuffling (random if 0)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(workerCmd)
	rootCmd.AddCommand(splitCmd)
}

func loadConfig() (*config.Config, error) {
	return config.Load(settings, configPath)
}
