package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/validprot/validprot/internal/config"
	"github.com/validprot/validprot/internal/service"
)

func init() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
}

var (
	configPath string
	database   string
	verbose    bool

	conf     config.Config
	services service.Services
)

var rootCmd = &cobra.Command{
	Use:   "validprot",
	Short: "Build the ValidProt protein-pair dataset from a learn2therm DuckDB store",
	Long: `validprot derives the ValidProt tables from the learn2therm organism and
protein tables, samples the final dataset and annotates its proteins with Pfam
domains using HMMER.

Settings are read from an optional YAML file (--config), then from the
environment (VALIDPROT_DB, MIN_OGT_DIFF, MIN_16S_LENGTH, PFAM_PATH, HMMSCAN,
HMMSCAN_CPUS, PFAM_MIRROR, RATE, TIMEOUT), then from flags.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		conf, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("db") {
			conf.Database = database
		}
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
			conf.Annotation.Verbose = true
		}
		services = service.NewServices(conf)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&database, "db", "", "path to the learn2therm DuckDB file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "debug logging and HMMER output")

	rootCmd.AddCommand(buildCmd, initCmd, inspectCmd, sampleCmd, annotateCmd, downloadCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		logrus.WithError(err).Fatal("validprot failed")
	}
}
