package main

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/validprot/validprot/internal/service"
	"github.com/validprot/validprot/internal/store"
	"github.com/validprot/validprot/internal/types"
)

var (
	minOGTDiff   int
	min16SLength int
	timeout      time.Duration
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Derive the ValidProt tables and final_dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		if conf.Database == "" {
			return errors.New("no database given, use --db or VALIDPROT_DB")
		}
		thresholds := conf.Thresholds
		if cmd.Flags().Changed("min-ogt-diff") {
			thresholds.MinOGTDiff = minOGTDiff
		}
		if cmd.Flags().Changed("min-16s-length") {
			thresholds.Min16SLength = min16SLength
		}
		if cmd.Flags().Changed("timeout") {
			conf.Timeout = timeout
			services = service.NewServices(conf)
		}

		ctx := cmd.Context()
		if err := services.Pipeline().Build(ctx, conf.Database, thresholds); err != nil {
			return err
		}

		s, err := store.Open(ctx, conf.Database)
		if err != nil {
			return err
		}
		defer s.Close()
		return logSummary(cmd, s)
	},
}

func logSummary(cmd *cobra.Command, s *store.Store) error {
	counts, err := services.Pipeline().Summary(cmd.Context(), s)
	if err != nil {
		return err
	}
	for _, c := range counts {
		logrus.WithFields(logrus.Fields{
			"table": c.Table,
			"rows":  c.Rows,
		}).Info("Derived table")
	}
	return nil
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an empty store with the learn2therm base tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		if conf.Database == "" {
			return errors.New("no database given, use --db or VALIDPROT_DB")
		}
		s, err := store.Create(cmd.Context(), conf.Database)
		if err != nil {
			return err
		}
		logrus.WithField("location", conf.Database).Info("Store created")
		return s.Close()
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "List the tables of a store and the derived row counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.Open(cmd.Context(), conf.Database)
		if err != nil {
			return err
		}
		defer s.Close()

		tables, err := s.Tables(cmd.Context())
		if err != nil {
			return err
		}
		logrus.WithField("tables", tables).Info("Store tables")

		built, err := s.HasTable(cmd.Context(), types.TableFinalDataset)
		if err != nil || !built {
			return err
		}
		return logSummary(cmd, s)
	},
}

func init() {
	buildCmd.Flags().IntVar(&minOGTDiff, "min-ogt-diff", types.DefaultMinOGTDiff, "minimum optimal growth temperature spread of an organism pair")
	buildCmd.Flags().IntVar(&min16SLength, "min-16s-length", types.DefaultMin16SLength, "minimum 16S rRNA length of both organisms")
	buildCmd.Flags().DurationVar(&timeout, "timeout", 0, "deadline for the whole build, 0 for none")
}
