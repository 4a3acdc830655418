package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/validprot/validprot/internal/service"
	"github.com/validprot/validprot/internal/store"
	"github.com/validprot/validprot/internal/types"
)

var (
	pfamPath  string
	side      string
	limit     int
	outPrefix string
	cpus      int
	press     bool
	loadHits  bool
)

var annotateCmd = &cobra.Command{
	Use:   "annotate",
	Short: "Annotate final_dataset proteins with Pfam domains using hmmscan",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("pfam") {
			conf.Annotation.PfamPath = pfamPath
		}
		if cmd.Flags().Changed("cpu") {
			conf.Annotation.CPUs = cpus
		}
		if conf.Annotation.PfamPath == "" {
			return errors.New("no Pfam database given, use --pfam or PFAM_PATH")
		}
		if !types.Side(side).Valid() {
			return fmt.Errorf("side %s is invalid. Choose one of possible values: %s %s", side, types.SideMeso, types.SideThermo)
		}
		annotation := service.NewServices(conf).Annotation()
		ctx := cmd.Context()

		s, err := store.Open(ctx, conf.Database)
		if err != nil {
			return err
		}
		proteins, err := annotation.Proteins(ctx, s, types.Side(side), limit)
		if cerr := s.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}

		if press {
			if err := annotation.Press(ctx, conf.Annotation.PfamPath); err != nil {
				return err
			}
		}

		prefix := outPrefix
		if prefix == "" {
			prefix = side
		}
		hits, err := annotation.Scan(ctx, proteins, service.ScanRequest{
			FASTAPath:  prefix + "_input.fasta",
			DomTblPath: prefix + "_output.domtblout",
		})
		if err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"side":     side,
			"proteins": len(proteins),
			"hits":     len(hits),
		}).Info("Annotation finished")

		if !loadHits {
			return nil
		}
		return storeHits(ctx, annotation, hits)
	},
}

func storeHits(ctx context.Context, annotation service.AnnotationService, hits []types.DomainHit) (err error) {
	s, err := store.Open(ctx, conf.Database)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, s.Close())
	}()
	return annotation.LoadHits(ctx, s, hits)
}

func init() {
	annotateCmd.Flags().StringVar(&pfamPath, "pfam", "", "path to Pfam-A.hmm")
	annotateCmd.Flags().StringVar(&side, "side", string(types.SideMeso), "which proteins of each pair to annotate: meso or thermo")
	annotateCmd.Flags().IntVar(&limit, "limit", 0, "annotate at most this many proteins, 0 for all")
	annotateCmd.Flags().StringVar(&outPrefix, "out", "", "prefix of the FASTA and domtblout files, defaults to the side")
	annotateCmd.Flags().IntVar(&cpus, "cpu", 0, "hmmscan worker threads (default HMMSCAN_CPUS or the number of CPUs)")
	annotateCmd.Flags().BoolVar(&press, "press", false, "run hmmpress first when the database is not pressed")
	annotateCmd.Flags().BoolVar(&loadHits, "load", false, "store the hits in pfam_domain_hits")
}
