package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/validprot/validprot/internal/store"
	"github.com/validprot/validprot/internal/types"
)

type PipelineService interface {
	// Build validates the thresholds, opens the store at location, derives
	// every table and closes the store whether or not derivation succeeded.
	Build(ctx context.Context, location string, thresholds types.Thresholds) error
	Derive(ctx context.Context, s *store.Store, thresholds types.Thresholds) error
	Summary(ctx context.Context, s *store.Store) ([]TableCount, error)
}

type TableCount struct {
	Table types.Table
	Rows  int64
}

type derivation struct {
	table     types.Table
	statement string
}

// Each statement reads only tables produced by the statements before it and
// the source tables. Thresholds are read from derivation_thresholds, which is
// written with bound parameters before the first step.
var derivations = []derivation{
	{
		table: types.TableValidOrganismPairs,
		statement: `CREATE OR REPLACE TABLE valid_organism_pairs AS
			SELECT * FROM organism_pairs WHERE is_pair = true`,
	},
	{
		table: types.TableInvolvedOrganisms,
		statement: `CREATE OR REPLACE TABLE involved_organisms AS
			SELECT * FROM organisms
			WHERE organism_id IN (SELECT meso_organism_id FROM valid_organism_pairs)
			OR organism_id IN (SELECT thermo_organism_id FROM valid_organism_pairs)`,
	},
	{
		table: types.TableFilteredOrganismPairs,
		statement: `CREATE OR REPLACE TABLE filtered_organism_pairs AS
			SELECT vop.*,
				organisms_m.ogt AS meso_ogt,
				organisms_t.ogt AS thermo_ogt,
				organisms_t.ogt - organisms_m.ogt AS ogt_diff,
				organisms_m.len_16s AS meso_16s_len,
				organisms_t.len_16s AS thermo_16s_len
			FROM valid_organism_pairs AS vop
			JOIN involved_organisms AS organisms_m ON (vop.meso_organism_id = organisms_m.organism_id)
			JOIN involved_organisms AS organisms_t ON (vop.thermo_organism_id = organisms_t.organism_id)
			CROSS JOIN derivation_thresholds AS th
			WHERE organisms_t.ogt - organisms_m.ogt >= th.min_ogt_diff
			AND organisms_m.len_16s >= th.min_16s_length
			AND organisms_t.len_16s >= th.min_16s_length`,
	},
	{
		table: types.TableFilteredProteinPairs,
		statement: `CREATE OR REPLACE TABLE filtered_protein_pairs AS
			SELECT pp.*,
				fop.meso_organism_id,
				fop.thermo_organism_id,
				fop.local_gap_compressed_percent_id AS local_gap_compressed_percent_id_16s,
				fop.scaled_local_query_percent_id AS scaled_local_query_percent_id_16s,
				fop.scaled_local_symmetric_percent_id AS scaled_local_symmetric_percent_id_16s,
				fop.query_align_cov AS query_align_cov_16s,
				fop.subject_align_cov AS subject_align_cov_16s,
				fop.bit_score AS bit_score_16s,
				fop.meso_ogt,
				fop.thermo_ogt,
				fop.ogt_diff
			FROM protein_pairs AS pp
			INNER JOIN filtered_organism_pairs AS fop ON (pp.organism_pair_id = fop.organism_pair_id)`,
	},
	{
		table: types.TableInvolvedProteins,
		statement: `CREATE OR REPLACE TABLE involved_proteins AS
			SELECT * FROM proteins
			WHERE protein_id IN (SELECT meso_protein_id FROM filtered_protein_pairs)
			OR protein_id IN (SELECT thermo_protein_id FROM filtered_protein_pairs)`,
	},
	{
		table: types.TableFinalDataset,
		statement: `CREATE OR REPLACE TABLE final_dataset AS
			SELECT fpp.*,
				proteins_m.protein_seq AS meso_protein_seq,
				proteins_t.protein_seq AS thermo_protein_seq,
				proteins_m.protein_desc AS meso_protein_desc,
				proteins_t.protein_desc AS thermo_protein_desc,
				proteins_m.protein_len AS meso_protein_len,
				proteins_t.protein_len AS thermo_protein_len
			FROM filtered_protein_pairs AS fpp
			JOIN involved_proteins AS proteins_m ON (fpp.meso_protein_id = proteins_m.protein_id)
			JOIN involved_proteins AS proteins_t ON (fpp.thermo_protein_id = proteins_t.protein_id)
			ORDER BY fpp.protein_pair_id`,
	},
}

type pipelineService struct {
	timeout time.Duration
}

func newPipelineService(timeout time.Duration) PipelineService {
	return &pipelineService{timeout: timeout}
}

func (p pipelineService) Build(ctx context.Context, location string, thresholds types.Thresholds) (err error) {
	thresholds, err = thresholds.Validate()
	if err != nil {
		return err
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	s, err := store.Open(ctx, location)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	return p.Derive(ctx, s, thresholds)
}

func (p pipelineService) Derive(ctx context.Context, s *store.Store, thresholds types.Thresholds) error {
	thresholds, err := thresholds.Validate()
	if err != nil {
		return err
	}

	runID := uuid.New()
	log := logrus.WithFields(logrus.Fields{
		"run":            runID.String(),
		"min_ogt_diff":   thresholds.MinOGTDiff,
		"min_16s_length": thresholds.Min16SLength,
	})
	start := time.Now()

	if err := p.recordThresholds(ctx, s, runID, thresholds); err != nil {
		return &types.DerivationError{Table: types.TableDerivationThresholds, Err: err}
	}

	for _, step := range derivations {
		if err := ctx.Err(); err != nil {
			return &types.DerivationError{Table: step.table, Err: err}
		}

		stepStart := time.Now()
		log.WithField("table", step.table).Info("Constructing table")
		if err := s.Exec(ctx, step.statement); err != nil {
			log.WithField("table", step.table).WithError(err).Error("Derivation failed")
			return &types.DerivationError{Table: step.table, Err: err}
		}
		log.WithFields(logrus.Fields{
			"table":   step.table,
			"elapsed": time.Since(stepStart).String(),
		}).Info("Finished constructing table")
	}

	log.WithField("elapsed", time.Since(start).String()).Info("Derivation completed")
	return nil
}

func (p pipelineService) recordThresholds(ctx context.Context, s *store.Store, runID uuid.UUID, thresholds types.Thresholds) error {
	err := s.Exec(ctx, `CREATE OR REPLACE TABLE derivation_thresholds (
		run_id VARCHAR NOT NULL,
		min_ogt_diff BIGINT NOT NULL,
		min_16s_length BIGINT NOT NULL,
		built_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		return err
	}
	return s.Exec(ctx, `INSERT INTO derivation_thresholds VALUES (?, ?, ?, ?)`,
		runID.String(), thresholds.MinOGTDiff, thresholds.Min16SLength, time.Now().UTC())
}

func (p pipelineService) Summary(ctx context.Context, s *store.Store) ([]TableCount, error) {
	counts := make([]TableCount, 0, len(types.DerivedTables))
	for _, table := range types.DerivedTables {
		n, err := s.Count(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("failed to summarize %s: %w", table, err)
		}
		counts = append(counts, TableCount{Table: table, Rows: n})
	}
	return counts, nil
}
