package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/DataDog/zstd"
	"github.com/sirupsen/logrus"
	"github.com/validprot/validprot/internal/store"
	"github.com/validprot/validprot/internal/types"
)

type SampleService interface {
	Sample(ctx context.Context, s *store.Store, size int) ([]types.PairRecord, error)
	WriteCSV(w io.Writer, records []types.PairRecord) error
	// Export samples final_dataset into a CSV file, zstd compressed when the
	// path ends in ".zst".
	Export(ctx context.Context, s *store.Store, size int, path string) error
}

type sampleService struct {
}

func newSampleService() SampleService {
	return &sampleService{}
}

const sampleQuery = `SELECT
	protein_pair_id,
	organism_pair_id,
	meso_protein_id,
	thermo_protein_id,
	COALESCE(local_gap_compressed_percent_id, 0),
	COALESCE(bit_score, 0),
	meso_ogt,
	thermo_ogt,
	ogt_diff,
	COALESCE(meso_protein_seq, ''),
	COALESCE(thermo_protein_seq, ''),
	COALESCE(meso_protein_desc, ''),
	COALESCE(thermo_protein_desc, ''),
	COALESCE(meso_protein_len, 0),
	COALESCE(thermo_protein_len, 0)
FROM final_dataset
ORDER BY random()
LIMIT ?`

var csvHeader = []string{
	"protein_pair_id",
	"organism_pair_id",
	"meso_protein_id",
	"thermo_protein_id",
	"local_gap_compressed_percent_id",
	"bit_score",
	"meso_ogt",
	"thermo_ogt",
	"ogt_diff",
	"meso_protein_seq",
	"thermo_protein_seq",
	"meso_protein_desc",
	"thermo_protein_desc",
	"meso_protein_len",
	"thermo_protein_len",
}

func (d sampleService) Sample(ctx context.Context, s *store.Store, size int) ([]types.PairRecord, error) {
	if size <= 0 {
		return nil, &types.InvalidParameterError{Parameter: "size", Value: size, Reason: "must be positive"}
	}

	rows, err := s.Query(ctx, sampleQuery, size)
	if err != nil {
		return nil, fmt.Errorf("failed to sample %s: %w", types.TableFinalDataset, err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]types.PairRecord, 0, size)
	for rows.Next() {
		var r types.PairRecord
		err := rows.Scan(
			&r.ProteinPairID, &r.OrganismPairID, &r.MesoProteinID, &r.ThermoProteinID,
			&r.PercentID, &r.BitScore, &r.MesoOGT, &r.ThermoOGT, &r.OGTDiff,
			&r.MesoSequence, &r.ThermoSequence, &r.MesoDescription, &r.ThermoDescription,
			&r.MesoLength, &r.ThermoLength,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sample row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sample: %w", err)
	}
	return records, nil
}

func (d sampleService) WriteCSV(w io.Writer, records []types.PairRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		err := cw.Write([]string{
			strconv.FormatInt(r.ProteinPairID, 10),
			strconv.FormatInt(r.OrganismPairID, 10),
			strconv.FormatInt(r.MesoProteinID, 10),
			strconv.FormatInt(r.ThermoProteinID, 10),
			strconv.FormatFloat(r.PercentID, 'g', -1, 64),
			strconv.FormatFloat(r.BitScore, 'g', -1, 64),
			strconv.FormatFloat(r.MesoOGT, 'g', -1, 64),
			strconv.FormatFloat(r.ThermoOGT, 'g', -1, 64),
			strconv.FormatFloat(r.OGTDiff, 'g', -1, 64),
			r.MesoSequence,
			r.ThermoSequence,
			r.MesoDescription,
			r.ThermoDescription,
			strconv.FormatInt(r.MesoLength, 10),
			strconv.FormatInt(r.ThermoLength, 10),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (d sampleService) Export(ctx context.Context, s *store.Store, size int, path string) (err error) {
	records, err := d.Sample(ctx, s, size)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create sample file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close sample file: %w", cerr)
		}
	}()

	var w io.Writer = file
	if strings.HasSuffix(path, ".zst") {
		zw := zstd.NewWriter(file)
		defer func() {
			if cerr := zw.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to finish zstd stream: %w", cerr)
			}
		}()
		w = zw
	}

	if err := d.WriteCSV(w, records); err != nil {
		return fmt.Errorf("failed to write sample: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"path":      path,
		"requested": size,
		"rows":      len(records),
	}).Info("Sample written")
	return nil
}
