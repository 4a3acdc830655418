package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DataDog/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/validprot/validprot/internal/types"
)

func builtPanel(t *testing.T) string {
	t.Helper()
	location := newSourceStore(t, panelFixture)
	require.NoError(t, testServices().Pipeline().Build(context.Background(), location, types.DefaultThresholds()))
	return location
}

func TestSample(t *testing.T) {
	s := openStore(t, builtPanel(t))
	sampler := testServices().Sample()
	ctx := context.Background()

	records, err := sampler.Sample(ctx, s, 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	records, err = sampler.Sample(ctx, s, 100)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for _, r := range records {
		assert.GreaterOrEqual(t, r.OGTDiff, float64(20))
		assert.Equal(t, r.ThermoOGT-r.MesoOGT, r.OGTDiff)
		assert.NotEmpty(t, r.MesoSequence)
		assert.NotEmpty(t, r.ThermoSequence)
		assert.EqualValues(t, len(r.MesoSequence), r.MesoLength)
	}

	_, err = sampler.Sample(ctx, s, 0)
	var perr *types.InvalidParameterError
	assert.True(t, errors.As(err, &perr))
}

func TestSampleWithoutFinalDataset(t *testing.T) {
	s := openStore(t, newSourceStore(t, pairFixture))
	_, err := testServices().Sample().Sample(context.Background(), s, 5)
	assert.Error(t, err)
}

func TestWriteCSVQuotesFields(t *testing.T) {
	var buf bytes.Buffer
	err := testServices().Sample().WriteCSV(&buf, []types.PairRecord{{
		ProteinPairID:     1,
		MesoDescription:   "ATP synthase, subunit alpha",
		ThermoDescription: "ATP synthase",
		OGTDiff:           25,
	}})
	require.NoError(t, err)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "ATP synthase, subunit alpha", rows[1][11])
	assert.Equal(t, "25", rows[1][8])
}

func TestExportCompressed(t *testing.T) {
	s := openStore(t, builtPanel(t))
	path := filepath.Join(t.TempDir(), "sample.csv.zst")

	require.NoError(t, testServices().Sample().Export(context.Background(), s, 10, path))

	compressed, err := os.ReadFile(path)
	require.NoError(t, err)
	raw, err := zstd.Decompress(nil, compressed)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestExportPlain(t *testing.T) {
	s := openStore(t, builtPanel(t))
	path := filepath.Join(t.TempDir(), "sample.csv")

	require.NoError(t, testServices().Sample().Export(context.Background(), s, 1, path))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
