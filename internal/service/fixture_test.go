package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/validprot/validprot/internal/config"
	"github.com/validprot/validprot/internal/store"
)

// Two organisms, A (ogt 30, 16S 1400) and B (ogt 55, 16S 1500), one valid pair
// and one protein pair between them.
const pairFixture = `
INSERT INTO organisms VALUES (1, 30, 1400), (2, 55, 1500);
INSERT INTO organism_pairs VALUES (10, 1, 2, true, 97.5, 96.0, 95.5, 0.99, 0.98, 2500);
INSERT INTO proteins VALUES
    (100, 'MKVLAAGIVG', 'meso chaperone', 10),
    (200, 'MRVLAEGIVGK', 'thermo chaperone', 11);
INSERT INTO protein_pairs VALUES (1000, 10, 100, 200, 62.5, 60.1, 59.8, 0.95, 0.93, 180.0, 1e-40);
`

// Organisms 1..6 with pairs covering every filter branch:
//
//	10: 1 -> 3 valid, spread 35
//	11: 1 -> 2 valid, spread 15
//	12: 6 -> 3 valid, spread 30
//	13: 1 -> 4 valid, spread 45, thermo 16S too short
//	14: 1 -> 5 not a pair, spread 55
const panelFixture = `
INSERT INTO organisms VALUES
    (1, 25, 1400), (2, 40, 1400), (3, 60, 1500),
    (4, 70, 1200), (5, 80, 1600), (6, 30, 1400), (7, 99, 1500);
INSERT INTO organism_pairs VALUES
    (10, 1, 3, true, 90, 90, 90, 1, 1, 2000),
    (11, 1, 2, true, 91, 91, 91, 1, 1, 2100),
    (12, 6, 3, true, 92, 92, 92, 1, 1, 2200),
    (13, 1, 4, true, 93, 93, 93, 1, 1, 2300),
    (14, 1, 5, false, 94, 94, 94, 1, 1, 2400);
INSERT INTO proteins VALUES
    (100, 'MKTAYIAK', 'm1', 8), (101, 'MKTAYIAR', 't1', 8),
    (102, 'MSEQLLK', 'm2', 7), (103, 'MSEQLLR', 't2', 7),
    (104, 'MGHHHHHH', 'm3', 8), (105, 'MGHHHHHR', 't3', 8),
    (106, 'MPLTV', 'm4', 5), (107, 'MPLTI', 't4', 5),
    (108, 'MAAAA', 'm5', 5), (109, 'MAAAG', 't5', 5),
    (110, 'MWWWW', 'unused', 5);
INSERT INTO protein_pairs VALUES
    (1000, 10, 100, 101, 70, 70, 70, 1, 1, 100, 1e-30),
    (1001, 10, 102, 103, 71, 71, 71, 1, 1, 101, 1e-31),
    (1002, 11, 104, 105, 72, 72, 72, 1, 1, 102, 1e-32),
    (1003, 12, 106, 107, 73, 73, 73, 1, 1, 103, 1e-33),
    (1004, 13, 108, 109, 74, 74, 74, 1, 1, 104, 1e-34),
    (1005, 14, 100, 109, 75, 75, 75, 1, 1, 105, 1e-35);
`

func newSourceStore(t *testing.T, fixture string) string {
	t.Helper()
	ctx := context.Background()
	location := filepath.Join(t.TempDir(), "learn2therm.db")

	s, err := store.Create(ctx, location)
	require.NoError(t, err)
	if fixture != "" {
		require.NoError(t, s.Exec(ctx, fixture))
	}
	require.NoError(t, s.Close())
	return location
}

func openStore(t *testing.T, location string) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), location)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testServices() Services {
	return NewServices(config.Default())
}
