package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "validprot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	conf, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 20, conf.Thresholds.MinOGTDiff)
	assert.Equal(t, 1300, conf.Thresholds.Min16SLength)
	assert.Equal(t, "hmmscan", conf.Annotation.HMMScan)
	assert.Equal(t, DefaultMirror, conf.Download.Mirror)
	assert.Positive(t, conf.Annotation.CPUs)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
database: /data/learn2therm.db
timeout: 90m
thresholds:
  min_ogt_diff: 25
annotation:
  pfam_path: /data/pfam/Pfam-A.hmm
  cpus: 8
`)
	conf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/learn2therm.db", conf.Database)
	assert.Equal(t, 90*time.Minute, conf.Timeout)
	assert.Equal(t, 25, conf.Thresholds.MinOGTDiff)
	assert.Equal(t, 1300, conf.Thresholds.Min16SLength, "unset keys keep defaults")
	assert.Equal(t, "/data/pfam/Pfam-A.hmm", conf.Annotation.PfamPath)
	assert.Equal(t, 8, conf.Annotation.CPUs)
	assert.Equal(t, "hmmscan", conf.Annotation.HMMScan)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "database: /from/file.db\n")
	t.Setenv("VALIDPROT_DB", "/from/env.db")
	t.Setenv("MIN_16S_LENGTH", "1500")
	t.Setenv("TIMEOUT", "5s")

	conf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env.db", conf.Database)
	assert.Equal(t, 1500, conf.Thresholds.Min16SLength)
	assert.Equal(t, 5*time.Second, conf.Timeout)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "thresholds: [1, 2"))
	assert.Error(t, err)

	t.Setenv("MIN_OGT_DIFF", "twenty")
	_, err = Load("")
	assert.ErrorContains(t, err, "MIN_OGT_DIFF")
}
