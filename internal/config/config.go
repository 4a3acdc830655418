package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/validprot/validprot/internal/types"
	"gopkg.in/yaml.v3"
)

const DefaultMirror = "https://ftp.ebi.ac.uk/pub/databases/Pfam/current_release/"

type Config struct {
	Database   string           `yaml:"database"`
	Thresholds types.Thresholds `yaml:"thresholds"`
	Timeout    time.Duration    `yaml:"timeout"`
	Annotation Annotation       `yaml:"annotation"`
	Download   Download         `yaml:"download"`
}

type Annotation struct {
	HMMScan  string `yaml:"hmmscan"`
	HMMPress string `yaml:"hmmpress"`
	PfamPath string `yaml:"pfam_path"`
	CPUs     int    `yaml:"cpus"`

	// When true, hmmscan and hmmpress stdout and stderr are mapped to the
	// current process.
	Verbose bool `yaml:"verbose"`
}

type Download struct {
	Mirror string `yaml:"mirror"`
	// Rate limit in KiB/s, 0 for unlimited.
	Rate int `yaml:"rate"`
}

func Default() Config {
	return Config{
		Thresholds: types.DefaultThresholds(),
		Annotation: Annotation{
			HMMScan:  "hmmscan",
			HMMPress: "hmmpress",
			CPUs:     runtime.NumCPU(),
		},
		Download: Download{
			Mirror: DefaultMirror,
		},
	}
}

// Load decodes the YAML file at path over the defaults and then applies
// environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	conf := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &conf); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if err := conf.applyEnv(); err != nil {
		return Config{}, err
	}
	return conf, nil
}

func (c *Config) applyEnv() error {
	if db := os.Getenv("VALIDPROT_DB"); db != "" {
		c.Database = db
	}
	if pfam := os.Getenv("PFAM_PATH"); pfam != "" {
		c.Annotation.PfamPath = pfam
	}
	if exec := os.Getenv("HMMSCAN"); exec != "" {
		c.Annotation.HMMScan = exec
	}
	if mirror := os.Getenv("PFAM_MIRROR"); mirror != "" {
		c.Download.Mirror = mirror
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"MIN_OGT_DIFF", &c.Thresholds.MinOGTDiff},
		{"MIN_16S_LENGTH", &c.Thresholds.Min16SLength},
		{"HMMSCAN_CPUS", &c.Annotation.CPUs},
		{"RATE", &c.Download.Rate},
	}
	for _, env := range ints {
		raw := os.Getenv(env.name)
		if raw == "" {
			continue
		}
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s %s is invalid: %w", env.name, raw, err)
		}
		*env.dst = parsed
	}

	if raw := os.Getenv("TIMEOUT"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("TIMEOUT %s is invalid: %w", raw, err)
		}
		c.Timeout = timeout
	}
	return nil
}
