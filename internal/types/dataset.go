package types

import "strings"

type Dataset string

const (
	DatasetPfamA    Dataset = "Pfam-A.hmm.gz"
	DatasetPfamADat Dataset = "Pfam-A.hmm.dat.gz"
)

var Datasets = []Dataset{
	DatasetPfamA,
	DatasetPfamADat,
}

// FileName is the name of the dataset once decompressed.
func (d Dataset) FileName() string {
	name := string(d)
	for _, ext := range []string{".gz", ".zst"} {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}

func (d Dataset) Compression() string {
	switch {
	case strings.HasSuffix(string(d), ".gz"):
		return "gzip"
	case strings.HasSuffix(string(d), ".zst"):
		return "zstd"
	}
	return ""
}

func (d Dataset) Valid() bool {
	for _, known := range Datasets {
		if d == known {
			return true
		}
	}
	return false
}
