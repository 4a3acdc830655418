package types

const (
	DefaultMinOGTDiff   = 20
	DefaultMin16SLength = 1300
)

// Thresholds are the organism-pair filters applied when deriving
// filtered_organism_pairs.
type Thresholds struct {
	MinOGTDiff   int `yaml:"min_ogt_diff"`
	Min16SLength int `yaml:"min_16s_length"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		MinOGTDiff:   DefaultMinOGTDiff,
		Min16SLength: DefaultMin16SLength,
	}
}

// Validate returns the thresholds unchanged when both are in range. The
// growth temperature spread of a meso/thermo pair is non-negative by
// construction and a 16S sequence has positive length.
func (t Thresholds) Validate() (Thresholds, error) {
	if t.MinOGTDiff < 0 {
		return Thresholds{}, &InvalidParameterError{
			Parameter: "min_ogt_diff",
			Value:     t.MinOGTDiff,
			Reason:    "must not be negative",
		}
	}
	if t.Min16SLength <= 0 {
		return Thresholds{}, &InvalidParameterError{
			Parameter: "min_16s_length",
			Value:     t.Min16SLength,
			Reason:    "must be positive",
		}
	}
	return t, nil
}
