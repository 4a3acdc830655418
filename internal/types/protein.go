package types

type Side string

const (
	SideMeso   Side = "meso"
	SideThermo Side = "thermo"
)

func (s Side) Valid() bool {
	return s == SideMeso || s == SideThermo
}

// Protein is a single annotation input record.
type Protein struct {
	ID          string
	Description string
	Sequence    string
}

// DomainHit is one row of an hmmscan --domtblout table.
type DomainHit struct {
	Target      string
	TargetAcc   string
	TargetLen   int
	Query       string
	QueryAcc    string
	QueryLen    int
	SeqEvalue   float64
	SeqScore    float64
	SeqBias     float64
	DomainIndex int
	DomainCount int
	CEvalue     float64
	IEvalue     float64
	DomainScore float64
	DomainBias  float64
	HMMFrom     int
	HMMTo       int
	AliFrom     int
	AliTo       int
	EnvFrom     int
	EnvTo       int
	Accuracy    float64
	TargetDesc  string
}

// PairRecord is a sampled row of final_dataset.
type PairRecord struct {
	ProteinPairID     int64
	OrganismPairID    int64
	MesoProteinID     int64
	ThermoProteinID   int64
	PercentID         float64
	BitScore          float64
	MesoOGT           float64
	ThermoOGT         float64
	OGTDiff           float64
	MesoSequence      string
	ThermoSequence    string
	MesoDescription   string
	ThermoDescription string
	MesoLength        int64
	ThermoLength      int64
}
