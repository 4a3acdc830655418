package types

type Table string

// Base tables of the learn2therm store.
const (
	TableOrganisms     Table = "organisms"
	TableOrganismPairs Table = "organism_pairs"
	TableProteins      Table = "proteins"
	TableProteinPairs  Table = "protein_pairs"
)

// Derived tables, in build order.
const (
	TableValidOrganismPairs    Table = "valid_organism_pairs"
	TableInvolvedOrganisms     Table = "involved_organisms"
	TableFilteredOrganismPairs Table = "filtered_organism_pairs"
	TableFilteredProteinPairs  Table = "filtered_protein_pairs"
	TableInvolvedProteins      Table = "involved_proteins"
	TableFinalDataset          Table = "final_dataset"
)

const (
	TableDerivationThresholds Table = "derivation_thresholds"
	TablePfamDomainHits       Table = "pfam_domain_hits"
)

var SourceTables = []Table{
	TableOrganisms,
	TableOrganismPairs,
	TableProteins,
	TableProteinPairs,
}

var DerivedTables = []Table{
	TableValidOrganismPairs,
	TableInvolvedOrganisms,
	TableFilteredOrganismPairs,
	TableFilteredProteinPairs,
	TableInvolvedProteins,
	TableFinalDataset,
}

// Known reports whether t is one of the tables this module reads or writes.
// Table names are interpolated into a few statements, so only known names
// are accepted.
func (t Table) Known() bool {
	for _, group := range [][]Table{SourceTables, DerivedTables} {
		for _, known := range group {
			if t == known {
				return true
			}
		}
	}
	return t == TableDerivationThresholds || t == TablePfamDomainHits
}
