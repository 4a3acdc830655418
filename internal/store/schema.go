package store

// sourceSchema is the shape of the learn2therm base tables this module
// derives from. Production stores carry more columns; these are the ones the
// derivation reads.
const sourceSchema = `
CREATE TABLE IF NOT EXISTS organisms (
    organism_id BIGINT PRIMARY KEY,
    ogt DOUBLE,
    len_16s BIGINT
);

CREATE TABLE IF NOT EXISTS organism_pairs (
    organism_pair_id BIGINT PRIMARY KEY,
    meso_organism_id BIGINT NOT NULL,
    thermo_organism_id BIGINT NOT NULL,
    is_pair BOOLEAN DEFAULT false,
    local_gap_compressed_percent_id DOUBLE,
    scaled_local_query_percent_id DOUBLE,
    scaled_local_symmetric_percent_id DOUBLE,
    query_align_cov DOUBLE,
    subject_align_cov DOUBLE,
    bit_score DOUBLE
);

CREATE TABLE IF NOT EXISTS proteins (
    protein_id BIGINT PRIMARY KEY,
    protein_seq VARCHAR,
    protein_desc VARCHAR,
    protein_len BIGINT
);

CREATE TABLE IF NOT EXISTS protein_pairs (
    protein_pair_id BIGINT PRIMARY KEY,
    organism_pair_id BIGINT NOT NULL,
    meso_protein_id BIGINT NOT NULL,
    thermo_protein_id BIGINT NOT NULL,
    local_gap_compressed_percent_id DOUBLE,
    scaled_local_query_percent_id DOUBLE,
    scaled_local_symmetric_percent_id DOUBLE,
    query_align_cov DOUBLE,
    subject_align_cov DOUBLE,
    bit_score DOUBLE,
    local_e_value DOUBLE
);
`
