package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/validprot/validprot/internal/config"
	"github.com/validprot/validprot/internal/store"
	"github.com/validprot/validprot/internal/types"
)

type AnnotationService interface {
	WriteFASTA(w io.Writer, proteins []types.Protein) error
	// Scan writes proteins to a FASTA file, runs hmmscan against the Pfam
	// database and returns the parsed domain table.
	Scan(ctx context.Context, proteins []types.Protein, req ScanRequest) ([]types.DomainHit, error)
	// Press runs hmmpress on database unless its binary index already exists.
	Press(ctx context.Context, database string) error
	Proteins(ctx context.Context, s *store.Store, side types.Side, limit int) ([]types.Protein, error)
	LoadHits(ctx context.Context, s *store.Store, hits []types.DomainHit) error
}

// ScanRequest names the files of one hmmscan run. Empty paths fall back to
// the configured database and to temporary files that are removed afterwards.
type ScanRequest struct {
	Database   string
	FASTAPath  string
	DomTblPath string
}

type annotationService struct {
	conf config.Annotation
}

func newAnnotationService(conf config.Annotation) AnnotationService {
	return &annotationService{conf: conf}
}

func (a annotationService) WriteFASTA(w io.Writer, proteins []types.Protein) error {
	return writeFASTA(w, proteins)
}

func (a annotationService) Scan(ctx context.Context, proteins []types.Protein, req ScanRequest) ([]types.DomainHit, error) {
	if err := checkProteins(proteins); err != nil {
		return nil, err
	}

	database := req.Database
	if database == "" {
		database = a.conf.PfamPath
	}
	if database == "" {
		return nil, &types.AnnotationError{Op: "scan", Err: errors.New("no Pfam database configured")}
	}

	fastaPath, domtblPath := req.FASTAPath, req.DomTblPath
	id := uuid.NewString()
	if fastaPath == "" {
		fastaPath = filepath.Join(os.TempDir(), "validprot-"+id+".fasta")
		defer os.Remove(fastaPath)
	}
	if domtblPath == "" {
		domtblPath = filepath.Join(os.TempDir(), "validprot-"+id+".domtblout")
		defer os.Remove(domtblPath)
	}

	if err := a.writeFASTAFile(fastaPath, proteins); err != nil {
		return nil, err
	}

	cpus := a.conf.CPUs
	if cpus <= 0 {
		cpus = 1
	}
	args := []string{
		"--cpu", strconv.Itoa(cpus),
		"--domtblout", domtblPath,
		database,
		fastaPath,
	}

	start := time.Now()
	log := logrus.WithFields(logrus.Fields{
		"database":  database,
		"sequences": len(proteins),
		"output":    domtblPath,
	})
	log.Info("Running hmmscan")
	if err := a.run(ctx, "hmmscan", a.conf.HMMScan, args...); err != nil {
		return nil, err
	}

	file, err := os.Open(domtblPath)
	if err != nil {
		return nil, &types.AnnotationError{Op: "hmmscan", Err: fmt.Errorf("failed to open domain table: %w", err)}
	}
	defer file.Close()

	hits, err := parseDomTbl(file)
	if err != nil {
		return nil, &types.AnnotationError{Op: "parse", Err: err}
	}
	log.WithFields(logrus.Fields{
		"hits":    len(hits),
		"elapsed": time.Since(start).String(),
	}).Info("hmmscan completed")
	return hits, nil
}

func (a annotationService) writeFASTAFile(path string, proteins []types.Protein) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return &types.AnnotationError{Op: "fasta", Err: err}
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = &types.AnnotationError{Op: "fasta", Err: cerr}
		}
	}()
	if err := writeFASTA(file, proteins); err != nil {
		return &types.AnnotationError{Op: "fasta", Err: err}
	}
	return nil
}

func (a annotationService) Press(ctx context.Context, database string) error {
	if database == "" {
		database = a.conf.PfamPath
	}
	if _, err := os.Stat(database); err != nil {
		return &types.AnnotationError{Op: "hmmpress", Err: err}
	}
	if _, err := os.Stat(database + ".h3m"); err == nil {
		logrus.WithField("database", database).Debug("Database already pressed")
		return nil
	}

	logrus.WithField("database", database).Info("Running hmmpress")
	return a.run(ctx, "hmmpress", a.conf.HMMPress, database)
}

// run executes name with args. stdout is discarded unless verbose; stderr is
// kept for the error.
func (a annotationService) run(ctx context.Context, op, name string, args ...string) error {
	var stderr bytes.Buffer
	c := exec.CommandContext(ctx, name, args...)
	c.Stdout = io.Discard
	c.Stderr = &stderr
	if a.conf.Verbose {
		fmt.Fprintf(os.Stderr, "\n%s\n", c)
		c.Stdout = os.Stdout
		c.Stderr = io.MultiWriter(os.Stderr, &stderr)
	}
	if err := c.Run(); err != nil {
		return &types.AnnotationError{Op: op, Err: err, Stderr: strings.TrimSpace(stderr.String())}
	}
	return nil
}

func (a annotationService) Proteins(ctx context.Context, s *store.Store, side types.Side, limit int) ([]types.Protein, error) {
	if !side.Valid() {
		return nil, fmt.Errorf("unknown side %q", side)
	}
	query := fmt.Sprintf(`SELECT DISTINCT
		%[1]s_protein_id,
		COALESCE(%[1]s_protein_desc, ''),
		COALESCE(%[1]s_protein_seq, '')
		FROM final_dataset
		ORDER BY 1`, side)
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s proteins: %w", side, err)
	}
	defer func() { _ = rows.Close() }()

	var proteins []types.Protein
	for rows.Next() {
		var (
			id int64
			p  types.Protein
		)
		if err := rows.Scan(&id, &p.Description, &p.Sequence); err != nil {
			return nil, fmt.Errorf("failed to scan protein: %w", err)
		}
		p.ID = strconv.FormatInt(id, 10)
		proteins = append(proteins, p)
	}
	return proteins, rows.Err()
}

func (a annotationService) LoadHits(ctx context.Context, s *store.Store, hits []types.DomainHit) error {
	tx, err := s.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// The previous hits survive until the new set commits.
	_, err = tx.ExecContext(ctx, `CREATE OR REPLACE TABLE pfam_domain_hits (
		protein_id VARCHAR NOT NULL,
		protein_len INTEGER,
		pfam_name VARCHAR NOT NULL,
		pfam_accession VARCHAR,
		pfam_len INTEGER,
		sequence_evalue DOUBLE,
		sequence_score DOUBLE,
		domain_index INTEGER,
		domain_count INTEGER,
		c_evalue DOUBLE,
		i_evalue DOUBLE,
		domain_score DOUBLE,
		hmm_from INTEGER,
		hmm_to INTEGER,
		ali_from INTEGER,
		ali_to INTEGER,
		env_from INTEGER,
		env_to INTEGER,
		accuracy DOUBLE,
		description VARCHAR
	)`)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", types.TablePfamDomainHits, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO pfam_domain_hits
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, h := range hits {
		_, err := stmt.ExecContext(ctx,
			h.Query, h.QueryLen, h.Target, h.TargetAcc, h.TargetLen,
			h.SeqEvalue, h.SeqScore, h.DomainIndex, h.DomainCount,
			h.CEvalue, h.IEvalue, h.DomainScore,
			h.HMMFrom, h.HMMTo, h.AliFrom, h.AliTo, h.EnvFrom, h.EnvTo,
			h.Accuracy, h.TargetDesc,
		)
		if err != nil {
			return fmt.Errorf("failed to insert hit %s/%s: %w", h.Query, h.Target, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit hits: %w", err)
	}

	logrus.WithField("hits", len(hits)).Info("Domain hits loaded")
	return nil
}
