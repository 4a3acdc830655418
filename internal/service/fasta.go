package service

import (
	"fmt"
	"io"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"github.com/validprot/validprot/internal/types"
)

const fastaWidth = 60

// validResidue accepts the biogo protein alphabet plus selenocysteine and
// pyrrolysine, which hmmscan reads but biogo does not. Gaps are rejected.
func validResidue(l alphabet.Letter) bool {
	switch l {
	case 'U', 'u', 'O', 'o':
		return true
	case alphabet.Protein.Gap():
		return false
	}
	return alphabet.Protein.IsValid(l)
}

// checkProteins fails on an empty collection, a missing or duplicated id, or
// a sequence that is empty or holds a letter outside the protein alphabet.
func checkProteins(proteins []types.Protein) error {
	if len(proteins) == 0 {
		return &types.AnnotationError{Op: "validate", Err: types.ErrEmptyInput}
	}

	seen := make(map[string]struct{}, len(proteins))
	for i, p := range proteins {
		if p.ID == "" || strings.ContainsAny(p.ID, " \t\r\n") {
			return &types.AnnotationError{
				Op:  "validate",
				Err: fmt.Errorf("%w: record %d has id %q", types.ErrInvalidSequence, i, p.ID),
			}
		}
		if _, dup := seen[p.ID]; dup {
			return &types.AnnotationError{
				Op:  "validate",
				Err: fmt.Errorf("%w: duplicate id %s", types.ErrInvalidSequence, p.ID),
			}
		}
		seen[p.ID] = struct{}{}

		if p.Sequence == "" {
			return &types.AnnotationError{
				Op:  "validate",
				Err: fmt.Errorf("%w: %s is empty", types.ErrInvalidSequence, p.ID),
			}
		}
		for pos := 0; pos < len(p.Sequence); pos++ {
			if !validResidue(alphabet.Letter(p.Sequence[pos])) {
				return &types.AnnotationError{
					Op:  "validate",
					Err: fmt.Errorf("%w: %s has %q at position %d", types.ErrInvalidSequence, p.ID, p.Sequence[pos], pos+1),
				}
			}
		}
	}
	return nil
}

func writeFASTA(w io.Writer, proteins []types.Protein) error {
	if err := checkProteins(proteins); err != nil {
		return err
	}

	fw := fasta.NewWriter(w, fastaWidth)
	for _, p := range proteins {
		s := linear.NewSeq(p.ID, alphabet.BytesToLetters([]byte(p.Sequence)), alphabet.Protein)
		s.Desc = p.Description
		if _, err := fw.Write(s); err != nil {
			return fmt.Errorf("failed to write FASTA record %s: %w", p.ID, err)
		}
	}
	return nil
}
