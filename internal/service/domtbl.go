package service

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/validprot/validprot/internal/types"
)

// domtblFields is the number of fixed columns in an HMMER3 domain table; the
// free-text target description follows them.
const domtblFields = 22

// parseDomTbl reads the whitespace-delimited table written by
// hmmscan --domtblout. Comment lines start with '#'.
func parseDomTbl(r io.Reader) ([]types.DomainHit, error) {
	var hits []types.DomainHit
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < domtblFields {
			return nil, fmt.Errorf("domain table line %d: expected at least %d fields, got %d", lineNo, domtblFields, len(fields))
		}

		p := fieldParser{fields: fields}
		hit := types.DomainHit{
			Target:      fields[0],
			TargetAcc:   fields[1],
			TargetLen:   p.atoi(2),
			Query:       fields[3],
			QueryAcc:    fields[4],
			QueryLen:    p.atoi(5),
			SeqEvalue:   p.atof(6),
			SeqScore:    p.atof(7),
			SeqBias:     p.atof(8),
			DomainIndex: p.atoi(9),
			DomainCount: p.atoi(10),
			CEvalue:     p.atof(11),
			IEvalue:     p.atof(12),
			DomainScore: p.atof(13),
			DomainBias:  p.atof(14),
			HMMFrom:     p.atoi(15),
			HMMTo:       p.atoi(16),
			AliFrom:     p.atoi(17),
			AliTo:       p.atoi(18),
			EnvFrom:     p.atoi(19),
			EnvTo:       p.atoi(20),
			Accuracy:    p.atof(21),
			TargetDesc:  strings.Join(fields[domtblFields:], " "),
		}
		if p.err != nil {
			return nil, fmt.Errorf("domain table line %d: %w", lineNo, p.err)
		}
		hits = append(hits, hit)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read domain table: %w", err)
	}
	return hits, nil
}

// fieldParser keeps the first conversion error so a row can be parsed in one
// expression.
type fieldParser struct {
	fields []string
	err    error
}

func (p *fieldParser) atoi(i int) int {
	n, err := strconv.Atoi(p.fields[i])
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("column %d: %w", i+1, err)
	}
	return n
}

func (p *fieldParser) atof(i int) float64 {
	f, err := strconv.ParseFloat(p.fields[i], 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("column %d: %w", i+1, err)
	}
	return f
}
