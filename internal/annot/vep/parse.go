package vep

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/alulab/vartab/pkg/errors"
	"github.com/alulab/vartab/pkg/tab"
)

// resultColumns is the fixed layout of VEP's tabular output. The first
// column holds the variant identifier and the last holds the packed
// Extra tags; both are consumed during parsing and do not appear in the
// parsed batch.
var resultColumns = []string{
	"#Uploaded_variation",
	"Location",
	"Allele",
	"Gene",
	"Feature",
	"Feature_type",
	"Consequence",
	"cDNA_position",
	"CDS_position",
	"Protein_position",
	"Amino_acids",
	"Codons",
	"Existing_variation",
	"Extra",
}

// extraKeys is the allow-list of Extra tags promoted to columns. Tags
// outside this list are discarded.
var extraKeys = []string{
	"STRAND",
	"VARIANT_CLASS",
	"SYMBOL",
	"SYMBOL_SOURCE",
	"SIFT",
	"PHENO",
	"PolyPhen",
	"HGVSc",
	"HGVSp",
	"PhastCons46",
	"SWISSPROT",
	"UNIPARC",
	"EXON",
	"IMPACT",
}

// scanBufferSize bounds a single VEP output line. Consequence lists for
// dense regions run long but stay well under a megabyte.
const scanBufferSize = 1 << 20

// ParseResults reads a VEP results file, plain or gzipped, into a batch
// keyed by the canonical variant columns. VEP emits one line per
// transcript; only the first line per variant is kept so the batch has
// at most one row per key.
func ParseResults(path string) (*tab.Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, zerr := gzip.NewReader(f)
		if zerr != nil {
			return nil, errors.WrapParse("gzip", path, zerr)
		}
		defer zr.Close()
		r = zr
	}
	return parseResults(r, path)
}

func parseResults(r io.Reader, path string) (*tab.Batch, error) {
	keyCols := tab.Default().Columns()
	cols := make([]string, 0, len(keyCols)+len(resultColumns)+len(extraKeys))
	cols = append(cols, keyCols...)
	cols = append(cols, resultColumns[1:len(resultColumns)-1]...)
	cols = append(cols, extraKeys...)
	batch := tab.NewBatch(cols...)

	seen := make(map[string]bool)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), scanBufferSize)

	headerSeen := false
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if strings.HasPrefix(text, "##") {
			continue
		}
		if !headerSeen {
			// The first non-comment line is the column header.
			headerSeen = true
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		fields := strings.Split(text, "\t")
		if len(fields) < len(resultColumns) {
			return nil, &errors.ParseError{
				Format:  "vep",
				File:    path,
				Line:    line,
				Message: fmt.Sprintf("expected %d columns, got %d", len(resultColumns), len(fields)),
			}
		}

		key := strings.Split(fields[0], ":")
		if len(key) != len(keyCols) {
			return nil, &errors.ParseError{
				Format:  "vep",
				File:    path,
				Line:    line,
				Message: fmt.Sprintf("malformed variant identifier %q", fields[0]),
			}
		}
		if seen[fields[0]] {
			// Later lines for the same variant describe other
			// transcripts; the first one wins.
			continue
		}
		seen[fields[0]] = true

		row := make(tab.Row, len(cols))
		for i, c := range keyCols {
			row[c] = tab.String(strings.TrimSpace(key[i]))
		}
		for i, c := range resultColumns[1 : len(resultColumns)-1] {
			row[c] = tab.String(fields[i+1])
		}
		for k, v := range parseExtra(fields[len(resultColumns)-1]) {
			row[k] = tab.String(v)
		}
		batch.Append(row)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.WrapParse("vep", path, err)
	}
	return batch, nil
}

// parseExtra splits the packed key=value;... Extra field and keeps the
// allow-listed tags, first occurrence winning.
func parseExtra(s string) map[string]string {
	out := make(map[string]string, len(extraKeys))
	for _, item := range strings.Split(s, ";") {
		k, v, ok := strings.Cut(item, "=")
		if !ok {
			continue
		}
		if _, dup := out[k]; dup {
			continue
		}
		if slices.Contains(extraKeys, k) {
			out[k] = v
		}
	}
	return out
}
