package enrich

import (
	"context"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/alulab/vartab/internal/fasta"
	"github.com/alulab/vartab/pkg/constants"
	"github.com/alulab/vartab/pkg/errors"
	"github.com/alulab/vartab/pkg/tab"
)

var _ Enricher = (*RefSeq)(nil)

// RefSeq adds a column named after the genome assembly holding the
// uppercase reference bases covering each variant's ref-allele span,
// fetched from an indexed FASTA.
//
// Lookups run on a bounded worker pool over fixed-size row chunks, each
// worker holding a private handle on the reference. This is the only
// parallel operation in a build. The first failed lookup cancels the
// batch and the column is not committed.
type RefSeq struct {
	genome  string
	path    string
	workers int
	chunk   int
}

// RefSeqOption configures a RefSeq enricher.
type RefSeqOption func(*RefSeq)

// RefSeqWithWorkers sets the lookup pool size. Values are clamped to
// [1, constants.MaxLookupWorkers].
func RefSeqWithWorkers(n int) RefSeqOption {
	return func(r *RefSeq) {
		r.workers = n
	}
}

// RefSeqWithChunkSize sets how many rows each pool task covers.
func RefSeqWithChunkSize(n int) RefSeqOption {
	return func(r *RefSeq) {
		r.chunk = n
	}
}

// NewRefSeq creates a reference base enricher for the given assembly,
// reading from the FASTA at path. Only hg19 and hg38 are supported.
func NewRefSeq(genome, path string, opts ...RefSeqOption) (*RefSeq, error) {
	if genome != constants.AssemblyHG19 && genome != constants.AssemblyHG38 {
		return nil, errors.NewConfigError("genome", genome,
			"supported assemblies are hg19 and hg38")
	}
	r := &RefSeq{
		genome:  genome,
		path:    path,
		workers: constants.DefaultLookupWorkers,
		chunk:   constants.DefaultLookupChunkSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.workers < 1 {
		r.workers = 1
	}
	if r.workers > constants.MaxLookupWorkers {
		r.workers = constants.MaxLookupWorkers
	}
	if r.chunk < 1 {
		r.chunk = constants.DefaultLookupChunkSize
	}
	return r, nil
}

// Name returns the enricher name.
func (r *RefSeq) Name() string {
	return "refseq_" + r.genome
}

// Column returns the written column, named after the assembly.
func (r *RefSeq) Column() string {
	return r.genome
}

// Workers returns the effective lookup pool size.
func (r *RefSeq) Workers() int {
	return r.workers
}

// ChunkSize returns the rows covered per pool task.
func (r *RefSeq) ChunkSize() int {
	return r.chunk
}

// lookup is one row's reference span.
type lookup struct {
	chrom  string
	pos    int
	length int
}

// Enrich fetches the reference span for every row and commits the column
// only when every lookup succeeded.
func (r *RefSeq) Enrich(ctx context.Context, t *tab.Table) error {
	if t == nil {
		return errors.ErrNoTable
	}

	// Validate the reference up front: the index must parse and every
	// chromosome the table mentions must be present.
	probe, err := fasta.Open(r.path)
	if err != nil {
		return err
	}
	chroms := make(map[string]struct{})
	t.Each(func(_ int, row tab.Row) bool {
		chroms[row.Get(constants.ColumnChrom).Str] = struct{}{}
		return true
	})
	for chrom := range chroms {
		if !probe.Has(chrom) {
			probe.Close()
			return errors.NewLookupError(chrom, 0, errors.ErrNotFound)
		}
	}
	if cerr := probe.Close(); cerr != nil {
		return errors.WrapIO("close", r.path, cerr)
	}

	// Snapshot the spans so workers never touch the table.
	lookups := make([]lookup, t.Len())
	var rowErr error
	t.Each(func(i int, row tab.Row) bool {
		pos, perr := strconv.Atoi(strings.TrimSpace(row.Get(constants.ColumnPos).Str))
		if perr != nil {
			rowErr = errors.NewFormatError(r.Name(),
				"position is not a number: "+row.Get(constants.ColumnPos).Str)
			return false
		}
		lookups[i] = lookup{
			chrom:  row.Get(constants.ColumnChrom).Str,
			pos:    pos,
			length: len(row.Get(constants.ColumnRef).Str),
		}
		return true
	})
	if rowErr != nil {
		return rowErr
	}

	results := make([]string, len(lookups))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for begin := 0; begin < len(lookups); begin += r.chunk {
		end := min(begin+r.chunk, len(lookups))
		g.Go(func() error {
			// One private handle per task.
			f, oerr := fasta.Open(r.path)
			if oerr != nil {
				return oerr
			}
			defer f.Close()
			for i := begin; i < end; i++ {
				if cerr := gCtx.Err(); cerr != nil {
					return cerr
				}
				base, ferr := f.Fetch(lookups[i].chrom, lookups[i].pos, lookups[i].length)
				if ferr != nil {
					return ferr
				}
				results[i] = base
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Commit only now that every lookup succeeded.
	t.EnsureColumn(r.genome, tab.Null)
	t.Each(func(i int, row tab.Row) bool {
		row[r.genome] = tab.String(results[i])
		return true
	})
	return nil
}
