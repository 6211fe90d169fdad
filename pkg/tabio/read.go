package tabio

import (
	"compress/gzip"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/alulab/vartab/pkg/errors"
	"github.com/alulab/vartab/pkg/tab"
)

// readConfig carries reader settings.
type readConfig struct {
	delimiter rune
	trim      bool
}

// ReadOption configures Read.
type ReadOption func(*readConfig)

// ReadWithDelimiter overrides the extension-derived column separator.
func ReadWithDelimiter(d rune) ReadOption {
	return func(c *readConfig) {
		c.delimiter = d
	}
}

// ReadWithTrim strips surrounding whitespace from every cell.
func ReadWithTrim() ReadOption {
	return func(c *readConfig) {
		c.trim = true
	}
}

// Read loads a delimited table file into a batch. The first record is the
// header; empty cells read as null. Files ending in .gz are decompressed
// transparently and the separator follows the remaining extension unless
// overridden.
func Read(path string, opts ...ReadOption) (*tab.Batch, error) {
	cfg := &readConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.delimiter == 0 {
		format, err := FormatForPath(path)
		if err != nil || format == FormatXLSX {
			return nil, errors.NewConfigError("path", path,
				"cannot derive a delimiter, use csv, tsv, or txt")
		}
		cfg.delimiter = format.delimiter()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, gerr := gzip.NewReader(f)
		if gerr != nil {
			return nil, errors.WrapIO("open", path, gerr)
		}
		defer gz.Close()
		r = gz
	}

	return ReadFrom(r, path, cfg.delimiter, cfg.trim)
}

// ReadFrom reads delimited rows from r. The path is only used in error
// messages.
func ReadFrom(r io.Reader, path string, delimiter rune, trim bool) (*tab.Batch, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.NewParseError("table", path, "file has no header row", nil)
	}
	if err != nil {
		return nil, errors.WrapParse("table", path, err)
	}
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(h)
	}

	batch := tab.NewBatch(cols...)
	for {
		record, rerr := cr.Read()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return nil, errors.WrapParse("table", path, rerr)
		}
		row := make(tab.Row, len(cols))
		for i, cell := range record {
			if i >= len(cols) {
				break
			}
			if trim {
				cell = strings.TrimSpace(cell)
			}
			if cell == "" {
				continue // null
			}
			row[cols[i]] = tab.String(cell)
		}
		batch.Append(row)
	}
	return batch, nil
}

// ReadTable loads a previously exported table, re-establishing key
// uniqueness under the given schema. Used to resume a build.
func ReadTable(path string, schema tab.Schema) (*tab.Table, error) {
	batch, err := Read(path)
	if err != nil {
		return nil, err
	}
	return tab.FromBatch(schema, batch)
}
