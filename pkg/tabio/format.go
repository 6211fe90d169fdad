// Package tabio reads and writes consolidated variant tables as delimited
// text or Excel workbooks. Null cells serialize as empty strings and come
// back as nulls; gzipped delimited files are handled transparently.
package tabio

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/alulab/vartab/pkg/errors"
)

// Format identifies a table file format.
type Format string

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// Supported table file formats.
const (
	// FormatCSV is comma-separated text.
	FormatCSV Format = "csv"
	// FormatTSV is tab-separated text.
	FormatTSV Format = "tsv"
	// FormatXLSX is an Excel workbook.
	FormatXLSX Format = "xlsx"
)

// Formats returns all supported formats.
func Formats() []Format {
	return []Format{
		FormatCSV,
		FormatTSV,
		FormatXLSX,
	}
}

// IsValid returns true if the format is one of the defined constants.
// Uses Formats() to ensure consistency with the authoritative format list.
func (f Format) IsValid() bool {
	return slices.Contains(Formats(), f)
}

// delimiter returns the column separator for delimited formats.
func (f Format) delimiter() rune {
	if f == FormatTSV {
		return '\t'
	}
	return ','
}

// ParseFormat parses a format name such as "csv" or ".XLSX".
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	if !f.IsValid() {
		return "", errors.NewConfigError("format", s, "supported formats are csv, tsv, xlsx")
	}
	return f, nil
}

// FormatForPath derives the format from a file extension. A trailing .gz
// is ignored, so table.csv.gz parses as csv.
func FormatForPath(path string) (Format, error) {
	base := strings.TrimSuffix(path, ".gz")
	ext := filepath.Ext(base)
	if ext == ".txt" {
		// Plain text tables are tab-separated by convention.
		return FormatTSV, nil
	}
	return ParseFormat(ext)
}
