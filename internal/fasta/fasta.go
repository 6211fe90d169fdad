// Package fasta provides random access to reference genome bases through
// faidx-style .fai index files.
//
// A File is cheap to open and holds one handle on the sequence file.
// Reads go through ReadAt, so a File is safe for concurrent lookups, but
// pools that want isolated file positions can open one File per worker.
package fasta

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alulab/vartab/pkg/errors"
)

// Normalize returns the chr-prefixed spelling of a chromosome name.
func Normalize(chrom string) string {
	return "chr" + strings.TrimPrefix(chrom, "chr")
}

// record is one sequence entry of a .fai index.
type record struct {
	length    int64 // bases in the sequence
	offset    int64 // file offset of the first base
	lineBases int64 // bases per line
	lineWidth int64 // bytes per line, including the newline
}

// File is an indexed FASTA reference.
type File struct {
	path  string
	f     *os.File
	index map[string]record
}

// Open opens the FASTA file at path along with its .fai index at
// path + ".fai".
func Open(path string) (*File, error) {
	index, err := readIndex(path + ".fai")
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	return &File{path: path, f: f, index: index}, nil
}

// readIndex parses a 5-column faidx file: name, length, offset, bases per
// line, bytes per line.
func readIndex(path string) (map[string]record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()

	index := make(map[string]record)
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if text == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) < 5 {
			return nil, &errors.ParseError{
				Format:  "fai",
				File:    path,
				Line:    line,
				Message: fmt.Sprintf("expected 5 columns, got %d", len(fields)),
			}
		}
		nums := make([]int64, 4)
		for i, field := range fields[1:5] {
			n, perr := strconv.ParseInt(field, 10, 64)
			if perr != nil {
				return nil, &errors.ParseError{
					Format:  "fai",
					File:    path,
					Line:    line,
					Message: fmt.Sprintf("column %d is not a number: %q", i+2, field),
					Err:     perr,
				}
			}
			nums[i] = n
		}
		index[fields[0]] = record{
			length:    nums[0],
			offset:    nums[1],
			lineBases: nums[2],
			lineWidth: nums[3],
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	if len(index) == 0 {
		return nil, &errors.ParseError{Format: "fai", File: path, Message: "index is empty"}
	}
	return index, nil
}

// Path returns the sequence file path.
func (f *File) Path() string {
	return f.path
}

// Chromosomes returns the indexed sequence names.
func (f *File) Chromosomes() []string {
	names := make([]string, 0, len(f.index))
	for name := range f.index {
		names = append(names, name)
	}
	return names
}

// Has reports whether the reference carries chrom, after normalization.
func (f *File) Has(chrom string) bool {
	_, ok := f.index[Normalize(chrom)]
	return ok
}

// Fetch returns the uppercased bases covering the 1-based span
// [pos, pos+length) on chrom.
func (f *File) Fetch(chrom string, pos, length int) (string, error) {
	rec, ok := f.index[Normalize(chrom)]
	if !ok {
		return "", errors.NewLookupError(chrom, pos, errors.ErrNotFound)
	}
	if length <= 0 {
		return "", nil
	}
	start := int64(pos - 1)
	end := start + int64(length)
	if pos < 1 || end > rec.length {
		return "", errors.NewLookupError(chrom, pos,
			fmt.Errorf("span of %d bases falls outside sequence of length %d", length, rec.length))
	}

	// Translate base offsets to byte offsets across line wrapping.
	byteAt := func(base int64) int64 {
		return rec.offset + base/rec.lineBases*rec.lineWidth + base%rec.lineBases
	}
	from := byteAt(start)
	to := byteAt(end-1) + 1

	buf := make([]byte, to-from)
	if _, err := f.f.ReadAt(buf, from); err != nil {
		return "", errors.NewLookupError(chrom, pos, err)
	}

	bases := make([]byte, 0, length)
	for _, c := range buf {
		if c == '\n' || c == '\r' {
			continue
		}
		bases = append(bases, c)
	}
	if len(bases) != length {
		return "", errors.NewLookupError(chrom, pos,
			fmt.Errorf("read %d bases, want %d", len(bases), length))
	}
	return string(bytes.ToUpper(bases)), nil
}

// Close releases the sequence file handle.
func (f *File) Close() error {
	return f.f.Close()
}
