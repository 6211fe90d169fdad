package tabio

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/alulab/vartab/pkg/constants"
	"github.com/alulab/vartab/pkg/errors"
	"github.com/alulab/vartab/pkg/tab"
)

// Write exports the table to path in the given format. The header row is
// always written and columns keep table order; null cells serialize empty.
func Write(t *tab.Table, path string, format Format) error {
	if t == nil {
		return errors.ErrNoTable
	}
	if !format.IsValid() {
		return errors.NewConfigError("format", format.String(),
			"supported formats are csv, tsv, xlsx")
	}
	if format == FormatXLSX {
		return writeXLSX(t, path)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	bw := bufio.NewWriterSize(f, constants.WriteBufferSize)
	if err := WriteTo(bw, t, format.delimiter()); err != nil {
		f.Close()
		return errors.WrapIO("write", path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return errors.WrapIO("write", path, err)
	}
	if err := f.Close(); err != nil {
		return errors.WrapIO("close", path, err)
	}
	return nil
}

// WriteTo writes the table as delimited text to w.
func WriteTo(w io.Writer, t *tab.Table, delimiter rune) error {
	if t == nil {
		return errors.ErrNoTable
	}
	cw := csv.NewWriter(w)
	cw.Comma = delimiter

	cols := t.Columns()
	if err := cw.Write(cols); err != nil {
		return err
	}

	record := make([]string, len(cols))
	var werr error
	t.Each(func(_ int, r tab.Row) bool {
		for i, c := range cols {
			record[i] = r.Get(c).String()
		}
		if werr = cw.Write(record); werr != nil {
			return false
		}
		return true
	})
	if werr != nil {
		return werr
	}
	cw.Flush()
	return cw.Error()
}

// writeXLSX writes the table as a single-sheet Excel workbook.
func writeXLSX(t *tab.Table, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	cols := t.Columns()

	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.WrapIO("write", path, err)
	}

	var werr error
	t.Each(func(i int, r tab.Row) bool {
		cells := make([]any, len(cols))
		for j, c := range cols {
			if v := r.Get(c); !v.IsNull() {
				cells[j] = v.Str
			}
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			werr = err
			return false
		}
		if werr = f.SetSheetRow(sheet, axis, &cells); werr != nil {
			return false
		}
		return true
	})
	if werr != nil {
		return errors.WrapIO("write", path, werr)
	}
	if err := f.SaveAs(path); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
