package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseError means the input could not be read as tabular data at all. The
// run aborts; no partial table is returned.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %s as tabular data: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// LoadFile reads a declaration spreadsheet from disk. The format is chosen by
// extension: .csv and .txt are read as comma-separated text, everything else
// as an Excel workbook.
func LoadFile(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		f, err := os.Open(path)
		if err != nil {
			return nil, &ParseError{Source: path, Err: err}
		}
		defer f.Close()
		return LoadCSV(f, path)
	default:
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, &ParseError{Source: path, Err: err}
		}
		defer f.Close()
		return tableFromWorkbook(f, path)
	}
}

// Load reads a declaration spreadsheet from a stream, for uploads. The
// filename decides the format the same way LoadFile does.
func Load(r io.Reader, filename string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return LoadCSV(r, filename)
	default:
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, &ParseError{Source: filename, Err: err}
		}
		defer f.Close()
		return tableFromWorkbook(f, filename)
	}
}

// LoadCSV reads comma-separated text with a header row.
func LoadCSV(r io.Reader, source string) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}
	if len(records) == 0 {
		return nil, &ParseError{Source: source, Err: fmt.Errorf("file has no header row")}
	}

	header := records[0]
	if len(header) > 0 {
		// Strip a UTF-8 BOM some exports carry on the first header cell.
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	t := NewTable(header, records[1:])
	slog.Info("loaded declaration table",
		slog.String("source", source),
		slog.Int("columns", len(t.Columns)),
		slog.Int("rows", t.Len()))
	return t, nil
}

// tableFromWorkbook extracts the first sheet that carries data. Declaration
// exports are single-sheet workbooks, but some brokers prepend cover sheets.
func tableFromWorkbook(f *excelize.File, source string) (*Table, error) {
	var rows [][]string
	var sheetName string

	for _, name := range f.GetSheetList() {
		sheetRows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		if len(sheetRows) > 0 {
			rows = trimTrailingEmptyRows(sheetRows)
			sheetName = name
			break
		}
	}

	if sheetName == "" {
		return nil, &ParseError{Source: source, Err: fmt.Errorf("no sheet with data found")}
	}

	slog.Info("loaded declaration table",
		slog.String("source", source),
		slog.String("sheet", sheetName),
		slog.Int("columns", len(rows[0])),
		slog.Int("rows", len(rows)-1))

	return NewTable(rows[0], rows[1:]), nil
}

// trimTrailingEmptyRows drops fully empty trailing rows excelize sometimes
// reports.
func trimTrailingEmptyRows(rows [][]string) [][]string {
	last := len(rows)
	for last > 1 {
		empty := true
		for _, cell := range rows[last-1] {
			if strings.TrimSpace(cell) != "" {
				empty = false
				break
			}
		}
		if !empty {
			break
		}
		last--
	}
	return rows[:last]
}
