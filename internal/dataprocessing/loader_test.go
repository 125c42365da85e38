package dataprocessing

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestLoadCSV(t *testing.T) {
	input := "Declaration No,Unit Price\nD-001,10.5\nD-002,20\n"

	table, err := LoadCSV(strings.NewReader(input), "test.csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"Declaration No", "Unit Price"}, table.Columns)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, "D-001", table.Rows[0][0])
}

func TestLoadCSV_StripsBOM(t *testing.T) {
	input := "\uFEFFDeclaration No,Unit Price\nD-001,10\n"

	table, err := LoadCSV(strings.NewReader(input), "test.csv")
	require.NoError(t, err)
	assert.Equal(t, "Declaration No", table.Columns[0])
}

func TestLoadCSV_RaggedRows(t *testing.T) {
	input := "A,B,C\n1,2\n1,2,3,4\n"

	table, err := LoadCSV(strings.NewReader(input), "test.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
}

func TestLoadCSV_Empty(t *testing.T) {
	_, err := LoadCSV(strings.NewReader(""), "empty.csv")

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "empty.csv", parseErr.Source)
}

func TestLoad_MalformedWorkbook(t *testing.T) {
	_, err := Load(strings.NewReader("this is not a zip archive"), "broken.xlsx")

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.xlsx"))

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestLoadFile_WorkbookRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "declarations.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Declaration No"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "Unit Price"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "D-001"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 10.5))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Declaration No", "Unit Price"}, table.Columns)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "D-001", table.Rows[0][0])
}

func TestLoadFile_CSVByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "declarations.csv")
	require.NoError(t, os.WriteFile(path, []byte("A,B\n1,2\n"), 0644))

	table, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
}

func TestTrimTrailingEmptyRows(t *testing.T) {
	rows := [][]string{
		{"A", "B"},
		{"1", "2"},
		{"", " "},
		{"", ""},
	}

	trimmed := trimTrailingEmptyRows(rows)
	assert.Len(t, trimmed, 2)

	// The header row survives even when it is the only row.
	assert.Len(t, trimTrailingEmptyRows([][]string{{""}}), 1)
}

func TestParseErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &ParseError{Source: "x.xlsx", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "x.xlsx")
}
