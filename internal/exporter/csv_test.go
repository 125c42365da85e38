package exporter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	err := NewCSVWriter(nil).WriteCSV(path, WriteOptions{
		Headers:   []string{"A", "B"},
		Records:   [][]string{{"1", "2"}, {"3", "4"}},
		BOMPrefix: true,
	})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	// UTF-8 BOM for Excel compatibility.
	require.True(t, len(content) > 3)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, content[:3])

	lines := strings.Split(strings.TrimSpace(string(content[3:])), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "A,B", lines[0])
	assert.Equal(t, "1,2", lines[1])
}

func TestWriteCSV_NoBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.csv")

	err := NewCSVWriter(nil).WriteCSV(path, WriteOptions{
		Headers: []string{"A"},
		Records: [][]string{{"1"}},
	})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "A"))
}

func TestWriteCSV_SpecialCharacters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quoted.csv")

	err := NewCSVWriter(nil).WriteCSV(path, WriteOptions{
		Headers: []string{"Name", "Remark"},
		Records: [][]string{{"a,b", `say "hi"`}},
	})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"a,b"`)
}

func TestWriteResults(t *testing.T) {
	report := sampleReport(t, sampleRows())
	dir := t.TempDir()

	require.NoError(t, NewCSVWriter(nil).WriteResults(dir, report))

	for _, name := range []string{csvRefundFile, csvLowRiskFile, csvTariffFile, csvPriceFile} {
		content, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.NotEmpty(t, content)
	}

	refund, err := os.ReadFile(filepath.Join(dir, csvRefundFile))
	require.NoError(t, err)
	assert.Contains(t, string(refund), "D-001")
}

func TestWriteDocument(t *testing.T) {
	report := sampleReport(t, sampleRows())
	path := filepath.Join(t.TempDir(), "report.docx")

	require.NoError(t, NewDocumentWriter(nil).WriteDocument(path, report))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
