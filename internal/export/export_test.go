package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var (
	headers = []string{"ID", "Name", "Amount"}
	rows    = [][]string{
		{"1", "Payroll", "1500.00"},
		{"2", "Engineering, Ops", "249.50"},
	}
)

func TestWrite_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, Write(path, headers, rows))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	assert.Equal(t, []string{sheetName}, f.GetSheetList())
	got, err := f.GetRows(sheetName)
	require.NoError(t, err)
	assert.Equal(t, append([][]string{headers}, rows...), got)
}

func TestWrite_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.CSV")
	require.NoError(t, Write(path, headers, rows))

	file, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = file.Close() })

	got, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, append([][]string{headers}, rows...), got)
}

func TestWrite_UnsupportedFormat(t *testing.T) {
	err := Write(filepath.Join(t.TempDir(), "out.json"), headers, rows)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestWriteCSV_QuotesFields(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, headers, rows))
	assert.Equal(t, "ID,Name,Amount\n1,Payroll,1500.00\n2,\"Engineering, Ops\",249.50\n", buf.String())
}

func TestWriteCSV_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, headers, nil))
	assert.Equal(t, "ID,Name,Amount\n", buf.String())
}
