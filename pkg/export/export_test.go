package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Summary: []Field{{Label: "Nama", Value: "Ani"}, {Label: "Kelas", Value: "X IPA 1"}},
		Headers: []string{"Subject", "Score"},
		Rows: []map[string]string{
			{"Subject": "Matematika", "Score": "80.00"},
			{"Subject": "Biologi", "Score": "72.50"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "Nama,Ani", lines[0])
	assert.Equal(t, "Subject,Score", lines[3])
	assert.Equal(t, "Matematika,80.00", lines[4])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(), "Laporan Hasil Belajar")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestCellAlign(t *testing.T) {
	assert.Equal(t, "R", cellAlign("82.50"))
	assert.Equal(t, "L", cellAlign("Matematika"))
	assert.Equal(t, "L", cellAlign("-"))
}
