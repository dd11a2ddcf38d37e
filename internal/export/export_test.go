package export_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tikaparse/internal/domain"
	"tikaparse/internal/export"
)

func sampleDocs() []domain.Document {
	status := 200
	content := "hello world"
	parsed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return []domain.Document{
		{
			ID:            uuid.MustParse("11111111-1111-1111-1111-111111111111"),
			FileName:      "report.pdf",
			ContentType:   "application/pdf",
			FileSize:      2048,
			ServiceMode:   "all",
			Status:        domain.ParseStatusParsed,
			TikaStatus:    &status,
			Metadata:      json.RawMessage(`{"title":"Q1","dc:creator":["a","b"]}`),
			Content:       &content,
			ParseAttempts: 1,
			UploadedBy:    "svc-ingest",
			ParsedAt:      &parsed,
			CreatedAt:     parsed.Add(-time.Minute),
		},
		{
			ID:          uuid.MustParse("22222222-2222-2222-2222-222222222222"),
			FileName:    "queued.docx",
			ServiceMode: "text",
			Status:      domain.ParseStatusQueued,
			CreatedAt:   parsed,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, sampleDocs()))

	data := buf.Bytes()
	require.True(t, bytes.HasPrefix(data, export.BOM))

	rows, err := csv.NewReader(bytes.NewReader(data[len(export.BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, export.Columns(), rows[0])
	assert.Equal(t, "report.pdf", rows[1][1])
	assert.Equal(t, "parsed", rows[1][5])
	assert.Equal(t, "200", rows[1][6])
	assert.Equal(t, "dc:creator=a, b; title=Q1", rows[1][10])
	assert.Equal(t, "11", rows[1][11])
	assert.Equal(t, "2025-03-01T10:00:00Z", rows[1][12])

	assert.Equal(t, "queued", rows[2][5])
	assert.Equal(t, "", rows[2][6])
	assert.Equal(t, "", rows[2][10])
	assert.Equal(t, "", rows[2][12])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteXLSX(&buf, sampleDocs()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, export.Columns(), rows[0])
	assert.Equal(t, "report.pdf", rows[1][1])
	assert.Equal(t, "queued.docx", rows[2][1])
}

func TestWrite_InvalidFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, export.Write(&buf, domain.ExportFormat("pdf"), nil), domain.ErrInvalidExportFormat)
}

func TestFlattenMetadata(t *testing.T) {
	assert.Equal(t, "", export.FlattenMetadata(nil))
	assert.Equal(t, "", export.FlattenMetadata(json.RawMessage("null")))
	assert.Equal(t, "a=1; b=x", export.FlattenMetadata(json.RawMessage(`{"b":"x","a":"1"}`)))
	assert.Equal(t, "not json", export.FlattenMetadata(json.RawMessage("not json")))
}

func TestBuildFilename(t *testing.T) {
	now := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "tika_documents_2025-01-02.xlsx", export.BuildFilename("tika documents", domain.ExportFormatXLSX, now))
	assert.Equal(t, "a_b_2025-01-02.csv", export.BuildFilename("a!!b", domain.ExportFormatCSV, now))
}

func TestContentType(t *testing.T) {
	assert.Contains(t, export.ContentType(domain.ExportFormatCSV), "text/csv")
	assert.Contains(t, export.ContentType(domain.ExportFormatXLSX), "spreadsheetml")
}
