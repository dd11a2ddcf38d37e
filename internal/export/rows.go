package export

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"tikaparse/internal/domain"
	"tikaparse/internal/tika"
)

// columns defines the header row shared by every export format.
var columns = []string{
	"Document ID",
	"File Name",
	"Content Type",
	"File Size",
	"Service Mode",
	"Status",
	"Tika Status",
	"Parse Attempts",
	"Parse Error",
	"Uploaded By",
	"Metadata",
	"Content Length",
	"Parsed At",
	"Created At",
}

// Columns returns a copy of the header row.
func Columns() []string {
	out := make([]string, len(columns))
	copy(out, columns)
	return out
}

// documentToRow converts a single document to one row of len(columns) cells.
func documentToRow(doc *domain.Document) []string {
	row := make([]string, len(columns))
	row[0] = doc.ID.String()
	row[1] = doc.FileName
	row[2] = doc.ContentType
	row[3] = strconv.FormatInt(doc.FileSize, 10)
	row[4] = doc.ServiceMode
	row[5] = string(doc.Status)
	if doc.TikaStatus != nil {
		row[6] = strconv.Itoa(*doc.TikaStatus)
	}
	row[7] = strconv.Itoa(doc.ParseAttempts)
	row[8] = doc.ParseError
	row[9] = doc.UploadedBy
	row[10] = FlattenMetadata(doc.Metadata)
	if doc.Content != nil {
		row[11] = strconv.Itoa(len(*doc.Content))
	}
	row[12] = formatTime(doc.ParsedAt)
	row[13] = doc.CreatedAt.Format(time.RFC3339)
	return row
}

// FlattenMetadata renders stored metadata as "k=v; k=v" with keys sorted.
// Sequences are joined with ", ". Invalid JSON yields the raw text.
func FlattenMetadata(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var md tika.Metadata
	if err := json.Unmarshal(raw, &md); err != nil {
		return string(raw)
	}
	parts := make([]string, 0, len(md))
	for _, k := range md.Keys() {
		parts = append(parts, k+"="+md[k].String())
	}
	return strings.Join(parts, "; ")
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename replaces non-alphanumeric chars (except - _) with _,
// collapses consecutive underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns {prefix}_{YYYY-MM-DD}.{format} for Content-Disposition.
func BuildFilename(prefix string, format domain.ExportFormat, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", SanitizeFilename(prefix), now.Format("2006-01-02"), format)
}

// ContentType is the response content type for an export format.
func ContentType(format domain.ExportFormat) string {
	if format == domain.ExportFormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}
