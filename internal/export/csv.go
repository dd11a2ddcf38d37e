package export

import (
	"encoding/csv"
	"io"

	"tikaparse/internal/domain"
)

// BOM is the UTF-8 byte order mark, written first for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter wraps csv.Writer for exporting documents as CSV.
type CSVWriter struct {
	w   io.Writer
	csv *csv.Writer
}

// NewCSVWriter creates a CSVWriter that writes to w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: w, csv: csv.NewWriter(w)}
}

// WriteHeader writes the BOM and the header row.
func (w *CSVWriter) WriteHeader() error {
	if _, err := w.w.Write(BOM); err != nil {
		return err
	}
	return w.csv.Write(columns)
}

// WriteDocuments converts a batch of documents to rows and writes them.
func (w *CSVWriter) WriteDocuments(docs []domain.Document) error {
	for i := range docs {
		if err := w.csv.Write(documentToRow(&docs[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the buffered rows and reports any write error.
func (w *CSVWriter) Flush() error {
	w.csv.Flush()
	return w.csv.Error()
}

// WriteCSV writes a complete CSV export of docs to out.
func WriteCSV(out io.Writer, docs []domain.Document) error {
	w := NewCSVWriter(out)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteDocuments(docs); err != nil {
		return err
	}
	return w.Flush()
}
