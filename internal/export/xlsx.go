package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"tikaparse/internal/domain"
)

// SheetName is the worksheet holding exported documents.
const SheetName = "Documents"

// WriteXLSX writes a workbook with one sheet of documents to out.
func WriteXLSX(out io.Writer, docs []domain.Document) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("creating stream writer: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = excelize.Cell{StyleID: bold, Value: c}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i := range docs {
		row := documentToRow(&docs[i])
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(axis, cells); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flushing sheet: %w", err)
	}
	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// Write dispatches to the writer for format.
func Write(out io.Writer, format domain.ExportFormat, docs []domain.Document) error {
	switch format {
	case domain.ExportFormatCSV:
		return WriteCSV(out, docs)
	case domain.ExportFormatXLSX:
		return WriteXLSX(out, docs)
	default:
		return domain.ErrInvalidExportFormat
	}
}
