package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVExporter writes one header line followed by one line per row.
type CSVExporter struct {
	// BOM prepends a UTF-8 byte order mark so spreadsheet tools detect the encoding.
	BOM bool
}

// NewCSVExporter builds a CSV exporter that emits a BOM.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{BOM: true}
}

// ContentType implements Exporter.
func (e *CSVExporter) ContentType() string { return "text/csv; charset=utf-8" }

// Extension implements Exporter.
func (e *CSVExporter) Extension() string { return FormatCSV }

// Render implements Exporter.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if err := requireHeaders(data, "csv"); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if e.BOM {
		buf.WriteString("\ufeff")
	}
	w := csv.NewWriter(&buf)
	if err := w.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}
	line := make([]string, 0, len(data.Headers))
	for i, row := range data.Rows {
		line = record(data.Headers, row, line)
		if err := w.Write(line); err != nil {
			return nil, fmt.Errorf("csv row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv flush: %w", err)
	}
	return buf.Bytes(), nil
}
