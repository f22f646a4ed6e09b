package export

import (
	"bytes"
	"fmt"
	"strings"
)

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// CSVExporter renders Dataset records as plain comma-joined lines.
// Values are written verbatim without quoting, so a value containing a comma shifts the columns after it.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces the header line followed by one line per row, separated by "\n" with no trailing newline.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	buf.WriteString(strings.Join(data.Headers, ","))
	record := make([]string, len(data.Headers))
	for _, row := range data.Rows {
		for i, header := range data.Headers {
			record[i] = row[header]
		}
		buf.WriteByte('\n')
		buf.WriteString(strings.Join(record, ","))
	}
	return buf.Bytes(), nil
}

// ParseCSV splits raw text into its header and data rows. Lines are split on "\n" and a trailing
// "\r" is dropped; blank data lines are skipped. Fields are split on every comma.
func ParseCSV(raw string) ([]string, [][]string) {
	if raw == "" {
		return nil, nil
	}
	lines := strings.Split(raw, "\n")
	header := strings.Split(strings.TrimSuffix(lines[0], "\r"), ",")
	rows := make([][]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, strings.Split(line, ","))
	}
	return header, rows
}
