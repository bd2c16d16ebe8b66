package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
)

// Dataset is a header row plus records keyed by header.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// CSVExporter renders a Dataset as CSV. With QuoteAll every data value is
// wrapped in double quotes, which spreadsheet users rely on to keep phone
// numbers like 0911... from losing their leading zero.
type CSVExporter struct {
	QuoteAll bool
}

func NewCSVExporter(quoteAll bool) *CSVExporter {
	return &CSVExporter{QuoteAll: quoteAll}
}

// Render encodes data. The header row is written unquoted.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, errors.New("csv requires at least one header")
	}

	buf := &bytes.Buffer{}
	if !e.QuoteAll {
		w := csv.NewWriter(buf)
		if err := w.Write(data.Headers); err != nil {
			return nil, fmt.Errorf("write csv headers: %w", err)
		}
		for _, row := range data.Rows {
			if err := w.Write(record(data.Headers, row)); err != nil {
				return nil, fmt.Errorf("write csv row: %w", err)
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, fmt.Errorf("flush csv: %w", err)
		}
		return buf.Bytes(), nil
	}

	buf.WriteString(strings.Join(data.Headers, ","))
	for _, row := range data.Rows {
		buf.WriteByte('\n')
		for i, value := range record(data.Headers, row) {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('"')
			buf.WriteString(strings.ReplaceAll(value, `"`, `""`))
			buf.WriteByte('"')
		}
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func record(headers []string, row map[string]string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = row[h]
	}
	return out
}
