package spreadsheet

import (
	"strings"

	"disastersheet/normalizer"
)

// Table is a rectangular header-plus-rows view of a record batch. It is
// rebuilt from scratch on every projection and never mutated afterwards.
type Table struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Project folds records into a Table. The header is the first record's field
// set in its own insertion order; fields appearing only in later records are
// ignored so the batch keeps a stable schema (a known limitation). A record
// missing a header field contributes an empty cell, never an error.
func Project(records []*normalizer.Record) Table {
	if len(records) == 0 {
		return Table{Header: []string{}, Rows: [][]string{}}
	}

	header := records[0].Fields()
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, len(header))
		for i, field := range header {
			if v, ok := rec.Get(field); ok {
				row[i] = v
			}
		}
		rows = append(rows, row)
	}
	return Table{Header: header, Rows: rows}
}

// CSV renders the table with one line per row, cells joined by bare commas.
// Embedded commas are not escaped, matching the exporter this feeds.
func (t Table) CSV() string {
	if len(t.Header) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.Join(t.Header, ","))
	b.WriteString("\n")
	for _, row := range t.Rows {
		b.WriteString(strings.Join(row, ","))
		b.WriteString("\n")
	}
	return b.String()
}
