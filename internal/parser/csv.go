package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dgallion1/mdchunk/internal/doctree"
)

// csvBatchSize is the number of data rows rendered per section.
const csvBatchSize = 20

// CSVParser handles CSV files. Rows are rendered as Markdown tables, one
// section per batch, each repeating the header row.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	var w mdWriter
	if len(records) > 0 {
		headers := records[0]
		dataRows := records[1:]
		if len(dataRows) == 0 {
			w.table([][]string{headers})
		}

		for i := 0; i < len(dataRows); i += csvBatchSize {
			end := min(i+csvBatchSize, len(dataRows))

			// 1-indexed source rows, skipping the header.
			w.heading(2, fmt.Sprintf("Rows %d-%d", i+2, end+1))
			rows := append([][]string{headers}, dataRows[i:end]...)
			w.table(rows)
		}
	}

	return ParseMarkdown(w.bytes(), titleFromFilename(filename))
}
