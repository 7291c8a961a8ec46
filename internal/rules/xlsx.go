package rules

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
)

// Columns of a rule workbook, in template order.
var Columns = []string{
	"field_name",
	"search_pattern",
	"context_before",
	"context_after",
	"extraction_type",
	"instructions",
}

// LoadXLSX reads rules from the first sheet of a workbook. The first row is a
// header naming the columns; blank rows are skipped. Row numbers in errors
// are spreadsheet row numbers.
func LoadXLSX(r io.Reader, source string) ([]Rule, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook %s: %v", common.ErrInvalidInput, source, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s has no sheets", common.ErrInvalidInput, source)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", common.ErrInvalidInput, sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s has no header row", common.ErrInvalidInput, source)
	}

	idx := headerIndex(rows[0])
	for _, required := range []string{"field_name", "extraction_type"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("%w: %s is missing the %q column", common.ErrValidation, source, required)
		}
	}

	var (
		out  []Rule
		errs []*ConfigError
	)
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		rec := Record{
			FieldName:      cell(row, idx, "field_name"),
			ExtractionType: cell(row, idx, "extraction_type"),
			SearchPattern:  cell(row, idx, "search_pattern"),
			ContextBefore:  cell(row, idx, "context_before"),
			ContextAfter:   cell(row, idx, "context_after"),
			Instructions:   cell(row, idx, "instructions"),
		}
		rule, err := FromRecord(rec)
		if err != nil {
			// i+1 skips the header, the extra 1 makes it 1-based.
			errs = append(errs, &ConfigError{Index: i + 1, Field: strings.TrimSpace(rec.FieldName), Err: err})
			continue
		}
		out = append(out, rule)
	}
	if len(errs) > 0 {
		return nil, &LoadError{Source: source, Errs: errs}
	}
	return out, nil
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
		if key == "" {
			continue
		}
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

func cell(row []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// WriteXLSX writes recs as a rule workbook readable by LoadXLSX. Control
// characters in context columns are written back as \n, \r and \t.
func WriteXLSX(w io.Writer, recs []Record) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Rules"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetRowStyle(sheet, 1, 1, style)
	}

	for i, rec := range recs {
		rec = rec.Escaped()
		row := []any{
			rec.FieldName,
			rec.SearchPattern,
			rec.ContextBefore,
			rec.ContextAfter,
			rec.ExtractionType,
			rec.Instructions,
		}
		cellName, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cellName, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 20)
	_ = f.SetColWidth(sheet, "B", "B", 48)
	_ = f.SetColWidth(sheet, "C", "D", 16)
	_ = f.SetColWidth(sheet, "E", "E", 16)
	_ = f.SetColWidth(sheet, "F", "F", 60)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

// SampleRecords is the starter rule set written by WriteTemplate.
func SampleRecords() []Record {
	return []Record{
		{FieldName: "Invoice Number", SearchPattern: "Invoice #", ContextAfter: "\n", ExtractionType: "after_pattern", Instructions: "Extract the invoice number"},
		{FieldName: "Invoice Date", SearchPattern: "Invoice Date:", ContextAfter: "\n", ExtractionType: "after_pattern", Instructions: "Extract the invoice date"},
		{FieldName: "Total Amount", SearchPattern: "Total:", ContextAfter: "\n", ExtractionType: "after_pattern", Instructions: "Extract the total amount"},
		{FieldName: "Company Name", SearchPattern: "Company:", ContextAfter: "\n", ExtractionType: "after_pattern", Instructions: "Extract the company name"},
		{FieldName: "Email Address", SearchPattern: `[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`, ExtractionType: "regex", Instructions: "Extract any email addresses"},
		{FieldName: "Phone Number", SearchPattern: `\+\d{1,2}[-.\s]?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`, ExtractionType: "regex", Instructions: "Extract any phone numbers"},
		{FieldName: "Payment Due Date", ExtractionType: "nlp", Instructions: "Extract the payment due date or deadline for payment"},
		{FieldName: "Payment Terms", ExtractionType: "nlp", Instructions: "Find the payment terms and conditions"},
	}
}

// WriteTemplate writes the sample rule workbook.
func WriteTemplate(w io.Writer) error {
	return WriteXLSX(w, SampleRecords())
}
