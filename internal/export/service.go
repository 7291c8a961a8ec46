package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/doc-extractor/internal/entity"
	"github.com/joseph-ayodele/doc-extractor/internal/repository"
)

const sheet = "Results"

var headers = []string{"Document", "Field", "Type", "Page", "Value", "Entity Type", "Context"}

// Service writes stored extraction results as XLSX workbooks.
type Service struct {
	results repository.ResultRepository
	logger  *slog.Logger
}

func NewService(results repository.ResultRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{results: results, logger: logger}
}

// ExportResults writes the results of one document, or of all documents when
// documentID is nil, to w. It returns the number of data rows written.
func (s *Service) ExportResults(ctx context.Context, documentID *uuid.UUID, w io.Writer) (int, error) {
	start := time.Now()
	rows, err := s.results.ListAll(ctx, documentID)
	if err != nil {
		return 0, fmt.Errorf("query results: %w", err)
	}
	if err := WriteResults(w, rows); err != nil {
		return 0, err
	}
	s.logger.Info("results exported",
		"document_id", documentID,
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return len(rows), nil
}

// WriteResults renders rows into a single-sheet workbook.
func WriteResults(w io.Writer, rows []*entity.ExtractionResult) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	})
	if err == nil {
		_ = f.SetCellStyle(sheet, "A1", "G1", bold)
	}

	for i, r := range rows {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, r.Filename)
		write(2, r.FieldName)
		write(3, r.ExtractionType)
		write(4, r.PageNumber)
		write(5, r.Value)
		write(6, r.EntityType)
		write(7, r.Context)
	}

	last, _ := excelize.CoordinatesToCellName(len(headers), len(rows)+1)
	_ = f.AutoFilter(sheet, "A1:"+last, nil)
	_ = f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	_ = f.SetColWidth(sheet, "A", "A", 28) // document
	_ = f.SetColWidth(sheet, "B", "B", 22) // field
	_ = f.SetColWidth(sheet, "C", "C", 14) // type
	_ = f.SetColWidth(sheet, "D", "D", 8)  // page
	_ = f.SetColWidth(sheet, "E", "E", 40) // value
	_ = f.SetColWidth(sheet, "F", "F", 14) // entity type
	_ = f.SetColWidth(sheet, "G", "G", 80) // context

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}
