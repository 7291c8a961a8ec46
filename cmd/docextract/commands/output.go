package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/joseph-ayodele/doc-extractor/internal/entity"
	"github.com/joseph-ayodele/doc-extractor/internal/extract"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatXLSX  = "xlsx"
	formatText  = "text"
)

// maxCellWidth keeps long context strings from blowing up table output.
const maxCellWidth = 60

func storedFromResults(filename string, rs []extract.Result) []*entity.ExtractionResult {
	out := make([]*entity.ExtractionResult, 0, len(rs))
	for _, r := range rs {
		out = append(out, &entity.ExtractionResult{
			Filename:       filename,
			FieldName:      r.Rule.Name(),
			ExtractionType: string(r.Rule.Type()),
			PageNumber:     r.PageNumber,
			Value:          r.Match.Value,
			Context:        r.Match.Context,
			EntityType:     r.Match.EntityType,
		})
	}
	return out
}

func writeResults(w io.Writer, format string, rows []*entity.ExtractionResult, withFile bool) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if rows == nil {
			rows = []*entity.ExtractionResult{}
		}
		return enc.Encode(rows)
	case formatTable, "":
		header := []string{"Field", "Type", "Page", "Value", "Entity", "Context"}
		if withFile {
			header = append([]string{"Document"}, header...)
		}
		table := newTable(w, header)
		for _, r := range rows {
			row := []string{r.FieldName, r.ExtractionType, strconv.Itoa(r.PageNumber), r.Value, r.EntityType, cellText(r.Context)}
			if withFile {
				row = append([]string{r.Filename}, row...)
			}
			table.Append(row)
		}
		table.Render()
		return nil
	}
	return fmt.Errorf("unknown format %q (want table or json)", format)
}

func writeDocuments(w io.Writer, format string, docs []*entity.Document) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if docs == nil {
			docs = []*entity.Document{}
		}
		return enc.Encode(docs)
	}
	table := newTable(w, []string{"ID", "File", "Type", "Pages", "Status", "Added", "Error"})
	for _, d := range docs {
		table.Append([]string{
			d.ID.String(), d.Filename, d.FileType, strconv.Itoa(d.PageCount),
			string(d.Status), humanize.Time(d.CreatedAt), cellText(d.Error),
		})
	}
	table.Render()
	return nil
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	return table
}

func cellText(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > maxCellWidth {
		return string(r[:maxCellWidth-1]) + "…"
	}
	return s
}
