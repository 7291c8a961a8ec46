package rules

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/doc-extractor/constants"
	"github.com/joseph-ayodele/doc-extractor/internal/common"
)

func TestFromRecord(t *testing.T) {
	t.Run("Should build each variant", func(t *testing.T) {
		cases := []struct {
			rec  Record
			want constants.ExtractionType
		}{
			{Record{FieldName: "a", ExtractionType: "exact", SearchPattern: "x"}, constants.ExtractionExact},
			{Record{FieldName: "b", ExtractionType: "REGEX", SearchPattern: `\d+`}, constants.ExtractionRegex},
			{Record{FieldName: "c", ExtractionType: "after pattern", SearchPattern: "Total:"}, constants.ExtractionAfterPattern},
			{Record{FieldName: "d", ExtractionType: "nlp", Instructions: "Find the date"}, constants.ExtractionNLP},
		}
		for _, tc := range cases {
			r, err := FromRecord(tc.rec)
			require.NoError(t, err)
			assert.Equal(t, tc.want, r.Type())
			assert.Equal(t, tc.rec.FieldName, r.Name())
		}
	})

	t.Run("Should unescape context delimiters", func(t *testing.T) {
		r, err := FromRecord(Record{FieldName: "Total", ExtractionType: "after_pattern", SearchPattern: "Total:", ContextAfter: `\n`})
		require.NoError(t, err)
		ap, ok := r.(AfterPatternRule)
		require.True(t, ok)
		assert.Equal(t, "\n", ap.ContextAfter)
	})

	t.Run("Should reject pattern rules without a pattern", func(t *testing.T) {
		for _, typ := range []string{"exact", "regex", "after_pattern"} {
			_, err := FromRecord(Record{FieldName: "f", ExtractionType: typ, SearchPattern: "  "})
			require.Error(t, err, typ)
			assert.True(t, errors.Is(err, common.ErrValidation))
		}
	})

	t.Run("Should allow nlp rules without a pattern", func(t *testing.T) {
		_, err := FromRecord(Record{FieldName: "f", ExtractionType: "nlp", Instructions: "Find the total"})
		require.NoError(t, err)
	})

	t.Run("Should reject missing field names and unknown types", func(t *testing.T) {
		_, err := FromRecord(Record{ExtractionType: "exact", SearchPattern: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "field_name")

		_, err = FromRecord(Record{FieldName: "f", ExtractionType: "fuzzy", SearchPattern: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "extraction_type")
	})

	t.Run("Should reject invalid regular expressions", func(t *testing.T) {
		_, err := FromRecord(Record{FieldName: "f", ExtractionType: "regex", SearchPattern: "([a-z"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid regex")
	})
}

func TestValidate(t *testing.T) {
	t.Run("Should accept hand-built rules", func(t *testing.T) {
		assert.NoError(t, Validate(ExactRule{Base: Base{FieldName: "f"}, Pattern: "x"}))
		assert.NoError(t, Validate(RegexRule{Base: Base{FieldName: "f"}, Pattern: `\d`}))
		assert.NoError(t, Validate(NLPRule{Base: Base{FieldName: "f"}}))
	})

	t.Run("Should reject broken rules", func(t *testing.T) {
		assert.Error(t, Validate(nil))
		assert.Error(t, Validate(ExactRule{Pattern: "x"}))
		assert.Error(t, Validate(RegexRule{Base: Base{FieldName: "f"}, Pattern: "("}))
	})
}

func TestXLSX(t *testing.T) {
	t.Run("Should read back the template", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteTemplate(&buf))

		rs, err := LoadXLSX(&buf, "template.xlsx")
		require.NoError(t, err)
		require.Len(t, rs, len(SampleRecords()))
		assert.Equal(t, SampleRecords(), Records(rs))
	})

	t.Run("Should skip blank rows and accept spaced headers", func(t *testing.T) {
		f := excelize.NewFile()
		sheet := f.GetSheetName(0)
		require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Field Name", "Extraction Type", "Search Pattern"}))
		require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Total", "exact", "total"}))
		require.NoError(t, f.SetSheetRow(sheet, "A4", &[]any{"Email", "regex", `\S+@\S+`}))
		var buf bytes.Buffer
		_, err := f.WriteTo(&buf)
		require.NoError(t, err)

		rs, err := LoadXLSX(&buf, "rules.xlsx")
		require.NoError(t, err)
		require.Len(t, rs, 2)
		assert.Equal(t, "Email", rs[1].Name())
	})

	t.Run("Should report every bad row", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteXLSX(&buf, []Record{
			{FieldName: "ok", ExtractionType: "exact", SearchPattern: "x"},
			{FieldName: "no pattern", ExtractionType: "exact"},
			{FieldName: "bad regex", ExtractionType: "regex", SearchPattern: "(("},
		}))

		_, err := LoadXLSX(&buf, "rules.xlsx")
		var loadErr *LoadError
		require.True(t, errors.As(err, &loadErr))
		require.Len(t, loadErr.Errs, 2)
		assert.Equal(t, "no pattern", loadErr.Errs[0].Field)
		assert.Equal(t, 2, loadErr.Errs[0].Index)
		assert.Equal(t, "bad regex", loadErr.Errs[1].Field)
		assert.True(t, errors.Is(err, common.ErrValidation))
	})
}

func TestStructured(t *testing.T) {
	t.Run("Should load YAML object form", func(t *testing.T) {
		doc := `
name: invoices
rules:
  - field_name: Invoice Number
    extraction_type: after_pattern
    search_pattern: "Invoice #"
    context_after: "\n"
  - field_name: Due Date
    extraction_type: nlp
    instructions: Extract the payment due date
`
		rs, err := LoadYAML(strings.NewReader(doc), "rules.yaml")
		require.NoError(t, err)
		require.Len(t, rs, 2)
		ap := rs[0].(AfterPatternRule)
		assert.Equal(t, "\n", ap.ContextAfter)
		assert.Equal(t, constants.ExtractionNLP, rs[1].Type())
	})

	t.Run("Should load a bare JSON array", func(t *testing.T) {
		doc := `[{"field_name":"Email","extraction_type":"regex","search_pattern":"\\S+@\\S+"}]`
		rs, err := LoadJSON(strings.NewReader(doc), "rules.json")
		require.NoError(t, err)
		require.Len(t, rs, 1)
		assert.Equal(t, constants.ExtractionRegex, rs[0].Type())
	})

	t.Run("Should reject documents that do not match the schema", func(t *testing.T) {
		bad := []string{
			`[{"field_name":"x","extraction_type":"fuzzy","search_pattern":"y"}]`,
			`{"rules":[{"field_name":"x"}]}`,
			`{"rules":[{"field_name":"x","extraction_type":"exact","search_pattern":"y","extra":1}]}`,
		}
		for _, doc := range bad {
			_, err := LoadJSON(strings.NewReader(doc), "rules.json")
			require.Error(t, err, doc)
			assert.True(t, errors.Is(err, common.ErrValidation), doc)
		}
	})

	t.Run("Should round-trip through WriteYAML", func(t *testing.T) {
		src, err := FromRecords("sample", SampleRecords())
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, WriteYAML(&buf, "sample", src))
		rs, err := LoadYAML(&buf, "sample.yaml")
		require.NoError(t, err)
		assert.Equal(t, Records(src), Records(rs))
	})

	t.Run("Should keep line-break terminators through WriteYAML", func(t *testing.T) {
		src, err := FromRecords("breaks", []Record{
			{FieldName: "Total", ExtractionType: "after_pattern", SearchPattern: "Total:", ContextAfter: "\n"},
			{FieldName: "Ref", ExtractionType: "after_pattern", SearchPattern: "Ref", ContextBefore: "\t", ContextAfter: "\r\n"},
		})
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, WriteYAML(&buf, "breaks", src))
		assert.NotContains(t, buf.String(), "|")

		rs, err := LoadYAML(&buf, "breaks.yaml")
		require.NoError(t, err)
		require.Len(t, rs, 2)
		assert.Equal(t, "\n", rs[0].(AfterPatternRule).ContextAfter)
		assert.Equal(t, "\r\n", rs[1].(AfterPatternRule).ContextAfter)
		assert.Equal(t, "\t", rs[1].(AfterPatternRule).ContextBefore)
	})
}

func TestRecordEscaped(t *testing.T) {
	rec := Record{FieldName: "A", ContextBefore: "a\tb", ContextAfter: "\n"}.Escaped()
	assert.Equal(t, `a\tb`, rec.ContextBefore)
	assert.Equal(t, `\n`, rec.ContextAfter)
	assert.Equal(t, "A", rec.FieldName)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("Should dispatch on extension", func(t *testing.T) {
		path := filepath.Join(dir, "rules.yml")
		require.NoError(t, os.WriteFile(path, []byte("- field_name: A\n  extraction_type: exact\n  search_pattern: a\n"), 0o600))
		rs, err := LoadFile(path)
		require.NoError(t, err)
		assert.Len(t, rs, 1)
	})

	t.Run("Should refuse unknown extensions", func(t *testing.T) {
		path := filepath.Join(dir, "rules.csv")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
		_, err := LoadFile(path)
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrInvalidInput))
	})
}
