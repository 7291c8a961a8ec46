package export

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/doc-extractor/internal/entity"
	"github.com/joseph-ayodele/doc-extractor/internal/extract"
)

type fakeResults struct {
	rows   []*entity.ExtractionResult
	gotDoc *uuid.UUID
	err    error
}

func (f *fakeResults) ReplaceForDocument(context.Context, uuid.UUID, uuid.UUID, []extract.Result) error {
	return nil
}

func (f *fakeResults) ListByDocument(ctx context.Context, id uuid.UUID) ([]*entity.ExtractionResult, error) {
	return f.ListAll(ctx, &id)
}

func (f *fakeResults) ListAll(_ context.Context, id *uuid.UUID) ([]*entity.ExtractionResult, error) {
	f.gotDoc = id
	return f.rows, f.err
}

func TestExportResults(t *testing.T) {
	t.Run("Should write a header and one row per result", func(t *testing.T) {
		repo := &fakeResults{rows: []*entity.ExtractionResult{
			{Filename: "inv.pdf", FieldName: "Total", ExtractionType: "after_pattern", PageNumber: 1, Value: "$1,250.00", Context: "Total: $1,250.00"},
			{Filename: "inv.pdf", FieldName: "Due", ExtractionType: "nlp", PageNumber: 2, Value: "March 15, 2024", EntityType: "DATE"},
		}}
		docID := uuid.New()
		var buf bytes.Buffer

		n, err := NewService(repo, nil).ExportResults(context.Background(), &docID, &buf)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, &docID, repo.gotDoc)

		f, err := excelize.OpenReader(&buf)
		require.NoError(t, err)
		rows, err := f.GetRows(sheet)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, headers, rows[0])
		assert.Equal(t, []string{"inv.pdf", "Due", "nlp", "2", "March 15, 2024", "DATE"}, rows[2])
	})

	t.Run("Should propagate repository errors", func(t *testing.T) {
		repo := &fakeResults{err: errors.New("db down")}
		_, err := NewService(repo, nil).ExportResults(context.Background(), nil, &bytes.Buffer{})
		assert.ErrorContains(t, err, "db down")
	})
}
