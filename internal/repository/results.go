package repository

import (
	"context"
	"log/slog"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/doc-extractor/internal/entity"
	"github.com/joseph-ayodele/doc-extractor/internal/extract"
)

type ResultRepository interface {
	// ReplaceForDocument swaps the stored results of a document for results,
	// keeping their order.
	ReplaceForDocument(ctx context.Context, documentID, ruleSetID uuid.UUID, results []extract.Result) error
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*entity.ExtractionResult, error)
	// ListAll returns results of every document, or of one when documentID is set.
	ListAll(ctx context.Context, documentID *uuid.UUID) ([]*entity.ExtractionResult, error)
}

type resultRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewResultRepository(db *DB, logger *slog.Logger) ResultRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &resultRepo{db: db, logger: logger}
}

func (r *resultRepo) ReplaceForDocument(ctx context.Context, documentID, ruleSetID uuid.UUID, results []extract.Result) error {
	err := r.db.withTx(ctx, func(tx dialect.Tx) error {
		b := r.db.builder()
		if _, err := execute(ctx, tx, b.Delete(tableResults).Where(entsql.EQ("document_id", documentID))); err != nil {
			return dbError("clear results", err)
		}
		if len(results) == 0 {
			return nil
		}
		ts := now()
		ins := b.Insert(tableResults).Columns("id", "document_id", "rule_set_id", "position", "field_name",
			"extraction_type", "page_number", "value", "context", "entity_type", "created_at")
		for i, res := range results {
			ins.Values(uuid.New(), documentID, ruleSetID, i, res.Rule.Name(), string(res.Rule.Type()),
				res.PageNumber, res.Match.Value, res.Match.Context, res.Match.EntityType, ts)
		}
		if _, err := execute(ctx, tx, ins); err != nil {
			return dbError("insert results", err)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("failed to store results", "document_id", documentID, "error", err)
		return err
	}
	r.logger.Debug("results stored", "document_id", documentID, "results", len(results))
	return nil
}

func (r *resultRepo) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*entity.ExtractionResult, error) {
	return r.ListAll(ctx, &documentID)
}

func (r *resultRepo) ListAll(ctx context.Context, documentID *uuid.UUID) ([]*entity.ExtractionResult, error) {
	s := resultsQuery(r.db.builder(), documentID)
	rows, err := queryRows(ctx, r.db.drv, s)
	if err != nil {
		return nil, dbError("query results", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*entity.ExtractionResult
	for rows.Next() {
		var e entity.ExtractionResult
		if err := rows.Scan(&e.ID, &e.DocumentID, &e.RuleSetID, &e.Filename, &e.FieldName, &e.ExtractionType,
			&e.PageNumber, &e.Value, &e.Context, &e.EntityType, &e.CreatedAt); err != nil {
			return nil, dbError("scan result", err)
		}
		e.CreatedAt = e.CreatedAt.UTC()
		out = append(out, &e)
	}
	return out, dbError("iterate results", rows.Err())
}

// resultsQuery selects stored results joined with their document's file
// name, ordered by file name and then by engine order.
func resultsQuery(b *entsql.DialectBuilder, documentID *uuid.UUID) *entsql.Selector {
	// Aliases are set before C is called so every column renders with them.
	res := b.Table(tableResults).As("r")
	doc := b.Table(tableDocuments).As("d")
	s := b.Select(
		res.C("id"), res.C("document_id"), res.C("rule_set_id"), doc.C("filename"), res.C("field_name"),
		res.C("extraction_type"), res.C("page_number"), res.C("value"), res.C("context"), res.C("entity_type"),
		res.C("created_at"),
	).
		From(res).
		Join(doc).On(res.C("document_id"), doc.C("id"))
	if documentID != nil {
		s.Where(entsql.EQ(res.C("document_id"), *documentID))
	}
	return s.OrderBy(entsql.Asc(doc.C("filename")), entsql.Asc(res.C("document_id")), entsql.Asc(res.C("position")))
}
