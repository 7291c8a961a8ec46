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

type PageRepository interface {
	// ReplacePages stores pages for a document, dropping any previous ones, and
	// records the page count on the document.
	ReplacePages(ctx context.Context, documentID uuid.UUID, pages extract.Pages) error
	ListByDocument(ctx context.Context, documentID uuid.UUID) (extract.Pages, error)
	ListEntities(ctx context.Context, documentID uuid.UUID) ([]*entity.Page, error)
}

type pageRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewPageRepository(db *DB, logger *slog.Logger) PageRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &pageRepo{db: db, logger: logger}
}

func (r *pageRepo) ReplacePages(ctx context.Context, documentID uuid.UUID, pages extract.Pages) error {
	err := r.db.withTx(ctx, func(tx dialect.Tx) error {
		b := r.db.builder()
		if _, err := execute(ctx, tx, b.Delete(tablePages).Where(entsql.EQ("document_id", documentID))); err != nil {
			return dbError("clear pages", err)
		}
		nums := pages.Numbers()
		if len(nums) > 0 {
			ins := b.Insert(tablePages).Columns("id", "document_id", "page_number", "content")
			for _, n := range nums {
				ins.Values(uuid.New(), documentID, n, pages[n])
			}
			if _, err := execute(ctx, tx, ins); err != nil {
				return dbError("insert pages", err)
			}
		}
		upd := b.Update(tableDocuments).
			Set("page_count", len(nums)).
			Set("updated_at", now()).
			Where(entsql.EQ("id", documentID))
		if _, err := execute(ctx, tx, upd); err != nil {
			return dbError("update page count", err)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("failed to store pages", "document_id", documentID, "error", err)
		return err
	}
	r.logger.Debug("pages stored", "document_id", documentID, "pages", len(pages))
	return nil
}

func (r *pageRepo) ListByDocument(ctx context.Context, documentID uuid.UUID) (extract.Pages, error) {
	rows, err := r.ListEntities(ctx, documentID)
	if err != nil {
		return nil, err
	}
	pages := make(extract.Pages, len(rows))
	for _, p := range rows {
		pages[p.PageNumber] = p.Content
	}
	return pages, nil
}

func (r *pageRepo) ListEntities(ctx context.Context, documentID uuid.UUID) ([]*entity.Page, error) {
	b := r.db.builder()
	s := b.Select("id", "document_id", "page_number", "content").
		From(b.Table(tablePages)).
		Where(entsql.EQ("document_id", documentID)).
		OrderBy(entsql.Asc("page_number"))
	rows, err := queryRows(ctx, r.db.drv, s)
	if err != nil {
		return nil, dbError("query pages", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*entity.Page
	for rows.Next() {
		var p entity.Page
		if err := rows.Scan(&p.ID, &p.DocumentID, &p.PageNumber, &p.Content); err != nil {
			return nil, dbError("scan page", err)
		}
		out = append(out, &p)
	}
	return out, dbError("iterate pages", rows.Err())
}
