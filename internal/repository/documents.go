package repository

import (
	"context"
	"log/slog"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/doc-extractor/constants"
	"github.com/joseph-ayodele/doc-extractor/internal/entity"
)

var documentColumns = []string{
	"id", "filename", "source_path", "file_type", "content_hash", "page_count", "status", "error", "created_at", "updated_at",
}

// ListOptions filters and pages document listings. Zero values mean no filter.
type ListOptions struct {
	Status constants.DocumentStatus
	Limit  int
	Offset int
}

type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) (*entity.Document, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	GetByHash(ctx context.Context, hash string) (*entity.Document, error)
	List(ctx context.Context, opts ListOptions) ([]*entity.Document, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status constants.DocumentStatus, message string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type documentRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewDocumentRepository(db *DB, logger *slog.Logger) DocumentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &documentRepo{db: db, logger: logger}
}

func (r *documentRepo) Create(ctx context.Context, doc *entity.Document) (*entity.Document, error) {
	out := *doc
	if out.ID == uuid.Nil {
		out.ID = uuid.New()
	}
	if out.Status == "" {
		out.Status = constants.DocumentStatusPending
	}
	ts := now()
	out.CreatedAt, out.UpdatedAt = ts, ts

	ins := r.db.builder().Insert(tableDocuments).
		Columns(documentColumns...).
		Values(out.ID, out.Filename, out.SourcePath, out.FileType, out.ContentHash, out.PageCount,
			string(out.Status), out.Error, out.CreatedAt, out.UpdatedAt)
	if _, err := execute(ctx, r.db.drv, ins); err != nil {
		r.logger.Error("failed to create document", "filename", out.Filename, "error", err)
		return nil, dbError("create document", err)
	}
	r.logger.Debug("document created", "document_id", out.ID, "filename", out.Filename)
	return &out, nil
}

func (r *documentRepo) Get(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	docs, err := r.query(ctx, r.db.drv, func(s *entsql.Selector) {
		s.Where(entsql.EQ("id", id))
	})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, notFound("document", id.String())
	}
	return docs[0], nil
}

func (r *documentRepo) GetByHash(ctx context.Context, hash string) (*entity.Document, error) {
	docs, err := r.query(ctx, r.db.drv, func(s *entsql.Selector) {
		s.Where(entsql.EQ("content_hash", hash))
	})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, notFound("document with hash", hash)
	}
	return docs[0], nil
}

func (r *documentRepo) List(ctx context.Context, opts ListOptions) ([]*entity.Document, error) {
	return r.query(ctx, r.db.drv, func(s *entsql.Selector) {
		if opts.Status != "" {
			s.Where(entsql.EQ("status", string(opts.Status)))
		}
		s.OrderBy(entsql.Desc("created_at"), entsql.Asc("filename"))
		if opts.Limit > 0 {
			s.Limit(opts.Limit)
		}
		if opts.Offset > 0 {
			s.Offset(opts.Offset)
		}
	})
}

func (r *documentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status constants.DocumentStatus, message string) error {
	upd := r.db.builder().Update(tableDocuments).
		Set("status", string(status)).
		Set("error", message).
		Set("updated_at", now()).
		Where(entsql.EQ("id", id))
	res, err := execute(ctx, r.db.drv, upd)
	if err != nil {
		r.logger.Error("failed to update document status", "document_id", id, "status", status, "error", err)
		return dbError("update document status", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound("document", id.String())
	}
	r.logger.Debug("document status updated", "document_id", id, "status", status)
	return nil
}

// Delete removes the document with its pages and results.
func (r *documentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	var deleted int64
	err := r.db.withTx(ctx, func(tx dialect.Tx) error {
		b := r.db.builder()
		for _, table := range []string{tableResults, tablePages} {
			if _, err := execute(ctx, tx, b.Delete(table).Where(entsql.EQ("document_id", id))); err != nil {
				return dbError("delete "+table, err)
			}
		}
		res, err := execute(ctx, tx, b.Delete(tableDocuments).Where(entsql.EQ("id", id)))
		if err != nil {
			return dbError("delete document", err)
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		r.logger.Error("failed to delete document", "document_id", id, "error", err)
		return err
	}
	if deleted == 0 {
		return notFound("document", id.String())
	}
	r.logger.Info("document deleted", "document_id", id)
	return nil
}

func (r *documentRepo) query(ctx context.Context, eq dialect.ExecQuerier, where func(*entsql.Selector)) ([]*entity.Document, error) {
	b := r.db.builder()
	s := b.Select(documentColumns...).From(b.Table(tableDocuments))
	where(s)
	rows, err := queryRows(ctx, eq, s)
	if err != nil {
		return nil, dbError("query documents", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*entity.Document
	for rows.Next() {
		var (
			d      entity.Document
			status string
		)
		if err := rows.Scan(&d.ID, &d.Filename, &d.SourcePath, &d.FileType, &d.ContentHash, &d.PageCount,
			&status, &d.Error, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, dbError("scan document", err)
		}
		d.Status = constants.DocumentStatus(status)
		d.CreatedAt = d.CreatedAt.UTC()
		d.UpdatedAt = d.UpdatedAt.UTC()
		out = append(out, &d)
	}
	return out, dbError("iterate documents", rows.Err())
}
