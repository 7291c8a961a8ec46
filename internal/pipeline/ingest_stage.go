package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/doc-extractor/constants"
	"github.com/joseph-ayodele/doc-extractor/internal/common"
	"github.com/joseph-ayodele/doc-extractor/internal/entity"
	"github.com/joseph-ayodele/doc-extractor/internal/extract"
	"github.com/joseph-ayodele/doc-extractor/internal/ocr"
	"github.com/joseph-ayodele/doc-extractor/internal/repository"
)

// IngestStage registers a file as a document and stores its pages.
type IngestStage struct {
	Docs          repository.DocumentRepository
	Pages         repository.PageRepository
	TextExtractor extract.TextExtractor
	Logger        *slog.Logger
}

func NewIngestStage(docs repository.DocumentRepository, pages repository.PageRepository, tx extract.TextExtractor, logger *slog.Logger) *IngestStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestStage{Docs: docs, Pages: pages, TextExtractor: tx, Logger: logger}
}

// Run hashes path and, unless a document with the same content exists,
// creates one and extracts its pages. deduplicated reports that an existing
// document was returned.
func (s *IngestStage) Run(ctx context.Context, path string) (doc *entity.Document, deduplicated bool, err error) {
	fileType := constants.FileTypeForExt(filepath.Ext(path))
	if fileType == "" {
		return nil, false, fmt.Errorf("%w: %s", common.ErrUnsupported, filepath.Base(path))
	}
	hash, err := HashFile(path)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.Docs.GetByHash(ctx, hash)
	switch {
	case err == nil:
		common.ContextLogger(common.WithDocumentID(ctx, existing.ID.String()), s.Logger).
			Info("document already ingested", "path", path)
		return existing, true, nil
	case !errors.Is(err, common.ErrNotFound):
		return nil, false, err
	}

	abs, _ := filepath.Abs(path)
	doc, err = s.Docs.Create(ctx, &entity.Document{
		Filename:    filepath.Base(path),
		SourcePath:  abs,
		FileType:    fileType,
		ContentHash: hash,
	})
	if err != nil {
		return nil, false, err
	}
	ctx = common.WithDocumentID(ctx, doc.ID.String())
	log := common.ContextLogger(ctx, s.Logger)

	res, err := s.TextExtractor.Extract(ocr.WithContentHash(ctx, hash), path)
	if err != nil {
		s.fail(ctx, doc, err)
		return doc, false, fmt.Errorf("extract text: %w", err)
	}
	for _, w := range res.Warnings {
		log.Warn("text extraction warning", "warning", w)
	}
	if err := s.Pages.ReplacePages(ctx, doc.ID, res.Pages); err != nil {
		s.fail(ctx, doc, err)
		return doc, false, err
	}
	if err := s.Docs.UpdateStatus(ctx, doc.ID, constants.DocumentStatusTextExtracted, ""); err != nil {
		return doc, false, err
	}
	doc.Status = constants.DocumentStatusTextExtracted
	doc.PageCount = len(res.Pages)

	log.Info("document ingested",
		"filename", doc.Filename,
		"file_type", res.SourceType,
		"pages", doc.PageCount,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return doc, false, nil
}

func (s *IngestStage) fail(ctx context.Context, doc *entity.Document, cause error) {
	doc.Status = constants.DocumentStatusFailed
	doc.Error = cause.Error()
	// ctx may already be cancelled; the status write must still land
	if err := s.Docs.UpdateStatus(context.WithoutCancel(ctx), doc.ID, constants.DocumentStatusFailed, cause.Error()); err != nil {
		common.ContextLogger(ctx, s.Logger).Error("failed to mark document failed", "error", err)
	}
}

// HashFile returns the hex SHA256 of the file at path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
