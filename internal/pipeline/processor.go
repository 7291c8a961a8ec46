// Package pipeline chains text extraction, storage and rule evaluation for
// files on disk.
package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
	"github.com/joseph-ayodele/doc-extractor/internal/entity"
	"github.com/joseph-ayodele/doc-extractor/internal/extract"
)

// Outcome is what ProcessFile did with one file.
type Outcome struct {
	Document     *entity.Document
	Deduplicated bool
	// Extracted is false when no rule set was available.
	Extracted bool
	Results   []extract.Result
}

// Processor coordinates ingestion (text extract) then field extraction.
type Processor struct {
	Logger  *slog.Logger
	Ingest  *IngestStage
	Extract *ExtractStage
}

func NewProcessor(logger *slog.Logger, ingest *IngestStage, ex *ExtractStage) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Ingest: ingest, Extract: ex}
}

// ProcessFile ingests path and extracts fields with ruleSetID. With
// uuid.Nil the newest rule set is used; when none exists the document is
// left in TEXT_EXTRACTED.
func (p *Processor) ProcessFile(ctx context.Context, path string, ruleSetID uuid.UUID) (Outcome, error) {
	doc, dedup, err := p.Ingest.Run(ctx, path)
	out := Outcome{Document: doc, Deduplicated: dedup}
	if err != nil {
		common.ContextLogger(ctx, p.Logger).Error("ingest failed", "path", path, "error", err)
		return out, err
	}
	ctx = common.WithDocumentID(ctx, doc.ID.String())
	log := common.ContextLogger(ctx, p.Logger)

	results, err := p.Extract.Run(ctx, doc.ID, ruleSetID)
	if err != nil {
		if ruleSetID == uuid.Nil && errors.Is(err, common.ErrNotFound) {
			log.Warn("no rule set stored, skipping field extraction")
			return out, nil
		}
		log.Error("field extraction failed", "error", err)
		return out, err
	}
	out.Extracted = true
	out.Results = results
	if refreshed, err := p.Ingest.Docs.Get(ctx, doc.ID); err == nil {
		out.Document = refreshed
	}
	return out, nil
}

// Reextract runs the rules again over the stored pages of a document.
func (p *Processor) Reextract(ctx context.Context, documentID, ruleSetID uuid.UUID) ([]extract.Result, error) {
	if _, err := p.Ingest.Docs.Get(ctx, documentID); err != nil {
		return nil, err
	}
	return p.Extract.Run(ctx, documentID, ruleSetID)
}
