package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/doc-extractor/constants"
	"github.com/joseph-ayodele/doc-extractor/internal/common"
	"github.com/joseph-ayodele/doc-extractor/internal/entity"
	"github.com/joseph-ayodele/doc-extractor/internal/extract"
	"github.com/joseph-ayodele/doc-extractor/internal/repository"
	"github.com/joseph-ayodele/doc-extractor/internal/rules"
)

// ExtractStage applies a stored rule set to the stored pages of a document.
type ExtractStage struct {
	Docs      repository.DocumentRepository
	Pages     repository.PageRepository
	RuleSets  repository.RuleRepository
	Results   repository.ResultRepository
	Extractor extract.FieldExtractor
	Logger    *slog.Logger
}

func NewExtractStage(
	docs repository.DocumentRepository,
	pages repository.PageRepository,
	ruleSets repository.RuleRepository,
	results repository.ResultRepository,
	fe extract.FieldExtractor,
	logger *slog.Logger,
) *ExtractStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractStage{Docs: docs, Pages: pages, RuleSets: ruleSets, Results: results, Extractor: fe, Logger: logger}
}

// LoadRules returns the rule set with the given id, or the newest set when
// id is uuid.Nil, converted into rules.
func (s *ExtractStage) LoadRules(ctx context.Context, id uuid.UUID) (*entity.RuleSet, []rules.Rule, error) {
	var (
		set *entity.RuleSet
		err error
	)
	if id == uuid.Nil {
		set, err = s.RuleSets.LatestSet(ctx)
	} else {
		set, err = s.RuleSets.GetSet(ctx, id)
	}
	if err != nil {
		return nil, nil, err
	}
	rs, err := rules.FromRecords(set.Name, set.Rules)
	if err != nil {
		return set, nil, err
	}
	return set, rs, nil
}

// Run extracts fields from documentID with the rule set ruleSetID (newest
// when uuid.Nil), replaces its stored results and marks it COMPLETED.
func (s *ExtractStage) Run(ctx context.Context, documentID, ruleSetID uuid.UUID) ([]extract.Result, error) {
	start := time.Now()
	ctx = common.WithDocumentID(ctx, documentID.String())
	log := common.ContextLogger(ctx, s.Logger)
	set, rs, err := s.LoadRules(ctx, ruleSetID)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	pages, err := s.Pages.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load pages: %w", err)
	}

	log.Info("field extraction start",
		"rule_set_id", set.ID, "rules", len(rs), "pages", len(pages))

	results, err := s.Extractor.Run(ctx, pages, rs)
	if err != nil {
		s.markFailed(ctx, documentID, err)
		return results, fmt.Errorf("run rules: %w", err)
	}
	if err := s.Results.ReplaceForDocument(ctx, documentID, set.ID, results); err != nil {
		s.markFailed(ctx, documentID, err)
		return results, err
	}
	if err := s.Docs.UpdateStatus(ctx, documentID, constants.DocumentStatusCompleted, ""); err != nil {
		return results, err
	}

	log.Info("extraction completed",
		"rule_set_id", set.ID,
		"results", len(results),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return results, nil
}

func (s *ExtractStage) markFailed(ctx context.Context, documentID uuid.UUID, cause error) {
	if err := s.Docs.UpdateStatus(context.WithoutCancel(ctx), documentID, constants.DocumentStatusFailed, cause.Error()); err != nil {
		common.ContextLogger(ctx, s.Logger).Error("failed to mark document failed", "error", err)
	}
}
