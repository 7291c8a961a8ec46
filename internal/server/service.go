// Package server exposes extraction over gRPC.
package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/doc-extractor/constants"
	"github.com/joseph-ayodele/doc-extractor/internal/async"
	"github.com/joseph-ayodele/doc-extractor/internal/common"
	"github.com/joseph-ayodele/doc-extractor/internal/export"
	"github.com/joseph-ayodele/doc-extractor/internal/extract"
	"github.com/joseph-ayodele/doc-extractor/internal/pipeline"
	"github.com/joseph-ayodele/doc-extractor/internal/repository"
	"github.com/joseph-ayodele/doc-extractor/internal/rules"
)

// Deps are the collaborators of ExtractionService. Queue may be nil, in
// which case SubmitDocument only accepts wait=true.
type Deps struct {
	Documents repository.DocumentRepository
	RuleSets  repository.RuleRepository
	Results   repository.ResultRepository
	Reader    extract.TextExtractor
	Engine    extract.FieldExtractor
	Processor *pipeline.Processor
	Queue     async.Queue
	Exporter  *export.Service
}

type ExtractionService struct {
	Deps
	logger *slog.Logger
}

func NewExtractionService(deps Deps, logger *slog.Logger) *ExtractionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractionService{Deps: deps, logger: logger}
}

// ExtractText reads a file and, when rules_path is given, applies those rules
// without touching the database.
func (s *ExtractionService) ExtractText(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	path := stringField(req, "path")
	if path == "" {
		return nil, common.InvalidArgumentError("path is required")
	}
	text, err := s.Reader.Extract(ctx, path)
	if err != nil {
		s.logger.Warn("text extraction failed", "path", path, "error", err)
		return nil, common.ToStatus(err)
	}

	pages := make([]any, 0, len(text.Pages))
	for _, n := range text.Pages.Numbers() {
		pages = append(pages, map[string]any{"page_number": n, "text": text.Pages[n]})
	}
	resp := map[string]any{
		"source_type": text.SourceType,
		"mime_type":   text.MimeType,
		"methods":     stringList(text.Methods),
		"warnings":    stringList(text.Warnings),
		"pages":       pages,
	}

	if rulesPath := stringField(req, "rules_path"); rulesPath != "" {
		rs, err := rules.LoadFile(rulesPath)
		if err != nil {
			return nil, common.ToStatus(err)
		}
		results, err := s.Engine.Run(ctx, text.Pages, rs)
		if err != nil {
			return nil, common.ToStatus(err)
		}
		resp["results"] = resultList(results)
	}
	return newStruct(resp)
}

// SubmitDocument ingests a file. With wait=true the file is processed before
// returning; otherwise it is queued.
func (s *ExtractionService) SubmitDocument(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	path := stringField(req, "path")
	if path == "" {
		return nil, common.InvalidArgumentError("path is required")
	}
	if !constants.IsAllowedExt(filepath.Ext(path)) {
		return nil, common.InvalidArgumentErrorf("unsupported file type %q", filepath.Ext(path))
	}
	ruleSetID, err := optionalID(req, "rule_set_id")
	if err != nil {
		return nil, err
	}

	if !boolField(req, "wait") {
		if s.Queue == nil {
			return nil, status.Error(codes.FailedPrecondition, "background queue is not running; submit with wait=true")
		}
		job, err := s.Queue.Enqueue(ctx, async.Job{Path: path, RuleSetID: ruleSetID, TraceID: common.RequestIDFromContext(ctx)})
		if err != nil {
			if errors.Is(err, async.ErrQueueClosed) {
				return nil, status.Error(codes.Unavailable, err.Error())
			}
			return nil, common.ToStatus(err)
		}
		s.logger.Info("document queued", "job_id", job.ID, "path", path)
		return newStruct(map[string]any{
			"job_id":       job.ID.String(),
			"path":         path,
			"queued":       true,
			"submitted_at": ts(job.SubmittedAt),
		})
	}

	out, err := s.Processor.ProcessFile(ctx, path, ruleSetID)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return newStruct(map[string]any{
		"document":     documentValue(out.Document),
		"deduplicated": out.Deduplicated,
		"extracted":    out.Extracted,
		"results":      resultList(out.Results),
	})
}

func (s *ExtractionService) ListDocuments(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	st := constants.DocumentStatus(stringField(req, "status"))
	switch st {
	case "", constants.DocumentStatusPending, constants.DocumentStatusTextExtracted,
		constants.DocumentStatusCompleted, constants.DocumentStatusFailed:
	default:
		return nil, common.InvalidArgumentErrorf("unknown status %q", st)
	}
	docs, err := s.Documents.List(ctx, repository.ListOptions{
		Status: st,
		Limit:  intField(req, "limit"),
		Offset: intField(req, "offset"),
	})
	if err != nil {
		return nil, common.ToStatus(err)
	}
	out := make([]any, 0, len(docs))
	for _, d := range docs {
		out = append(out, documentValue(d))
	}
	return newStruct(map[string]any{"documents": out})
}

// GetResults returns a document with its stored results.
func (s *ExtractionService) GetResults(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredID(req, "document_id")
	if err != nil {
		return nil, err
	}
	doc, err := s.Documents.Get(ctx, id)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	rows, err := s.Results.ListByDocument(ctx, id)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return newStruct(map[string]any{
		"document": documentValue(doc),
		"results":  storedResultList(rows),
	})
}

func (s *ExtractionService) DeleteDocument(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredID(req, "document_id")
	if err != nil {
		return nil, err
	}
	if err := s.Documents.Delete(ctx, id); err != nil {
		return nil, common.ToStatus(err)
	}
	s.logger.Info("document deleted", "document_id", id)
	return newStruct(map[string]any{"deleted": true})
}

// Reextract applies a rule set again to the stored pages of a document.
func (s *ExtractionService) Reextract(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredID(req, "document_id")
	if err != nil {
		return nil, err
	}
	ruleSetID, err := optionalID(req, "rule_set_id")
	if err != nil {
		return nil, err
	}
	results, err := s.Processor.Reextract(ctx, id, ruleSetID)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return newStruct(map[string]any{"results": resultList(results)})
}

// ImportRules stores a rule set read from a server-side file (path) or sent
// inline as a JSON array (rules).
func (s *ExtractionService) ImportRules(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name := stringField(req, "name")
	var (
		rs     []rules.Rule
		source string
		err    error
	)
	switch path := stringField(req, "path"); {
	case path != "":
		source = path
		rs, err = rules.LoadFile(path)
	case req.GetFields()["rules"] != nil:
		source = "inline"
		var data []byte
		data, err = json.Marshal(req.GetFields()["rules"].AsInterface())
		if err == nil {
			rs, err = rules.LoadJSON(bytes.NewReader(data), source)
		}
	default:
		return nil, common.InvalidArgumentError("path or rules is required")
	}
	if err != nil {
		s.logger.Warn("rule import rejected", "source", source, "error", err)
		return nil, common.ToStatus(err)
	}
	if name == "" {
		name = filepath.Base(source)
	}
	set, err := s.RuleSets.SaveSet(ctx, name, source, rs)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return newStruct(map[string]any{"rule_set": ruleSetValue(set)})
}

func (s *ExtractionService) ListRuleSets(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	sets, err := s.RuleSets.ListSets(ctx)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	out := make([]any, 0, len(sets))
	for _, set := range sets {
		out = append(out, ruleSetValue(set))
	}
	return newStruct(map[string]any{"rule_sets": out})
}

// ExportResults renders stored results as an XLSX workbook, base64 encoded.
// Without document_id every document is exported.
func (s *ExtractionService) ExportResults(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := optionalID(req, "document_id")
	if err != nil {
		return nil, err
	}
	var docID *uuid.UUID
	if id != uuid.Nil {
		docID = &id
	}
	var buf bytes.Buffer
	n, err := s.Exporter.ExportResults(ctx, docID, &buf)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return newStruct(map[string]any{
		"filename": "results-" + time.Now().UTC().Format("20060102-150405") + ".xlsx",
		"rows":     n,
		"content":  base64.StdEncoding.EncodeToString(buf.Bytes()),
	})
}
