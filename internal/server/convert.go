package server

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
	"github.com/joseph-ayodele/doc-extractor/internal/entity"
	"github.com/joseph-ayodele/doc-extractor/internal/extract"
)

func stringField(req *structpb.Struct, key string) string {
	return strings.TrimSpace(req.GetFields()[key].GetStringValue())
}

func boolField(req *structpb.Struct, key string) bool {
	return req.GetFields()[key].GetBoolValue()
}

func intField(req *structpb.Struct, key string) int {
	return int(req.GetFields()[key].GetNumberValue())
}

// optionalID parses key as a UUID; a missing value is uuid.Nil.
func optionalID(req *structpb.Struct, key string) (uuid.UUID, error) {
	s := stringField(req, key)
	if s == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, common.InvalidArgumentErrorf("%s must be a UUID", key)
	}
	return id, nil
}

func requiredID(req *structpb.Struct, key string) (uuid.UUID, error) {
	if stringField(req, key) == "" {
		return uuid.Nil, common.InvalidArgumentErrorf("%s is required", key)
	}
	return optionalID(req, key)
}

func newStruct(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	return out, nil
}

func ts(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func documentValue(d *entity.Document) map[string]any {
	return map[string]any{
		"id":           d.ID.String(),
		"filename":     d.Filename,
		"source_path":  d.SourcePath,
		"file_type":    d.FileType,
		"content_hash": d.ContentHash,
		"page_count":   d.PageCount,
		"status":       string(d.Status),
		"error":        d.Error,
		"created_at":   ts(d.CreatedAt),
		"updated_at":   ts(d.UpdatedAt),
	}
}

func storedResultValue(r *entity.ExtractionResult) map[string]any {
	return map[string]any{
		"document_id":     r.DocumentID.String(),
		"filename":        r.Filename,
		"field_name":      r.FieldName,
		"extraction_type": r.ExtractionType,
		"page_number":     r.PageNumber,
		"value":           r.Value,
		"context":         r.Context,
		"entity_type":     r.EntityType,
	}
}

func resultValue(r extract.Result) map[string]any {
	return map[string]any{
		"field_name":      r.Rule.Name(),
		"extraction_type": string(r.Rule.Type()),
		"page_number":     r.PageNumber,
		"value":           r.Match.Value,
		"context":         r.Match.Context,
		"entity_type":     r.Match.EntityType,
	}
}

func resultList(rs []extract.Result) []any {
	out := make([]any, 0, len(rs))
	for _, r := range rs {
		out = append(out, resultValue(r))
	}
	return out
}

func storedResultList(rs []*entity.ExtractionResult) []any {
	out := make([]any, 0, len(rs))
	for _, r := range rs {
		out = append(out, storedResultValue(r))
	}
	return out
}

func ruleSetValue(s *entity.RuleSet) map[string]any {
	out := map[string]any{
		"id":         s.ID.String(),
		"name":       s.Name,
		"source":     s.Source,
		"created_at": ts(s.CreatedAt),
	}
	if s.Rules != nil {
		out["rule_count"] = len(s.Rules)
	}
	return out
}

func stringList(ss []string) []any {
	out := make([]any, 0, len(ss))
	for _, s := range ss {
		out = append(out, s)
	}
	return out
}
