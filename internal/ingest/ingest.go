// Package ingest feeds files and directory trees into the processing
// pipeline.
package ingest

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/doc-extractor/constants"
	"github.com/joseph-ayodele/doc-extractor/internal/pipeline"
)

// Processor is the behavior the ingestor depends on.
type Processor interface {
	ProcessFile(ctx context.Context, path string, ruleSetID uuid.UUID) (pipeline.Outcome, error)
}

// FileResult is the per-file ingest outcome.
type FileResult struct {
	Path         string
	DocumentID   uuid.UUID
	Deduplicated bool
	Results      int
	Err          string
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// AllowedExt checks if a file extension can be ingested.
func AllowedExt(ext string) bool {
	return constants.IsAllowedExt(ext)
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}
