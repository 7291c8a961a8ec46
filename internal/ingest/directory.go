package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/doc-extractor/constants"
)

// DirOptions tunes IngestDirectory.
type DirOptions struct {
	RuleSetID   uuid.UUID
	IncludeExts []string // lowercased sans '.'; empty -> every supported type
	SkipHidden  bool
	Parallelism int // files processed at once, default 1
}

type Ingestor struct {
	proc   Processor
	logger *slog.Logger
}

func NewIngestor(proc Processor, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{proc: proc, logger: logger}
}

// IngestPath processes a single file.
func (i *Ingestor) IngestPath(ctx context.Context, path string, ruleSetID uuid.UUID) (FileResult, error) {
	res := FileResult{Path: path}
	out, err := i.proc.ProcessFile(ctx, path, ruleSetID)
	if out.Document != nil {
		res.DocumentID = out.Document.ID
	}
	if err != nil {
		res.Err = err.Error()
		return res, err
	}
	res.Deduplicated = out.Deduplicated
	res.Results = len(out.Results)
	return res, nil
}

// IngestDirectory walks root, filters by extension, skips hidden entries if
// requested, and processes each match. Per-file failures are recorded in the
// results; only walk setup errors are returned.
func (i *Ingestor) IngestDirectory(ctx context.Context, root string, opts DirOptions) ([]FileResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}
	exts := extSet(opts.IncludeExts)

	var (
		paths   []string
		stats   DirStats
		results []FileResult
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			results = append(results, FileResult{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil // continue walking
		}
		if opts.SkipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := exts[constants.NormalizeExt(filepath.Ext(path))]; !ok {
			return nil
		}
		stats.Matched++
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}

	limit := opts.Parallelism
	if limit < 1 {
		limit = 1
	}
	perFile := make([]FileResult, len(paths))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for idx, path := range paths {
		g.Go(func() error {
			res, err := i.IngestPath(gctx, path, opts.RuleSetID)
			perFile[idx] = res
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				stats.Failed++
				i.logger.Warn("file ingest failed", "path", path, "error", err)
				return nil
			}
			stats.Succeeded++
			if res.Deduplicated {
				stats.Deduplicated++
			}
			return nil
		})
	}
	_ = g.Wait()
	results = append(results, perFile...)

	i.logger.Info("directory ingested",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"deduplicated", stats.Deduplicated,
		"failed", stats.Failed,
	)
	return results, stats, ctx.Err()
}

func extSet(include []string) map[string]struct{} {
	if len(include) == 0 {
		return constants.AllowedExtensions
	}
	exts := map[string]struct{}{}
	for _, e := range include {
		if e = constants.NormalizeExt(strings.TrimSpace(e)); e != "" {
			exts[e] = struct{}{}
		}
	}
	return exts
}
