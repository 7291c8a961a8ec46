// Package app wires configuration into the stores, readers and pipeline
// shared by the command line tool and the daemon.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/doc-extractor/internal/async"
	"github.com/joseph-ayodele/doc-extractor/internal/common"
	"github.com/joseph-ayodele/doc-extractor/internal/engine"
	"github.com/joseph-ayodele/doc-extractor/internal/export"
	"github.com/joseph-ayodele/doc-extractor/internal/ingest"
	"github.com/joseph-ayodele/doc-extractor/internal/nlp"
	"github.com/joseph-ayodele/doc-extractor/internal/ocr"
	"github.com/joseph-ayodele/doc-extractor/internal/pipeline"
	"github.com/joseph-ayodele/doc-extractor/internal/repository"
	"github.com/joseph-ayodele/doc-extractor/internal/server"
	"github.com/joseph-ayodele/doc-extractor/internal/textextract"
)

// NewReader builds the text reader with tesseract OCR configured from cfg.
func NewReader(cfg common.OCRConfig, logger *slog.Logger) *textextract.Reader {
	rec := ocr.NewRecognizer(ocr.Config{
		TesseractLang:    cfg.Language,
		TessdataDir:      cfg.TessdataDir,
		HeicConverter:    cfg.HeicConverter,
		ArtifactCacheDir: cfg.ArtifactCacheDir,
		PSM:              6,
	}, logger)
	return textextract.NewReader(rec, logger, textextract.WithMinTextChars(cfg.MinTextChars))
}

// NewEngine loads the NLP resources and builds the extraction engine.
func NewEngine(cfg common.ExtractionConfig, logger *slog.Logger) (*engine.Engine, error) {
	start := time.Now()
	res, err := nlp.NewResources(nlp.WithResourceLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("load nlp resources: %w", err)
	}
	logger.Debug("nlp resources loaded", "elapsed_ms", time.Since(start).Milliseconds())
	return engine.New(nlp.NewExtractor(res, logger), logger, engine.WithParallelism(cfg.Parallelism)), nil
}

// App holds everything that needs the database.
type App struct {
	Config    *common.Config
	Logger    *slog.Logger
	DB        *repository.DB
	Documents repository.DocumentRepository
	Pages     repository.PageRepository
	RuleSets  repository.RuleRepository
	Results   repository.ResultRepository
	Reader    *textextract.Reader
	Engine    *engine.Engine
	Processor *pipeline.Processor
	Ingestor  *ingest.Ingestor
	Exporter  *export.Service
}

// Open connects to the database, migrates it and builds the pipeline.
func Open(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	db, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	if err := db.HealthCheck(ctx, 5*time.Second); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database health check: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	eng, err := NewEngine(cfg.Extraction, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := &App{
		Config:    cfg,
		Logger:    logger,
		DB:        db,
		Documents: repository.NewDocumentRepository(db, logger),
		Pages:     repository.NewPageRepository(db, logger),
		RuleSets:  repository.NewRuleRepository(db, logger),
		Results:   repository.NewResultRepository(db, logger),
		Reader:    NewReader(cfg.OCR, logger),
		Engine:    eng,
	}
	a.Processor = pipeline.NewProcessor(logger,
		pipeline.NewIngestStage(a.Documents, a.Pages, a.Reader, logger),
		pipeline.NewExtractStage(a.Documents, a.Pages, a.RuleSets, a.Results, a.Engine, logger),
	)
	a.Ingestor = ingest.NewIngestor(a.Processor, logger)
	a.Exporter = export.NewService(a.Results, logger)
	return a, nil
}

func (a *App) Close() {
	if err := a.DB.Close(); err != nil {
		a.Logger.Warn("failed to close database", "error", err)
	}
}

// NewQueue starts the background processing queue sized from config.
func (a *App) NewQueue() *async.ProcessorQueue {
	return async.NewProcessorQueue(a.Processor, a.Logger,
		async.WithWorkers(a.Config.Server.Workers),
		async.WithQueueSize(a.Config.Server.QueueSize),
		async.WithProcessTimeout(a.Config.Server.ProcessTimeout),
	)
}

// ExtractionService builds the gRPC service. queue may be nil.
func (a *App) ExtractionService(queue async.Queue) *server.ExtractionService {
	return server.NewExtractionService(server.Deps{
		Documents: a.Documents,
		RuleSets:  a.RuleSets,
		Results:   a.Results,
		Reader:    a.Reader,
		Engine:    a.Engine,
		Processor: a.Processor,
		Queue:     queue,
		Exporter:  a.Exporter,
	}, a.Logger)
}
