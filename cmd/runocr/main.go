package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/doc-extractor/internal/app"
	"github.com/joseph-ayodele/doc-extractor/internal/common"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runocr <file>")
		os.Exit(2)
	}
	path := os.Args[1]

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	reader := app.NewReader(common.LoadConfig().OCR, logger)

	start := time.Now()
	res, err := reader.Extract(ctx, path)
	dur := time.Since(start)
	if err != nil {
		logger.Error("text extraction failed", "path", path, "error", err, "duration_ms", dur.Milliseconds())
		os.Exit(1)
	}

	for _, n := range res.Pages.Numbers() {
		method := ""
		if n-1 < len(res.Methods) {
			method = res.Methods[n-1]
		}
		fmt.Printf("=== page %d [%s] ===\n%s\n", n, method, res.Pages[n])
	}
	logger.Info("text extraction OK",
		"source_type", res.SourceType,
		"mime", res.MimeType,
		"pages", len(res.Pages),
		"warnings", res.Warnings,
		"duration_ms", dur.Milliseconds(),
	)
}
