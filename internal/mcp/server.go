// Package mcp exposes text and field extraction as Model Context Protocol
// tools over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joseph-ayodele/doc-extractor/constants"
	"github.com/joseph-ayodele/doc-extractor/internal/extract"
	"github.com/joseph-ayodele/doc-extractor/internal/repository"
	"github.com/joseph-ayodele/doc-extractor/internal/rules"
)

const maxListLimit = 200

// ServerConfig holds the collaborators of the tools. Documents, Results and
// RuleSets may be nil, in which case only extract_text is registered.
type ServerConfig struct {
	Version   string
	Reader    extract.TextExtractor
	Engine    extract.FieldExtractor
	Documents repository.DocumentRepository
	Results   repository.ResultRepository
	RuleSets  repository.RuleRepository
	Logger    *slog.Logger
}

type resultView struct {
	FieldName      string `json:"field_name"`
	ExtractionType string `json:"extraction_type"`
	PageNumber     int    `json:"page_number"`
	Value          string `json:"value"`
	Context        string `json:"context"`
	EntityType     string `json:"entity_type,omitempty"`
}

type pageView struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
}

func NewServer(cfg ServerConfig) *server.MCPServer {
	ver := cfg.Version
	if ver == "" {
		ver = "dev"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	s := server.NewMCPServer("doc-extractor", ver, server.WithToolCapabilities(false))

	registerExtractTool(s, cfg)
	if cfg.Documents != nil && cfg.Results != nil {
		registerListDocumentsTool(s, cfg)
		registerResultsTool(s, cfg)
	}
	if cfg.RuleSets != nil {
		registerImportRulesTool(s, cfg)
	}
	return s
}

// Serve runs the server on stdin/stdout until the input closes.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func registerExtractTool(s *server.MCPServer, cfg ServerConfig) {
	tool := mcp.NewTool("extract_text",
		mcp.WithDescription("Extract the text of a PDF, DOCX, image or text file page by page. With rules_path, also apply the extraction rules in that XLSX, YAML or JSON file and return the matched fields."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path of the document on the server's filesystem"),
		),
		mcp.WithString("rules_path",
			mcp.Description("Optional rules file to apply"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := req.RequireString("path")
		if err != nil || path == "" {
			return mcp.NewToolResultError("path is required"), nil
		}
		text, err := cfg.Reader.Extract(ctx, path)
		if err != nil {
			cfg.Logger.Warn("mcp extract failed", "path", path, "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}

		out := struct {
			SourceType string       `json:"source_type"`
			Warnings   []string     `json:"warnings,omitempty"`
			Pages      []pageView   `json:"pages"`
			Results    []resultView `json:"results,omitempty"`
		}{SourceType: text.SourceType, Warnings: text.Warnings}
		for _, n := range text.Pages.Numbers() {
			out.Pages = append(out.Pages, pageView{PageNumber: n, Text: text.Pages[n]})
		}

		if rulesPath := req.GetString("rules_path", ""); rulesPath != "" {
			rs, err := rules.LoadFile(rulesPath)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			results, err := cfg.Engine.Run(ctx, text.Pages, rs)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			out.Results = make([]resultView, 0, len(results))
			for _, r := range results {
				out.Results = append(out.Results, resultView{
					FieldName:      r.Rule.Name(),
					ExtractionType: string(r.Rule.Type()),
					PageNumber:     r.PageNumber,
					Value:          r.Match.Value,
					Context:        r.Match.Context,
					EntityType:     r.Match.EntityType,
				})
			}
		}
		return jsonResult(out)
	})
}

func registerListDocumentsTool(s *server.MCPServer, cfg ServerConfig) {
	tool := mcp.NewTool("list_documents",
		mcp.WithDescription("List ingested documents, newest first, with their processing status."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("status",
			mcp.Description("Only documents in this status"),
			mcp.Enum(
				string(constants.DocumentStatusPending),
				string(constants.DocumentStatusTextExtracted),
				string(constants.DocumentStatusCompleted),
				string(constants.DocumentStatusFailed),
			),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of documents (default: 50, max: 200)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		opts := repository.ListOptions{
			Status: constants.DocumentStatus(req.GetString("status", "")),
			Limit:  50,
		}
		if limit := req.GetInt("limit", 0); limit > 0 {
			opts.Limit = min(limit, maxListLimit)
		}
		docs, err := cfg.Documents.List(ctx, opts)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(docs)
	})
}

func registerResultsTool(s *server.MCPServer, cfg ServerConfig) {
	tool := mcp.NewTool("document_results",
		mcp.WithDescription("Get a stored document and the fields extracted from it."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("document_id",
			mcp.Required(),
			mcp.Description("Document UUID as returned by list_documents"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := req.RequireString("document_id")
		if err != nil {
			return mcp.NewToolResultError("document_id is required"), nil
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return mcp.NewToolResultError("document_id must be a UUID"), nil
		}
		doc, err := cfg.Documents.Get(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		rows, err := cfg.Results.ListByDocument(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		out := struct {
			Document any `json:"document"`
			Results  any `json:"results"`
		}{doc, rows}
		return jsonResult(out)
	})
}

func registerImportRulesTool(s *server.MCPServer, cfg ServerConfig) {
	tool := mcp.NewTool("import_rules",
		mcp.WithDescription("Validate a rules file and store it as a new rule set. Newly ingested documents use the newest rule set."),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("XLSX, YAML or JSON rules file"),
		),
		mcp.WithString("name",
			mcp.Description("Rule set name (default: file name)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := req.RequireString("path")
		if err != nil || path == "" {
			return mcp.NewToolResultError("path is required"), nil
		}
		rs, err := rules.LoadFile(path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		set, err := cfg.RuleSets.SaveSet(ctx, req.GetString("name", filepath.Base(path)), path, rs)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(set)
	})
}
