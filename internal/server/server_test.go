package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
	"github.com/joseph-ayodele/doc-extractor/internal/engine"
	"github.com/joseph-ayodele/doc-extractor/internal/export"
	"github.com/joseph-ayodele/doc-extractor/internal/pipeline"
	"github.com/joseph-ayodele/doc-extractor/internal/repository"
	"github.com/joseph-ayodele/doc-extractor/internal/textextract"
)

type harness struct {
	client *Client
	conn   *grpc.ClientConn
	dir    string
}

func newHarness(t *testing.T) harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()
	db, err := repository.Open(ctx, common.DatabaseConfig{
		Driver: common.DriverSQLite,
		DSN:    "file::memory:?_pragma=foreign_keys(1)",
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(ctx))

	docs := repository.NewDocumentRepository(db, logger)
	pages := repository.NewPageRepository(db, logger)
	ruleSets := repository.NewRuleRepository(db, logger)
	results := repository.NewResultRepository(db, logger)
	reader := textextract.NewReader(nil, logger)
	eng := engine.New(nil, logger)
	proc := pipeline.NewProcessor(logger,
		pipeline.NewIngestStage(docs, pages, reader, logger),
		pipeline.NewExtractStage(docs, pages, ruleSets, results, eng, logger),
	)
	svc := NewExtractionService(Deps{
		Documents: docs,
		RuleSets:  ruleSets,
		Results:   results,
		Reader:    reader,
		Engine:    eng,
		Processor: proc,
		Exporter:  export.NewService(results, logger),
	}, logger)

	lis := bufconn.Listen(1 << 20)
	srv, _ := NewGRPCServer(svc, logger)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) { return lis.Dial() }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return harness{client: NewClient(conn), conn: conn, dir: t.TempDir()}
}

func (h harness) write(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(h.dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

const invoiceRules = `rules:
  - field_name: Invoice Number
    extraction_type: after_pattern
    search_pattern: "Invoice #"
    context_after: "\\n"
  - field_name: Email
    extraction_type: regex
    search_pattern: '[\w.]+@[\w.]+\.\w+'
`

func TestExtractionService(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	doc := h.write(t, "inv.txt", "Invoice # INV-2024-001\nContact: billing@acme.com\n")
	rulesPath := h.write(t, "rules.yaml", invoiceRules)

	t.Run("Should report health", func(t *testing.T) {
		resp, err := healthpb.NewHealthClient(h.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
		require.NoError(t, err)
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
	})

	t.Run("Should extract text and apply a rules file without storing anything", func(t *testing.T) {
		out, err := h.client.Call(ctx, "ExtractText", map[string]any{"path": doc, "rules_path": rulesPath})
		require.NoError(t, err)
		m := out.AsMap()
		assert.Equal(t, "TXT", m["source_type"])
		require.Len(t, m["pages"], 1)
		results := m["results"].([]any)
		require.Len(t, results, 2)
		assert.Equal(t, "INV-2024-001", results[0].(map[string]any)["value"])

		list, err := h.client.Call(ctx, "ListDocuments", nil)
		require.NoError(t, err)
		assert.Empty(t, list.AsMap()["documents"])
	})

	var documentID string
	t.Run("Should import rules and process a document synchronously", func(t *testing.T) {
		imp, err := h.client.Call(ctx, "ImportRules", map[string]any{"path": rulesPath, "name": "invoices"})
		require.NoError(t, err)
		set := imp.AsMap()["rule_set"].(map[string]any)
		assert.Equal(t, "invoices", set["name"])
		assert.Equal(t, float64(2), set["rule_count"])

		out, err := h.client.Call(ctx, "SubmitDocument", map[string]any{"path": doc, "wait": true})
		require.NoError(t, err)
		m := out.AsMap()
		assert.Equal(t, true, m["extracted"])
		d := m["document"].(map[string]any)
		assert.Equal(t, "COMPLETED", d["status"])
		documentID = d["id"].(string)

		res, err := h.client.Call(ctx, "GetResults", map[string]any{"document_id": documentID})
		require.NoError(t, err)
		stored := res.AsMap()["results"].([]any)
		require.Len(t, stored, 2)
		assert.Equal(t, "billing@acme.com", stored[1].(map[string]any)["value"])
	})

	t.Run("Should import inline rules and re-extract", func(t *testing.T) {
		imp, err := h.client.Call(ctx, "ImportRules", map[string]any{
			"rules": []any{map[string]any{"field_name": "Contact", "extraction_type": "exact", "search_pattern": "contact"}},
		})
		require.NoError(t, err)
		setID := imp.AsMap()["rule_set"].(map[string]any)["id"]

		out, err := h.client.Call(ctx, "Reextract", map[string]any{"document_id": documentID, "rule_set_id": setID})
		require.NoError(t, err)
		results := out.AsMap()["results"].([]any)
		require.Len(t, results, 1)
		assert.Equal(t, "contact", results[0].(map[string]any)["value"])

		sets, err := h.client.Call(ctx, "ListRuleSets", nil)
		require.NoError(t, err)
		assert.Len(t, sets.AsMap()["rule_sets"], 2)
	})

	t.Run("Should export stored results as a workbook", func(t *testing.T) {
		out, err := h.client.Call(ctx, "ExportResults", map[string]any{"document_id": documentID})
		require.NoError(t, err)
		m := out.AsMap()
		assert.Equal(t, float64(1), m["rows"])
		data, err := base64.StdEncoding.DecodeString(m["content"].(string))
		require.NoError(t, err)
		f, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		rows, err := f.GetRows("Results")
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("Should map errors onto status codes", func(t *testing.T) {
		_, err := h.client.Call(ctx, "ExtractText", map[string]any{})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))

		_, err = h.client.Call(ctx, "GetResults", map[string]any{"document_id": "not-a-uuid"})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))

		_, err = h.client.Call(ctx, "GetResults", map[string]any{"document_id": "6f1c1a52-3f0e-4b8e-9f55-3c2d2f1a0b11"})
		assert.Equal(t, codes.NotFound, status.Code(err))

		_, err = h.client.Call(ctx, "SubmitDocument", map[string]any{"path": doc})
		assert.Equal(t, codes.FailedPrecondition, status.Code(err))

		_, err = h.client.Call(ctx, "ImportRules", map[string]any{
			"rules": []any{map[string]any{"field_name": "Bad", "extraction_type": "regex", "search_pattern": "("}},
		})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))

		_, err = h.client.Call(ctx, "ListDocuments", map[string]any{"status": "DONE"})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("Should delete a document", func(t *testing.T) {
		_, err := h.client.Call(ctx, "DeleteDocument", map[string]any{"document_id": documentID})
		require.NoError(t, err)
		_, err = h.client.Call(ctx, "GetResults", map[string]any{"document_id": documentID})
		assert.Equal(t, codes.NotFound, status.Code(err))
	})
}
