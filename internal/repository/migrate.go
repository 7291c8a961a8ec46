package repository

import (
	"context"
	"fmt"
	"strings"

	"entgo.io/ent/dialect"
)

const (
	tableDocuments = "documents"
	tablePages     = "pages"
	tableRuleSets  = "rule_sets"
	tableRules     = "extraction_rules"
	tableResults   = "extraction_results"
)

// schema is the DDL shared by both dialects. %[1]s is the timestamp type.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		id varchar(36) NOT NULL PRIMARY KEY,
		filename text NOT NULL DEFAULT '',
		source_path text NOT NULL DEFAULT '',
		file_type text NOT NULL DEFAULT '',
		content_hash text NOT NULL DEFAULT '',
		page_count integer NOT NULL DEFAULT 0,
		status text NOT NULL DEFAULT '',
		error text NOT NULL DEFAULT '',
		created_at %[1]s NOT NULL,
		updated_at %[1]s NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS documents_content_hash ON documents (content_hash)`,

	`CREATE TABLE IF NOT EXISTS pages (
		id varchar(36) NOT NULL PRIMARY KEY,
		document_id varchar(36) NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
		page_number integer NOT NULL DEFAULT 0,
		content text NOT NULL DEFAULT ''
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS pages_document_page ON pages (document_id, page_number)`,

	`CREATE TABLE IF NOT EXISTS rule_sets (
		id varchar(36) NOT NULL PRIMARY KEY,
		name text NOT NULL DEFAULT '',
		source text NOT NULL DEFAULT '',
		created_at %[1]s NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS extraction_rules (
		id varchar(36) NOT NULL PRIMARY KEY,
		rule_set_id varchar(36) NOT NULL REFERENCES rule_sets (id) ON DELETE CASCADE,
		position integer NOT NULL DEFAULT 0,
		field_name text NOT NULL DEFAULT '',
		extraction_type text NOT NULL DEFAULT '',
		search_pattern text NOT NULL DEFAULT '',
		context_before text NOT NULL DEFAULT '',
		context_after text NOT NULL DEFAULT '',
		instructions text NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS extraction_rules_set_position ON extraction_rules (rule_set_id, position)`,

	`CREATE TABLE IF NOT EXISTS extraction_results (
		id varchar(36) NOT NULL PRIMARY KEY,
		document_id varchar(36) NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
		rule_set_id varchar(36) NOT NULL,
		position integer NOT NULL DEFAULT 0,
		field_name text NOT NULL DEFAULT '',
		extraction_type text NOT NULL DEFAULT '',
		page_number integer NOT NULL DEFAULT 0,
		value text NOT NULL DEFAULT '',
		context text NOT NULL DEFAULT '',
		entity_type text NOT NULL DEFAULT '',
		created_at %[1]s NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS extraction_results_document ON extraction_results (document_id, position)`,
}

// migrationStatements renders the DDL for one dialect.
func migrationStatements(name string) []string {
	ts := "timestamptz"
	if name == dialect.SQLite {
		ts = "datetime"
	}
	out := make([]string, 0, len(schema))
	for _, s := range schema {
		if strings.Contains(s, "%[1]s") {
			s = fmt.Sprintf(s, ts)
		}
		out = append(out, s)
	}
	return out
}

// Migrate creates the tables and indexes if they do not exist yet.
func (d *DB) Migrate(ctx context.Context) error {
	for _, stmt := range migrationStatements(d.dialect) {
		if err := d.drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			d.logger.Error("migration failed", "statement", stmt, "error", err)
			return dbError("migrate", err)
		}
	}
	d.logger.Info("database schema ready", "dialect", d.dialect)
	return nil
}
