package rules

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/doc-extractor/constants"
)

// buildRuleFileSchema describes a rule file: either a bare array of rules or
// an object with a "rules" array and an optional "name".
func buildRuleFileSchema() map[string]any {
	rule := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"field_name":      map[string]any{"type": "string", "minLength": 1},
			"extraction_type": map[string]any{"type": "string", "enum": constants.ExtractionTypes()},
			"search_pattern":  map[string]any{"type": "string"},
			"context_before":  map[string]any{"type": "string"},
			"context_after":   map[string]any{"type": "string"},
			"instructions":    map[string]any{"type": "string"},
		},
		"required": []string{"field_name", "extraction_type"},
	}
	list := map[string]any{"type": "array", "items": rule}

	return map[string]any{
		"oneOf": []any{
			list,
			map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"name":  map[string]any{"type": "string"},
					"rules": list,
				},
				"required": []string{"rules"},
			},
		},
	}
}

var ruleFileSchema *jsonschema.Schema

func init() {
	s, err := compileSchema(buildRuleFileSchema())
	if err != nil {
		panic(fmt.Sprintf("rules: compile file schema: %v", err))
	}
	ruleFileSchema = s
}

func compileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("rules.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return compiler.Compile("rules.json")
}

// validateDocument checks JSON-encoded data against the rule file schema.
func validateDocument(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := ruleFileSchema.Validate(v); err != nil {
		return fmt.Errorf("rule file does not match schema: %w", err)
	}
	return nil
}
