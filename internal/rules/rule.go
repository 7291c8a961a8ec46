// Package rules defines extraction rules and the loaders that build them from
// spreadsheets, YAML and JSON files.
package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/doc-extractor/constants"
)

// Rule is one of ExactRule, RegexRule, AfterPatternRule or NLPRule.
type Rule interface {
	Name() string
	Type() constants.ExtractionType
	Record() Record
	sealed()
}

// Base holds the fields shared by every rule variant.
type Base struct {
	FieldName string
	// Instructions is required for NLPRule and an optional hint elsewhere.
	Instructions string
}

func (b Base) Name() string { return b.FieldName }

func (Base) sealed() {}

// ExactRule matches a literal, case-insensitively.
type ExactRule struct {
	Base
	Pattern string
}

func (ExactRule) Type() constants.ExtractionType { return constants.ExtractionExact }

func (r ExactRule) Record() Record {
	return Record{FieldName: r.FieldName, ExtractionType: string(r.Type()), SearchPattern: r.Pattern, Instructions: r.Instructions}
}

// RegexRule matches a case-insensitive regular expression.
type RegexRule struct {
	Base
	Pattern string

	re *regexp.Regexp
}

// NewRegexRule compiles pattern and returns an error naming field on failure.
func NewRegexRule(field, pattern, instructions string) (RegexRule, error) {
	r := RegexRule{Base: Base{FieldName: field, Instructions: instructions}, Pattern: pattern}
	re, err := r.Compile()
	if err != nil {
		return RegexRule{}, err
	}
	r.re = re
	return r, nil
}

func (RegexRule) Type() constants.ExtractionType { return constants.ExtractionRegex }

func (r RegexRule) Record() Record {
	return Record{FieldName: r.FieldName, ExtractionType: string(r.Type()), SearchPattern: r.Pattern, Instructions: r.Instructions}
}

// Compile returns the case-insensitive expression, reusing the one built by
// NewRegexRule when present.
func (r RegexRule) Compile() (*regexp.Regexp, error) {
	if r.re != nil {
		return r.re, nil
	}
	re, err := regexp.Compile("(?i)" + r.Pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex %q: %w", r.Pattern, err)
	}
	return re, nil
}

// AfterPatternRule captures the text that follows a literal.
type AfterPatternRule struct {
	Base
	Pattern       string
	ContextBefore string
	// ContextAfter terminates the capture when found.
	ContextAfter string
}

func (AfterPatternRule) Type() constants.ExtractionType { return constants.ExtractionAfterPattern }

func (r AfterPatternRule) Record() Record {
	return Record{
		FieldName:      r.FieldName,
		ExtractionType: string(r.Type()),
		SearchPattern:  r.Pattern,
		ContextBefore:  r.ContextBefore,
		ContextAfter:   r.ContextAfter,
		Instructions:   r.Instructions,
	}
}

// NLPRule is driven by free-text instructions. Pattern is kept for display
// only and is never used as an instruction.
type NLPRule struct {
	Base
	Pattern string
}

func (NLPRule) Type() constants.ExtractionType { return constants.ExtractionNLP }

func (r NLPRule) Record() Record {
	return Record{FieldName: r.FieldName, ExtractionType: string(r.Type()), SearchPattern: r.Pattern, Instructions: r.Instructions}
}

// Record is the flat, tabular form of a rule as stored in files and in the
// database.
type Record struct {
	FieldName      string `json:"field_name" yaml:"field_name"`
	ExtractionType string `json:"extraction_type" yaml:"extraction_type"`
	SearchPattern  string `json:"search_pattern,omitempty" yaml:"search_pattern,omitempty"`
	ContextBefore  string `json:"context_before,omitempty" yaml:"context_before,omitempty"`
	ContextAfter   string `json:"context_after,omitempty" yaml:"context_after,omitempty"`
	Instructions   string `json:"instructions,omitempty" yaml:"instructions,omitempty"`
}

var escapes = strings.NewReplacer(`\n`, "\n", `\r`, "\r", `\t`, "\t")

// unescape turns the two-character sequences \n, \r and \t typed into a
// spreadsheet cell into the control characters they name.
func unescape(s string) string {
	return escapes.Replace(s)
}

var reescapes = strings.NewReplacer("\n", `\n`, "\r", `\r`, "\t", `\t`)

// Escaped returns r with control characters in the context columns written
// as \n, \r and \t, the form the loaders read back.
func (r Record) Escaped() Record {
	r.ContextBefore = reescapes.Replace(r.ContextBefore)
	r.ContextAfter = reescapes.Replace(r.ContextAfter)
	return r
}
