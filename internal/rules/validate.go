package rules

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/doc-extractor/constants"
	"github.com/joseph-ayodele/doc-extractor/internal/common"
)

const maxFieldNameLength = 255

// ConfigError attributes a configuration problem to one rule.
type ConfigError struct {
	Index int // zero-based position in the rule list or file
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("rule %d: %v", e.Index+1, e.Err)
	}
	return fmt.Sprintf("rule %d (%s): %v", e.Index+1, e.Field, e.Err)
}

func (e *ConfigError) Unwrap() []error {
	return []error{common.ErrValidation, e.Err}
}

// LoadError collects every invalid row of a rule source.
type LoadError struct {
	Source string
	Errs   []*ConfigError
}

func (e *LoadError) Error() string {
	msgs := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("load rules from %s: %s", e.Source, strings.Join(msgs, "; "))
}

func (e *LoadError) Unwrap() error {
	return common.ErrValidation
}

// FromRecord validates rec and converts it into its rule variant.
func FromRecord(rec Record) (Rule, error) {
	field := strings.TrimSpace(rec.FieldName)
	typ, typeOK := constants.ParseExtractionType(rec.ExtractionType)

	v := common.NewValidator().
		Field("field_name", field, common.Required, common.MaxLength(maxFieldNameLength)).
		Check(typeOK, "extraction_type", rec.ExtractionType, "must be one of "+strings.Join(constants.ExtractionTypes(), ", "))
	if typeOK && typ != constants.ExtractionNLP {
		v.Field("search_pattern", rec.SearchPattern, common.Required)
	}
	if err := v.Error(); err != nil {
		return nil, err
	}

	base := Base{FieldName: field, Instructions: strings.TrimSpace(rec.Instructions)}
	switch typ {
	case constants.ExtractionExact:
		return ExactRule{Base: base, Pattern: rec.SearchPattern}, nil
	case constants.ExtractionRegex:
		return NewRegexRule(base.FieldName, rec.SearchPattern, base.Instructions)
	case constants.ExtractionAfterPattern:
		return AfterPatternRule{
			Base:          base,
			Pattern:       rec.SearchPattern,
			ContextBefore: unescape(rec.ContextBefore),
			ContextAfter:  unescape(rec.ContextAfter),
		}, nil
	default:
		return NLPRule{Base: base, Pattern: rec.SearchPattern}, nil
	}
}

// FromRecords converts every record, reporting all failures at once.
func FromRecords(source string, recs []Record) ([]Rule, error) {
	out := make([]Rule, 0, len(recs))
	var errs []*ConfigError
	for i, rec := range recs {
		r, err := FromRecord(rec)
		if err != nil {
			errs = append(errs, &ConfigError{Index: i, Field: strings.TrimSpace(rec.FieldName), Err: err})
			continue
		}
		out = append(out, r)
	}
	if len(errs) > 0 {
		return nil, &LoadError{Source: source, Errs: errs}
	}
	return out, nil
}

// Validate checks a rule that may have been built by hand rather than through
// FromRecord. It returns nil for a usable rule.
func Validate(r Rule) error {
	if r == nil {
		return fmt.Errorf("%w: nil rule", common.ErrValidation)
	}
	if strings.TrimSpace(r.Name()) == "" {
		return fmt.Errorf("%w: field_name is required", common.ErrValidation)
	}
	switch rule := r.(type) {
	case ExactRule:
		return requirePattern(rule.Pattern)
	case AfterPatternRule:
		return requirePattern(rule.Pattern)
	case RegexRule:
		if err := requirePattern(rule.Pattern); err != nil {
			return err
		}
		_, err := rule.Compile()
		return err
	case NLPRule:
		return nil
	}
	return fmt.Errorf("%w: unknown rule type %T", common.ErrValidation, r)
}

func requirePattern(p string) error {
	if strings.TrimSpace(p) == "" {
		return fmt.Errorf("%w: search_pattern is required", common.ErrValidation)
	}
	return nil
}

// Records flattens rules for storage or export.
func Records(rs []Rule) []Record {
	out := make([]Record, len(rs))
	for i, r := range rs {
		out[i] = r.Record()
	}
	return out
}
