package constants

import "strings"

// ExtractionType selects the strategy used for a rule.
type ExtractionType string

const (
	ExtractionExact        ExtractionType = "exact"
	ExtractionRegex        ExtractionType = "regex"
	ExtractionAfterPattern ExtractionType = "after_pattern"
	ExtractionNLP          ExtractionType = "nlp"
)

var allExtractionTypes = []ExtractionType{
	ExtractionExact,
	ExtractionRegex,
	ExtractionAfterPattern,
	ExtractionNLP,
}

// ExtractionTypes returns the accepted extraction type names.
func ExtractionTypes() []string {
	result := make([]string, len(allExtractionTypes))
	for i, t := range allExtractionTypes {
		result[i] = string(t)
	}
	return result
}

// ParseExtractionType canonicalizes input. Spaces and dashes are accepted in
// place of underscores ("after pattern", "after-pattern").
func ParseExtractionType(input string) (ExtractionType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	for _, t := range allExtractionTypes {
		if normalized == string(t) {
			return t, true
		}
	}
	return "", false
}
