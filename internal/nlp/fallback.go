package nlp

import (
	"regexp"
	"strings"
	"unicode"
)

type fallbackBank struct {
	name     string
	label    string
	keywords []string
	re       *regexp.Regexp
	accept   func(string) bool
}

func compileFallbackBanks() []fallbackBank {
	return []fallbackBank{
		{
			name:     "date",
			label:    LabelDate,
			keywords: []string{"date"},
			re: regexp.MustCompile(`(?i)\b\d{1,2}[-/.]\d{1,2}[-/.]\d{4}\b` +
				`|\b` + monthNames + `\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}\b` +
				`|\b\d{1,2}(?:st|nd|rd|th)?\s+` + monthNames + `\.?,?\s+\d{4}\b`),
		},
		{
			name:     "amount",
			label:    LabelMoney,
			keywords: []string{"amount", "total", "sum", "cost", "price"},
			re: regexp.MustCompile(`(?i)\$\s?\d{1,3}(?:,\d{3})+(?:\.\d+)?` +
				`|\$\s?\d+(?:\.\d+)?` +
				`|\b\d+(?:,\d{3})*(?:\.\d+)?\s?(?:dollars|usd|euros|pounds)\b` +
				`|\b\d+(?:,\d{3})*(?:\.\d+)?\s?[€£]`),
		},
		{
			name:     "identifier",
			label:    LabelIdentifier,
			keywords: []string{"id", "number", "reference", "code"},
			re: regexp.MustCompile(`\b[A-Za-z0-9]+(?:-[A-Za-z0-9]+)+\b` +
				`|\b[A-Za-z]{1,4}\d{4,}\b` +
				`|\b\d+[A-Za-z]+\b` +
				`|\b[A-Za-z]{2}\d{6,}\b`),
			accept: hasDigit,
		},
	}
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

// activeBanks returns the banks whose keywords occur in the instruction, in
// bank order (date, amount, identifier).
func (r *Resources) activeBanks(instructions string) []fallbackBank {
	words := r.instructionWords(instructions)
	var out []fallbackBank
	for _, b := range r.banks {
		for _, k := range b.keywords {
			if _, ok := words[k]; ok {
				out = append(out, b)
				break
			}
		}
	}
	return out
}

// find returns the leftmost acceptable match of the bank in s and its byte
// span.
func (b fallbackBank) find(s string) (string, [2]int, bool) {
	for _, loc := range b.re.FindAllStringIndex(s, -1) {
		m := s[loc[0]:loc[1]]
		if b.accept == nil || b.accept(m) {
			return m, [2]int{loc[0], loc[1]}, true
		}
	}
	return "", [2]int{}, false
}
