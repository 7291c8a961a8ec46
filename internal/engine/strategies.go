package engine

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/doc-extractor/internal/extract"
	"github.com/joseph-ayodele/doc-extractor/internal/rules"
)

const (
	patternWindow      = 100
	afterPatternWindow = 50
	afterPatternMaxLen = 50
)

// literal compiles a case-insensitive matcher for s taken literally.
func literal(s string) *regexp.Regexp {
	return regexp.MustCompile("(?i)" + regexp.QuoteMeta(s))
}

// matchExact reports every non-overlapping occurrence of the rule's literal.
// The value is the pattern as written, not the casing found in the text.
func matchExact(text string, re *regexp.Regexp, r rules.ExactRule) []extract.Match {
	locs := re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}
	out := make([]extract.Match, 0, len(locs))
	for _, loc := range locs {
		out = append(out, extract.Match{
			Value:   r.Pattern,
			Context: window(text, loc[0], loc[1], patternWindow),
		})
	}
	return out
}

// matchRegex reports every non-empty match of the rule's expression.
func matchRegex(text string, re *regexp.Regexp) []extract.Match {
	var out []extract.Match
	for _, loc := range re.FindAllStringIndex(text, -1) {
		if loc[0] == loc[1] {
			continue
		}
		out = append(out, extract.Match{
			Value:   text[loc[0]:loc[1]],
			Context: window(text, loc[0], loc[1], patternWindow),
		})
	}
	return out
}

// matchAfterPattern captures the text after each occurrence of the rule's
// literal. The capture ends at the nearest of the terminator, the next
// newline, or 50 characters. Captures that are blank after trimming are
// dropped.
func matchAfterPattern(text string, re, terminator *regexp.Regexp) []extract.Match {
	var out []extract.Match
	for _, loc := range re.FindAllStringIndex(text, -1) {
		start := loc[1]
		end := afterPatternEnd(text, start, terminator)
		value := strings.TrimSpace(text[start:end])
		if value == "" {
			continue
		}
		out = append(out, extract.Match{
			Value:   value,
			Context: window(text, loc[0], end, afterPatternWindow),
		})
	}
	return out
}

func afterPatternEnd(text string, start int, terminator *regexp.Regexp) int {
	end := advance(text, start, afterPatternMaxLen)
	if i := strings.IndexByte(text[start:], '\n'); i >= 0 && start+i < end {
		end = start + i
	}
	if terminator != nil {
		if loc := terminator.FindStringIndex(text[start:]); loc != nil && start+loc[0] < end {
			end = start + loc[0]
		}
	}
	return end
}
