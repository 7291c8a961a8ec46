package nlp

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Sentence is a trimmed sentence and its byte span in the source text.
type Sentence struct {
	Text  string
	Start int
	End   int
}

// segment splits text into sentences in source order. Sentences end at
// terminal punctuation followed by whitespace and a capital, digit or quote,
// at blank lines, and at single line breaks unless the next line continues
// in lower case or the line ends with a joining character.
func (r *Resources) segment(text string) []Sentence {
	var (
		out   []Sentence
		start = 0
	)
	emit := func(end int) {
		if end <= start {
			return
		}
		raw := text[start:end]
		trimmed := strings.TrimSpace(raw)
		if trimmed != "" {
			lead := strings.Index(raw, trimmed)
			out = append(out, Sentence{Text: trimmed, Start: start + lead, End: start + lead + len(trimmed)})
		}
		start = end
	}

	for i := 0; i < len(text); {
		c, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case c == '\n':
			j := skipSpace(text, i)
			if strings.Count(text[i:j], "\n") >= 2 || breaksLine(text, i, j) {
				emit(i)
				start = j
			}
			i = j
			continue
		case c == '.' || c == '!' || c == '?':
			j := i + size
			for j < len(text) && strings.IndexByte(".!?\"')]", text[j]) >= 0 {
				j++
			}
			if j >= len(text) {
				i = j
				continue
			}
			next := skipSpace(text, j)
			if next == j {
				i = j
				continue
			}
			if c == '.' && r.isAbbreviation(text[:i]) {
				i = j
				continue
			}
			if next < len(text) {
				nr, _ := utf8.DecodeRuneInString(text[next:])
				if !(unicode.IsUpper(nr) || unicode.IsDigit(nr) || strings.ContainsRune("\"'“‘([$€£", nr)) {
					i = j
					continue
				}
			}
			emit(j)
			start = j
			i = next
			continue
		}
		i += size
	}
	emit(len(text))
	return out
}

func skipSpace(s string, i int) int {
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += size
	}
	return i
}

// breaksLine decides whether the newline at nl ends a sentence; next is the
// first non-space byte after it.
func breaksLine(text string, nl, next int) bool {
	if next >= len(text) {
		return true
	}
	nr, _ := utf8.DecodeRuneInString(text[next:])
	if unicode.IsLower(nr) {
		return false
	}
	prev := strings.TrimRightFunc(text[:nl], unicode.IsSpace)
	if prev == "" {
		return true
	}
	pr, _ := utf8.DecodeLastRuneInString(prev)
	return !strings.ContainsRune(",;(&-", pr)
}

// isAbbreviation reports whether the word that ends before is a known
// abbreviation or a single-letter initial.
func (r *Resources) isAbbreviation(before string) bool {
	i := len(before)
	for i > 0 {
		pr, size := utf8.DecodeLastRuneInString(before[:i])
		if !unicode.IsLetter(pr) && pr != '.' {
			break
		}
		i -= size
	}
	word := strings.ToLower(before[i:])
	if word == "" {
		return false
	}
	if utf8.RuneCountInString(word) == 1 {
		return true
	}
	return has(r.abbreviations, strings.TrimSuffix(word, "."))
}
