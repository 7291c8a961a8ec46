package nlp

import (
	"regexp"
	"sort"
	"strings"
)

// Entity categories.
const (
	LabelDate       = "DATE"
	LabelTime       = "TIME"
	LabelMoney      = "MONEY"
	LabelPercent    = "PERCENT"
	LabelQuantity   = "QUANTITY"
	LabelOrdinal    = "ORDINAL"
	LabelCardinal   = "CARDINAL"
	LabelPerson     = "PERSON"
	LabelOrg        = "ORG"
	LabelGPE        = "GPE"
	LabelLoc        = "LOC"
	LabelIdentifier = "IDENTIFIER"
	LabelSentence   = "SENTENCE"
)

// scoredLabels are the categories that add to a sentence's relevance.
var scoredLabels = map[string]struct{}{
	LabelDate: {}, LabelTime: {}, LabelMoney: {}, LabelPercent: {}, LabelQuantity: {}, LabelOrdinal: {},
	LabelCardinal: {}, LabelPerson: {}, LabelOrg: {}, LabelGPE: {}, LabelLoc: {},
}

// Entity is a recognised span of text with its category and byte offsets.
type Entity struct {
	Text  string
	Label string
	Start int
	End   int
}

type entityPattern struct {
	label    string
	re       *regexp.Regexp
	priority int // lower wins when two candidates share start and length
}

const monthNames = `(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`

func compileEntityPatterns() []entityPattern {
	defs := []struct {
		label string
		expr  string
	}{
		{LabelDate, `(?i)\b\d{4}-\d{1,2}-\d{1,2}\b`},
		{LabelDate, `(?i)\b\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4}\b`},
		{LabelDate, `(?i)\b` + monthNames + `\.?\s+\d{1,2}(?:st|nd|rd|th)?(?:,?\s+\d{4})?\b`},
		{LabelDate, `(?i)\b\d{1,2}(?:st|nd|rd|th)?\s+(?:of\s+)?` + monthNames + `\.?(?:,?\s+\d{4})?\b`},
		{LabelDate, `(?i)\b` + monthNames + `\.?,?\s+\d{4}\b`},
		{LabelDate, `(?i)\b(?:mon|tues|wednes|thurs|fri|satur|sun)day\b`},
		{LabelDate, `(?i)\b(?:today|tomorrow|yesterday)\b`},
		{LabelTime, `(?i)\b\d{1,2}:\d{2}(?::\d{2})?(?:\s*[ap]\.?m\b\.?)?`},
		{LabelTime, `(?i)\b\d{1,2}\s*[ap]\.?m\b\.?`},
		{LabelTime, `(?i)\b(?:noon|midnight)\b`},
		{LabelMoney, `(?i)[$€£¥]\s?\d[\d,]*(?:\.\d+)?(?:\s?(?:million|billion|thousand)\b)?`},
		{LabelMoney, `(?i)\b(?:usd|eur|gbp)\s?\d[\d,]*(?:\.\d+)?`},
		{LabelMoney, `(?i)\b\d[\d,]*(?:\.\d+)?\s?(?:dollars?|usd|eur|euros?|gbp|pounds?|cents?)\b`},
		{LabelMoney, `\b\d[\d,]*(?:\.\d+)?\s?[€£]`},
		{LabelPercent, `(?i)\b\d+(?:\.\d+)?\s?(?:%|percent\b|per cent\b)`},
		{LabelQuantity, `(?i)\b\d[\d,]*(?:\.\d+)?\s?(?:kg|kgs|kilograms?|grams?|lbs?|oz|ounces?|km|kilometers?|kilometres?|miles?|meters?|metres?|cm|mm|ft|feet|foot|inch(?:es)?|liters?|litres?|ml|gallons?|tons?|tonnes?|units?|pieces?|pcs|boxes|items?)\b`},
		{LabelOrdinal, `(?i)\b\d+(?:st|nd|rd|th)\b`},
		{LabelOrdinal, `(?i)\b(?:first|second|third|fourth|fifth|sixth|seventh|eighth|ninth|tenth|eleventh|twelfth|twentieth|thirtieth|hundredth)\b`},
		{LabelCardinal, `\b\d[\d,]*(?:\.\d+)?\b`},
		{LabelCardinal, `(?i)\b(?:one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|thirteen|fourteen|fifteen|twenty|thirty|forty|fifty|hundred|thousand|million|billion)\b`},
	}
	out := make([]entityPattern, len(defs))
	for i, d := range defs {
		out[i] = entityPattern{label: d.label, re: regexp.MustCompile(d.expr), priority: i}
	}
	return out
}

// recognize finds entities in text. Numeric and temporal categories come
// from patterns; names come from runs of capitalised words classified by
// titles, suffixes, gazetteers and first names. Overlaps resolve to the
// earliest, then longest, then highest-priority candidate.
func (r *Resources) recognize(text string) []Entity {
	var cands []candidate
	for _, p := range r.patterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			span := strings.TrimRight(text[loc[0]:loc[1]], " ,")
			if span == "" {
				continue
			}
			cands = append(cands, candidate{
				Entity:   Entity{Text: span, Label: p.label, Start: loc[0], End: loc[0] + len(span)},
				priority: p.priority,
			})
		}
	}
	nameBase := len(r.patterns)
	for _, e := range r.nameEntities(text) {
		cands = append(cands, candidate{Entity: e, priority: nameBase})
	}
	return resolveOverlaps(cands)
}

type candidate struct {
	Entity
	priority int
}

func resolveOverlaps(cands []candidate) []Entity {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if la, lb := a.End-a.Start, b.End-b.Start; la != lb {
			return la > lb
		}
		return a.priority < b.priority
	})
	out := make([]Entity, 0, len(cands))
	lastEnd := -1
	for _, c := range cands {
		if c.Start < lastEnd {
			continue
		}
		out = append(out, c.Entity)
		lastEnd = c.End
	}
	return out
}

// nameEntities classifies runs of capitalised words as PERSON, ORG, GPE or
// LOC. A run may contain "of" and "&" between capitalised words but never
// crosses a line break or punctuation other than a trailing abbreviation
// period. Runs that match nothing are not entities.
func (r *Resources) nameEntities(text string) []Entity {
	tokens := tokenize(text)
	var out []Entity
	i := 0
	for i < len(tokens) {
		if !r.nameToken(tokens[i]) {
			i++
			continue
		}
		j := i + 1
		for j < len(tokens) && sameLine(text, tokens[j-1], tokens[j]) {
			if r.nameToken(tokens[j]) {
				j++
				continue
			}
			// "Dr." and similar: the period belongs to the title.
			if tokens[j].Text == "." && has(r.titles, tokens[j-1].Lower) && j+1 < len(tokens) &&
				r.nameToken(tokens[j+1]) && sameLine(text, tokens[j], tokens[j+1]) {
				j += 2
				continue
			}
			if (tokens[j].Lower == "of" || tokens[j].Lower == "&") && j+1 < len(tokens) &&
				r.nameToken(tokens[j+1]) && sameLine(text, tokens[j], tokens[j+1]) {
				j += 2
				continue
			}
			break
		}
		if e, ok := r.classifyRun(text, tokens, i, j); ok {
			out = append(out, e)
		}
		i = j
	}
	return out
}

func (r *Resources) nameToken(t Token) bool {
	return t.Kind == kindWord && t.capitalized()
}

// continuesOnLine reports whether anything but blanks follows i before the
// end of the line.
func continuesOnLine(text string, i int) bool {
	rest := strings.TrimLeft(text[i:], " \t")
	return rest != "" && rest[0] != '\n' && rest[0] != '\r'
}

func sameLine(text string, a, b Token) bool {
	gap := text[a.End:b.Start]
	return strings.TrimLeft(gap, " \t") == ""
}

func (r *Resources) classifyRun(text string, tokens []Token, start, end int) (Entity, bool) {
	atSentenceStart := start == 0 || isTerminal(tokens[start-1]) || !sameLine(text, tokens[start-1], tokens[start])

	first := tokens[start].Lower
	last := tokens[end-1].Lower
	spanEnd := tokens[end-1].End
	// Include an abbreviation period after the last word ("Corp.", "Inc.")
	// unless it also ends the line, where it is the full stop.
	if spanEnd < len(text) && text[spanEnd] == '.' && has(r.abbreviations, last) && continuesOnLine(text, spanEnd+1) {
		spanEnd++
	}
	mk := func(label string, from int) (Entity, bool) {
		s := tokens[from].Start
		return Entity{Text: text[s:spanEnd], Label: label, Start: s, End: spanEnd}, true
	}

	phrase := strings.ToLower(text[tokens[start].Start:tokens[end-1].End])
	switch {
	case has(r.titles, first) && end-start >= 2:
		from := start + 1
		if tokens[from].Text == "." {
			from++
		}
		if from >= end || tokens[from].Lower == "of" || tokens[from].Lower == "&" {
			return Entity{}, false
		}
		return mk(LabelPerson, from)
	case end-start >= 2 && has(r.orgSuffixes, last):
		return mk(LabelOrg, start)
	case has(r.gpe, phrase):
		return mk(LabelGPE, start)
	case end-start >= 2 && has(r.locSuffixes, last):
		return mk(LabelLoc, start)
	case has(r.firstNames, first) && (end-start >= 2 || !atSentenceStart):
		return mk(LabelPerson, start)
	}

	// A sentence-initial capital is usually just capitalisation; retry
	// without it.
	if atSentenceStart && end-start >= 2 {
		return r.classifyRun(text, tokens, start+1, end)
	}
	return Entity{}, false
}

func isTerminal(t Token) bool {
	return t.Kind == kindPunct && strings.ContainsAny(t.Text, ".!?:;\"")
}
