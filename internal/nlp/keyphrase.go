package nlp

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// KeyPhrases is what an instruction asks about.
type KeyPhrases struct {
	// Phrases are lowercase and unique under case folding, in discovery order.
	Phrases []string
	// Entities are the named entities written in the instruction itself.
	Entities []Entity
}

// KeyPhrases derives the salient phrases of an instruction: lemmatised
// content words, noun phrases, objects of action verbs and named entities.
func (r *Resources) KeyPhrases(instructions string) KeyPhrases {
	tokens := tokenize(instructions)
	r.tag(tokens)

	seen := make(map[string]struct{})
	folder := cases.Fold()
	var phrases []string
	add := func(p string) {
		p = strings.ToLower(strings.TrimSpace(p))
		if utf8.RuneCountInString(p) <= 1 {
			return
		}
		key := folder.String(p)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		phrases = append(phrases, p)
	}

	for _, t := range tokens {
		if t.Kind == kindPunct || !isAlnum(t.Lower) || r.isStopWord(t.Lower) {
			continue
		}
		add(t.Lemma)
	}

	chunks := nounChunks(tokens)
	for _, c := range chunks {
		add(chunkText(instructions, tokens, c))
	}

	for i, t := range tokens {
		if t.POS != posVerb || !has(r.actionVerbs, t.Lemma) {
			continue
		}
		if obj, ok := objectOf(tokens, chunks, i); ok {
			add(t.Lemma + " " + chunkText(instructions, tokens, obj))
		}
	}

	ents := r.recognize(instructions)
	for _, e := range ents {
		add(e.Text)
	}
	return KeyPhrases{Phrases: phrases, Entities: ents}
}

func chunkText(src string, tokens []Token, c chunk) string {
	return strings.ToLower(src[tokens[c.start].Start:tokens[c.end-1].End])
}

// objectOf returns the first noun phrase after the verb at index v, provided
// no other verb or clause break comes first.
func objectOf(tokens []Token, chunks []chunk, v int) (chunk, bool) {
	for _, c := range chunks {
		if c.start <= v {
			continue
		}
		for k := v + 1; k < c.start; k++ {
			switch tokens[k].POS {
			case posVerb, posConj:
				return chunk{}, false
			case posPunct:
				if tokens[k].Lower != "-" {
					return chunk{}, false
				}
			}
		}
		return c, true
	}
	return chunk{}, false
}
