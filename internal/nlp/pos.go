package nlp

import "strings"

// Coarse part-of-speech tags.
const (
	posDet   = "DET"
	posAdp   = "ADP"
	posPron  = "PRON"
	posConj  = "CCONJ"
	posAux   = "AUX"
	posVerb  = "VERB"
	posAdj   = "ADJ"
	posAdv   = "ADV"
	posNoun  = "NOUN"
	posPropn = "PROPN"
	posNum   = "NUM"
	posPart  = "PART"
	posPunct = "PUNCT"
)

var possessives = map[string]struct{}{
	"my": {}, "your": {}, "his": {}, "her": {}, "its": {}, "our": {}, "their": {},
}

// tag assigns a part of speech and lemma to every token using the lexicons
// and a few positional cues. It is tuned for short imperative instructions.
func (r *Resources) tag(tokens []Token) {
	for i := range tokens {
		t := &tokens[i]
		switch t.Kind {
		case kindPunct:
			if t.POS != posPart {
				t.POS = posPunct
			}
			t.Lemma = t.Lower
			continue
		case kindNumber:
			t.POS = posNum
			t.Lemma = t.Lower
			continue
		}

		t.Lemma = r.lemma(t.Lower)
		var prev *Token
		if i > 0 {
			prev = &tokens[i-1]
		}
		t.POS = r.wordPOS(*t, prev, i == 0, nextIsWord(tokens, i))
	}
}

func (r *Resources) wordPOS(t Token, prev *Token, first, beforeWord bool) string {
	w := t.Lower
	switch {
	case has(possessives, w), has(r.determiners, w):
		return posDet
	case has(r.pronouns, w):
		return posPron
	case has(r.auxiliaries, w):
		return posAux
	case has(r.prepositions, w):
		return posAdp
	case has(r.conjunctions, w):
		return posConj
	case has(r.adverbs, w), w == "please", len(w) > 4 && strings.HasSuffix(w, "ly") && !has(r.adjectives, w):
		return posAdv
	}

	if has(r.verbs, t.Lemma) && verbPosition(prev, first) {
		return posVerb
	}
	if prev != nil && prev.POS == posAux && (strings.HasSuffix(w, "ing") || strings.HasSuffix(w, "ed")) {
		return posVerb
	}
	if has(r.adjectives, w) {
		return posAdj
	}
	if beforeWord && hasAdjectiveSuffix(w) {
		return posAdj
	}
	if t.capitalized() && !first {
		return posPropn
	}
	if first && (has(r.firstNames, w) || has(r.gpe, w)) && t.capitalized() {
		return posPropn
	}
	return posNoun
}

// verbPosition reports whether a verb-capable word sits where a verb is
// expected: sentence start, after a pronoun, auxiliary, adverb,
// conjunction or "to", or after punctuation.
func verbPosition(prev *Token, first bool) bool {
	if first || prev == nil {
		return true
	}
	switch prev.POS {
	case posPron, posAux, posAdv, posConj, posPunct:
		return true
	}
	return prev.Lower == "to"
}

func hasAdjectiveSuffix(w string) bool {
	if len(w) < 5 {
		return false
	}
	for _, s := range adjectiveSuffixes {
		if strings.HasSuffix(w, s) {
			return true
		}
	}
	return false
}

func nextIsWord(tokens []Token, i int) bool {
	return i+1 < len(tokens) && tokens[i+1].Kind == kindWord
}

// chunk is a noun phrase as a token range [start, end).
type chunk struct {
	start, end int
}

// nounChunks groups runs of modifiers and nouns ending in a noun. Leading
// determiners are left out of the chunk; a trailing adjective with no noun
// after it is taken as the head.
func nounChunks(tokens []Token) []chunk {
	var out []chunk
	i := 0
	for i < len(tokens) {
		if !chunkable(tokens[i].POS) || tokens[i].POS == posPart {
			i++
			continue
		}
		j := i
		lastHead := -1
		for j < len(tokens) && chunkable(tokens[j].POS) {
			if tokens[j].POS == posNoun || tokens[j].POS == posPropn {
				lastHead = j
			}
			j++
		}
		switch {
		case lastHead >= 0:
			out = append(out, chunk{start: i, end: lastHead + 1})
		case tokens[j-1].POS == posAdj:
			out = append(out, chunk{start: i, end: j})
		}
		i = j
	}
	return out
}

func chunkable(pos string) bool {
	switch pos {
	case posAdj, posNoun, posPropn, posNum, posPart:
		return true
	}
	return false
}
