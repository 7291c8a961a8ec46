package nlp

import (
	"sort"
	"strings"
)

const (
	phraseScore      = 3
	bagScore         = 2
	instructionScore = 2
	entityScore      = 1
)

// RankedSentence is a sentence with its relevance score and the entities
// recognised in it. Entity offsets are relative to the sentence text.
type RankedSentence struct {
	Sentence
	Score    int
	Entities []Entity
}

// Rank scores every sentence of text against kp, drops sentences scoring
// zero and orders the rest by descending score. Ties keep source order.
func (r *Resources) Rank(text string, kp KeyPhrases) []RankedSentence {
	var ranked []RankedSentence
	for _, s := range r.segment(text) {
		ents := r.recognize(s.Text)
		score := scoreSentence(s.Text, ents, kp)
		if score == 0 {
			continue
		}
		ranked = append(ranked, RankedSentence{Sentence: s, Score: score, Entities: ents})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

func scoreSentence(sentence string, ents []Entity, kp KeyPhrases) int {
	lower := strings.ToLower(sentence)
	score := 0
	for _, p := range kp.Phrases {
		switch {
		case strings.Contains(lower, p):
			score += phraseScore
		case containsAllWords(lower, p):
			score += bagScore
		}
	}
	for _, e := range kp.Entities {
		if strings.Contains(lower, strings.ToLower(e.Text)) {
			score += instructionScore
		}
	}
	for _, e := range ents {
		if _, ok := scoredLabels[e.Label]; ok {
			score += entityScore
		}
	}
	return score
}

// containsAllWords reports whether every whitespace-separated word of phrase
// occurs in s, in any order. Single-word phrases are left to the substring
// check.
func containsAllWords(s, phrase string) bool {
	words := strings.Fields(phrase)
	if len(words) < 2 {
		return false
	}
	for _, w := range words {
		if !strings.Contains(s, w) {
			return false
		}
	}
	return true
}
