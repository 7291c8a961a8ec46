package nlp

type targetKeyword struct {
	words  []string
	labels []string
}

func targetKeywords() []targetKeyword {
	return []targetKeyword{
		{words: []string{"date", "time", "when", "deadline"}, labels: []string{LabelDate, LabelTime}},
		{words: []string{"amount", "money", "cost", "price", "dollar"}, labels: []string{LabelMoney, LabelQuantity, LabelCardinal}},
		{words: []string{"person", "name", "who"}, labels: []string{LabelPerson, LabelOrg}},
		{words: []string{"company", "organization", "organisation", "business"}, labels: []string{LabelOrg}},
		{words: []string{"location", "address", "city", "country", "where", "place"}, labels: []string{LabelLoc, LabelGPE}},
		{words: []string{"number", "percentage", "percent"}, labels: []string{LabelCardinal, LabelOrdinal, LabelQuantity, LabelPercent}},
	}
}

// TargetLabels returns the entity categories an instruction asks for. Words
// are matched on their lowercase form and their lemma, so "dates" counts as
// "date" while "update" does not.
func (r *Resources) TargetLabels(instructions string) map[string]struct{} {
	words := r.instructionWords(instructions)
	out := make(map[string]struct{})
	for _, tk := range r.targets {
		for _, w := range tk.words {
			if _, ok := words[w]; !ok {
				continue
			}
			for _, l := range tk.labels {
				out[l] = struct{}{}
			}
			break
		}
	}
	return out
}

func (r *Resources) instructionWords(instructions string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, t := range tokenize(instructions) {
		if t.Kind != kindWord {
			continue
		}
		words[t.Lower] = struct{}{}
		words[r.lemma(t.Lower)] = struct{}{}
	}
	return words
}
