package nlp

import (
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/doc-extractor/internal/extract"
)

// Extractor resolves natural-language instructions against page text.
// It is safe for concurrent use.
type Extractor struct {
	res    *Resources
	logger *slog.Logger
}

// NewExtractor returns an Extractor backed by res.
func NewExtractor(res *Resources, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{res: res, logger: logger}
}

// Resources returns the shared resource handle.
func (x *Extractor) Resources() *Resources {
	return x.res
}

// Extract returns at most one match for instructions in text. Empty text,
// empty instructions and text with no relevant sentence yield no match.
func (x *Extractor) Extract(text, instructions string) []extract.Match {
	if strings.TrimSpace(text) == "" || strings.TrimSpace(instructions) == "" {
		return nil
	}

	kp := x.res.KeyPhrases(instructions)
	ranked := x.res.Rank(text, kp)
	if len(ranked) == 0 {
		x.logger.Debug("nlp no relevant sentences", "phrases", len(kp.Phrases))
		return nil
	}

	if targets := x.res.TargetLabels(instructions); len(targets) > 0 {
		if m, ok := byEntity(ranked, targets); ok {
			x.logger.Debug("nlp resolved by entity", "entity_type", m.EntityType)
			return []extract.Match{m}
		}
	}

	if banks := x.res.activeBanks(instructions); len(banks) > 0 {
		if m, ok := byFallback(ranked, banks); ok {
			x.logger.Debug("nlp resolved by fallback pattern", "entity_type", m.EntityType)
			return []extract.Match{m}
		}
	}

	best := ranked[0]
	x.logger.Debug("nlp resolved to sentence", "score", best.Score)
	return []extract.Match{{Value: best.Text, Context: best.Text, EntityType: LabelSentence}}
}

func byEntity(ranked []RankedSentence, targets map[string]struct{}) (extract.Match, bool) {
	for _, s := range ranked {
		for _, e := range s.Entities {
			if _, ok := targets[e.Label]; ok {
				return extract.Match{Value: e.Text, Context: s.Text, EntityType: e.Label}, true
			}
		}
	}
	return extract.Match{}, false
}

// byFallback scans the ranked sentences in order. Within a sentence the
// leftmost match of any active bank wins; a longer match breaks a tie.
func byFallback(ranked []RankedSentence, banks []fallbackBank) (extract.Match, bool) {
	for _, s := range ranked {
		var (
			best  extract.Match
			span  [2]int
			found bool
		)
		for _, b := range banks {
			v, loc, ok := b.find(s.Text)
			if !ok {
				continue
			}
			if !found || loc[0] < span[0] || (loc[0] == span[0] && loc[1] > span[1]) {
				best = extract.Match{Value: v, Context: s.Text, EntityType: b.label}
				span, found = loc, true
			}
		}
		if found {
			return best, true
		}
	}
	return extract.Match{}, false
}
