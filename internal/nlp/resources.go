// Package nlp interprets free-text extraction instructions: it derives key
// phrases from the instruction, ranks the sentences of a page against them and
// resolves the ranked sentences to a value.
package nlp

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
)

// Lemmatizer reduces a lowercase word to its dictionary form.
type Lemmatizer interface {
	Lemma(word string) string
}

// Resources holds the linguistic data used by the extractor: the lemmatizer
// dictionary, word lists, gazetteers and compiled entity patterns. Build it
// once per process and share it; it is read-only after construction.
type Resources struct {
	lemmatizer Lemmatizer

	stopWords    map[string]struct{}
	determiners  map[string]struct{}
	pronouns     map[string]struct{}
	prepositions map[string]struct{}
	conjunctions map[string]struct{}
	auxiliaries  map[string]struct{}
	adverbs      map[string]struct{}
	verbs        map[string]struct{}
	actionVerbs  map[string]struct{}
	adjectives   map[string]struct{}

	titles        map[string]struct{}
	orgSuffixes   map[string]struct{}
	locSuffixes   map[string]struct{}
	firstNames    map[string]struct{}
	gpe           map[string]struct{}
	abbreviations map[string]struct{}

	patterns []entityPattern
	targets  []targetKeyword
	banks    []fallbackBank
}

// ResourceOption customises NewResources.
type ResourceOption func(*resourceConfig)

type resourceConfig struct {
	lemmatizer Lemmatizer
	logger     *slog.Logger
}

// WithLemmatizer replaces the bundled English dictionary.
func WithLemmatizer(l Lemmatizer) ResourceOption {
	return func(c *resourceConfig) { c.lemmatizer = l }
}

// WithResourceLogger sets the logger used while loading.
func WithResourceLogger(l *slog.Logger) ResourceOption {
	return func(c *resourceConfig) { c.logger = l }
}

// NewResources loads the English resources. Loading the lemmatizer
// dictionary is the expensive part; callers should do it once.
func NewResources(opts ...ResourceOption) (*Resources, error) {
	cfg := resourceConfig{}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	if cfg.lemmatizer == nil {
		lm, err := golem.New(en.New())
		if err != nil {
			return nil, fmt.Errorf("load english lemmatizer: %w", err)
		}
		cfg.lemmatizer = lm
		cfg.logger.Debug("nlp lemmatizer loaded", "language", "en")
	}

	r := &Resources{
		lemmatizer:    cfg.lemmatizer,
		stopWords:     wordSet(stopWordList),
		determiners:   wordSet(determinerList),
		pronouns:      wordSet(pronounList),
		prepositions:  wordSet(prepositionList),
		conjunctions:  wordSet(conjunctionList),
		auxiliaries:   wordSet(auxiliaryList),
		adverbs:       wordSet(adverbList),
		verbs:         wordSet(verbList),
		actionVerbs:   wordSet(actionVerbList),
		adjectives:    wordSet(adjectiveList),
		titles:        wordSet(titleList),
		orgSuffixes:   wordSet(orgSuffixList),
		locSuffixes:   wordSet(locSuffixList),
		firstNames:    wordSet(firstNameList),
		gpe:           wordSet(gpeList),
		abbreviations: wordSet(abbreviationList),
		patterns:      compileEntityPatterns(),
		targets:       targetKeywords(),
		banks:         compileFallbackBanks(),
	}
	for _, p := range gpePhrases {
		r.gpe[p] = struct{}{}
	}
	return r, nil
}

// lemma lowercases w and reduces it with the lemmatizer. Words the
// dictionary does not know are returned lowercased.
func (r *Resources) lemma(w string) string {
	lw := strings.ToLower(w)
	if r.lemmatizer == nil {
		return lw
	}
	if l := r.lemmatizer.Lemma(lw); l != "" {
		return strings.ToLower(l)
	}
	return lw
}

func (r *Resources) isStopWord(w string) bool {
	return has(r.stopWords, strings.ToLower(w))
}
