// Package engine applies extraction rules to the pages of a document.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/doc-extractor/internal/extract"
	"github.com/joseph-ayodele/doc-extractor/internal/nlp"
	"github.com/joseph-ayodele/doc-extractor/internal/rules"
)

// Engine runs rules over pages. It holds no per-run state and is safe for
// concurrent use.
type Engine struct {
	nlp         *nlp.Extractor
	logger      *slog.Logger
	parallelism int
}

// Option configures an Engine.
type Option func(*Engine)

// WithParallelism evaluates up to n (rule, page) pairs at once. Result order
// does not depend on n.
func WithParallelism(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.parallelism = n
		}
	}
}

// New builds an Engine around a shared NLP extractor.
func New(x *nlp.Extractor, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{nlp: x, logger: logger, parallelism: 1}
	for _, o := range opts {
		o(e)
	}
	return e
}

// prepared is a validated rule with its compiled matchers.
type prepared struct {
	rule       rules.Rule
	re         *regexp.Regexp
	terminator *regexp.Regexp
}

// Run applies every rule to every page and returns the results rule by rule,
// pages ascending within a rule. Invalid rules are reported before any page
// is read, each error naming its rule. Pages with blank text produce nothing.
// If ctx ends early, the results gathered so far are returned with ctx.Err().
func (e *Engine) Run(ctx context.Context, pages extract.Pages, rs []rules.Rule) ([]extract.Result, error) {
	preps, err := prepare(rs)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	nums := pages.Numbers()
	matches := make([][]extract.Match, len(preps)*len(nums))
	done := make([]bool, len(matches))

	evaluate := func(k int) {
		p := preps[k/len(nums)]
		page := nums[k%len(nums)]
		matches[k] = e.safeMatch(p, page, pages[page])
		done[k] = true
	}

	if len(nums) > 0 {
		if e.parallelism <= 1 {
			for k := range matches {
				if ctx.Err() != nil {
					break
				}
				evaluate(k)
			}
		} else {
			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(e.parallelism)
			for k := range matches {
				if gctx.Err() != nil {
					break
				}
				g.Go(func() error {
					if gctx.Err() != nil {
						return nil
					}
					evaluate(k)
					return nil
				})
			}
			_ = g.Wait()
		}
	}

	var results []extract.Result
	for k, ms := range matches {
		if !done[k] {
			continue
		}
		for _, m := range ms {
			results = append(results, extract.Result{
				Rule:       preps[k/len(nums)].rule,
				PageNumber: nums[k%len(nums)],
				Match:      m,
			})
		}
	}

	if err := ctx.Err(); err != nil {
		e.logger.Warn("extraction stopped early", "results", len(results), "error", err)
		return results, err
	}
	e.logger.Debug("extraction run completed",
		"rules", len(preps),
		"pages", len(nums),
		"results", len(results),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return results, nil
}

func prepare(rs []rules.Rule) ([]prepared, error) {
	preps := make([]prepared, 0, len(rs))
	var errs []error
	for i, r := range rs {
		if err := rules.Validate(r); err != nil {
			name := ""
			if r != nil {
				name = r.Name()
			}
			errs = append(errs, &rules.ConfigError{Index: i, Field: name, Err: err})
			continue
		}
		p := prepared{rule: r}
		switch rule := r.(type) {
		case rules.ExactRule:
			p.re = literal(rule.Pattern)
		case rules.RegexRule:
			p.re, _ = rule.Compile()
		case rules.AfterPatternRule:
			p.re = literal(rule.Pattern)
			if rule.ContextAfter != "" {
				p.terminator = literal(rule.ContextAfter)
			}
		}
		preps = append(preps, p)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return preps, nil
}

// safeMatch evaluates one (rule, page) pair. A panic is logged and treated
// as no match so one bad pair cannot abort the run.
func (e *Engine) safeMatch(p prepared, page int, text string) (out []extract.Match) {
	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Error("extraction failed for rule on page",
				"field", p.rule.Name(),
				"type", p.rule.Type(),
				"page", page,
				"error", fmt.Sprint(rec),
			)
			out = nil
		}
	}()
	return e.match(p, page, text)
}

func (e *Engine) match(p prepared, page int, text string) []extract.Match {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	switch rule := p.rule.(type) {
	case rules.ExactRule:
		return matchExact(text, p.re, rule)
	case rules.RegexRule:
		return matchRegex(text, p.re)
	case rules.AfterPatternRule:
		return matchAfterPattern(text, p.re, p.terminator)
	case rules.NLPRule:
		if rule.Instructions == "" {
			e.logger.Debug("nlp rule has no instructions, skipping", "field", rule.FieldName, "page", page)
			return nil
		}
		if e.nlp == nil {
			e.logger.Warn("nlp rule without an nlp extractor, skipping", "field", rule.FieldName)
			return nil
		}
		return e.nlp.Extract(text, rule.Instructions)
	}
	return nil
}
