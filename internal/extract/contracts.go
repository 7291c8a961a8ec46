package extract

import (
	"context"
	"sort"
	"time"

	"github.com/joseph-ayodele/doc-extractor/internal/rules"
)

// Pages maps 1-based page numbers to page text.
type Pages map[int]string

// Numbers returns the page numbers in ascending order.
func (p Pages) Numbers() []int {
	nums := make([]int, 0, len(p))
	for n := range p {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// Match is a single located value. EntityType is empty for pattern matches.
type Match struct {
	Value      string `json:"value"`
	Context    string `json:"context"`
	EntityType string `json:"entity_type,omitempty"`
}

// Result ties a match to the rule and page that produced it.
type Result struct {
	Rule       rules.Rule
	PageNumber int
	Match      Match
}

// TextExtractor is Stage 1: file -> pages.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Pages      Pages
	SourceType string   // "PDF" | "DOCX" | "IMAGE" | "TXT"
	Methods    []string // per page, "pdf-text" | "pdf-ocr" | "image-ocr" | "docx" | "txt"
	MimeType   string
	Duration   time.Duration
	Warnings   []string
}

// FieldExtractor is Stage 2: pages + rules -> results.
type FieldExtractor interface {
	Run(ctx context.Context, pages Pages, rs []rules.Rule) ([]Result, error)
}
