package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/doc-extractor/internal/rules"
)

// RuleSet is a named, ordered list of rules imported from one source.
type RuleSet struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Source    string         `json:"source"`
	CreatedAt time.Time      `json:"created_at"`
	Rules     []rules.Record `json:"rules,omitempty"`
}
