package entity

import (
	"time"

	"github.com/google/uuid"
)

// ExtractionResult is a stored match, denormalized with the rule that
// produced it so results survive rule set changes.
type ExtractionResult struct {
	ID             uuid.UUID `json:"id"`
	DocumentID     uuid.UUID `json:"document_id"`
	RuleSetID      uuid.UUID `json:"rule_set_id"`
	Filename       string    `json:"filename,omitempty"`
	FieldName      string    `json:"field_name"`
	ExtractionType string    `json:"extraction_type"`
	PageNumber     int       `json:"page_number"`
	Value          string    `json:"value"`
	Context        string    `json:"context"`
	EntityType     string    `json:"entity_type,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
