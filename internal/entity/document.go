package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/doc-extractor/constants"
)

// Document represents an ingested file for data transfer between layers.
type Document struct {
	ID          uuid.UUID                `json:"id"`
	Filename    string                   `json:"filename"`
	SourcePath  string                   `json:"source_path"`
	FileType    string                   `json:"file_type"`
	ContentHash string                   `json:"content_hash"`
	PageCount   int                      `json:"page_count"`
	Status      constants.DocumentStatus `json:"status"`
	Error       string                   `json:"error,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

// Page is the text of one page of a document.
type Page struct {
	ID         uuid.UUID `json:"id"`
	DocumentID uuid.UUID `json:"document_id"`
	PageNumber int       `json:"page_number"`
	Content    string    `json:"content"`
}
