package constants

// DocumentStatus is the canonical status for rows in documents.
type DocumentStatus string

// Stable values (store these exact strings in DB).
const (
	DocumentStatusPending       DocumentStatus = "PENDING"        // registered, no text yet
	DocumentStatusTextExtracted DocumentStatus = "TEXT_EXTRACTED" // pages stored
	DocumentStatusCompleted     DocumentStatus = "COMPLETED"      // rules applied
	DocumentStatusFailed        DocumentStatus = "FAILED"         // terminal failure
)
