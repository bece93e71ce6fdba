package models

import (
	"time"
)

// User represents an authenticated user of the system.
type User struct {
	ID           string    `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ChatSession is one conversation thread. A session carries at most one
// medical report; MedicalAnalysis caches the generated analysis text so the
// UI can render it without re-reading messages.
type ChatSession struct {
	ID               string    `db:"id" json:"id"`
	UserID           string    `db:"user_id" json:"user_id"`
	Title            string    `db:"title" json:"title"`
	HasMedicalReport bool      `db:"has_medical_report" json:"has_medical_report"`
	MedicalAnalysis  *string   `db:"medical_analysis" json:"medical_analysis,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// MedicalReport is the persisted record of an uploaded report PDF.
// The original file lives in object storage; only the extracted text is kept
// in the row. A report row exists iff the whole ingestion pipeline succeeded.
type MedicalReport struct {
	ID               string    `db:"id" json:"id"`
	SessionID        string    `db:"session_id" json:"session_id"`
	Filename         string    `db:"filename" json:"filename"`
	OriginalFilename string    `db:"original_filename" json:"original_filename"`
	StorageURL       string    `db:"storage_url" json:"storage_url"`
	StorageKey       string    `db:"storage_key" json:"-"`
	ExtractedText    string    `db:"extracted_text" json:"-"`
	FileSize         int64     `db:"file_size" json:"file_size"`
	PageCount        int       `db:"page_count" json:"page_count"`
	UploadedAt       time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// ChatMessage represents an individual chat message (user or assistant).
type ChatMessage struct {
	ID        string    `db:"id" json:"id"`
	SessionID string    `db:"session_id" json:"session_id"`
	Role      string    `db:"role" json:"role"` // "user" or "assistant"
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// VectorEmbedding is one embedded content chunk owned by a session: a report
// passage, the generated analysis, or a derived passage. Rows are
// cascade-deleted with their session.
type VectorEmbedding struct {
	ID        string            `db:"id" json:"id"`
	SessionID string            `db:"session_id" json:"session_id"`
	Content   string            `db:"content" json:"content"`
	Embedding []float32         `db:"embedding" json:"-"`
	Metadata  map[string]string `db:"metadata" json:"metadata"`
	Distance  float64           `db:"-" json:"distance,omitempty"` // populated by similarity search
	CreatedAt time.Time         `db:"created_at" json:"created_at"`
}
