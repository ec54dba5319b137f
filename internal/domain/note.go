package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Note is a single unit of retrievable content owned by one user.
// The retrieval engine only reads notes; creation and updates happen
// in the note-management layer.
type Note struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Title      string          `json:"title,omitempty"`
	Body       string          `json:"body,omitempty"`
	OCRText    string          `json:"ocr_text,omitempty"`
	Annotation *Annotation     `json:"annotation,omitempty"`
	Embedding  *Representation `json:"embedding,omitempty"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Archived   bool            `json:"archived"`
}

// SearchableText joins title, body, and OCR text into one haystack
// for substring and keyword-overlap matching.
func (n *Note) SearchableText() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{n.Title, n.Body, n.OCRText} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Validate checks the fields required for storage.
func (n *Note) Validate() error {
	if n.ID == "" || n.UserID == "" {
		return ErrInvalidNote
	}
	return nil
}

// Annotation is a structured-entity annotation attached to a note by an
// external extraction step. The payload is opaque: the engine serializes
// it for token matching and counts fields, but never validates a schema.
type Annotation struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// FieldCount returns the number of top-level payload fields.
func (a *Annotation) FieldCount() int {
	if a == nil {
		return 0
	}
	return len(a.Payload)
}

// SearchableString serializes the annotation payload to a lower-cased
// string for substring matching. A payload that cannot be marshaled is
// rendered via its type tag only.
func (a *Annotation) SearchableString() string {
	if a == nil {
		return ""
	}
	data, err := json.Marshal(a.Payload)
	if err != nil {
		return strings.ToLower(a.Type)
	}
	return strings.ToLower(a.Type + " " + string(data))
}
