// Package ask holds the validated retrieval request value type.
package ask

import (
	"fmt"
	"strings"

	"github.com/ghinote/ghinote/internal/domain"
)

// Request limits.
const (
	MaxQuestionLength = 2048
	DefaultLimit      = 10
	MaxLimit          = 50
)

// Request is a validated retrieval question scoped to one user.
type Request struct {
	question string
	userID   string
	limit    int
}

// New validates and normalizes request parameters. Blank questions are
// rejected here, before any retrieval starts.
func New(question, userID string, limit int) (Request, error) {
	if strings.TrimSpace(question) == "" {
		return Request{}, domain.ErrEmptyQuestion
	}
	if len(question) > MaxQuestionLength {
		return Request{}, fmt.Errorf("question too long (max %d chars)", MaxQuestionLength)
	}
	if userID == "" {
		return Request{}, fmt.Errorf("user id is required")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Request{question: question, userID: userID, limit: limit}, nil
}

// Question returns the question text.
func (r *Request) Question() string { return r.question }

// UserID returns the querying user's identifier.
func (r *Request) UserID() string { return r.userID }

// Limit returns the maximum number of results to return.
func (r *Request) Limit() int { return r.limit }
