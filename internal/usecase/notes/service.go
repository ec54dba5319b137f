// Package notes is the write path: it computes a note's representation
// at save time so the retrieval engine never embeds candidates on the
// query path.
package notes

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ghinote/ghinote/internal/domain"
)

// Repository persists notes.
type Repository interface {
	Put(ctx context.Context, note *domain.Note) error
	Get(ctx context.Context, userID, id string) (*domain.Note, error)
	Delete(ctx context.Context, id string) error
}

// Provider produces a representation for the note's text.
type Provider interface {
	Embed(ctx context.Context, text string) domain.EmbedOutcome
}

// Service handles note writes.
type Service struct {
	repo     Repository
	provider Provider
	now      func() time.Time
	logger   *zap.Logger
}

// New creates a note service.
func New(repo Repository, provider Provider, logger *zap.Logger) *Service {
	return &Service{repo: repo, provider: provider, now: time.Now, logger: logger}
}

// WithClock injects the save timestamp source.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Save validates, embeds, and stores a note. A failed or degraded
// embedding still saves the note: retrieval falls back to keyword
// overlap for it.
func (s *Service) Save(ctx context.Context, note *domain.Note) error {
	if err := note.Validate(); err != nil {
		return err
	}
	if note.UpdatedAt.IsZero() {
		note.UpdatedAt = s.now()
	}

	outcome := s.provider.Embed(ctx, note.SearchableText())
	if outcome.Representation != nil {
		note.Embedding = outcome.Representation
	}
	if outcome.Degraded() {
		s.logger.Debug("note saved with degraded representation",
			zap.String("note_id", note.ID),
			zap.String("source", string(outcome.Source)))
	}

	return s.repo.Put(ctx, note)
}

// Get returns one of the user's notes.
func (s *Service) Get(ctx context.Context, userID, id string) (*domain.Note, error) {
	return s.repo.Get(ctx, userID, id)
}

// Delete removes a note.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
