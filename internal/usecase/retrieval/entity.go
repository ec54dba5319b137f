package retrieval

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ghinote/ghinote/internal/domain"
	"github.com/ghinote/ghinote/internal/domain/rank"
)

// Bonus constants for entity scoring. The token-match bonus saturates
// so an annotation can never outscore a direct text hit on tokens alone.
const (
	entityTypeBonus     = 0.3
	entityMatchCeiling  = 0.7
	entityPhoneBonus    = 0.4
	entityRichnessBonus = 0.1
	// richnessThreshold is the payload field count above which an
	// annotation counts as information-rich.
	richnessThreshold = 3
)

// Entity ranks notes whose structured-entity annotations match the
// question. Notes without an annotation never score.
type Entity struct {
	corpus Corpus
	logger *zap.Logger
}

// NewEntity creates the entity strategy.
func NewEntity(corpus Corpus, logger *zap.Logger) *Entity {
	return &Entity{corpus: corpus, logger: logger}
}

// Search scores annotated candidate notes against the question.
func (e *Entity) Search(ctx context.Context, question, userID string, limit int) rank.List {
	notes, err := e.corpus.ListCandidates(ctx, userID)
	if err != nil {
		e.logger.Warn("candidate listing failed", zap.Error(err))
		return nil
	}

	questionLower := strings.ToLower(question)
	tokens := tokenSet(tokenize(question))
	asksForPhone := containsAnyMarker(questionLower, phoneMarkers)

	var hits rank.List
	for _, note := range notes {
		if note.Annotation == nil {
			continue
		}
		score := scoreAnnotation(note, questionLower, tokens, asksForPhone)
		if score > 0 {
			hits = append(hits, rank.ScoredNote{Note: note, Score: score})
		}
	}
	hits.Sort()
	return hits.Truncate(limit)
}

func scoreAnnotation(note *domain.Note, questionLower string, tokens map[string]struct{}, asksForPhone bool) float64 {
	score := 0.0
	ann := note.Annotation

	if typeTag := strings.ToLower(ann.Type); typeTag != "" && strings.Contains(questionLower, typeTag) {
		score += entityTypeBonus
	}

	payload := ann.SearchableString()

	matches := 0.0
	for tok := range tokens {
		if len([]rune(tok)) <= 2 || !strings.Contains(payload, tok) {
			continue
		}
		matches++
		if _, high := highValueTokens[tok]; high {
			matches += 0.5
		}
	}
	if matches > 0 && len(tokens) > 0 {
		bonus := entityMatchCeiling * matches / float64(len(tokens))
		if bonus > entityMatchCeiling {
			bonus = entityMatchCeiling
		}
		score += bonus
	}

	if asksForPhone && (strings.Contains(payload, "phone") || containsDigit(payload)) {
		score += entityPhoneBonus
	}

	if ann.FieldCount() > richnessThreshold {
		score += entityRichnessBonus
	}

	return score
}

func containsAnyMarker(haystack string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(haystack, m) {
			return true
		}
	}
	return false
}
