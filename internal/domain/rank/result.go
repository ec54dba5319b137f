// Package rank holds the scored-result value types and fusion weight
// profiles shared between the retrieval strategies and the engine.
package rank

import (
	"sort"

	"github.com/ghinote/ghinote/internal/domain"
)

// ScoredNote pairs a note with a non-negative relevance score.
// Scores are transient, produced per query and never persisted.
type ScoredNote struct {
	Note  *domain.Note
	Score float64
}

// List is an ordered list of scored notes.
type List []ScoredNote

// Sort orders the list by score descending. Ties break on note ID so
// repeated runs over identical inputs produce identical orderings.
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		if l[i].Score != l[j].Score {
			return l[i].Score > l[j].Score
		}
		return l[i].Note.ID < l[j].Note.ID
	})
}

// Truncate caps the list at limit entries. Non-positive limits leave the
// list unchanged.
func (l List) Truncate(limit int) List {
	if limit > 0 && len(l) > limit {
		return l[:limit]
	}
	return l
}
