package retrieval

import (
	"strings"
	"time"

	"github.com/ghinote/ghinote/internal/domain/rank"
)

// Rerank boost multipliers. Applied to the fused superset, so a note
// that fuses low but matches the title can still climb into the limit.
const (
	titleBoost    = 1.2
	recencyBoost  = 1.1
	recencyWindow = 7 * 24 * time.Hour
	richnessBoost = 1.05
	// richPayloadFields is the payload size above which the richness
	// boost applies. Stricter than the entity strategy's threshold.
	richPayloadFields = 5
)

// fuse merges the three strategy lists by weighted sum, reranks the top
// 2*limit entries with secondary boosts, and truncates to limit.
// Pure function of its inputs, including now.
func fuse(lexical, semantic, entity rank.List, weights rank.Profile, question string, limit int, now time.Time) rank.List {
	type slot struct {
		list   rank.List
		weight float64
	}
	accumulator := make(map[string]*rank.ScoredNote)
	for _, s := range []slot{
		{lexical, weights.Lexical},
		{semantic, weights.Semantic},
		{entity, weights.Entity},
	} {
		for _, hit := range s.list {
			if acc, ok := accumulator[hit.Note.ID]; ok {
				acc.Score += hit.Score * s.weight
				continue
			}
			accumulator[hit.Note.ID] = &rank.ScoredNote{Note: hit.Note, Score: hit.Score * s.weight}
		}
	}

	fused := make(rank.List, 0, len(accumulator))
	for _, acc := range accumulator {
		fused = append(fused, *acc)
	}
	fused.Sort()
	fused = fused.Truncate(2 * limit)

	questionTokens := tokenize(question)
	for i := range fused {
		fused[i].Score *= boostFactor(&fused[i], questionTokens, now)
	}
	fused.Sort()
	return fused.Truncate(limit)
}

func boostFactor(hit *rank.ScoredNote, questionTokens []string, now time.Time) float64 {
	factor := 1.0
	note := hit.Note

	if note.Title != "" {
		titleLower := strings.ToLower(note.Title)
		for _, tok := range questionTokens {
			if strings.Contains(titleLower, tok) {
				factor *= titleBoost
				break
			}
		}
	}

	if now.Sub(note.UpdatedAt) < recencyWindow {
		factor *= recencyBoost
	}

	if note.Annotation.FieldCount() > richPayloadFields {
		factor *= richnessBoost
	}

	return factor
}
