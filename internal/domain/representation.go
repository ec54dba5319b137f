package domain

import "math"

// Kind identifies the shape of a text representation.
type Kind string

// Representation kinds, from richest to most degraded.
const (
	// KindEntityFeatures is produced by the local short-text extractor.
	KindEntityFeatures Kind = "entity_features"
	// KindVector is a numeric embedding from a remote provider.
	KindVector Kind = "vector"
	// KindKeywordBag is the last-resort bag of stopword-filtered words.
	KindKeywordBag Kind = "keyword_bag"
)

// Representation is the tagged union the embedding provider produces for a
// piece of text. Only the fields matching Kind are populated; every variant
// exposes a keyword list so mixed-kind comparisons stay possible.
type Representation struct {
	Kind Kind `json:"kind"`

	// Entity-feature fields.
	Entities  map[string][]string `json:"entities,omitempty"`
	Keywords  []string            `json:"keywords,omitempty"`
	Chunks    []string            `json:"chunks,omitempty"`
	TagCounts map[string]int      `json:"tag_counts,omitempty"`

	// Vector fields.
	Vector     []float32 `json:"vector,omitempty"`
	Dimensions int       `json:"dimensions,omitempty"`

	// Keyword-bag fields.
	WordCount int `json:"word_count,omitempty"`

	TextLength int `json:"text_length,omitempty"`
}

// KeywordList returns the keyword list this representation carries.
// Vector representations carry none.
func (r *Representation) KeywordList() []string {
	if r == nil {
		return nil
	}
	return r.Keywords
}

// Similarity scores two representations in [0, 1].
//
// Dispatch rules:
//   - vector vs vector: cosine similarity; 0 when either side is empty or
//     dimensions differ (never an error).
//   - any pairing involving entity features or a keyword bag: Jaccard
//     similarity over the keyword lists; 0 when either list is empty.
//   - mixed vector/non-vector: degrades to Jaccard over whatever keyword
//     lists both sides carry.
func Similarity(a, b *Representation) float64 {
	if a == nil || b == nil {
		return 0
	}
	if a.Kind == KindVector && b.Kind == KindVector {
		return cosine(a.Vector, b.Vector)
	}
	return jaccard(a.KeywordList(), b.KeywordList())
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]struct{}, len(a))
	for _, w := range a {
		setA[w] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, w := range b {
		setB[w] = struct{}{}
	}
	intersection := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
