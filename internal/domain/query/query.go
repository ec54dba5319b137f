// Package query classifies a natural-language question into the retrieval
// strategy profile used for score fusion.
package query

import (
	"strings"
	"unicode"
)

// Type is the classified question category selecting the fusion weights.
type Type string

// Question categories.
const (
	// Keyword favors full-text matching: short questions naming a thing.
	Keyword Type = "keyword"
	// Semantic favors embedding similarity: long or abstract questions.
	Semantic Type = "semantic"
	// Structured favors entity matching: questions about fielded facts.
	Structured Type = "structured"
	// Hybrid is the balanced default.
	Hybrid Type = "hybrid"
)

// Token-count thresholds for the keyword and semantic heuristics.
const (
	shortQuestionTokens = 6
	longQuestionTokens  = 8
)

// Markers holds the marker word lists the classifier matches against.
// The lists are language-specific tuning data, carried in configuration
// rather than code; defaults are tuned for Vietnamese with common English
// equivalents mixed in.
type Markers struct {
	// Structured markers are locative, quantitative, or temporal phrases.
	Structured []string `yaml:"structured"`
	// ActionVerbs mark short actionable questions as keyword lookups.
	ActionVerbs []string `yaml:"action_verbs"`
	// AbstractPhrases mark open-ended planning questions as semantic.
	AbstractPhrases []string `yaml:"abstract_phrases"`
}

// DefaultMarkers returns the built-in marker lists.
func DefaultMarkers() Markers {
	return Markers{
		Structured: []string{
			"lúc", "vào", "ngày", "tháng", "của", "ở đâu",
			"bao nhiêu", "số điện thoại", "số", "giá", "địa chỉ",
			"email", "website", "sdt", "phone", "giờ", "thời gian",
			"khi nào", "when", "where", "how many", "phone number",
			"price", "address", "time",
		},
		ActionVerbs: []string{
			"họp", "deadline", "mua", "gọi", "gặp", "làm", "đi", "về",
			"meet", "buy", "call",
		},
		AbstractPhrases: []string{
			"chuẩn bị gì", "nên làm gì", "kế hoạch", "ý tưởng",
			"làm thế nào", "tại sao", "như thế nào", "có nên", "có thể",
			"what should i do", "plan", "why", "how",
		},
	}
}

// Classifier assigns a question one of the four types. It is pure and
// deterministic: same question in, same type out, no failure modes.
type Classifier struct {
	markers Markers
}

// NewClassifier creates a classifier over the given marker lists.
// Empty lists fall back to the defaults.
func NewClassifier(markers Markers) *Classifier {
	def := DefaultMarkers()
	if len(markers.Structured) == 0 {
		markers.Structured = def.Structured
	}
	if len(markers.ActionVerbs) == 0 {
		markers.ActionVerbs = def.ActionVerbs
	}
	if len(markers.AbstractPhrases) == 0 {
		markers.AbstractPhrases = def.AbstractPhrases
	}
	return &Classifier{markers: markers}
}

// Classify inspects the question text and returns its type.
//
// Priority order is a deliberate tie-break and must stay fixed: structured
// intent is the most specific and wins over the proper-noun and action-verb
// heuristics, so "how many at the meeting" routes to structured rather than
// keyword despite the action-ish token.
func (c *Classifier) Classify(question string) Type {
	lower := strings.ToLower(question)
	words := strings.Fields(question)

	if containsAny(lower, c.markers.Structured) {
		return Structured
	}

	properNoun := hasCapitalizedToken(words)
	action := containsAny(lower, c.markers.ActionVerbs)
	if (len(words) <= shortQuestionTokens && (properNoun || action)) || properNoun {
		return Keyword
	}

	if len(words) > longQuestionTokens || containsAny(lower, c.markers.AbstractPhrases) {
		return Semantic
	}

	return Hybrid
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

// hasCapitalizedToken reports whether any multi-rune token starts with an
// upper-case letter. Single-rune tokens are skipped so stray initials and
// punctuation do not count as proper nouns.
func hasCapitalizedToken(words []string) bool {
	for _, w := range words {
		runes := []rune(w)
		if len(runes) > 1 && unicode.IsUpper(runes[0]) {
			return true
		}
	}
	return false
}
