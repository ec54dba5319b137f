package retrieval

import (
	"strings"
	"unicode"
)

// retrievalStopwords is the fixed stopword list shared by the strategies.
// Tuned for Vietnamese question text; short function words that carry no
// retrieval signal.
var retrievalStopwords = map[string]struct{}{
	"của": {}, "là": {}, "có": {}, "và": {}, "trong": {}, "với": {},
	"được": {}, "này": {}, "đó": {}, "các": {}, "cho": {}, "về": {},
}

// highValueTokens weight entity-payload matches that usually identify
// the fielded fact a structured question asks for.
var highValueTokens = map[string]struct{}{
	"điện": {}, "thoại": {}, "số": {}, "địa": {}, "chỉ": {},
	"email": {}, "tên": {}, "giá": {},
}

// phoneMarkers detect a question asking for a phone number.
var phoneMarkers = []string{"điện thoại", "sdt", "phone"}

// tokenize lower-cases and splits on whitespace.
func tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// meaningfulTokens strips stopwords and single-character tokens. When
// that would empty the set, the unfiltered tokens are returned so a
// stopword-only question still searches for something.
func meaningfulTokens(tokens []string) []string {
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, stop := retrievalStopwords[tok]; stop {
			continue
		}
		if len([]rune(tok)) <= 1 {
			continue
		}
		kept = append(kept, tok)
	}
	if len(kept) == 0 {
		return tokens
	}
	return kept
}

// tokenSet is meaningfulTokens deduplicated, for overlap counting.
func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range meaningfulTokens(tokens) {
		set[tok] = struct{}{}
	}
	return set
}

// longestToken picks the single best token for substring fallback.
func longestToken(tokens []string) string {
	longest := ""
	for _, tok := range tokens {
		if len([]rune(tok)) > len([]rune(longest)) {
			longest = tok
		}
	}
	return longest
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
