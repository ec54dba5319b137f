// Package nlp provides a rule-based feature extractor for short texts.
// It stands in for a full NER pipeline: good enough to group obvious
// entities and rank keywords without any model or network call.
package nlp

import (
	"regexp"
	"strings"
	"unicode"
)

// Entity group labels produced by the extractor.
const (
	EntityPerson = "PROPN"
	EntityNumber = "NUM"
	EntityEmail  = "EMAIL"
	EntityPhone  = "PHONE"
	EntityDate   = "DATE"
)

// Token class labels counted in Features.TagCounts.
const (
	TagProper = "PROPN"
	TagNumber = "NUM"
	TagWord   = "WORD"
)

const (
	maxKeywords = 50
	maxChunks   = 30
	// chunkSpan is the window for the noun-phrase approximation.
	chunkSpan = 3
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`(\+?\d[\d .-]{7,}\d)`)
	datePattern  = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}(?:[/-]\d{2,4})?\b`)
)

// Features holds what the extractor pulled out of a text: entity groups,
// ranked keywords, short phrase chunks, and a token-class histogram.
type Features struct {
	Entities  map[string][]string
	Keywords  []string
	Chunks    []string
	TagCounts map[string]int
}

// Empty reports whether the extraction produced no usable keywords.
func (f Features) Empty() bool {
	return len(f.Keywords) == 0
}

// Extractor extracts features from text using fixed rules and a stopword
// list. The stopword list is language tuning data and comes from
// configuration; defaults cover Vietnamese plus common English words.
type Extractor struct {
	stopwords map[string]struct{}
}

// DefaultStopwords returns the built-in stopword list.
func DefaultStopwords() []string {
	return []string{
		"của", "là", "có", "và", "trong", "với", "được", "này", "đó",
		"các", "cho", "về", "từ", "đến", "một", "không", "như", "để",
		"the", "a", "an", "is", "are", "to", "of", "and", "in", "that",
		"for", "on", "with", "at", "this", "by", "from",
	}
}

// NewExtractor creates an extractor. An empty stopword list falls back to
// the defaults.
func NewExtractor(stopwords []string) *Extractor {
	if len(stopwords) == 0 {
		stopwords = DefaultStopwords()
	}
	set := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		set[strings.ToLower(w)] = struct{}{}
	}
	return &Extractor{stopwords: set}
}

// IsStopword reports whether the lower-cased word is on the stopword list.
func (e *Extractor) IsStopword(word string) bool {
	_, ok := e.stopwords[strings.ToLower(word)]
	return ok
}

// Extract analyzes the text and returns grouped entities, ranked keywords,
// phrase chunks, and a token-class histogram. Blank text yields empty
// features.
func (e *Extractor) Extract(text string) Features {
	f := Features{
		Entities:  make(map[string][]string),
		TagCounts: make(map[string]int),
	}
	if strings.TrimSpace(text) == "" {
		return f
	}

	for _, m := range emailPattern.FindAllString(text, -1) {
		appendUnique(f.Entities, EntityEmail, m)
	}
	for _, m := range phonePattern.FindAllString(text, -1) {
		appendUnique(f.Entities, EntityPhone, strings.TrimSpace(m))
	}
	for _, m := range datePattern.FindAllString(text, -1) {
		appendUnique(f.Entities, EntityDate, m)
	}

	words := strings.Fields(text)
	var properRun []string
	seen := make(map[string]struct{})

	flushRun := func() {
		if len(properRun) > 0 {
			appendUnique(f.Entities, EntityPerson, strings.Join(properRun, " "))
			properRun = properRun[:0]
		}
	}

	for i, raw := range words {
		token := trimPunct(raw)
		if token == "" {
			flushRun()
			continue
		}

		switch {
		case isNumeric(token):
			f.TagCounts[TagNumber]++
			appendUnique(f.Entities, EntityNumber, token)
			flushRun()
		case isCapitalized(token) && i > 0:
			// A capitalized token mid-sentence reads as a proper noun;
			// the sentence-initial word does not count.
			f.TagCounts[TagProper]++
			properRun = append(properRun, token)
		default:
			f.TagCounts[TagWord]++
			flushRun()
		}

		lower := strings.ToLower(token)
		if len([]rune(lower)) < 2 || e.IsStopword(lower) {
			continue
		}
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		if len(f.Keywords) < maxKeywords {
			f.Keywords = append(f.Keywords, lower)
		}
	}
	flushRun()

	f.Chunks = e.chunk(words)
	return f
}

// chunk approximates noun phrases by collecting short runs of consecutive
// non-stopword tokens.
func (e *Extractor) chunk(words []string) []string {
	var chunks []string
	seen := make(map[string]struct{})
	var run []string

	flush := func() {
		if len(run) >= 2 {
			phrase := strings.ToLower(strings.Join(run, " "))
			if _, dup := seen[phrase]; !dup && len(chunks) < maxChunks {
				seen[phrase] = struct{}{}
				chunks = append(chunks, phrase)
			}
		}
		run = run[:0]
	}

	for _, raw := range words {
		token := trimPunct(raw)
		if token == "" || e.IsStopword(token) || len(run) >= chunkSpan {
			flush()
		}
		if token != "" && !e.IsStopword(token) {
			run = append(run, token)
		}
	}
	flush()

	return chunks
}

func appendUnique(groups map[string][]string, label, value string) {
	for _, existing := range groups[label] {
		if existing == value {
			return
		}
	}
	groups[label] = append(groups[label], value)
}

func trimPunct(s string) string {
	return strings.Trim(s, ".,!?;:'\"-()[]{}")
}

func isCapitalized(s string) bool {
	runes := []rune(s)
	return len(runes) > 1 && unicode.IsUpper(runes[0])
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
