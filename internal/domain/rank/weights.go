package rank

import "github.com/ghinote/ghinote/internal/domain/query"

// Profile is the fusion weight triple applied to the three strategy score
// lists. Each profile sums to 1.0.
type Profile struct {
	Lexical  float64
	Semantic float64
	Entity   float64
}

var profiles = map[query.Type]Profile{
	query.Keyword:    {Lexical: 0.6, Semantic: 0.3, Entity: 0.1},
	query.Semantic:   {Lexical: 0.2, Semantic: 0.6, Entity: 0.2},
	query.Structured: {Lexical: 0.3, Semantic: 0.2, Entity: 0.5},
	query.Hybrid:     {Lexical: 0.4, Semantic: 0.4, Entity: 0.2},
}

// ProfileFor returns the weight profile for a query type. Unknown types
// get the hybrid profile.
func ProfileFor(t query.Type) Profile {
	if p, ok := profiles[t]; ok {
		return p
	}
	return profiles[query.Hybrid]
}
