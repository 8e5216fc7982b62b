package pattern

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pauljbernard/headelf/internal/model"
)

// ContextPattern is a weighted group of keywords for one industry.
type ContextPattern struct {
	Keywords []string `yaml:"keywords" json:"keywords"`
	Weight   float64  `yaml:"weight"   json:"weight"`
}

// Registry holds the keyword patterns per industry.
// Patterns are written at construction time and read on every detection.
type Registry struct {
	mu       sync.RWMutex
	patterns map[model.IndustryVertical][]ContextPattern
	order    []model.IndustryVertical
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{patterns: make(map[model.IndustryVertical][]ContextPattern)}
}

// Register appends patterns for an industry. Keywords are stored lower-cased.
func (r *Registry) Register(industry model.IndustryVertical, patterns []ContextPattern) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.patterns[industry]; !ok {
		r.order = append(r.order, industry)
	}
	caser := newCaser()
	for _, p := range patterns {
		kws := make([]string, 0, len(p.Keywords))
		for _, k := range p.Keywords {
			if k = caser.String(strings.TrimSpace(k)); k != "" {
				kws = append(kws, k)
			}
		}
		r.patterns[industry] = append(r.patterns[industry], ContextPattern{Keywords: kws, Weight: p.Weight})
	}
}

// PatternsFor returns a copy of the patterns registered for the industry.
func (r *Registry) PatternsFor(industry model.IndustryVertical) []ContextPattern {
	r.mu.RLock()
	defer r.mu.RUnlock()

	src := r.patterns[industry]
	out := make([]ContextPattern, len(src))
	for i, p := range src {
		out[i] = ContextPattern{Keywords: append([]string(nil), p.Keywords...), Weight: p.Weight}
	}
	return out
}

// Industries returns industries with patterns, in registration order.
func (r *Registry) Industries() []model.IndustryVertical {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.IndustryVertical(nil), r.order...)
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	out := NewRegistry()
	for _, ind := range r.Industries() {
		out.Register(ind, r.PatternsFor(ind))
	}
	return out
}

// Matches reports whether keyword and token overlap in either direction.
// Both sides are compared case-insensitively; "bank" matches "banking"
// and "banking" matches "bank".
func Matches(keyword, token string) bool {
	caser := newCaser()
	return MatchesNormalized(caser.String(keyword), caser.String(token))
}

// MatchesNormalized is Matches for inputs already lower-cased by Normalize
// or Register. It does no case folding.
func MatchesNormalized(keyword, token string) bool {
	if keyword == "" || token == "" {
		return false
	}
	return strings.Contains(token, keyword) || strings.Contains(keyword, token)
}

// Normalize lower-cases text and splits it on whitespace.
func Normalize(text string) []string {
	return strings.Fields(newCaser().String(text))
}

// newCaser returns a fresh lower-caser; cases.Caser is not safe for
// concurrent use.
func newCaser() cases.Caser {
	return cases.Lower(language.Und)
}
