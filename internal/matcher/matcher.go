// Package matcher resolves free-text symptom input against the catalog
// vocabulary: exact lookup first, then prefix/substring/fuzzy matching
// ranked by match quality.
package matcher

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"

	"github.com/healthcare-diagnosis-server/internal/catalog"
	"github.com/healthcare-diagnosis-server/internal/domain"
)

// Match tiers, ordered by strength. Prefix beats substring beats fuzzy.
const (
	tierPrefix = iota
	tierSubstring
	tierFuzzy
)

// Matcher performs fuzzy symptom resolution over one bundle's catalog.
// A small expiring LRU memoizes hot queries; because a matcher is built
// per bundle, the cache can never serve results from a stale catalog.
type Matcher struct {
	catalog    *catalog.Catalog
	threshold  int
	maxMatches int
	cache      *expirable.LRU[string, domain.SearchResult]
	logger     *logrus.Logger
}

// New creates a matcher for the given catalog.
func New(cat *catalog.Catalog, cfg domain.MatcherConfig, logger *logrus.Logger) *Matcher {
	size := cfg.CacheSize
	if size <= 0 {
		size = 1024
	}
	return &Matcher{
		catalog:    cat,
		threshold:  cfg.FuzzyThreshold,
		maxMatches: cfg.MaxMatches,
		cache:      expirable.NewLRU[string, domain.SearchResult](size, nil, cfg.CacheTTL),
		logger:     logger,
	}
}

// Search resolves a free-text query. An exact catalog hit returns that
// entry alone with ExactMatch set; otherwise the ranked partial matches
// are returned, possibly empty. An empty result is not an error.
func (m *Matcher) Search(query string) domain.SearchResult {
	normalized := domain.NormalizeSymptom(query)
	if normalized == "" {
		return domain.SearchResult{Matches: []string{}}
	}

	if cached, ok := m.cache.Get(normalized); ok {
		return cached
	}

	var result domain.SearchResult
	if _, ok := m.catalog.Index(normalized); ok {
		result = domain.SearchResult{Matches: []string{normalized}, ExactMatch: true}
	} else {
		result = domain.SearchResult{Matches: m.rank(normalized, m.maxMatches)}
	}

	m.cache.Add(normalized, result)

	m.logger.WithFields(logrus.Fields{
		"query":       normalized,
		"matches":     len(result.Matches),
		"exact_match": result.ExactMatch,
	}).Debug("Symptom search completed")

	return result
}

// Suggest returns the top-limit prefix/fuzzy matches for autocomplete,
// same ranking as Search but never short-circuiting on an exact hit.
func (m *Matcher) Suggest(partial string, limit int) []string {
	normalized := domain.NormalizeSymptom(partial)
	if normalized == "" {
		return []string{}
	}
	if limit <= 0 {
		limit = m.maxMatches
	}
	return m.rank(normalized, limit)
}

type candidate struct {
	name string
	tier int
	dist int
}

// rank scores every catalog entry against the normalized query and
// returns the top names ordered by (tier, edit distance, name).
func (m *Matcher) rank(query string, limit int) []string {
	queryTokens := strings.Split(query, "_")

	var candidates []candidate
	for _, name := range m.catalog.SymptomNames() {
		if c, ok := m.score(query, queryTokens, name); ok {
			candidates = append(candidates, c)
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].tier != candidates[j].tier {
			return candidates[i].tier < candidates[j].tier
		}
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].name < candidates[j].name
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	matches := make([]string, len(candidates))
	for i, c := range candidates {
		matches[i] = c.name
	}
	return matches
}

func (m *Matcher) score(query string, queryTokens []string, name string) (candidate, bool) {
	if strings.HasPrefix(name, query) {
		return candidate{name: name, tier: tierPrefix}, true
	}
	if strings.Contains(name, query) || strings.Contains(query, name) {
		return candidate{name: name, tier: tierSubstring}, true
	}

	best := -1
	for _, token := range strings.Split(name, "_") {
		for _, qt := range queryTokens {
			d := levenshtein.ComputeDistance(qt, token)
			if best == -1 || d < best {
				best = d
			}
		}
	}
	if best >= 0 && best <= m.threshold {
		return candidate{name: name, tier: tierFuzzy, dist: best}, true
	}
	return candidate{}, false
}
