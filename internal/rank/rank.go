package rank

import (
	"math"
	"sort"
	"strings"

	"github.com/FranksOps/scout/internal/model"
	"github.com/cespare/xxhash/v2"
)

const (
	// DefaultMinContentLength is the minimum effective content length a
	// result needs to survive filtering.
	DefaultMinContentLength = 120

	// maxPerDomain caps how many results a single domain may contribute.
	maxPerDomain = 2

	// fingerprintLength is how much normalized content feeds the duplicate
	// fingerprint. Pages sharing a boilerplate opening can collide; that
	// precision/recall trade-off is accepted.
	fingerprintLength = 200
)

// Config tunes the filtering stage.
type Config struct {
	MinContentLength int
}

// Rank filters, deduplicates, scores and orders enriched results for one
// query, returning at most maxResults of them. The input order is the
// provider-merge order and is the tie-break for equal scores.
func Rank(query string, results []model.EnrichedResult, maxResults int, cfg Config) []model.EnrichedResult {
	if cfg.MinContentLength <= 0 {
		cfg.MinContentLength = DefaultMinContentLength
	}

	domainCount := make(map[string]int)
	seenFingerprints := make(map[uint64]struct{})
	accepted := make([]model.EnrichedResult, 0, len(results))

	for _, r := range results {
		content := effectiveContent(r)

		// Wiki sources are kept regardless of content length; their value
		// is the overview, not the word count.
		if r.SourceType != model.SourceWiki && len(content) < cfg.MinContentLength {
			continue
		}

		if domainCount[r.Domain] >= maxPerDomain {
			continue
		}

		fp := fingerprint(content)
		if _, dup := seenFingerprints[fp]; dup {
			continue
		}

		r.Quality = qualityTier(query, r, content)
		r.Score = compositeScore(r, content)
		if r.Content != nil {
			r.WordCount = r.Content.WordCount
		}

		domainCount[r.Domain]++
		seenFingerprints[fp] = struct{}{}
		accepted = append(accepted, r)
	}

	// Stable: equal scores keep provider-merge order
	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].Score > accepted[j].Score
	})

	if maxResults > 0 && len(accepted) > maxResults {
		accepted = accepted[:maxResults]
	}
	return accepted
}

// effectiveContent is the full extracted text when available, else the
// provider snippet.
func effectiveContent(r model.EnrichedResult) string {
	if r.FullContent != "" {
		return r.FullContent
	}
	return r.Snippet
}

// fingerprint hashes the first fingerprintLength characters of normalized
// content for duplicate detection within one query.
func fingerprint(content string) uint64 {
	normalized := strings.ToLower(strings.TrimSpace(content))
	if len(normalized) > fingerprintLength {
		normalized = normalized[:fingerprintLength]
	}
	return xxhash.Sum64String(normalized)
}

// qualityTier assigns {high, medium, low} from a small point rubric.
func qualityTier(query string, r model.EnrichedResult, content string) model.QualityTier {
	points := 0

	if titleSharesWord(r.Title, query) {
		points += 2
	}

	switch {
	case len(content) > 2000:
		points += 2
	case len(content) > 500:
		points++
	}

	switch {
	case r.Reliability > 0.7:
		points += 2
	case r.Reliability > 0.5:
		points++
	}

	if r.Content != nil && r.Content.PublishDate != "" {
		points++
	}

	switch {
	case points >= 5:
		return model.QualityHigh
	case points >= 3:
		return model.QualityMedium
	default:
		return model.QualityLow
	}
}

// titleSharesWord reports whether the title and the query have at least one
// word (longer than 2 runes) in common, case-insensitively.
func titleSharesWord(title, query string) bool {
	titleWords := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(title)) {
		if len(w) > 2 {
			titleWords[strings.Trim(w, ".,:;!?'\"()")] = struct{}{}
		}
	}
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if len(w) <= 2 {
			continue
		}
		if _, ok := titleWords[w]; ok {
			return true
		}
	}
	return false
}

// compositeScore is the descending sort key:
// 0.4·reliability + 0.3·qualityWeight + 0.2·min(len/10000, 1) + 0.1·sourceTypeWeight.
func compositeScore(r model.EnrichedResult, content string) float64 {
	qualityWeight := 0.3
	switch r.Quality {
	case model.QualityHigh:
		qualityWeight = 1.0
	case model.QualityMedium:
		qualityWeight = 0.6
	}

	sourceWeight := 0.5
	switch r.SourceType {
	case model.SourceWiki:
		sourceWeight = 1.0
	case model.SourceAcademic:
		sourceWeight = 0.8
	}

	lengthWeight := math.Min(float64(len(content))/10000.0, 1.0)

	return 0.4*r.Reliability + 0.3*qualityWeight + 0.2*lengthWeight + 0.1*sourceWeight
}
