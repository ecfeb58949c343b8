package classify

import (
	"strings"

	"github.com/FranksOps/scout/internal/model"
)

// trustedDomains maps exact or suffix-matched domains to a fixed
// classification. Academic and government sources score highest.
var trustedDomains = []struct {
	fragment    string
	sourceType  model.SourceType
	reliability float64
}{
	{".edu", model.SourceAcademic, 0.9},
	{".gov", model.SourceOfficial, 0.9},
	{"arxiv.org", model.SourceAcademic, 0.9},
	{"scholar.google", model.SourceAcademic, 0.9},
	{"pubmed.ncbi.nlm.nih.gov", model.SourceAcademic, 0.9},
	{"nature.com", model.SourceAcademic, 0.9},
	{"sciencedirect.com", model.SourceAcademic, 0.9},
	{"ieee.org", model.SourceAcademic, 0.9},
	{"acm.org", model.SourceAcademic, 0.9},
	{"wikipedia.org", model.SourceWiki, 0.85},
	{"wiktionary.org", model.SourceWiki, 0.85},
	{"britannica.com", model.SourceWiki, 0.85},
	{"stackoverflow.com", model.SourceForum, 0.8},
	{"stackexchange.com", model.SourceForum, 0.8},
	{"github.com", model.SourceOfficial, 0.8},
	{"docs.python.org", model.SourceOfficial, 0.8},
	{"developer.mozilla.org", model.SourceOfficial, 0.8},
	{"go.dev", model.SourceOfficial, 0.8},
	{"kubernetes.io", model.SourceOfficial, 0.8},
	{"w3.org", model.SourceOfficial, 0.8},
}

var newsFragments = []string{
	"bbc.", "cnn.", "reuters.", "apnews.", "nytimes.", "theguardian.",
	"washingtonpost.", "bloomberg.", "ft.com", "economist.", "npr.org",
	"aljazeera.", "news.",
}

var blogFragments = []string{
	"medium.com", "substack.com", "wordpress.", "blogspot.", "blogger.",
	"dev.to", "hashnode.", "ghost.io", "blog.",
}

var forumFragments = []string{
	"reddit.com", "quora.com", "ycombinator.com", "discourse.",
	"forum.", "community.",
}

var socialFragments = []string{
	"twitter.com", "x.com", "facebook.com", "instagram.com", "linkedin.com",
	"tiktok.com", "youtube.com", "pinterest.",
}

var ecommerceFragments = []string{
	"amazon.", "ebay.", "etsy.", "walmart.", "aliexpress.", "shopify.",
	"shop.", "store.",
}

// Classify maps a URL's domain to a (source type, reliability) pair using
// the static trust table and pattern rules. Deterministic, no I/O.
func Classify(rawURL string) (model.SourceType, float64) {
	domain := model.DomainOf(rawURL)
	if domain == "" {
		return model.SourceUnknown, 0.5
	}

	for _, t := range trustedDomains {
		if domain == strings.TrimPrefix(t.fragment, ".") ||
			strings.HasSuffix(domain, t.fragment) ||
			strings.Contains(domain, t.fragment) {
			return t.sourceType, t.reliability
		}
	}

	if matchesAny(domain, newsFragments) {
		return model.SourceNews, 0.7
	}
	if matchesAny(domain, blogFragments) {
		return model.SourceBlog, 0.5
	}
	if matchesAny(domain, forumFragments) {
		return model.SourceForum, 0.4
	}
	if matchesAny(domain, socialFragments) {
		return model.SourceSocial, 0.4
	}
	if matchesAny(domain, ecommerceFragments) {
		return model.SourceEcommerce, 0.3
	}

	return model.SourceUnknown, 0.5
}

func matchesAny(domain string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(domain, f) {
			return true
		}
	}
	return false
}

// TypeIcon returns a display glyph for a source type, used by the
// UI-oriented source list.
func TypeIcon(t model.SourceType) string {
	switch t {
	case model.SourceAcademic:
		return "🎓"
	case model.SourceNews:
		return "📰"
	case model.SourceOfficial:
		return "🏛️"
	case model.SourceBlog:
		return "✍️"
	case model.SourceForum:
		return "💬"
	case model.SourceWiki:
		return "📖"
	case model.SourceSocial:
		return "👥"
	case model.SourceEcommerce:
		return "🛒"
	default:
		return "🌐"
	}
}
