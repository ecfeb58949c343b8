package model

import (
	"net/url"
	"strings"
	"time"
)

// SourceType buckets a result's origin domain into a coarse category.
type SourceType string

const (
	SourceAcademic  SourceType = "academic"
	SourceNews      SourceType = "news"
	SourceOfficial  SourceType = "official"
	SourceBlog      SourceType = "blog"
	SourceForum     SourceType = "forum"
	SourceWiki      SourceType = "wiki"
	SourceSocial    SourceType = "social"
	SourceEcommerce SourceType = "ecommerce"
	SourceUnknown   SourceType = "unknown"
)

// QualityTier is a coarse quality bucket derived from a small point rubric.
type QualityTier string

const (
	QualityHigh    QualityTier = "high"
	QualityMedium  QualityTier = "medium"
	QualityLow     QualityTier = "low"
	QualityUnknown QualityTier = "unknown"
)

// SearchHit is one raw candidate returned by a single provider, before any
// enrichment. Immutable once created; lives for the duration of one query.
type SearchHit struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Snippet  string `json:"snippet"`
	Provider string `json:"provider"`
	Domain   string `json:"domain"`
}

// NewHit builds a SearchHit, deriving the domain from the URL.
func NewHit(title, rawURL, snippet, provider string) SearchHit {
	return SearchHit{
		Title:    title,
		URL:      rawURL,
		Snippet:  snippet,
		Provider: provider,
		Domain:   DomainOf(rawURL),
	}
}

// DomainOf extracts the lowercased hostname from a URL, stripping a leading
// "www." so that results from the same site share one domain key.
func DomainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// Table holds extracted tabular data as rows of cell text.
type Table struct {
	Rows [][]string `json:"rows"`
}

// ExtractedContent is the cleaned output of fetching one page. It is owned
// exclusively by the hit it enriches and is not persisted.
type ExtractedContent struct {
	Title          string   `json:"title"`
	Text           string   `json:"text"`
	Description    string   `json:"description"`
	Headings       []string `json:"headings"`
	KeyPoints      []string `json:"key_points"`
	Tables         []Table  `json:"tables"`
	CodeBlocks     []string `json:"code_blocks"`
	WordCount      int      `json:"word_count"`
	ReadingTimeMin int      `json:"reading_time_min"`
	Language       string   `json:"language"`
	PublishDate    string   `json:"publish_date,omitempty"`
	Author         string   `json:"author,omitempty"`
}

// EnrichedResult merges a hit with its extracted content, classification and
// derived ranking fields. This is the unit that gets ranked and returned.
type EnrichedResult struct {
	Title       string            `json:"title"`
	URL         string            `json:"url"`
	Snippet     string            `json:"snippet"`
	Provider    string            `json:"provider"`
	Domain      string            `json:"domain"`
	FullContent string            `json:"full_content"`
	Content     *ExtractedContent `json:"content,omitempty"`
	SourceType  SourceType        `json:"source_type"`
	Reliability float64           `json:"reliability"`
	Quality     QualityTier       `json:"quality"`
	WordCount   int               `json:"word_count"`
	Score       float64           `json:"score"`
}

// InstantAnswer is a provider-supplied direct answer, distinct from the
// ranked result list.
type InstantAnswer struct {
	Answer  string   `json:"answer"`
	Heading string   `json:"heading,omitempty"`
	Source  string   `json:"source"`
	URL     string   `json:"url,omitempty"`
	Related []string `json:"related,omitempty"`
}

// KnowledgePanel is a structured encyclopedic summary block.
type KnowledgePanel struct {
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
	URL      string `json:"url,omitempty"`
	Source   string `json:"source"`
}

// SearchResponse is the complete, immutable answer to one query. Callers
// always receive a well-formed response and branch on Success; errors never
// cross the public boundary as a separate type.
type SearchResponse struct {
	ID             string           `json:"id"`
	Query          string           `json:"query"`
	Results        []EnrichedResult `json:"results"`
	TotalResults   int              `json:"total_results"`
	SearchTimeMs   int64            `json:"search_time_ms"`
	Providers      []string         `json:"providers_used"`
	InstantAnswer  *InstantAnswer   `json:"instant_answer,omitempty"`
	KnowledgePanel *KnowledgePanel  `json:"knowledge_panel,omitempty"`
	RelatedQueries []string         `json:"related_queries,omitempty"`
	Success        bool             `json:"success"`
	ErrorMessage   string           `json:"error_message,omitempty"`
	Cached         bool             `json:"cached"`
	Timestamp      time.Time        `json:"timestamp"`
}

// Source is the UI-oriented projection of one ranked result.
type Source struct {
	Index       int         `json:"index"`
	Title       string      `json:"title"`
	URL         string      `json:"url"`
	Domain      string      `json:"domain"`
	Snippet     string      `json:"snippet"`
	Type        SourceType  `json:"type"`
	TypeIcon    string      `json:"type_icon"`
	Reliability float64     `json:"reliability"`
	Quality     QualityTier `json:"quality"`
	WordCount   int         `json:"word_count"`
	PublishDate string      `json:"publish_date,omitempty"`
	Author      string      `json:"author,omitempty"`
}

// CacheStats is a point-in-time snapshot of the response cache.
type CacheStats struct {
	Size    int           `json:"size"`
	Hits    uint64        `json:"hits"`
	Misses  uint64        `json:"misses"`
	HitRate float64       `json:"hit_rate"`
	TTL     time.Duration `json:"ttl"`
}

// Stats is a snapshot of the engine's running counters.
type Stats struct {
	TotalSearches      uint64     `json:"total_searches"`
	SuccessfulSearches uint64     `json:"successful_searches"`
	ContentExtractions uint64     `json:"content_extractions"`
	AvgSearchTimeMs    float64    `json:"avg_search_time_ms"`
	Cache              CacheStats `json:"cache"`
}
