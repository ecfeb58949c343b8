package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/FranksOps/scout/internal/metrics"
	"github.com/FranksOps/scout/internal/model"
	"github.com/FranksOps/scout/pkg/httpclient"
	"github.com/FranksOps/scout/pkg/useragent"
)

const (
	wikipediaName       = "wikipedia"
	defaultWikiAPIURL   = "https://en.wikipedia.org/w/api.php"
	defaultWikiRESTBase = "https://en.wikipedia.org/api/rest_v1"
)

// WikipediaConfig configures the Wikipedia adapter.
type WikipediaConfig struct {
	APIURL   string
	RESTBase string
	Timeout  time.Duration
	UAPool   *useragent.Pool
}

// Wikipedia uses the opensearch API for hits and the REST summary endpoint
// for a knowledge panel. Its hits are encyclopedic and may be placed ahead
// of general web hits by the orchestrator.
type Wikipedia struct {
	cfg    WikipediaConfig
	client *httpclient.Client
}

// NewWikipedia creates a Wikipedia adapter.
func NewWikipedia(cfg WikipediaConfig) (*Wikipedia, error) {
	if cfg.APIURL == "" {
		cfg.APIURL = defaultWikiAPIURL
	}
	if cfg.RESTBase == "" {
		cfg.RESTBase = defaultWikiRESTBase
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.UAPool == nil {
		cfg.UAPool = useragent.NewPool(nil)
	}

	client, err := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRedirects: 3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Wikipedia{cfg: cfg, client: client}, nil
}

// Name identifies this provider in responses and metrics.
func (w *Wikipedia) Name() string { return wikipediaName }

// Search queries the opensearch endpoint. The response is a positional
// four-element array: query, titles, descriptions, urls.
func (w *Wikipedia) Search(ctx context.Context, query string, maxResults int) (hits []model.SearchHit, err error) {
	defer func() { metrics.RecordProvider(wikipediaName, err) }()

	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if maxResults < 1 {
		return nil, fmt.Errorf("maxResults must be >= 1, got %d", maxResults)
	}

	reqURL := fmt.Sprintf("%s?action=opensearch&search=%s&limit=%d&namespace=0&format=json",
		w.cfg.APIURL, url.QueryEscape(query), maxResults)

	var raw []json.RawMessage
	headers := map[string]string{"User-Agent": w.cfg.UAPool.GetSequential()}
	if err := w.client.GetJSON(ctx, reqURL, headers, &raw); err != nil {
		return nil, fmt.Errorf("opensearch request failed: %w", err)
	}
	if len(raw) < 4 {
		return nil, fmt.Errorf("malformed opensearch response: %d elements", len(raw))
	}

	var titles, descriptions, urls []string
	if err := json.Unmarshal(raw[1], &titles); err != nil {
		return nil, fmt.Errorf("malformed opensearch titles: %w", err)
	}
	if err := json.Unmarshal(raw[2], &descriptions); err != nil {
		return nil, fmt.Errorf("malformed opensearch descriptions: %w", err)
	}
	if err := json.Unmarshal(raw[3], &urls); err != nil {
		return nil, fmt.Errorf("malformed opensearch urls: %w", err)
	}

	for i, title := range titles {
		if i >= len(urls) || i >= maxResults {
			break
		}
		snippet := ""
		if i < len(descriptions) {
			snippet = descriptions[i]
		}
		hits = append(hits, model.NewHit(title, urls[i], snippet, wikipediaName))
	}

	return hits, nil
}

// summaryResponse mirrors the REST page summary fields we consume.
type summaryResponse struct {
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// KnowledgePanel fetches the article summary for the query's best title
// match. It returns (nil, nil) when no article matches.
func (w *Wikipedia) KnowledgePanel(ctx context.Context, query string) (*model.KnowledgePanel, error) {
	hits, err := w.Search(ctx, query, 1)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}

	title := strings.ReplaceAll(hits[0].Title, " ", "_")
	reqURL := fmt.Sprintf("%s/page/summary/%s", w.cfg.RESTBase, url.PathEscape(title))

	var decoded summaryResponse
	headers := map[string]string{"User-Agent": w.cfg.UAPool.GetSequential()}
	if err := w.client.GetJSON(ctx, reqURL, headers, &decoded); err != nil {
		return nil, fmt.Errorf("summary request failed: %w", err)
	}
	if decoded.Extract == "" {
		return nil, nil
	}

	return &model.KnowledgePanel{
		Title:    decoded.Title,
		Abstract: decoded.Extract,
		URL:      decoded.ContentURLs.Desktop.Page,
		Source:   wikipediaName,
	}, nil
}
