package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/FranksOps/scout/internal/metrics"
	"github.com/FranksOps/scout/internal/model"
	"github.com/FranksOps/scout/pkg/httpclient"
	"github.com/FranksOps/scout/pkg/useragent"
	"github.com/PuerkitoBio/goquery"
)

const (
	duckDuckGoName      = "duckduckgo"
	defaultDDGSearchURL = "https://html.duckduckgo.com/html/"
	defaultDDGAnswerURL = "https://api.duckduckgo.com/"
)

// DuckDuckGoConfig configures the DuckDuckGo adapter. Zero values select
// the live endpoints and a 12 second timeout.
type DuckDuckGoConfig struct {
	SearchURL string
	AnswerURL string
	Timeout   time.Duration
	UAPool    *useragent.Pool
}

// DuckDuckGo queries the DuckDuckGo HTML results page for hits and the
// Instant Answer API for direct answers.
type DuckDuckGo struct {
	cfg    DuckDuckGoConfig
	client *httpclient.Client
}

// NewDuckDuckGo creates a DuckDuckGo search adapter.
func NewDuckDuckGo(cfg DuckDuckGoConfig) (*DuckDuckGo, error) {
	if cfg.SearchURL == "" {
		cfg.SearchURL = defaultDDGSearchURL
	}
	if cfg.AnswerURL == "" {
		cfg.AnswerURL = defaultDDGAnswerURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 12 * time.Second
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

	return &DuckDuckGo{cfg: cfg, client: client}, nil
}

// Name identifies this provider in responses and metrics.
func (d *DuckDuckGo) Name() string { return duckDuckGoName }

// Search scrapes the HTML results page for up to maxResults hits.
func (d *DuckDuckGo) Search(ctx context.Context, query string, maxResults int) (hits []model.SearchHit, err error) {
	defer func() { metrics.RecordProvider(duckDuckGoName, err) }()

	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if maxResults < 1 {
		return nil, fmt.Errorf("maxResults must be >= 1, got %d", maxResults)
	}

	reqURL := d.cfg.SearchURL + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", d.cfg.UAPool.GetSequential())
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := d.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse results page: %w", err)
	}

	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		link := s.Find(".result__a").First()
		href, ok := link.Attr("href")
		if !ok {
			return true
		}

		target := resolveRedirect(href)
		if target == "" {
			return true
		}

		title := strings.TrimSpace(link.Text())
		snippet := strings.TrimSpace(s.Find(".result__snippet").First().Text())
		if title == "" {
			return true
		}

		hits = append(hits, model.NewHit(title, target, snippet, duckDuckGoName))
		return len(hits) < maxResults
	})

	return hits, nil
}

// resolveRedirect unwraps DuckDuckGo's /l/?uddg= redirect links to the real
// target URL. Plain absolute URLs pass through unchanged.
func resolveRedirect(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		u, err := url.Parse(href)
		if err != nil {
			return ""
		}
		if uddg := u.Query().Get("uddg"); uddg != "" {
			return uddg
		}
		return href
	}

	// Relative redirect form: //duckduckgo.com/l/?uddg=...
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if uddg := u.Query().Get("uddg"); uddg != "" {
		return uddg
	}
	return ""
}

// instantAnswerResponse mirrors the fields we consume from the Instant
// Answer API.
type instantAnswerResponse struct {
	Answer         string `json:"Answer"`
	AbstractText   string `json:"AbstractText"`
	AbstractSource string `json:"AbstractSource"`
	AbstractURL    string `json:"AbstractURL"`
	Heading        string `json:"Heading"`
	RelatedTopics  []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

// InstantAnswer queries the Instant Answer API. It returns (nil, nil) when
// the API has no direct answer for the query.
func (d *DuckDuckGo) InstantAnswer(ctx context.Context, query string) (*model.InstantAnswer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	reqURL := fmt.Sprintf("%s?q=%s&format=json&no_html=1&skip_disambig=1",
		d.cfg.AnswerURL, url.QueryEscape(query))

	var decoded instantAnswerResponse
	headers := map[string]string{"User-Agent": d.cfg.UAPool.GetSequential()}
	if err := d.client.GetJSON(ctx, reqURL, headers, &decoded); err != nil {
		return nil, fmt.Errorf("instant answer request failed: %w", err)
	}

	answer := decoded.Answer
	if answer == "" {
		answer = decoded.AbstractText
	}
	if answer == "" {
		return nil, nil
	}

	ia := &model.InstantAnswer{
		Answer:  answer,
		Heading: decoded.Heading,
		Source:  decoded.AbstractSource,
		URL:     decoded.AbstractURL,
	}
	if ia.Source == "" {
		ia.Source = duckDuckGoName
	}

	for _, topic := range decoded.RelatedTopics {
		if topic.Text == "" {
			continue
		}
		ia.Related = append(ia.Related, topic.Text)
		if len(ia.Related) >= 5 {
			break
		}
	}

	return ia, nil
}
