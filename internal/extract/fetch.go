package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/FranksOps/scout/internal/bypass"
	"github.com/FranksOps/scout/internal/fingerprint"
	"github.com/FranksOps/scout/internal/metrics"
	"github.com/FranksOps/scout/internal/model"
	"github.com/FranksOps/scout/pkg/httpclient"
	"github.com/FranksOps/scout/pkg/ratelimit"
	"github.com/FranksOps/scout/pkg/useragent"
)

// maxBodyBytes caps how much of a page is read into memory. Pages larger
// than this are truncated, not rejected.
const maxBodyBytes = 2 << 20

// FetchConfig configures the page fetcher.
type FetchConfig struct {
	Timeout      time.Duration
	MaxRedirects int
	UAPool       *useragent.Pool
	Fingerprint  fingerprint.Profile
	Limiter      *ratelimit.Limiter
}

// FetchResult captures one page fetch, successful or not. A transport-level
// failure is recorded in Error rather than returned, so callers always get a
// result to inspect.
type FetchResult struct {
	URL          string
	StatusCode   int
	Headers      http.Header
	Body         []byte
	Duration     time.Duration
	Challenged   bool
	ChallengeSrc string // e.g. "Cloudflare", "Akamai", "PerimeterX", "DataDome"
	Error        string
}

// Fetcher performs single URL fetches with a realistic client identity.
// Holding a single client across requests lets connections be pooled for the
// lifetime of the Fetcher.
type Fetcher struct {
	config FetchConfig
	client *httpclient.Client
}

// NewFetcher initializes a new Fetcher with the given configuration.
func NewFetcher(cfg FetchConfig) (*Fetcher, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxRedirects == 0 {
		cfg.MaxRedirects = 5
	}
	if cfg.UAPool == nil {
		cfg.UAPool = useragent.NewPool(nil)
	}
	if string(cfg.Fingerprint) == "" {
		cfg.Fingerprint = fingerprint.ProfileChrome
	}

	transport, err := fingerprint.Transport(cfg.Fingerprint)
	if err != nil {
		return nil, fmt.Errorf("failed to setup transport: %w", err)
	}

	client, err := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRedirects: cfg.MaxRedirects,
		Transport:    transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Fetcher{
		config: cfg,
		client: client,
	}, nil
}

// Fetch executes a GET request to the target URL, tracking the duration and
// capturing the response. Network failures are reported in FetchResult.Error.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (*FetchResult, error) {
	if f.config.Limiter != nil {
		if err := f.config.Limiter.Wait(ctx); err != nil {
			return &FetchResult{
				URL:   targetURL,
				Error: fmt.Sprintf("rate limiter failed: %v", err),
			}, nil
		}
	}

	start := time.Now()
	result := &FetchResult{URL: targetURL}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		result.Error = fmt.Sprintf("failed to create request: %v", err)
		result.Duration = time.Since(start)
		return result, nil
	}

	req.Header.Set("User-Agent", f.config.UAPool.GetSequential())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req.Context(), req)
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		result.Duration = time.Since(start)
		return result, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		result.Error = fmt.Sprintf("failed to read body: %v", err)
	}

	result.StatusCode = resp.StatusCode
	result.Headers = resp.Header
	result.Body = body
	result.Duration = time.Since(start)

	// Identify whether we were served a challenge page instead of content
	result.Challenged, result.ChallengeSrc = bypass.Analyze(
		result.StatusCode, result.Headers, result.Body, bypass.DefaultDetectors())

	return result, nil
}

func recordFetchMetrics(targetURL string, res *FetchResult) {
	if res == nil {
		return
	}
	metrics.RecordFetch(model.DomainOf(targetURL), res.StatusCode, len(res.Body), res.Duration, res.Error, res.Challenged)
}
