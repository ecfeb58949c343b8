package robots

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/FranksOps/scout/pkg/httpclient"
	"github.com/FranksOps/scout/pkg/useragent"
	"github.com/temoto/robotstxt"
)

// Auditor manages robots.txt fetching and enforcement for page fetches.
// Parsed files are cached per host for the lifetime of the Auditor.
type Auditor struct {
	client    *httpclient.Client
	uaPool    *useragent.Pool
	userAgent string
	logger    *slog.Logger
	mu        sync.RWMutex
	cache     map[string]*robotstxt.RobotsData
}

// Config configures the Auditor.
type Config struct {
	// UserAgent is matched against robots.txt groups. Defaults to "*".
	UserAgent string
	Timeout   time.Duration
	Logger    *slog.Logger
}

// NewAuditor creates a new robots.txt auditor.
func NewAuditor(cfg Config) (*Auditor, error) {
	if cfg.UserAgent == "" {
		cfg.UserAgent = "*"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	client, err := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRedirects: 5,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Auditor{
		client:    client,
		uaPool:    useragent.NewPool(nil),
		userAgent: cfg.UserAgent,
		logger:    cfg.Logger,
		cache:     make(map[string]*robotstxt.RobotsData),
	}, nil
}

// IsAllowed determines if the given URL may be fetched under the host's
// robots.txt. Fetch or parse failures fail open.
func (a *Auditor) IsAllowed(ctx context.Context, targetURL string) (bool, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false, fmt.Errorf("invalid url: %w", err)
	}

	host := u.Scheme + "://" + u.Host

	data, err := a.getOrFetch(ctx, host)
	if err != nil {
		a.logger.Debug("robots.txt fetch failed, defaulting to allow", "host", host, "err", err)
		return true, nil
	}

	if data == nil {
		return true, nil
	}

	group := data.FindGroup(a.userAgent)
	return group.Test(u.Path), nil
}

func (a *Auditor) getOrFetch(ctx context.Context, host string) (*robotstxt.RobotsData, error) {
	a.mu.RLock()
	data, exists := a.cache[host]
	a.mu.RUnlock()

	if exists {
		return data, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	data, exists = a.cache[host]
	if exists {
		return data, nil
	}

	robotsURL := fmt.Sprintf("%s/robots.txt", host)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		a.cache[host] = nil
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", a.uaPool.GetSequential())

	resp, err := a.client.Do(ctx, req)
	if err != nil {
		a.cache[host] = nil
		return nil, fmt.Errorf("fetch error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		// A missing or inaccessible robots.txt means everything is allowed
		a.cache[host] = nil
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		a.cache[host] = nil
		return nil, fmt.Errorf("read error: %w", err)
	}

	parsed, err := robotstxt.FromBytes(body)
	if err != nil {
		a.cache[host] = nil
		return nil, fmt.Errorf("parse error: %w", err)
	}

	a.cache[host] = parsed
	return parsed, nil
}
