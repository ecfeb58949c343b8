// Package engine wires the provider adapters, content extractor, classifier,
// ranking stage and result cache into the public Search entry point.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/FranksOps/scout/internal/cache"
	"github.com/FranksOps/scout/internal/classify"
	"github.com/FranksOps/scout/internal/extract"
	"github.com/FranksOps/scout/internal/metrics"
	"github.com/FranksOps/scout/internal/model"
	"github.com/FranksOps/scout/internal/provider"
	"github.com/FranksOps/scout/internal/rank"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	// MaxResultsLimit clamps the caller-requested result count.
	MaxResultsLimit = 15

	defaultMaxResults = 10

	// extractWorkers bounds concurrent page fetches. Fetches are
	// latency-bound, not CPU-bound, so a small fixed pool is enough.
	extractWorkers = 5
)

// Config configures an Engine.
type Config struct {
	// Providers are the general web search backends, consulted in order.
	// The slice order fixes the merge order and therefore ranking
	// tie-breaks.
	Providers []provider.Provider

	// Encyclopedia is the optional encyclopedic backend; its hits are
	// inserted at the front of the merge when a query asks for them.
	Encyclopedia provider.Provider

	Extractor *extract.Extractor
	Cache     *cache.Cache
	Rank      rank.Config
	Logger    *slog.Logger
}

// Options are the per-query knobs.
type Options struct {
	MaxResults          int
	ExtractContent      bool
	IncludeEncyclopedia bool
}

// Engine is the search orchestrator. It owns its cache and statistics; there
// is no package-level mutable state, so independent Engines don't interfere.
type Engine struct {
	cfg    Config
	cache  *cache.Cache
	logger *slog.Logger

	statsMu            sync.Mutex
	totalSearches      uint64
	successfulSearches uint64
	contentExtractions uint64
	avgSearchTimeMs    float64
}

// New creates an Engine. A nil Extractor or Cache gets default settings.
func New(cfg Config) (*Engine, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.New(0, 0)
	}
	if cfg.Extractor == nil {
		var err error
		cfg.Extractor, err = extract.NewExtractor(extract.Config{Logger: cfg.Logger})
		if err != nil {
			return nil, fmt.Errorf("failed to create extractor: %w", err)
		}
	}

	return &Engine{
		cfg:    cfg,
		cache:  cfg.Cache,
		logger: cfg.Logger,
	}, nil
}

// Search runs one query end to end and always returns a well-formed
// response. Individual provider or extraction failures are absorbed; the
// response is unsuccessful only when nothing survives filtering.
func (e *Engine) Search(ctx context.Context, query string, opts Options) model.SearchResponse {
	start := time.Now()
	query = strings.TrimSpace(query)

	if query == "" {
		resp := e.failureResponse(query, "query cannot be empty", start)
		e.recordSearch(resp, 0, time.Since(start))
		return resp
	}

	opts.MaxResults = clampMaxResults(opts.MaxResults)
	params := cache.Params{
		MaxResults:          opts.MaxResults,
		ExtractContent:      opts.ExtractContent,
		IncludeEncyclopedia: opts.IncludeEncyclopedia,
	}

	if cached, ok := e.cache.Get(query, params); ok {
		cached.Cached = true
		cached.SearchTimeMs = time.Since(start).Milliseconds()
		e.recordSearch(*cached, 0, time.Since(start))
		e.logger.Debug("cache hit", "query", query)
		return *cached
	}

	gathered := e.gather(ctx, query, opts)
	merged := mergeHits(gathered.encycHits, gathered.providerHits)

	var contents []*model.ExtractedContent
	extracted := 0
	if opts.ExtractContent {
		contents, extracted = e.extractAll(ctx, merged, opts.MaxResults+2)
	}

	enriched := make([]model.EnrichedResult, 0, len(merged))
	for i, h := range merged {
		var content *model.ExtractedContent
		if i < len(contents) {
			content = contents[i]
		}
		enriched = append(enriched, enrich(h, content))
	}

	ranked := rank.Rank(query, enriched, opts.MaxResults, e.cfg.Rank)

	resp := model.SearchResponse{
		ID:             uuid.New().String(),
		Query:          query,
		Results:        ranked,
		TotalResults:   len(ranked),
		SearchTimeMs:   time.Since(start).Milliseconds(),
		Providers:      gathered.contributed,
		InstantAnswer:  gathered.instantAnswer,
		KnowledgePanel: gathered.knowledgePanel,
		Success:        len(ranked) > 0,
		Timestamp:      time.Now().UTC(),
	}
	if gathered.instantAnswer != nil {
		resp.RelatedQueries = gathered.instantAnswer.Related
	}
	if !resp.Success {
		resp.ErrorMessage = fmt.Sprintf("no results found for %q", query)
	}

	if resp.Success {
		e.cache.Set(query, params, resp)
	}
	e.recordSearch(resp, extracted, time.Since(start))

	return resp
}

type gatherResult struct {
	providerHits   [][]model.SearchHit
	encycHits      []model.SearchHit
	contributed    []string
	instantAnswer  *model.InstantAnswer
	knowledgePanel *model.KnowledgePanel
}

// gather fans out to all configured backends concurrently. Hits land in a
// fixed slot per provider so the merge order depends on configuration, not
// on network completion order.
func (e *Engine) gather(ctx context.Context, query string, opts Options) gatherResult {
	out := gatherResult{
		providerHits: make([][]model.SearchHit, len(e.cfg.Providers)),
	}

	var wg sync.WaitGroup
	for i, p := range e.cfg.Providers {
		wg.Add(1)
		go func(i int, p provider.Provider) {
			defer wg.Done()
			hits, err := p.Search(ctx, query, opts.MaxResults)
			if err != nil {
				e.logger.Warn("provider search failed", "provider", p.Name(), "err", err)
				return
			}
			out.providerHits[i] = hits
		}(i, p)
	}

	// The first provider with instant-answer capability supplies the block
	for _, p := range e.cfg.Providers {
		ia, ok := p.(provider.InstantAnswerer)
		if !ok {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			answer, err := ia.InstantAnswer(ctx, query)
			if err != nil {
				e.logger.Warn("instant answer failed", "query", query, "err", err)
				return
			}
			out.instantAnswer = answer
		}()
		break
	}

	if opts.IncludeEncyclopedia && e.cfg.Encyclopedia != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			max := 2
			if opts.MaxResults < max {
				max = opts.MaxResults
			}
			hits, err := e.cfg.Encyclopedia.Search(ctx, query, max)
			if err != nil {
				e.logger.Warn("encyclopedic search failed", "provider", e.cfg.Encyclopedia.Name(), "err", err)
				return
			}
			out.encycHits = hits
		}()

		if kp, ok := e.cfg.Encyclopedia.(provider.KnowledgePanelProvider); ok {
			wg.Add(1)
			go func() {
				defer wg.Done()
				panel, err := kp.KnowledgePanel(ctx, query)
				if err != nil {
					e.logger.Warn("knowledge panel failed", "query", query, "err", err)
					return
				}
				out.knowledgePanel = panel
			}()
		}
	}

	wg.Wait()

	if len(out.encycHits) > 0 && e.cfg.Encyclopedia != nil {
		out.contributed = append(out.contributed, e.cfg.Encyclopedia.Name())
	}
	for i, p := range e.cfg.Providers {
		if len(out.providerHits[i]) > 0 {
			out.contributed = append(out.contributed, p.Name())
		}
	}

	return out
}

// mergeHits places encyclopedic hits first, then provider hits in
// configuration order, dropping exact URL repeats.
func mergeHits(encyc []model.SearchHit, perProvider [][]model.SearchHit) []model.SearchHit {
	seen := make(map[string]struct{})
	var merged []model.SearchHit

	add := func(hits []model.SearchHit) {
		for _, h := range hits {
			if h.URL == "" {
				continue
			}
			if _, dup := seen[h.URL]; dup {
				continue
			}
			seen[h.URL] = struct{}{}
			merged = append(merged, h)
		}
	}

	add(encyc)
	for _, hits := range perProvider {
		add(hits)
	}
	return merged
}

// extractAll runs content extraction over the first maxFetches hits with a
// bounded worker pool. It returns the per-hit contents (nil where extraction
// failed) and how many extractions succeeded. Extraction failures leave the
// hit with its snippet only; they never fail the query.
func (e *Engine) extractAll(ctx context.Context, hits []model.SearchHit, maxFetches int) ([]*model.ExtractedContent, int) {
	n := len(hits)
	if n > maxFetches {
		n = maxFetches
	}

	contents := make([]*model.ExtractedContent, len(hits))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(extractWorkers)

	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			content, err := e.cfg.Extractor.Extract(gCtx, hits[i].URL)
			if err != nil {
				e.logger.Debug("content unavailable", "url", hits[i].URL, "err", err)
				return nil
			}
			contents[i] = content
			return nil
		})
	}
	_ = g.Wait() // workers absorb their own failures

	succeeded := 0
	for _, c := range contents {
		if c != nil {
			succeeded++
		}
	}
	return contents, succeeded
}

// enrich merges a raw hit with its extracted content and classification.
func enrich(h model.SearchHit, content *model.ExtractedContent) model.EnrichedResult {
	sourceType, reliability := classify.Classify(h.URL)

	r := model.EnrichedResult{
		Title:       h.Title,
		URL:         h.URL,
		Snippet:     h.Snippet,
		Provider:    h.Provider,
		Domain:      h.Domain,
		SourceType:  sourceType,
		Reliability: reliability,
		Quality:     model.QualityUnknown,
	}

	if content != nil {
		r.FullContent = content.Text
		r.Content = content
		r.WordCount = content.WordCount
		if r.Title == "" && content.Title != "" {
			r.Title = content.Title
		}
	}
	return r
}

// recordSearch updates the running statistics and metrics for one query.
func (e *Engine) recordSearch(resp model.SearchResponse, extracted int, elapsed time.Duration) {
	e.statsMu.Lock()
	e.totalSearches++
	if resp.Success {
		e.successfulSearches++
	}
	e.contentExtractions += uint64(extracted)

	// Exponentially weighted average, biased 20% toward the newest sample
	ms := float64(elapsed.Milliseconds())
	if e.totalSearches == 1 {
		e.avgSearchTimeMs = ms
	} else {
		e.avgSearchTimeMs = 0.8*e.avgSearchTimeMs + 0.2*ms
	}
	e.statsMu.Unlock()

	metrics.RecordSearch(resp.Success, resp.Cached)
}

// Stats returns a snapshot of the engine's running counters.
func (e *Engine) Stats() model.Stats {
	e.statsMu.Lock()
	defer e.statsMu.Unlock()
	return model.Stats{
		TotalSearches:      e.totalSearches,
		SuccessfulSearches: e.successfulSearches,
		ContentExtractions: e.contentExtractions,
		AvgSearchTimeMs:    e.avgSearchTimeMs,
		Cache:              e.cache.Stats(),
	}
}

// ClearCache drops every cached response.
func (e *Engine) ClearCache() {
	e.cache.Clear()
}

func (e *Engine) failureResponse(query, message string, start time.Time) model.SearchResponse {
	return model.SearchResponse{
		ID:           uuid.New().String(),
		Query:        query,
		Results:      []model.EnrichedResult{},
		SearchTimeMs: time.Since(start).Milliseconds(),
		Success:      false,
		ErrorMessage: message,
		Timestamp:    time.Now().UTC(),
	}
}

func clampMaxResults(n int) int {
	if n <= 0 {
		return defaultMaxResults
	}
	if n > MaxResultsLimit {
		return MaxResultsLimit
	}
	return n
}
