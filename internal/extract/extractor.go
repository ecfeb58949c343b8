package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/FranksOps/scout/internal/metrics"
	"github.com/FranksOps/scout/internal/model"
	"github.com/FranksOps/scout/internal/robots"
	"github.com/PuerkitoBio/goquery"
)

const (
	// DefaultMaxTextLength bounds the cleaned article text.
	DefaultMaxTextLength = 8000

	maxHeadings      = 20
	maxTables        = 3
	maxTableRows     = 20
	maxTableCols     = 10
	maxCellLength    = 100
	maxCodeBlocks    = 5
	maxCodeBlockSize = 500
)

// Config configures an Extractor.
type Config struct {
	Fetcher       *Fetcher
	MaxTextLength int
	// RespectRobots gates every page fetch behind the host's robots.txt.
	RespectRobots bool
	Logger        *slog.Logger
}

// Extractor turns a URL into cleaned plain-text content plus metadata.
// It holds no per-page state and is safe for concurrent use.
type Extractor struct {
	cfg     Config
	fetcher *Fetcher
	auditor *robots.Auditor
	logger  *slog.Logger
}

// NewExtractor creates an Extractor. A nil Fetcher gets default settings.
func NewExtractor(cfg Config) (*Extractor, error) {
	if cfg.MaxTextLength <= 0 {
		cfg.MaxTextLength = DefaultMaxTextLength
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	fetcher := cfg.Fetcher
	if fetcher == nil {
		var err error
		fetcher, err = NewFetcher(FetchConfig{})
		if err != nil {
			return nil, err
		}
	}

	var auditor *robots.Auditor
	if cfg.RespectRobots {
		var err error
		auditor, err = robots.NewAuditor(robots.Config{Logger: cfg.Logger})
		if err != nil {
			return nil, err
		}
	}

	return &Extractor{
		cfg:     cfg,
		fetcher: fetcher,
		auditor: auditor,
		logger:  cfg.Logger,
	}, nil
}

// Extract fetches the page at rawURL and produces cleaned content and
// metadata. Any fetch or parse failure yields a nil content and an error;
// callers treat that as "no content available", never as a query failure.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (content *model.ExtractedContent, err error) {
	defer func() { metrics.RecordExtraction(err) }()

	if e.auditor != nil {
		allowed, robotsErr := e.auditor.IsAllowed(ctx, rawURL)
		if robotsErr != nil {
			e.logger.Warn("error checking robots.txt", "url", rawURL, "err", robotsErr)
			// Fail open on robots.txt errors
		} else if !allowed {
			return nil, fmt.Errorf("blocked by robots.txt: %s", rawURL)
		}
	}

	res, err := e.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	recordFetchMetrics(rawURL, res)

	if res.Error != "" {
		return nil, errors.New(res.Error)
	}
	if res.Challenged {
		return nil, fmt.Errorf("challenge page served by %s", res.ChallengeSrc)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d for %s", res.StatusCode, rawURL)
	}

	contentType := res.Headers.Get("Content-Type")
	if contentType != "" && !strings.Contains(strings.ToLower(contentType), "html") {
		return nil, fmt.Errorf("not an HTML page: %s", contentType)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	// Metadata comes from the head, so capture it before noise stripping.
	out := &model.ExtractedContent{
		Title:       extractTitle(doc),
		Description: extractDescription(doc),
		PublishDate: firstMetaContent(doc, "article:published_time", "date", "publish-date", "dc.date"),
		Author:      firstMetaContent(doc, "author", "article:author", "dc.creator"),
	}

	stripNoise(doc)

	out.Headings = extractHeadings(doc)
	out.Tables = extractTables(doc)
	out.CodeBlocks = extractCodeBlocks(doc)

	main := findMainContent(doc)
	text := cleanText(main.Text())
	if text == "" {
		return nil, fmt.Errorf("no usable content at %s", rawURL)
	}
	text = truncateAtSentence(text, e.cfg.MaxTextLength)

	out.Text = text
	out.KeyPoints = keyPoints(text)
	out.WordCount = countWords(text)
	out.ReadingTimeMin = readingTime(out.WordCount)
	out.Language = guessLanguage(text)

	return out, nil
}

// stripNoise removes non-content tags and any element whose class or id
// matches the noise pattern set.
func stripNoise(doc *goquery.Document) {
	doc.Find(nonContentTags).Remove()
	doc.Find("[class],[id]").Each(func(_ int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		id, _ := s.Attr("id")
		if isNoise(class, id) {
			s.Remove()
		}
	})
}

// contentStrategy is one attempt at locating the main content block.
// Strategies are tried in order; the first non-empty selection wins.
type contentStrategy struct {
	name string
	find func(doc *goquery.Document) *goquery.Selection
}

var contentStrategies = []contentStrategy{
	{"article", func(doc *goquery.Document) *goquery.Selection {
		return doc.Find("article").First()
	}},
	{"main", func(doc *goquery.Document) *goquery.Selection {
		return doc.Find("main").First()
	}},
	{"marker", findByContentMarker},
	{"largest", findLargestTextBlock},
	{"body", func(doc *goquery.Document) *goquery.Selection {
		return doc.Find("body")
	}},
}

func findMainContent(doc *goquery.Document) *goquery.Selection {
	for _, strategy := range contentStrategies {
		sel := strategy.find(doc)
		if sel != nil && sel.Length() > 0 && strings.TrimSpace(sel.Text()) != "" {
			return sel
		}
	}
	return doc.Selection
}

// findByContentMarker locates the first container whose class or id matches
// the content-marker vocabulary and has a meaningful amount of text.
func findByContentMarker(doc *goquery.Document) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("div[class],div[id],section[class],section[id]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		id, _ := s.Attr("id")
		if !contentMarker.MatchString(class + " " + id) {
			return true
		}
		if len(strings.TrimSpace(s.Text())) < 200 {
			return true
		}
		found = s
		return false
	})
	return found
}

// findLargestTextBlock falls back to the single container with the most text.
func findLargestTextBlock(doc *goquery.Document) *goquery.Selection {
	var largest *goquery.Selection
	largestLen := 0
	doc.Find("div, section, td").Each(func(_ int, s *goquery.Selection) {
		l := len(strings.TrimSpace(s.Text()))
		if l > largestLen {
			largest = s
			largestLen = l
		}
	})
	if largestLen < 100 {
		return nil
	}
	return largest
}

// extractTitle prefers the social-preview title, then the page title, then
// the first heading.
func extractTitle(doc *goquery.Document) string {
	if og := metaProperty(doc, "og:title"); og != "" {
		return og
	}
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

func extractDescription(doc *goquery.Document) string {
	if og := metaProperty(doc, "og:description"); og != "" {
		return og
	}
	return metaName(doc, "description")
}

func metaProperty(doc *goquery.Document, property string) string {
	content, _ := doc.Find(`meta[property="` + property + `"]`).First().Attr("content")
	return strings.TrimSpace(content)
}

func metaName(doc *goquery.Document, name string) string {
	content, _ := doc.Find(`meta[name="` + name + `"]`).First().Attr("content")
	return strings.TrimSpace(content)
}

// firstMetaContent returns the first non-empty meta tag among the given
// names, checking both name= and property= forms.
func firstMetaContent(doc *goquery.Document, names ...string) string {
	for _, n := range names {
		if v := metaName(doc, n); v != "" {
			return v
		}
		if v := metaProperty(doc, n); v != "" {
			return v
		}
	}
	return ""
}

func extractHeadings(doc *goquery.Document) []string {
	var headings []string
	doc.Find("h1, h2, h3, h4").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if text != "" {
			headings = append(headings, text)
		}
		return len(headings) < maxHeadings
	})
	return headings
}

func extractTables(doc *goquery.Document) []model.Table {
	var tables []model.Table
	doc.Find("table").EachWithBreak(func(_ int, t *goquery.Selection) bool {
		var table model.Table
		t.Find("tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
			var row []string
			tr.Find("th, td").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
				text := strings.TrimSpace(cell.Text())
				if len(text) > maxCellLength {
					text = text[:maxCellLength]
				}
				row = append(row, text)
				return len(row) < maxTableCols
			})
			if len(row) > 0 {
				table.Rows = append(table.Rows, row)
			}
			return len(table.Rows) < maxTableRows
		})
		if len(table.Rows) > 0 {
			tables = append(tables, table)
		}
		return len(tables) < maxTables
	})
	return tables
}

func extractCodeBlocks(doc *goquery.Document) []string {
	var blocks []string
	doc.Find("pre, code").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return true
		}
		if len(text) > maxCodeBlockSize {
			text = text[:maxCodeBlockSize]
		}
		blocks = append(blocks, text)
		return len(blocks) < maxCodeBlocks
	})
	return blocks
}
