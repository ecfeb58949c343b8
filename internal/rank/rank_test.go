package rank

import (
	"fmt"
	"strings"
	"testing"

	"github.com/FranksOps/scout/internal/model"
)

func makeResult(url, title, content string, st model.SourceType, rel float64) model.EnrichedResult {
	return model.EnrichedResult{
		Title:       title,
		URL:         url,
		Domain:      model.DomainOf(url),
		FullContent: content,
		SourceType:  st,
		Reliability: rel,
	}
}

func longText(prefix string, n int) string {
	return prefix + strings.Repeat(" lorem ipsum dolor sit amet", n)
}

func TestRank_FiltersShortContent(t *testing.T) {
	results := []model.EnrichedResult{
		makeResult("https://a.com/1", "A long page", longText("a", 50), model.SourceUnknown, 0.5),
		makeResult("https://b.com/1", "Too short", "tiny", model.SourceUnknown, 0.5),
	}

	ranked := Rank("query", results, 10, Config{})
	if len(ranked) != 1 {
		t.Fatalf("expected 1 result after filtering, got %d", len(ranked))
	}
	if ranked[0].URL != "https://a.com/1" {
		t.Errorf("wrong survivor: %s", ranked[0].URL)
	}
}

func TestRank_WikiExemptFromLengthFilter(t *testing.T) {
	results := []model.EnrichedResult{
		makeResult("https://en.wikipedia.org/wiki/Topic", "Topic", "short overview", model.SourceWiki, 0.85),
	}

	ranked := Rank("topic", results, 10, Config{})
	if len(ranked) != 1 {
		t.Fatalf("expected wiki result to survive the length filter, got %d results", len(ranked))
	}
}

func TestRank_DomainCap(t *testing.T) {
	var results []model.EnrichedResult
	for i := 0; i < 5; i++ {
		results = append(results, makeResult(
			fmt.Sprintf("https://same.com/page%d", i),
			fmt.Sprintf("Page %d", i),
			longText(fmt.Sprintf("page %d unique opening text number %d.", i, i), 50),
			model.SourceUnknown, 0.5,
		))
	}

	ranked := Rank("query", results, 10, Config{})
	if len(ranked) != 2 {
		t.Fatalf("expected domain cap of 2, got %d results", len(ranked))
	}
	for _, r := range ranked {
		if r.Domain != "same.com" {
			t.Errorf("unexpected domain: %s", r.Domain)
		}
	}
}

func TestRank_FingerprintDedup(t *testing.T) {
	shared := longText("identical syndicated article text.", 60)
	results := []model.EnrichedResult{
		makeResult("https://a.com/1", "Original", shared, model.SourceUnknown, 0.5),
		makeResult("https://b.com/1", "Syndicated copy", shared, model.SourceUnknown, 0.5),
		makeResult("https://c.com/1", "Different", longText("entirely different text here.", 60), model.SourceUnknown, 0.5),
	}

	ranked := Rank("query", results, 10, Config{})
	if len(ranked) != 2 {
		t.Fatalf("expected duplicate to be dropped, got %d results", len(ranked))
	}
	for _, r := range ranked {
		if r.URL == "https://b.com/1" {
			t.Errorf("expected the later duplicate to be the one dropped")
		}
	}
}

func TestRank_SnippetFallback(t *testing.T) {
	// No extracted content; the snippet is what gets filtered and scored.
	r := model.EnrichedResult{
		Title:       "Snippet only",
		URL:         "https://a.com/1",
		Domain:      "a.com",
		Snippet:     longText("snippet text", 20),
		SourceType:  model.SourceUnknown,
		Reliability: 0.5,
	}

	ranked := Rank("query", []model.EnrichedResult{r}, 10, Config{})
	if len(ranked) != 1 {
		t.Fatalf("expected snippet-only result to survive, got %d", len(ranked))
	}
	if ranked[0].Score <= 0 {
		t.Errorf("expected a positive score, got %v", ranked[0].Score)
	}
}

func TestRank_ScoresDescending(t *testing.T) {
	results := []model.EnrichedResult{
		makeResult("https://random.com/1", "Unrelated page", longText("filler.", 20), model.SourceUnknown, 0.4),
		makeResult("https://en.wikipedia.org/wiki/Compilers", "Compilers overview", longText("compilers are programs.", 100), model.SourceWiki, 0.85),
		makeResult("https://blog.example.com/1", "Notes on compilers", longText("some notes.", 30), model.SourceBlog, 0.5),
	}

	ranked := Rank("compilers", results, 10, Config{})
	if len(ranked) != 3 {
		t.Fatalf("expected 3 results, got %d", len(ranked))
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Score > ranked[i-1].Score {
			t.Errorf("scores not descending: %v at %d after %v", ranked[i].Score, i, ranked[i-1].Score)
		}
	}
	if ranked[0].Domain != "en.wikipedia.org" {
		t.Errorf("expected the wiki result first, got %s", ranked[0].Domain)
	}
}

func TestRank_StableTieBreak(t *testing.T) {
	// Two results identical in every scoring dimension keep input order.
	a := makeResult("https://a.com/1", "Same title words", longText("first body text unique.", 50), model.SourceUnknown, 0.5)
	b := makeResult("https://b.com/1", "Same title words", longText("second body text other.", 50), model.SourceUnknown, 0.5)
	// Equalize length so the length weight matches exactly
	if len(a.FullContent) != len(b.FullContent) {
		t.Fatalf("test setup: content lengths differ")
	}

	ranked := Rank("query", []model.EnrichedResult{a, b}, 10, Config{})
	if len(ranked) != 2 {
		t.Fatalf("expected 2 results, got %d", len(ranked))
	}
	if ranked[0].URL != "https://a.com/1" {
		t.Errorf("expected input order preserved on tie, got %s first", ranked[0].URL)
	}
}

func TestRank_MaxResultsTruncation(t *testing.T) {
	var results []model.EnrichedResult
	for i := 0; i < 8; i++ {
		results = append(results, makeResult(
			fmt.Sprintf("https://site%d.com/1", i),
			fmt.Sprintf("Page %d", i),
			longText(fmt.Sprintf("unique opening %d for page %d.", i, i), 50),
			model.SourceUnknown, 0.5,
		))
	}

	ranked := Rank("query", results, 3, Config{})
	if len(ranked) != 3 {
		t.Fatalf("expected truncation to 3, got %d", len(ranked))
	}
}

func TestQualityTier(t *testing.T) {
	// Title overlap (+2), long content (+2), high reliability (+2) => high
	r := makeResult("https://a.com/1", "Guide to compilers", longText("compilers.", 100), model.SourceAcademic, 0.9)
	if got := qualityTier("compilers", r, r.FullContent); got != model.QualityHigh {
		t.Errorf("expected high, got %s", got)
	}

	// Medium content (+1), medium reliability (+1), title overlap (+2) => medium... at 4 points
	r = makeResult("https://b.com/1", "Compilers notes", longText("x", 30), model.SourceUnknown, 0.6)
	if got := qualityTier("compilers", r, r.FullContent); got != model.QualityMedium {
		t.Errorf("expected medium, got %s", got)
	}

	// No overlap, short content, low reliability => low
	r = makeResult("https://c.com/1", "Unrelated", "short text body", model.SourceUnknown, 0.3)
	if got := qualityTier("compilers", r, r.FullContent); got != model.QualityLow {
		t.Errorf("expected low, got %s", got)
	}
}

func TestTitleSharesWord(t *testing.T) {
	tests := []struct {
		title string
		query string
		want  bool
	}{
		{"Go concurrency patterns", "concurrency in go", true},
		{"Concurrency, explained.", "concurrency", true},
		{"Completely different", "golang channels", false},
		{"An in on at", "in on at", false}, // all words too short
	}
	for _, tt := range tests {
		if got := titleSharesWord(tt.title, tt.query); got != tt.want {
			t.Errorf("titleSharesWord(%q, %q) = %v, want %v", tt.title, tt.query, got, tt.want)
		}
	}
}
