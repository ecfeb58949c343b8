package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const opensearchBody = `[
	"golang",
	["Go (programming language)", "Golang (disambiguation)"],
	["Compiled language from Google", ""],
	["https://en.wikipedia.org/wiki/Go_(programming_language)", "https://en.wikipedia.org/wiki/Golang_(disambiguation)"]
]`

func newTestWikipedia(t *testing.T, apiURL, restBase string) *Wikipedia {
	t.Helper()
	w, err := NewWikipedia(WikipediaConfig{
		APIURL:   apiURL,
		RESTBase: restBase,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	return w
}

func TestWikipedia_Search(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("action") != "opensearch" {
			t.Errorf("expected opensearch action, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(opensearchBody))
	}))
	defer ts.Close()

	wp := newTestWikipedia(t, ts.URL, "")
	hits, err := wp.Search(context.Background(), "golang", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Title != "Go (programming language)" {
		t.Errorf("unexpected title: %s", hits[0].Title)
	}
	if hits[0].Snippet != "Compiled language from Google" {
		t.Errorf("unexpected snippet: %s", hits[0].Snippet)
	}
	if hits[0].Domain != "en.wikipedia.org" {
		t.Errorf("unexpected domain: %s", hits[0].Domain)
	}
	if hits[0].Provider != "wikipedia" {
		t.Errorf("unexpected provider: %s", hits[0].Provider)
	}
}

func TestWikipedia_SearchMalformed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`["golang", ["only two elements"]]`))
	}))
	defer ts.Close()

	wp := newTestWikipedia(t, ts.URL, "")
	if _, err := wp.Search(context.Background(), "golang", 10); err == nil {
		t.Error("expected error for truncated opensearch response")
	}
}

func TestWikipedia_SearchValidation(t *testing.T) {
	wp := newTestWikipedia(t, "http://127.0.0.1:1", "")

	if _, err := wp.Search(context.Background(), "", 10); err == nil {
		t.Error("expected error for empty query")
	}
	if _, err := wp.Search(context.Background(), "golang", 0); err == nil {
		t.Error("expected error for maxResults < 1")
	}
}

func TestWikipedia_KnowledgePanel(t *testing.T) {
	mux := http.NewServeMux()
	var summaryPath string
	ts := httptest.NewServer(mux)
	defer ts.Close()

	mux.HandleFunc("/api.php", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(opensearchBody))
	})
	mux.HandleFunc("/rest/page/summary/", func(w http.ResponseWriter, r *http.Request) {
		summaryPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"title": "Go (programming language)",
			"extract": "Go is a statically typed, compiled language designed at Google.",
			"content_urls": {"desktop": {"page": "https://en.wikipedia.org/wiki/Go_(programming_language)"}}
		}`))
	})

	wp := newTestWikipedia(t, ts.URL+"/api.php", ts.URL+"/rest")
	panel, err := wp.KnowledgePanel(context.Background(), "golang")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if panel == nil {
		t.Fatal("expected a knowledge panel")
	}

	if !strings.Contains(summaryPath, "Go_(programming_language)") {
		t.Errorf("expected title with underscores in summary path, got %q", summaryPath)
	}
	if panel.Title != "Go (programming language)" {
		t.Errorf("unexpected title: %s", panel.Title)
	}
	if !strings.Contains(panel.Abstract, "statically typed") {
		t.Errorf("unexpected abstract: %s", panel.Abstract)
	}
	if panel.URL != "https://en.wikipedia.org/wiki/Go_(programming_language)" {
		t.Errorf("unexpected URL: %s", panel.URL)
	}
	if panel.Source != "wikipedia" {
		t.Errorf("unexpected source: %s", panel.Source)
	}
}

func TestWikipedia_KnowledgePanelNoMatch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`["gibberish", [], [], []]`))
	}))
	defer ts.Close()

	wp := newTestWikipedia(t, ts.URL, ts.URL)
	panel, err := wp.KnowledgePanel(context.Background(), "gibberish")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if panel != nil {
		t.Errorf("expected nil panel for no match, got %+v", panel)
	}
}
