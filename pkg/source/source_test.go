package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/suggestbox/suggestbox/internal/config"
)

const testFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <item>
      <title>Go 1.25 released</title>
      <link>https://example.com/go-release</link>
      <guid>go-release</guid>
    </item>
    <item>
      <title>Database tuning notes</title>
      <link>https://example.com/db-tuning</link>
      <guid>db-tuning</guid>
    </item>
  </channel>
</rss>`

func TestStaticSuggest(t *testing.T) {
	s := NewStatic([]Entry{
		{Title: "Go documentation", URL: "https://go.dev/doc"},
		{Title: "Issue tracker", URL: "https://example.com/issues"},
		{Title: "Go playground", URL: "https://go.dev/play"},
	})

	got, err := s.Suggest(context.Background(), "go", 0)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d suggestions, want 2: %+v", len(got), got)
	}
	first := got[0]
	if first.Source != SourceStatic || first.Text1 != "Go documentation" ||
		first.IntentData != "https://go.dev/doc" || first.ShortcutID != "https://go.dev/doc" {
		t.Errorf("suggestion = %+v", first)
	}

	// Matching is case-insensitive substring, not prefix.
	got, _ = s.Suggest(context.Background(), "TRACKER", 0)
	if len(got) != 1 || got[0].Text1 != "Issue tracker" {
		t.Errorf("case-insensitive match = %+v", got)
	}

	got, _ = s.Suggest(context.Background(), "", 2)
	if len(got) != 2 {
		t.Errorf("limit 2 returned %d suggestions", len(got))
	}

	if got, _ := s.Suggest(context.Background(), "nothing here", 0); len(got) != 0 {
		t.Errorf("no-match query returned %+v", got)
	}
}

func TestRSSSuggest(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testFeedXML))
	}))
	defer ts.Close()

	r := NewRSS([]Feed{{Name: "Test Feed", URL: ts.URL}})

	got, err := r.Suggest(context.Background(), "go", 0)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d suggestions, want 1: %+v", len(got), got)
	}
	s := got[0]
	if s.Source != SourceRSS || s.ShortcutID != "go-release" ||
		s.Text1 != "Go 1.25 released" || s.Text2 != "Test Feed" ||
		s.IntentAction != "open" || s.IntentData != "https://example.com/go-release" {
		t.Errorf("suggestion = %+v", s)
	}

	got, err = r.Suggest(context.Background(), "", 1)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("limit 1 returned %d suggestions", len(got))
	}
}

func TestRSSSkipsFailingFeed(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testFeedXML))
	}))
	defer good.Close()

	r := NewRSS([]Feed{
		{Name: "Broken", URL: bad.URL},
		{Name: "Test Feed", URL: good.URL},
	})

	got, err := r.Suggest(context.Background(), "database", 0)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(got) != 1 || got[0].Text1 != "Database tuning notes" {
		t.Errorf("results past the broken feed = %+v", got)
	}
}

func TestBuild(t *testing.T) {
	cfg := config.Default()
	if got := Build(cfg); len(got) != 0 {
		t.Errorf("all sources disabled, Build returned %d", len(got))
	}

	cfg.Sources.RSS.Enabled = true
	cfg.Sources.Static.Enabled = true
	cfg.Sources.Static.Entries = []config.StaticEntry{{Title: "Docs", URL: "https://go.dev"}}

	got := Build(cfg)
	if len(got) != 2 {
		t.Fatalf("Build returned %d sources, want 2", len(got))
	}
	if got[0].ID() != SourceRSS || got[1].ID() != SourceStatic {
		t.Errorf("source ids = %s, %s", got[0].ID(), got[1].ID())
	}
}
