package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"web-automation-agent/internal/infrastructure/logger"
	"web-automation-agent/internal/infrastructure/retrieval"
)

func newTestSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>Acme Home</title></head><body>
			<h1>Acme</h1>
			<a href="/login">Log in</a>
			<a href="/about">About</a>
		</body></html>`))
	})
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>Acme Login</title></head><body>
			<form action="/login" method="post">
				<input name="username" id="username" type="text">
				<input name="password" id="password" type="password">
				<input type="submit" value="Log in">
			</form>
		</body></html>`))
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>About Acme</title></head><body>
			<h1>About the company</h1>
		</body></html>`))
	})
	return httptest.NewServer(mux)
}

func TestScrapeAndRetrieve(t *testing.T) {
	server := newTestSite(t)
	defer server.Close()

	log := logger.NewNop()
	scraper := retrieval.NewScraper(log, 2, 10)

	pages, err := scraper.Scrape(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("Expected 3 pages (home, login, about), got %d", len(pages))
	}

	index := retrieval.NewIndex(nil, log)
	if err := index.Build(context.Background(), pages); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	snippets, err := index.Retrieve(context.Background(), "login username password form", 2)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(snippets) == 0 {
		t.Fatal("Expected snippets for login query")
	}
	if !strings.Contains(snippets[0].Content, "name='username'") {
		t.Errorf("Top snippet should expose the login form selectors:\n%s", snippets[0].Content)
	}
}

func TestScrape_DepthLimit(t *testing.T) {
	server := newTestSite(t)
	defer server.Close()

	scraper := retrieval.NewScraper(logger.NewNop(), 1, 10)

	pages, err := scraper.Scrape(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}
	// Depth 1 still reaches the pages linked from the start page.
	if len(pages) != 3 {
		t.Errorf("Expected 3 pages at depth 1, got %d", len(pages))
	}
}

func TestScrape_RespectsCancellation(t *testing.T) {
	server := newTestSite(t)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scraper := retrieval.NewScraper(logger.NewNop(), 2, 10)
	if _, err := scraper.Scrape(ctx, server.URL); err == nil {
		t.Error("Expected context error from cancelled scrape")
	}
}
