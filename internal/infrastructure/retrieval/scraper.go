package retrieval

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"web-automation-agent/internal/application/port/output"
)

const (
	maxPageBytes   = 1 << 20 // 1 MiB per page is plenty for form discovery
	defaultTimeout = 15 * time.Second
)

// Scraper crawls one site breadth-first up to a depth and page cap,
// producing a PageSummary per fetched page. Same-host links only; this is
// site knowledge-base building, not web crawling.
type Scraper struct {
	client   *http.Client
	logger   output.LoggerPort
	depth    int
	maxPages int
}

func NewScraper(logger output.LoggerPort, depth, maxPages int) *Scraper {
	if depth <= 0 {
		depth = 2
	}
	if maxPages <= 0 {
		maxPages = 20
	}
	return &Scraper{
		client:   &http.Client{Timeout: defaultTimeout},
		logger:   logger,
		depth:    depth,
		maxPages: maxPages,
	}
}

func (s *Scraper) Scrape(ctx context.Context, startURL string) ([]PageSummary, error) {
	start, err := url.Parse(startURL)
	if err != nil {
		return nil, fmt.Errorf("invalid start url %q: %w", startURL, err)
	}

	type queued struct {
		url   string
		depth int
	}

	visited := make(map[string]bool)
	queue := []queued{{url: start.String(), depth: 0}}
	var pages []PageSummary

	for len(queue) > 0 && len(pages) < s.maxPages {
		if err := ctx.Err(); err != nil {
			return pages, err
		}

		item := queue[0]
		queue = queue[1:]

		if visited[item.url] {
			continue
		}
		visited[item.url] = true

		body, err := s.fetch(ctx, item.url)
		if err != nil {
			s.logger.Warn("Page fetch failed", "url", item.url, "error", err)
			continue
		}

		summary := ParsePage(body, item.url)
		pages = append(pages, summary)
		s.logger.Debug("Page scraped", "url", item.url, "forms", len(summary.Forms), "inputs", len(summary.Inputs))

		if item.depth >= s.depth {
			continue
		}
		for _, link := range summary.Links {
			next, ok := resolveSameHost(start, link)
			if ok && !visited[next] {
				queue = append(queue, queued{url: next, depth: item.depth + 1})
			}
		}
	}

	s.logger.Info("Scrape complete", "pages", len(pages))
	return pages, nil
}

func (s *Scraper) fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "web-automation-agent/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func resolveSameHost(base *url.URL, link string) (string, bool) {
	ref, err := url.Parse(link)
	if err != nil {
		return "", false
	}
	resolved := base.ResolveReference(ref)
	if resolved.Host != base.Host {
		return "", false
	}
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	resolved.Fragment = ""
	return resolved.String(), true
}
