package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/newsfact/news-analyzer/internal/analyzer"
	"github.com/newsfact/news-analyzer/internal/cache"
	"github.com/newsfact/news-analyzer/internal/config"
	"github.com/newsfact/news-analyzer/internal/model"
	"github.com/newsfact/news-analyzer/internal/scraper"
	"github.com/newsfact/news-analyzer/internal/search"
)

// stubAnalyzer returns canned results, with per-URL failures
type stubAnalyzer struct {
	errs  map[string]error
	calls int
}

func (s *stubAnalyzer) Analyze(ctx context.Context, url string) (*model.AnalysisResult, error) {
	s.calls++
	if err, ok := s.errs[url]; ok {
		return nil, err
	}
	return &model.AnalysisResult{
		Article: model.Article{
			Title:  "Stub Article",
			URL:    url,
			Source: "example.com",
		},
		Summary: model.Summary{
			Summary:   "Stub summary",
			Sentiment: model.SentimentNeutral,
		},
		CredibilityScore:  70,
		OverallAssessment: "Generally credible.",
	}, nil
}

func (s *stubAnalyzer) AnalyzeBatch(ctx context.Context, urls []string) []analyzer.BatchResult {
	results := make([]analyzer.BatchResult, len(urls))
	for i, url := range urls {
		analysis, err := s.Analyze(ctx, url)
		results[i] = analyzer.BatchResult{URL: url, Analysis: analysis, Err: err}
	}
	return results
}

// stubNews serves fixed items or a fixed error
type stubNews struct {
	items []search.NewsItem
	err   error
}

func (s *stubNews) SearchByTopic(ctx context.Context, topic string, limit int) ([]search.NewsItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	if limit < len(s.items) {
		return s.items[:limit], nil
	}
	return s.items, nil
}

func (s *stubNews) TopHeadlines(ctx context.Context, category string, limit int) ([]search.NewsItem, error) {
	return s.SearchByTopic(ctx, category, limit)
}

// recordingNotifier records every analysis handed to it
type recordingNotifier struct {
	sent []model.AnalysisResult
}

func (n *recordingNotifier) SendAnalysis(ctx context.Context, analysis model.AnalysisResult) error {
	n.sent = append(n.sent, analysis)
	return nil
}

func newTestServer(t *testing.T, a AnalyzerService, news NewsSource) *Server {
	t.Helper()

	manager, err := cache.NewManager("memory", "", 1*time.Hour)
	if err != nil {
		t.Fatalf("Failed to create cache manager: %v", err)
	}

	return &Server{
		config: &config.Config{
			MaxBatchSize: 3,
			WatchTopics:  []string{"climate"},
		},
		analyzer:     a,
		news:         news,
		cacheManager: manager,
	}
}

func doRequest(t *testing.T, server *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	server.SetupRoutes().ServeHTTP(w, req)
	return w
}

func TestHealthHandler(t *testing.T) {
	server := newTestServer(t, &stubAnalyzer{}, &stubNews{})

	w := doRequest(t, server, "GET", "/api/v1/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", resp["status"])
	}
	if resp["version"] != Version {
		t.Errorf("Expected version %s, got %v", Version, resp["version"])
	}
}

func TestAnalyzeArticle(t *testing.T) {
	server := newTestServer(t, &stubAnalyzer{}, &stubNews{})
	url := "https://example.com/story"

	w := doRequest(t, server, "POST", "/api/v1/analyze/article", map[string]string{"url": url})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp model.AnalysisResult
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Article.URL != url {
		t.Errorf("Expected article URL %s, got %s", url, resp.Article.URL)
	}

	// Successful analysis lands in the cache
	cached, err := server.cacheManager.IsCached(context.Background(), url)
	if err != nil {
		t.Fatalf("Failed to check cache: %v", err)
	}
	if !cached {
		t.Error("Expected analysis to be cached after success")
	}
}

func TestAnalyzeArticleServedFromCache(t *testing.T) {
	failing := &stubAnalyzer{errs: map[string]error{
		"https://example.com/story": fmt.Errorf("pipeline should not run"),
	}}
	server := newTestServer(t, failing, &stubNews{})
	url := "https://example.com/story"

	seed := model.AnalysisResult{
		Article: model.Article{Title: "Cached", URL: url},
		Summary: model.Summary{Summary: "Cached summary"},
	}
	if err := server.cacheManager.SetAnalysis(context.Background(), url, seed); err != nil {
		t.Fatalf("Failed to seed cache: %v", err)
	}

	w := doRequest(t, server, "POST", "/api/v1/analyze/article", map[string]string{"url": url})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 from cache, got %d", w.Code)
	}

	var resp model.AnalysisResult
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Article.Title != "Cached" {
		t.Errorf("Expected cached result, got title %q", resp.Article.Title)
	}
	if failing.calls != 0 {
		t.Errorf("Expected analyzer to be skipped on cache hit, got %d calls", failing.calls)
	}
}

func TestAnalyzeArticleValidation(t *testing.T) {
	server := newTestServer(t, &stubAnalyzer{}, &stubNews{})

	tests := []struct {
		name string
		body interface{}
	}{
		{"missing url", map[string]string{}},
		{"relative url", map[string]string{"url": "/just/a/path"}},
		{"bad scheme", map[string]string{"url": "ftp://example.com/file"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			w := doRequest(t, server, "POST", "/api/v1/analyze/article", test.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", w.Code)
			}
		})
	}
}

func TestAnalyzeArticleScrapeFailure(t *testing.T) {
	url := "https://example.com/missing"
	server := newTestServer(t, &stubAnalyzer{errs: map[string]error{
		url: &scraper.ScrapeError{URL: url, Message: "unexpected status code: 404"},
	}}, &stubNews{})

	w := doRequest(t, server, "POST", "/api/v1/analyze/article", map[string]string{"url": url})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for scrape failure, got %d", w.Code)
	}
}

func TestAnalyzeArticleInternalFailure(t *testing.T) {
	url := "https://example.com/story"
	server := newTestServer(t, &stubAnalyzer{errs: map[string]error{
		url: fmt.Errorf("model unavailable"),
	}}, &stubNews{})

	w := doRequest(t, server, "POST", "/api/v1/analyze/article", map[string]string{"url": url})
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500 for pipeline failure, got %d", w.Code)
	}
}

func TestAnalyzeBatch(t *testing.T) {
	bad := "https://example.com/two"
	server := newTestServer(t, &stubAnalyzer{errs: map[string]error{
		bad: &scraper.ScrapeError{URL: bad, Message: "unexpected status code: 404"},
	}}, &stubNews{})

	urls := []string{"https://example.com/one", bad, "https://example.com/three"}
	w := doRequest(t, server, "POST", "/api/v1/analyze/batch", map[string]interface{}{"urls": urls})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		TotalRequested     int                 `json:"total_requested"`
		SuccessfulAnalyses int                 `json:"successful_analyses"`
		Results            []batchItemResponse `json:"results"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.TotalRequested != 3 {
		t.Errorf("Expected 3 requested, got %d", resp.TotalRequested)
	}
	if resp.SuccessfulAnalyses != 2 {
		t.Errorf("Expected 2 successful, got %d", resp.SuccessfulAnalyses)
	}
	if len(resp.Results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(resp.Results))
	}

	// Response preserves input order
	for i, res := range resp.Results {
		if res.URL != urls[i] {
			t.Errorf("Result %d: expected URL %s, got %s", i, urls[i], res.URL)
		}
	}
	if resp.Results[1].Error == "" {
		t.Error("Expected an inline error for the failed URL")
	}
	if resp.Results[1].Analysis != nil {
		t.Error("Expected no analysis for the failed URL")
	}
}

func TestAnalyzeBatchValidation(t *testing.T) {
	server := newTestServer(t, &stubAnalyzer{}, &stubNews{})

	tests := []struct {
		name string
		urls []string
	}{
		{"empty", []string{}},
		{"over limit", []string{
			"https://example.com/1",
			"https://example.com/2",
			"https://example.com/3",
			"https://example.com/4",
		}},
		{"invalid url", []string{"https://example.com/1", "not a url"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			w := doRequest(t, server, "POST", "/api/v1/analyze/batch", map[string]interface{}{"urls": test.urls})
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", w.Code)
			}
		})
	}
}

func TestSearchTopic(t *testing.T) {
	news := &stubNews{items: []search.NewsItem{
		{Title: "First", URL: "https://example.com/1"},
		{Title: "Second", URL: "https://example.com/2"},
	}}
	server := newTestServer(t, &stubAnalyzer{}, news)

	w := doRequest(t, server, "POST", "/api/v1/search/topic", map[string]interface{}{"topic": "climate", "limit": 2})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp struct {
		Topic        string            `json:"topic"`
		TotalResults int               `json:"total_results"`
		Articles     []search.NewsItem `json:"articles"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.Topic != "climate" {
		t.Errorf("Expected topic climate, got %s", resp.Topic)
	}
	if resp.TotalResults != 2 || len(resp.Articles) != 2 {
		t.Errorf("Expected 2 articles, got total=%d len=%d", resp.TotalResults, len(resp.Articles))
	}
}

func TestSearchTopicValidation(t *testing.T) {
	server := newTestServer(t, &stubAnalyzer{}, &stubNews{})

	w := doRequest(t, server, "POST", "/api/v1/search/topic", map[string]string{"topic": ""})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for empty topic, got %d", w.Code)
	}
}

func TestSearchTopicUpstreamFailure(t *testing.T) {
	news := &stubNews{err: &search.SearchError{API: "newsapi", Message: "apiKeyInvalid"}}
	server := newTestServer(t, &stubAnalyzer{}, news)

	w := doRequest(t, server, "POST", "/api/v1/search/topic", map[string]string{"topic": "climate"})
	if w.Code != http.StatusBadGateway {
		t.Errorf("Expected status 502 for upstream failure, got %d", w.Code)
	}
}

func TestHeadlines(t *testing.T) {
	news := &stubNews{items: []search.NewsItem{{Title: "Top", URL: "https://example.com/top"}}}
	server := newTestServer(t, &stubAnalyzer{}, news)

	w := doRequest(t, server, "GET", "/api/v1/headlines/technology", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp struct {
		Category     string            `json:"category"`
		TotalResults int               `json:"total_results"`
		Headlines    []search.NewsItem `json:"headlines"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.Category != "technology" {
		t.Errorf("Expected category technology, got %s", resp.Category)
	}
	if len(resp.Headlines) != 1 {
		t.Errorf("Expected 1 headline, got %d", len(resp.Headlines))
	}
}

func TestHeadlinesValidation(t *testing.T) {
	server := newTestServer(t, &stubAnalyzer{}, &stubNews{})

	tests := []struct {
		name string
		path string
	}{
		{"unknown category", "/api/v1/headlines/astrology"},
		{"limit too high", "/api/v1/headlines/science?limit=100"},
		{"limit not a number", "/api/v1/headlines/science?limit=ten"},
		{"limit zero", "/api/v1/headlines/science?limit=0"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			w := doRequest(t, server, "GET", test.path, nil)
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", w.Code)
			}
		})
	}
}

func TestCacheEndpoints(t *testing.T) {
	server := newTestServer(t, &stubAnalyzer{}, &stubNews{})
	ctx := context.Background()
	url := "https://example.com/story"

	if err := server.cacheManager.SetAnalysis(ctx, url, model.AnalysisResult{}); err != nil {
		t.Fatalf("Failed to seed cache: %v", err)
	}

	w := doRequest(t, server, "GET", "/api/v1/cache/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 for stats, got %d", w.Code)
	}

	var stats cache.Stats
	if err := json.NewDecoder(w.Body).Decode(&stats); err != nil {
		t.Fatalf("Failed to decode stats: %v", err)
	}
	if stats.TotalEntries != 1 {
		t.Errorf("Expected 1 entry, got %d", stats.TotalEntries)
	}

	w = doRequest(t, server, "DELETE", "/api/v1/cache/clear", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 for clear, got %d", w.Code)
	}

	cached, err := server.cacheManager.IsCached(ctx, url)
	if err != nil {
		t.Fatalf("Failed to check cache: %v", err)
	}
	if cached {
		t.Error("Expected cache to be empty after clear")
	}
}

func TestProcessWatchTopics(t *testing.T) {
	url := "https://example.com/watched"
	news := &stubNews{items: []search.NewsItem{{Title: "Watched", URL: url}}}
	pipeline := &stubAnalyzer{}
	notifier := &recordingNotifier{}

	server := newTestServer(t, pipeline, news)
	server.notifier = notifier

	ctx := context.Background()
	if err := server.ProcessWatchTopics(ctx); err != nil {
		t.Fatalf("ProcessWatchTopics failed: %v", err)
	}

	cached, err := server.cacheManager.IsCached(ctx, url)
	if err != nil {
		t.Fatalf("Failed to check cache: %v", err)
	}
	if !cached {
		t.Error("Expected watched article to be cached")
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(notifier.sent))
	}

	// Second run finds the article cached and does nothing new
	if err := server.ProcessWatchTopics(ctx); err != nil {
		t.Fatalf("ProcessWatchTopics failed: %v", err)
	}
	if pipeline.calls != 1 {
		t.Errorf("Expected cached article to be skipped, got %d analyze calls", pipeline.calls)
	}
	if len(notifier.sent) != 1 {
		t.Errorf("Expected no second notification, got %d", len(notifier.sent))
	}
}
