package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"github.com/newsfact/news-analyzer/internal/model"
	"github.com/newsfact/news-analyzer/internal/scraper"
)

// validCategories accepted by the headlines endpoint
var validCategories = map[string]bool{
	"general":       true,
	"business":      true,
	"entertainment": true,
	"health":        true,
	"science":       true,
	"sports":        true,
	"technology":    true,
}

const maxHeadlines = 50

type analyzeArticleRequest struct {
	URL string `json:"url"`
}

// analyzeArticleHandler runs the full pipeline for one article URL
func (s *Server) analyzeArticleHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req analyzeArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !isValidURL(req.URL) {
		writeError(w, http.StatusBadRequest, "A valid http(s) url is required")
		return
	}

	// Serve from cache when a fresh analysis exists
	if cached, err := s.cacheManager.GetAnalysis(ctx, req.URL); err == nil {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	analysis, err := s.analyzer.Analyze(ctx, req.URL)
	if err != nil {
		var scrapeErr *scraper.ScrapeError
		if errors.As(err, &scrapeErr) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to scrape article: %v", err))
			return
		}
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Analysis failed: %v", err))
		return
	}

	if err := s.cacheManager.SetAnalysis(ctx, req.URL, *analysis); err != nil {
		log.Printf("Error caching analysis for %s: %v", req.URL, err)
	}

	writeJSON(w, http.StatusOK, analysis)
}

type analyzeBatchRequest struct {
	URLs []string `json:"urls"`
}

type batchItemResponse struct {
	URL      string                `json:"url"`
	Analysis *model.AnalysisResult `json:"analysis,omitempty"`
	Error    string                `json:"error,omitempty"`
}

// analyzeBatchHandler analyzes multiple articles concurrently.
// The response preserves input order; per-item failures are reported inline.
func (s *Server) analyzeBatchHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req analyzeBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.URLs) == 0 {
		writeError(w, http.StatusBadRequest, "At least one url is required")
		return
	}
	if len(req.URLs) > s.config.MaxBatchSize {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Maximum %d articles allowed per batch", s.config.MaxBatchSize))
		return
	}
	for _, u := range req.URLs {
		if !isValidURL(u) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid url: %s", u))
			return
		}
	}

	results := s.analyzer.AnalyzeBatch(ctx, req.URLs)

	items := make([]batchItemResponse, len(results))
	successful := 0
	for i, res := range results {
		items[i] = batchItemResponse{URL: res.URL, Analysis: res.Analysis}
		if res.Err != nil {
			items[i].Error = res.Err.Error()
			continue
		}
		successful++
		if err := s.cacheManager.SetAnalysis(ctx, res.URL, *res.Analysis); err != nil {
			log.Printf("Error caching analysis for %s: %v", res.URL, err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total_requested":     len(req.URLs),
		"successful_analyses": successful,
		"results":             items,
	})
}

type searchTopicRequest struct {
	Topic string `json:"topic"`
	Limit int    `json:"limit"`
}

// searchTopicHandler returns article metadata for a topic without analysis
func (s *Server) searchTopicHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req searchTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Topic == "" {
		writeError(w, http.StatusBadRequest, "Topic is required")
		return
	}
	if req.Limit <= 0 {
		req.Limit = 5
	}

	articles, err := s.news.SearchByTopic(ctx, req.Topic, req.Limit)
	if err != nil {
		writeError(w, http.StatusBadGateway, fmt.Sprintf("Failed to search news: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"topic":         req.Topic,
		"total_results": len(articles),
		"articles":      articles,
	})
}

// headlinesHandler returns top headlines for a category
func (s *Server) headlinesHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	category := mux.Vars(r)["category"]
	if !validCategories[category] {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid category: %s", category))
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &limit); err != nil || limit <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
	}
	if limit > maxHeadlines {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Maximum %d headlines allowed", maxHeadlines))
		return
	}

	headlines, err := s.news.TopHeadlines(ctx, category, limit)
	if err != nil {
		writeError(w, http.StatusBadGateway, fmt.Sprintf("Failed to get headlines: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"category":      category,
		"total_results": len(headlines),
		"headlines":     headlines,
	})
}

// cacheStatsHandler returns cache statistics
func (s *Server) cacheStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := s.cacheManager.GetStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error getting cache stats: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// cacheClearHandler removes all cached analyses
func (s *Server) cacheClearHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.cacheManager.Clear(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error clearing cache: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func isValidURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
