package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/newsfact/news-analyzer/internal/analyzer"
	"github.com/newsfact/news-analyzer/internal/cache"
	"github.com/newsfact/news-analyzer/internal/config"
	"github.com/newsfact/news-analyzer/internal/gemini"
	"github.com/newsfact/news-analyzer/internal/model"
	"github.com/newsfact/news-analyzer/internal/scraper"
	"github.com/newsfact/news-analyzer/internal/search"
	"github.com/newsfact/news-analyzer/internal/slack"
)

// Version reported by the health endpoint
const Version = "1.0.0"

// AnalyzerService runs the analysis pipeline
type AnalyzerService interface {
	Analyze(ctx context.Context, url string) (*model.AnalysisResult, error)
	AnalyzeBatch(ctx context.Context, urls []string) []analyzer.BatchResult
}

// NewsSource provides topic search and headline listings
type NewsSource interface {
	SearchByTopic(ctx context.Context, topic string, limit int) ([]search.NewsItem, error)
	TopHeadlines(ctx context.Context, category string, limit int) ([]search.NewsItem, error)
}

// Notifier delivers finished analyses to an external channel
type Notifier interface {
	SendAnalysis(ctx context.Context, analysis model.AnalysisResult) error
}

// Server holds the HTTP server and its dependencies
type Server struct {
	config       *config.Config
	analyzer     AnalyzerService
	news         NewsSource
	cacheManager *cache.Manager
	notifier     Notifier // nil when Slack is not configured
}

// NewServer creates a new HTTP server with production clients
func NewServer(cfg *config.Config) (*Server, error) {
	cacheManager, err := cache.NewManager(cfg.CacheType, cfg.CacheBucket, time.Duration(cfg.CacheDuration)*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("creating cache manager: %w", err)
	}

	pipeline := analyzer.New(
		scraper.NewClient(),
		search.NewSerperClient(cfg.SerperAPIKey),
		gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel),
		analyzer.Options{
			MaxClaims:     cfg.MaxClaimsPerArticle,
			MaxConcurrent: cfg.MaxConcurrentRequests,
		},
	)

	var notifier Notifier
	if cfg.SlackBotToken != "" {
		notifier = slack.NewClient(cfg.SlackBotToken, cfg.SlackChannel)
	}

	return &Server{
		config:       cfg,
		analyzer:     pipeline,
		news:         search.NewNewsAPIClient(cfg.NewsAPIKey),
		cacheManager: cacheManager,
		notifier:     notifier,
	}, nil
}

// SetupRoutes configures HTTP routes
func (s *Server) SetupRoutes() *mux.Router {
	r := mux.NewRouter()

	// API routes
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(s.corsMiddleware)
	api.Use(s.loggingMiddleware)

	// Health check
	api.HandleFunc("/health", s.healthHandler).Methods("GET")

	// Analysis operations
	api.HandleFunc("/analyze/article", s.analyzeArticleHandler).Methods("POST")
	api.HandleFunc("/analyze/batch", s.analyzeBatchHandler).Methods("POST")

	// Topic search and headlines
	api.HandleFunc("/search/topic", s.searchTopicHandler).Methods("POST")
	api.HandleFunc("/headlines/{category}", s.headlinesHandler).Methods("GET")

	// Cache operations
	api.HandleFunc("/cache/stats", s.cacheStatsHandler).Methods("GET")
	api.HandleFunc("/cache/clear", s.cacheClearHandler).Methods("DELETE")

	return r
}

// healthHandler provides health check endpoint
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
		"version":   Version,
		"service":   "news-analyzer",
	})
}

// ProcessWatchTopics analyzes the freshest article for each configured
// watch topic so its result is warm in the cache. Called on a schedule.
func (s *Server) ProcessWatchTopics(ctx context.Context) error {
	for _, topic := range s.config.WatchTopics {
		items, err := s.news.SearchByTopic(ctx, topic, 1)
		if err != nil {
			log.Printf("Watch topic %q: search failed: %v", topic, err)
			continue
		}
		if len(items) == 0 {
			continue
		}

		url := items[0].URL
		if cached, err := s.cacheManager.IsCached(ctx, url); err == nil && cached {
			continue
		}

		analysis, err := s.analyzer.Analyze(ctx, url)
		if err != nil {
			log.Printf("Watch topic %q: analysis of %s failed: %v", topic, url, err)
			continue
		}

		if err := s.cacheManager.SetAnalysis(ctx, url, *analysis); err != nil {
			log.Printf("Watch topic %q: caching %s failed: %v", topic, url, err)
		}

		if s.notifier != nil {
			if err := s.notifier.SendAnalysis(ctx, *analysis); err != nil {
				log.Printf("Watch topic %q: notification failed: %v", topic, err)
			}
		}
	}
	return nil
}

// Middleware functions

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap the ResponseWriter to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		log.Printf("%s %s %d %v", r.Method, r.URL.Path, wrapped.statusCode, duration)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]interface{}{
		"error":       message,
		"status_code": statusCode,
	})
}
