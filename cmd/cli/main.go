package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/newsfact/news-analyzer/internal/analyzer"
	"github.com/newsfact/news-analyzer/internal/config"
	"github.com/newsfact/news-analyzer/internal/gemini"
	"github.com/newsfact/news-analyzer/internal/scraper"
	"github.com/newsfact/news-analyzer/internal/search"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <article-url>\n", os.Args[0])
		os.Exit(1)
	}
	url := os.Args[1]

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
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

	analysis, err := pipeline.Analyze(context.Background(), url)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	out, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		log.Fatalf("Encoding result failed: %v", err)
	}
	fmt.Println(string(out))
}
