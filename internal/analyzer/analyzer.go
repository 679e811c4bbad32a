package analyzer

import (
	"context"
	"time"

	"github.com/newsfact/news-analyzer/internal/model"
	"github.com/newsfact/news-analyzer/internal/search"
)

// Fetcher retrieves and extracts an article from a URL
type Fetcher interface {
	ScrapeArticle(ctx context.Context, url string) (*model.Article, error)
}

// Searcher returns web search results for a query
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]search.Result, error)
}

// Completer turns a prompt into LLM completion text
type Completer interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Analyzer orchestrates the scrape -> summarize -> fact-check -> score pipeline
type Analyzer struct {
	fetcher       Fetcher
	searcher      Searcher
	llm           Completer
	maxClaims     int
	maxConcurrent int
}

// Options tunes pipeline behavior
type Options struct {
	MaxClaims     int // claims extracted per article (default 3)
	MaxConcurrent int // concurrent pipelines in batch mode (default 5)
}

// New creates an analyzer from its three capabilities
func New(fetcher Fetcher, searcher Searcher, llm Completer, opts Options) *Analyzer {
	if opts.MaxClaims <= 0 {
		opts.MaxClaims = 3
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 5
	}
	return &Analyzer{
		fetcher:       fetcher,
		searcher:      searcher,
		llm:           llm,
		maxClaims:     opts.MaxClaims,
		maxConcurrent: opts.MaxConcurrent,
	}
}

// Analyze runs the full pipeline for a single article URL
func (a *Analyzer) Analyze(ctx context.Context, url string) (*model.AnalysisResult, error) {
	start := time.Now()

	article, err := a.fetcher.ScrapeArticle(ctx, url)
	if err != nil {
		return nil, err
	}

	summary, err := a.summarize(ctx, article)
	if err != nil {
		return nil, err
	}

	factChecks, err := a.factCheck(ctx, article)
	if err != nil {
		return nil, err
	}

	score, assessment := scoreCredibility(article, factChecks)

	return &model.AnalysisResult{
		Article:           *article,
		Summary:           *summary,
		FactChecks:        factChecks,
		CredibilityScore:  score,
		OverallAssessment: assessment,
		ProcessingTimeMs:  time.Since(start).Milliseconds(),
	}, nil
}

// BatchResult pairs one input URL with its outcome
type BatchResult struct {
	URL      string
	Analysis *model.AnalysisResult
	Err      error
}

// AnalyzeBatch runs the pipeline for each URL concurrently. The returned
// slice has exactly one entry per input URL, in input order; a failed
// article carries its error and never affects the others.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, urls []string) []BatchResult {
	type indexed struct {
		index  int
		result BatchResult
	}

	semaphore := make(chan struct{}, a.maxConcurrent)
	results := make(chan indexed, len(urls))

	for i, url := range urls {
		go func(index int, url string) {
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			analysis, err := a.Analyze(ctx, url)
			results <- indexed{index: index, result: BatchResult{URL: url, Analysis: analysis, Err: err}}
		}(i, url)
	}

	ordered := make([]BatchResult, len(urls))
	for i := 0; i < len(urls); i++ {
		res := <-results
		ordered[res.index] = res.result
	}

	return ordered
}
