package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// SearchError represents a search API failure
type SearchError struct {
	API     string
	Message string
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("%s: %s", e.API, e.Message)
}

// Result represents one web search hit
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// SerperClient queries the Serper web search API
type SerperClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewSerperClient creates a new Serper client
func NewSerperClient(apiKey string) *SerperClient {
	return &SerperClient{
		apiKey:  apiKey,
		baseURL: "https://google.serper.dev/search",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type serperRequest struct {
	Query string `json:"q"`
	Num   int    `json:"num"`
}

type serperResponse struct {
	Organic []Result `json:"organic"`
}

// Search returns up to limit organic results for the query
func (c *SerperClient) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 5
	}

	body, err := json.Marshal(serperRequest{Query: query, Num: limit})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &SearchError{API: "serper", Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &SearchError{API: "serper", Message: fmt.Sprintf("status %d: %s", resp.StatusCode, string(bodyBytes))}
	}

	var parsed serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &SearchError{API: "serper", Message: fmt.Sprintf("decoding response: %v", err)}
	}

	if len(parsed.Organic) > limit {
		parsed.Organic = parsed.Organic[:limit]
	}
	return parsed.Organic, nil
}

// NewsItem represents article metadata returned by the News API
type NewsItem struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"`
	Author      string `json:"author"`
}

// NewsAPIClient queries newsapi.org for topic search and headlines
type NewsAPIClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewNewsAPIClient creates a new News API client
func NewNewsAPIClient(apiKey string) *NewsAPIClient {
	return &NewsAPIClient{
		apiKey:  apiKey,
		baseURL: "https://newsapi.org/v2",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Description string `json:"description"`
		Author      string `json:"author"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// SearchByTopic returns up to limit recent articles matching the topic
func (c *NewsAPIClient) SearchByTopic(ctx context.Context, topic string, limit int) ([]NewsItem, error) {
	params := url.Values{
		"q":        {topic},
		"sortBy":   {"publishedAt"},
		"language": {"en"},
		"pageSize": {strconv.Itoa(limit)},
	}
	return c.fetch(ctx, "/everything", params)
}

// TopHeadlines returns up to limit headlines for the category
func (c *NewsAPIClient) TopHeadlines(ctx context.Context, category string, limit int) ([]NewsItem, error) {
	params := url.Values{
		"category": {category},
		"country":  {"us"},
		"pageSize": {strconv.Itoa(limit)},
	}
	return c.fetch(ctx, "/top-headlines", params)
}

func (c *NewsAPIClient) fetch(ctx context.Context, path string, params url.Values) ([]NewsItem, error) {
	params.Set("apiKey", c.apiKey)
	endpoint := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &SearchError{API: "newsapi", Message: err.Error()}
	}
	defer resp.Body.Close()

	var parsed newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &SearchError{API: "newsapi", Message: fmt.Sprintf("decoding response: %v", err)}
	}

	if parsed.Status != "ok" {
		message := parsed.Message
		if message == "" {
			message = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, &SearchError{API: "newsapi", Message: message}
	}

	items := make([]NewsItem, 0, len(parsed.Articles))
	for _, a := range parsed.Articles {
		if a.URL == "" {
			continue
		}
		items = append(items, NewsItem{
			Title:       a.Title,
			URL:         a.URL,
			Description: a.Description,
			Source:      a.Source.Name,
			PublishedAt: a.PublishedAt,
			Author:      a.Author,
		})
	}
	return items, nil
}
