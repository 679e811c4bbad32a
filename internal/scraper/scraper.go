package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/newsfact/news-analyzer/internal/model"
)

// ScrapeError represents a failure to retrieve or extract an article
type ScrapeError struct {
	URL     string
	Message string
}

func (e *ScrapeError) Error() string {
	return fmt.Sprintf("scraping %s: %s", e.URL, e.Message)
}

// dateLayouts are tried in order when parsing publish date metadata
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
}

// Client fetches article pages and extracts readable content
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a new scraper client
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent: "Mozilla/5.0 (X11; Linux x86_64) news-analyzer/1.0",
	}
}

// ScrapeArticle fetches the page at rawURL and extracts an Article.
// A single attempt is made; unreachable pages, non-HTML responses, and
// pages with no extractable text all return a ScrapeError.
func (c *Client) ScrapeArticle(ctx context.Context, rawURL string) (*model.Article, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &ScrapeError{URL: rawURL, Message: "invalid URL"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &ScrapeError{URL: rawURL, Message: err.Error()}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ScrapeError{URL: rawURL, Message: fmt.Sprintf("fetching page: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ScrapeError{URL: rawURL, Message: fmt.Sprintf("unexpected status code: %d", resp.StatusCode)}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "html") {
		return nil, &ScrapeError{URL: rawURL, Message: fmt.Sprintf("not an HTML page: %s", contentType)}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &ScrapeError{URL: rawURL, Message: fmt.Sprintf("parsing HTML: %v", err)}
	}

	// The final URL after redirects decides the source domain
	finalURL := rawURL
	host := parsed.Host
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
		host = resp.Request.URL.Host
	}

	content := extractText(doc)
	if content == "" {
		return nil, &ScrapeError{URL: rawURL, Message: "no extractable article text"}
	}

	title := extractTitle(doc)
	if title == "" {
		title = host
	}

	return &model.Article{
		Title:       title,
		URL:         finalURL,
		Content:     content,
		Author:      extractAuthor(doc),
		PublishDate: extractPublishDate(doc),
		Source:      strings.TrimPrefix(host, "www."),
	}, nil
}

func extractTitle(doc *goquery.Document) string {
	if v, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if v := strings.TrimSpace(doc.Find("title").First().Text()); v != "" {
		return v
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

func extractAuthor(doc *goquery.Document) string {
	if v, ok := doc.Find(`meta[name="author"]`).Attr("content"); ok {
		return strings.TrimSpace(v)
	}
	if v, ok := doc.Find(`meta[property="article:author"]`).Attr("content"); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func extractPublishDate(doc *goquery.Document) *time.Time {
	candidates := []string{}
	if v, ok := doc.Find(`meta[property="article:published_time"]`).Attr("content"); ok {
		candidates = append(candidates, v)
	}
	if v, ok := doc.Find(`meta[name="date"]`).Attr("content"); ok {
		candidates = append(candidates, v)
	}
	if v, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		candidates = append(candidates, v)
	}

	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, candidate); err == nil {
				return &t
			}
		}
	}
	return nil
}

// extractText pulls paragraph text, preferring the <article> element when present
func extractText(doc *goquery.Document) string {
	doc.Find("script, style, nav, footer, aside").Remove()

	paragraphs := doc.Find("article p")
	if paragraphs.Length() == 0 {
		paragraphs = doc.Find("p")
	}

	var parts []string
	paragraphs.Each(func(_ int, s *goquery.Selection) {
		text := strings.Join(strings.Fields(s.Text()), " ")
		if text != "" {
			parts = append(parts, text)
		}
	})

	return strings.Join(parts, "\n\n")
}
