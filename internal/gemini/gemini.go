package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// LLMError represents a completion failure or unparsable model output
type LLMError struct {
	Message string
}

func (e *LLMError) Error() string {
	return "llm: " + e.Message
}

// Client handles Gemini API operations
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new Gemini API client
func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: "https://generativelanguage.googleapis.com/v1beta/models",
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// geminiRequest represents the request structure for Gemini API
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// geminiResponse represents the response structure from Gemini API
type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

// GenerateText sends a prompt to the Gemini API and returns the completion text
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	geminiReq := geminiRequest{
		Contents: []geminiContent{
			{
				Parts: []geminiPart{
					{Text: prompt},
				},
			},
		},
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	body, err := json.Marshal(geminiReq)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &LLMError{Message: fmt.Sprintf("sending request: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", &LLMError{Message: fmt.Sprintf("API request failed with status %d: %s", resp.StatusCode, string(bodyBytes))}
	}

	var geminiResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return "", &LLMError{Message: fmt.Sprintf("decoding response: %v", err)}
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", &LLMError{Message: "no content in response"}
	}

	return geminiResp.Candidates[0].Content.Parts[0].Text, nil
}

// ExtractJSON pulls the first JSON object or array out of a model completion.
// Models often wrap JSON in prose or markdown fences.
func ExtractJSON(text string) (string, bool) {
	text = stripFences(text)

	objStart := strings.Index(text, "{")
	arrStart := strings.Index(text, "[")

	start, closer := objStart, "}"
	if arrStart != -1 && (objStart == -1 || arrStart < objStart) {
		start, closer = arrStart, "]"
	}

	if start == -1 {
		return "", false
	}

	end := strings.LastIndex(text, closer)
	if end <= start {
		return "", false
	}

	return text[start : end+1], true
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		if idx := strings.Index(text, "\n"); idx != -1 {
			text = text[idx+1:]
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	return text
}
