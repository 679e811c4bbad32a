package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/newsfact/news-analyzer/internal/model"
)

// Client posts analysis notifications to Slack
type Client struct {
	botToken   string
	channel    string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Slack client
func NewClient(botToken, channel string) *Client {
	return &Client{
		botToken: botToken,
		channel:  channel,
		baseURL:  "https://slack.com/api",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ChatPostMessageRequest represents a Slack chat.postMessage request
type ChatPostMessageRequest struct {
	Channel   string `json:"channel"`
	Text      string `json:"text"`
	Username  string `json:"username,omitempty"`
	IconEmoji string `json:"icon_emoji,omitempty"`
}

// SendAnalysis posts a finished article analysis to the configured channel
func (c *Client) SendAnalysis(ctx context.Context, analysis model.AnalysisResult) error {
	return c.sendMessage(ctx, formatAnalysisMessage(analysis), c.channel)
}

// SendSimpleMessage sends a simple text message to Slack
func (c *Client) SendSimpleMessage(ctx context.Context, text string) error {
	return c.sendMessage(ctx, text, c.channel)
}

func formatAnalysisMessage(analysis model.AnalysisResult) string {
	var checks []string
	for _, fc := range analysis.FactChecks {
		checks = append(checks, fmt.Sprintf("• %s: %s (%.2f)", fc.Claim, fc.VerificationStatus, fc.ConfidenceScore))
	}
	checkBlock := "No checkable claims found."
	if len(checks) > 0 {
		checkBlock = strings.Join(checks, "\n")
	}

	return fmt.Sprintf(`*%s*
Source: %s
URL: %s

%s

Credibility: %.0f/100 (%s)
%s`,
		analysis.Article.Title,
		analysis.Article.Source,
		analysis.Article.URL,
		analysis.Summary.Summary,
		analysis.CredibilityScore,
		analysis.OverallAssessment,
		checkBlock)
}

// sendMessage sends a message to the specified Slack channel
func (c *Client) sendMessage(ctx context.Context, text string, channel string) error {
	req := ChatPostMessageRequest{
		Channel:   channel,
		Text:      text,
		Username:  "News Analyzer",
		IconEmoji: ":newspaper:",
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshaling message: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat.postMessage", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+c.botToken)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack API returned status %d", resp.StatusCode)
	}

	var slackResp struct {
		OK    bool   `json:"ok"`
		Error string `json:"error,omitempty"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&slackResp); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	if !slackResp.OK {
		return fmt.Errorf("slack API error: %s", slackResp.Error)
	}

	return nil
}
