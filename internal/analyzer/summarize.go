package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/newsfact/news-analyzer/internal/gemini"
	"github.com/newsfact/news-analyzer/internal/model"
)

// maxPromptContent caps how much article text is sent per prompt
const maxPromptContent = 12000

// summarize asks the model for a summary, key points, and sentiment.
// Malformed JSON gets one retry before giving up.
func (a *Analyzer) summarize(ctx context.Context, article *model.Article) (*model.Summary, error) {
	prompt := buildSummaryPrompt(article)

	for attempt := 0; attempt < 2; attempt++ {
		text, err := a.llm.GenerateText(ctx, prompt)
		if err != nil {
			return nil, err
		}

		raw, ok := gemini.ExtractJSON(text)
		if !ok {
			continue
		}

		var parsed struct {
			Summary   string   `json:"summary"`
			KeyPoints []string `json:"key_points"`
			Sentiment string   `json:"sentiment"`
		}
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			continue
		}
		if parsed.Summary == "" {
			continue
		}

		if parsed.KeyPoints == nil {
			parsed.KeyPoints = []string{}
		}

		return &model.Summary{
			OriginalTitle: article.Title,
			Summary:       parsed.Summary,
			KeyPoints:     parsed.KeyPoints,
			Sentiment:     model.ParseSentiment(parsed.Sentiment),
		}, nil
	}

	return nil, &gemini.LLMError{Message: "unparsable summarization output"}
}

func buildSummaryPrompt(article *model.Article) string {
	var b strings.Builder

	b.WriteString("Summarize the following news article. Respond with JSON only, in this exact shape:\n\n")
	b.WriteString("{\n")
	b.WriteString("  \"summary\": \"concise summary, 2-3 sentences\",\n")
	b.WriteString("  \"key_points\": [\"point 1\", \"point 2\", \"point 3\"],\n")
	b.WriteString("  \"sentiment\": \"positive | negative | neutral\"\n")
	b.WriteString("}\n\n")

	b.WriteString(fmt.Sprintf("Title: %s\n", article.Title))
	b.WriteString(fmt.Sprintf("Content: %s\n", truncate(article.Content, maxPromptContent)))

	return b.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
