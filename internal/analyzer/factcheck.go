package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/newsfact/news-analyzer/internal/gemini"
	"github.com/newsfact/news-analyzer/internal/model"
	"github.com/newsfact/news-analyzer/internal/search"
)

// resultsPerClaim is how many search hits corroborate each claim
const resultsPerClaim = 3

// factCheck extracts checkable claims from the article and verifies each one
// against web search results. An article with no checkable claims yields an
// empty slice, not an error.
func (a *Analyzer) factCheck(ctx context.Context, article *model.Article) ([]model.FactCheck, error) {
	claims, err := a.extractClaims(ctx, article)
	if err != nil {
		return nil, err
	}

	factChecks := make([]model.FactCheck, 0, len(claims))
	for _, claim := range claims {
		check, err := a.verifyClaim(ctx, claim)
		if err != nil {
			return nil, err
		}
		factChecks = append(factChecks, *check)
	}

	return factChecks, nil
}

// extractClaims asks the model for up to maxClaims factual claims
func (a *Analyzer) extractClaims(ctx context.Context, article *model.Article) ([]string, error) {
	prompt := buildClaimsPrompt(article, a.maxClaims)

	for attempt := 0; attempt < 2; attempt++ {
		text, err := a.llm.GenerateText(ctx, prompt)
		if err != nil {
			return nil, err
		}

		raw, ok := gemini.ExtractJSON(text)
		if !ok {
			continue
		}

		var claims []string
		if err := json.Unmarshal([]byte(raw), &claims); err != nil {
			continue
		}

		cleaned := make([]string, 0, len(claims))
		for _, claim := range claims {
			if trimmed := strings.TrimSpace(claim); trimmed != "" {
				cleaned = append(cleaned, trimmed)
			}
		}
		if len(cleaned) > a.maxClaims {
			cleaned = cleaned[:a.maxClaims]
		}
		return cleaned, nil
	}

	return nil, &gemini.LLMError{Message: "unparsable claim extraction output"}
}

// verifyClaim searches for corroborating sources and asks the model for a
// verdict. A failed search degrades the claim to unverified instead of
// failing the whole article.
func (a *Analyzer) verifyClaim(ctx context.Context, claim string) (*model.FactCheck, error) {
	results, err := a.searcher.Search(ctx, claim, resultsPerClaim)
	if err != nil {
		return &model.FactCheck{
			Claim:              claim,
			VerificationStatus: model.StatusUnverified,
			Evidence:           []string{},
			ConfidenceScore:    0,
			Sources:            []string{},
		}, nil
	}

	prompt := buildVerificationPrompt(claim, results)

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
			VerificationStatus string   `json:"verification_status"`
			ConfidenceScore    float64  `json:"confidence_score"`
			Evidence           []string `json:"evidence"`
		}
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			continue
		}

		if parsed.Evidence == nil {
			parsed.Evidence = []string{}
		}

		return &model.FactCheck{
			Claim:              claim,
			VerificationStatus: model.ParseVerificationStatus(parsed.VerificationStatus),
			Evidence:           parsed.Evidence,
			ConfidenceScore:    model.ClampConfidence(parsed.ConfidenceScore),
			Sources:            resultDomains(results),
		}, nil
	}

	return nil, &gemini.LLMError{Message: "unparsable verification output"}
}

func buildClaimsPrompt(article *model.Article, maxClaims int) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Extract up to %d specific, checkable factual claims from this news article. ", maxClaims))
	b.WriteString("Respond with a JSON array of claim strings only. ")
	b.WriteString("If the article contains no checkable claims, respond with [].\n\n")

	b.WriteString(fmt.Sprintf("Title: %s\n", article.Title))
	b.WriteString(fmt.Sprintf("Content: %s\n", truncate(article.Content, maxPromptContent)))

	return b.String()
}

func buildVerificationPrompt(claim string, results []search.Result) string {
	var b strings.Builder

	b.WriteString("Assess this claim against the search results below. Respond with JSON only:\n\n")
	b.WriteString("{\n")
	b.WriteString("  \"verification_status\": \"verified | disputed | unverified | false\",\n")
	b.WriteString("  \"confidence_score\": 0.0,\n")
	b.WriteString("  \"evidence\": [\"supporting or contradicting evidence\"]\n")
	b.WriteString("}\n\n")
	b.WriteString("Use \"unverified\" when the results are ambiguous or insufficient.\n\n")

	b.WriteString(fmt.Sprintf("Claim: %s\n\n", claim))

	if len(results) == 0 {
		b.WriteString("Search results: none found\n")
		return b.String()
	}

	b.WriteString("Search results:\n")
	for i, r := range results {
		b.WriteString(fmt.Sprintf("%d. %s (%s): %s\n", i+1, r.Title, r.Link, r.Snippet))
	}

	return b.String()
}

func resultDomains(results []search.Result) []string {
	domains := make([]string, 0, len(results))
	seen := map[string]bool{}
	for _, r := range results {
		parsed, err := url.Parse(r.Link)
		if err != nil || parsed.Host == "" {
			continue
		}
		host := strings.TrimPrefix(parsed.Host, "www.")
		if !seen[host] {
			seen[host] = true
			domains = append(domains, host)
		}
	}
	return domains
}
