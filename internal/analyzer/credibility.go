package analyzer

import (
	"fmt"
	"strings"

	"github.com/newsfact/news-analyzer/internal/model"
)

// Weights for combining source reputation with fact-check support.
// Internal heuristic, not part of the API contract.
const (
	reputationWeight   = 0.4
	verificationWeight = 0.6
	defaultReputation  = 50.0
)

// sourceReputation is a static lookup of baseline scores per source domain
var sourceReputation = map[string]float64{
	"reuters.com":        90,
	"apnews.com":         90,
	"bbc.com":            85,
	"bbc.co.uk":          85,
	"npr.org":            85,
	"nytimes.com":        80,
	"washingtonpost.com": 80,
	"theguardian.com":    80,
	"wsj.com":            80,
	"economist.com":      80,
	"aljazeera.com":      75,
	"cnn.com":            70,
	"cnbc.com":           70,
	"foxnews.com":        60,
	"nypost.com":         50,
	"dailymail.co.uk":    40,
	"thesun.co.uk":       35,
	"infowars.com":       10,
}

// scoreCredibility combines source reputation with the fraction of
// supported fact checks. With no fact checks the reputation stands alone.
// The result is always within [0, 100].
func scoreCredibility(article *model.Article, factChecks []model.FactCheck) (float64, string) {
	reputation := lookupReputation(article.Source)

	score := reputation
	if len(factChecks) > 0 {
		support := 0.0
		for _, check := range factChecks {
			switch check.VerificationStatus {
			case model.StatusVerified:
				support += 1.0
			case model.StatusUnverified:
				support += 0.5
			case model.StatusDisputed:
				support += 0.25
			case model.StatusFalse:
				// no credit
			}
		}
		supportedFraction := support / float64(len(factChecks))
		score = reputationWeight*reputation + verificationWeight*supportedFraction*100
	}

	score = model.ClampScore(score)
	return score, assess(score, len(factChecks))
}

func lookupReputation(source string) float64 {
	source = strings.TrimPrefix(strings.ToLower(source), "www.")
	if rep, ok := sourceReputation[source]; ok {
		return rep
	}
	return defaultReputation
}

func assess(score float64, checkedClaims int) string {
	var band string
	switch {
	case score >= 80:
		band = "Highly credible"
	case score >= 60:
		band = "Generally credible"
	case score >= 40:
		band = "Questionable"
	default:
		band = "Low credibility"
	}

	if checkedClaims == 0 {
		return fmt.Sprintf("%s based on source reputation; no checkable claims were found.", band)
	}
	return fmt.Sprintf("%s based on source reputation and %d fact-checked claim(s).", band, checkedClaims)
}
