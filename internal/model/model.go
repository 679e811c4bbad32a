package model

import (
	"strings"
	"time"
)

// Article represents a scraped news article
type Article struct {
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Content     string     `json:"content"`
	Author      string     `json:"author,omitempty"`
	PublishDate *time.Time `json:"publish_date,omitempty"`
	Source      string     `json:"source"`
}

// Sentiment classifies the overall tone of an article
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// ParseSentiment maps free-form model output onto the sentiment set.
// Anything unrecognized becomes neutral.
func ParseSentiment(s string) Sentiment {
	switch Sentiment(normalize(s)) {
	case SentimentPositive:
		return SentimentPositive
	case SentimentNegative:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// Summary represents the summarization result for one article
type Summary struct {
	OriginalTitle string    `json:"original_title"`
	Summary       string    `json:"summary"`
	KeyPoints     []string  `json:"key_points"`
	Sentiment     Sentiment `json:"sentiment"`
}

// VerificationStatus is the outcome of checking a single claim
type VerificationStatus string

const (
	StatusVerified   VerificationStatus = "verified"
	StatusDisputed   VerificationStatus = "disputed"
	StatusUnverified VerificationStatus = "unverified"
	StatusFalse      VerificationStatus = "false"
)

// ParseVerificationStatus maps free-form model output onto the status set.
// Ambiguous or unrecognized verdicts default to unverified.
func ParseVerificationStatus(s string) VerificationStatus {
	switch VerificationStatus(normalize(s)) {
	case StatusVerified:
		return StatusVerified
	case StatusDisputed:
		return StatusDisputed
	case StatusFalse:
		return StatusFalse
	default:
		return StatusUnverified
	}
}

// FactCheck represents one claim extracted from an article and its verdict
type FactCheck struct {
	Claim              string             `json:"claim"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	Evidence           []string           `json:"evidence"`
	ConfidenceScore    float64            `json:"confidence_score"`
	Sources            []string           `json:"sources"`
}

// AnalysisResult aggregates everything the pipeline produced for one article
type AnalysisResult struct {
	Article           Article     `json:"article"`
	Summary           Summary     `json:"summary"`
	FactChecks        []FactCheck `json:"fact_checks"`
	CredibilityScore  float64     `json:"credibility_score"`
	OverallAssessment string      `json:"overall_assessment"`
	ProcessingTimeMs  int64       `json:"processing_time_ms"`
}

// ClampConfidence forces a confidence score into [0, 1]
func ClampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ClampScore forces a credibility score into [0, 100]
func ClampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func normalize(s string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(s), `"`))
}
