package domain

import (
	"encoding/json"
	"math"
	"time"
)

// Sentiment is binary. There is no neutral value.
type Sentiment string

const (
	SentimentBullish Sentiment = "Bullish"
	SentimentBearish Sentiment = "Bearish"
)

// ClassifySentiment is Bullish only for a strictly positive average.
func ClassifySentiment(avg float64) Sentiment {
	if avg > 0 {
		return SentimentBullish
	}
	return SentimentBearish
}

type SentimentResult struct {
	Ticker       string     `json:"ticker" validate:"required,ticker"`
	Sentiment    Sentiment  `json:"sentiment" validate:"oneof=Bullish Bearish"`
	Confidence   float64    `json:"confidence" validate:"gte=0,lte=1"`
	Rationale    string     `json:"rationale" validate:"required"`
	ArticleCount int        `json:"article_count" validate:"gte=0"`
	AverageScore float64    `json:"average_score"`
	Timestamp    time.Time  `json:"timestamp"`
	Error        *ErrorInfo `json:"error"`
}

func NewSentimentResult(ticker string, sentiment Sentiment, confidence float64, rationale string, articles int, avg float64, ts time.Time) (SentimentResult, error) {
	r := SentimentResult{
		Ticker:       ticker,
		Sentiment:    sentiment,
		Confidence:   roundTo(confidence, 2),
		Rationale:    rationale,
		ArticleCount: articles,
		AverageScore: roundTo(avg, 4),
		Timestamp:    ts.UTC(),
	}
	if err := checkStruct(CodeInternal, r); err != nil {
		return SentimentResult{}, err
	}
	return r, nil
}

func FailedSentiment(ticker string, err error, ts time.Time) SentimentResult {
	if err == nil {
		err = Internal(nil, "sentiment analysis failed")
	}
	return SentimentResult{Ticker: ticker, Timestamp: ts.UTC(), Error: InfoFromError(err)}
}

func (r SentimentResult) Failed() bool { return r.Error != nil }

func (r SentimentResult) MarshalJSON() ([]byte, error) {
	type wire struct {
		Ticker       string     `json:"ticker"`
		Sentiment    *Sentiment `json:"sentiment"`
		Confidence   *float64   `json:"confidence"`
		Rationale    *string    `json:"rationale"`
		ArticleCount *int       `json:"article_count"`
		AverageScore *float64   `json:"average_score"`
		Timestamp    time.Time  `json:"timestamp"`
		Error        *ErrorInfo `json:"error"`
	}
	w := wire{Ticker: r.Ticker, Timestamp: r.Timestamp, Error: r.Error}
	if r.Error == nil {
		w.Sentiment = &r.Sentiment
		w.Confidence = &r.Confidence
		w.Rationale = &r.Rationale
		w.ArticleCount = &r.ArticleCount
		w.AverageScore = &r.AverageScore
	}
	return json.Marshal(w)
}

// SentimentConfidence is 0.5 boosted by signal strength and article volume,
// capped at 0.95.
func SentimentConfidence(avg float64, articles int) float64 {
	volume := math.Min(float64(articles)/10, 1)
	return math.Min(0.95, 0.5+0.3*math.Abs(avg)+0.15*volume)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 { return roundTo(v, 2) }
