package domain

import "time"

// PricePoint is one daily close.
type PricePoint struct {
	Time  time.Time `json:"time"`
	Close float64   `json:"close"`
}

func Closes(points []PricePoint) []float64 {
	out := make([]float64, 0, len(points))
	for _, p := range points {
		out = append(out, p.Close)
	}
	return out
}

// NewsArticle is a news item with per-ticker sentiment annotations.
type NewsArticle struct {
	Title          string            `json:"title"`
	URL            string            `json:"url"`
	Source         string            `json:"source"`
	PublishedAt    time.Time         `json:"published_at"`
	TickerMentions []TickerSentiment `json:"ticker_sentiment"`
}

// TickerSentiment scores one ticker inside an article: Score in [-1,1],
// Relevance in [0,1].
type TickerSentiment struct {
	Ticker    string  `json:"ticker"`
	Score     float64 `json:"score"`
	Relevance float64 `json:"relevance"`
}
