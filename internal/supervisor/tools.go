package supervisor

import (
	"strings"

	"trading-supervisor/internal/domain"
)

var technicalKeywords = []string{
	"rsi", "technical", "price", "momentum", "overbought", "oversold",
	"indicator", "chart", "trend", "support", "resistance",
}

var sentimentKeywords = []string{
	"sentiment", "news", "bullish", "bearish", "opinion", "feeling",
	"market sentiment", "buzz", "hype", "pessimistic", "optimistic",
}

// SelectTools picks the analysis tools a query asks for. A query that names
// only one kind of analysis gets that tool; anything else gets both.
func SelectTools(query string) domain.ToolSet {
	lower := strings.ToLower(query)
	technical := containsAny(lower, technicalKeywords)
	sentiment := containsAny(lower, sentimentKeywords)

	switch {
	case technical && !sentiment:
		return domain.ToolSet{Technical: true}
	case sentiment && !technical:
		return domain.ToolSet{Sentiment: true}
	default:
		return domain.ToolSet{Technical: true, Sentiment: true}
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
