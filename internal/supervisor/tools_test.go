package supervisor

import (
	"testing"

	"trading-supervisor/internal/domain"
)

func TestSelectTools(t *testing.T) {
	both := domain.ToolSet{Technical: true, Sentiment: true}
	tests := []struct {
		query string
		want  domain.ToolSet
	}{
		{"What is the RSI for TSLA?", domain.ToolSet{Technical: true}},
		{"Is NVDA overbought on the chart", domain.ToolSet{Technical: true}},
		{"What's the news on AAPL", domain.ToolSet{Sentiment: true}},
		{"Market Sentiment for MSFT", domain.ToolSet{Sentiment: true}},
		{"Should I buy AAPL?", both},
		{"AAPL price and news", both},
		{"BULLISH on AMD momentum?", both},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := SelectTools(tt.query)
			if got != tt.want {
				t.Fatalf("SelectTools(%q) = %+v, want %+v", tt.query, got, tt.want)
			}
			if got.Empty() {
				t.Fatal("selection must never be empty")
			}
		})
	}
}
