package domain

import (
	"encoding/json"
	"time"
)

type Action string

const (
	ActionBuy   Action = "BUY"
	ActionSell  Action = "SELL"
	ActionHold  Action = "HOLD"
	ActionError Action = "ERROR"
)

func (a Action) IsValid() bool {
	switch a {
	case ActionBuy, ActionSell, ActionHold, ActionError:
		return true
	}
	return false
}

type Tool string

const (
	ToolTechnical Tool = "technical"
	ToolSentiment Tool = "sentiment"
)

// ToolSet is the set of analysis tools chosen for a query.
type ToolSet struct {
	Technical bool
	Sentiment bool
}

func (s ToolSet) Has(t Tool) bool {
	switch t {
	case ToolTechnical:
		return s.Technical
	case ToolSentiment:
		return s.Sentiment
	}
	return false
}

func (s ToolSet) Tools() []Tool {
	var out []Tool
	if s.Technical {
		out = append(out, ToolTechnical)
	}
	if s.Sentiment {
		out = append(out, ToolSentiment)
	}
	return out
}

func (s ToolSet) Empty() bool { return !s.Technical && !s.Sentiment }

// Recommendation is the envelope returned for every query, successful or not.
type Recommendation struct {
	Ticker     string           `json:"ticker"`
	Action     Action           `json:"recommendation"`
	Technical  *TechnicalResult `json:"technical_analysis"`
	Sentiment  *SentimentResult `json:"sentiment_analysis"`
	Summary    string           `json:"summary"`
	Confidence float64          `json:"confidence"`
	Timestamp  time.Time        `json:"timestamp"`
	Error      *ErrorInfo       `json:"error"`
}

// ErrorRecommendation builds the envelope for a query that failed before
// any analysis ran.
func ErrorRecommendation(ticker string, err error, ts time.Time) Recommendation {
	info := InfoFromError(err)
	if info == nil {
		info = &ErrorInfo{Code: CodeInternal, Message: "unknown error"}
	}
	return Recommendation{
		Ticker:    ticker,
		Action:    ActionError,
		Summary:   info.Message,
		Timestamp: ts.UTC(),
		Error:     info,
	}
}

func (r Recommendation) Succeeded() bool {
	return r.Action != ActionError && r.Error == nil
}

func (r Recommendation) MarshalJSON() ([]byte, error) {
	type alias Recommendation
	w := struct {
		Ticker *string `json:"ticker"`
		alias
	}{alias: alias(r)}
	if r.Ticker != "" {
		w.Ticker = &r.Ticker
	}
	return json.Marshal(w)
}
