package supervisor

import (
	"fmt"
	"strings"
	"time"

	"trading-supervisor/internal/domain"
)

type decision struct {
	action     domain.Action
	confidence float64
	summary    string
}

// decisionTable fuses a momentum band with a sentiment direction. The
// summary is a format string taking the RSI value.
var decisionTable = map[domain.Momentum]map[domain.Sentiment]decision{
	domain.MomentumOverbought: {
		domain.SentimentBearish: {domain.ActionSell, 0.8, "Strong sell signal: RSI overbought (%.1f) with bearish sentiment"},
		domain.SentimentBullish: {domain.ActionHold, 0.5, "Hold: Conflicting signals - overbought (%.1f) but bullish sentiment"},
	},
	domain.MomentumOversold: {
		domain.SentimentBullish: {domain.ActionBuy, 0.8, "Strong buy signal: RSI oversold (%.1f) with bullish sentiment"},
		domain.SentimentBearish: {domain.ActionHold, 0.5, "Hold: Conflicting signals - oversold (%.1f) but bearish sentiment"},
	},
	domain.MomentumNeutral: {
		domain.SentimentBullish: {domain.ActionBuy, 0.65, "Buy signal: Neutral momentum (%.1f) with positive sentiment"},
		domain.SentimentBearish: {domain.ActionSell, 0.65, "Sell signal: Neutral momentum (%.1f) with negative sentiment"},
	},
}

var technicalOnly = map[domain.Momentum]decision{
	domain.MomentumOverbought: {domain.ActionSell, 0.6, "RSI overbought (%.1f) suggests potential pullback"},
	domain.MomentumOversold:   {domain.ActionBuy, 0.6, "RSI oversold (%.1f) suggests potential bounce"},
	domain.MomentumNeutral:    {domain.ActionHold, 0.5, "RSI neutral (%.1f) - no clear technical signal"},
}

const (
	technicalOnlyLead = "Based on technical analysis only (sentiment unavailable)"
	sentimentOnlyLead = "Based on sentiment analysis only (technical unavailable)"
	allToolsFailedMsg = "Unable to generate recommendation - both analysis tools failed"
)

// Synthesizer turns the (possibly partial) tool results into one
// recommendation. It holds no state besides its clock.
type Synthesizer struct {
	now func() time.Time
}

func NewSynthesizer() *Synthesizer {
	return &Synthesizer{now: time.Now}
}

// Synthesize never fails. A nil or errored result counts as absent; both
// absent yields an ERROR recommendation with zero confidence. Whatever
// results were passed in are embedded unchanged.
func (s *Synthesizer) Synthesize(ticker string, tech *domain.TechnicalResult, sent *domain.SentimentResult) domain.Recommendation {
	rec := domain.Recommendation{
		Ticker:    ticker,
		Technical: tech,
		Sentiment: sent,
		Timestamp: s.now().UTC(),
	}

	haveTech := tech != nil && !tech.Failed()
	haveSent := sent != nil && !sent.Failed()

	var parts []string
	switch {
	case haveTech && haveSent:
		d := decisionTable[tech.Signal][sent.Sentiment]
		if d.action == "" {
			d = decision{domain.ActionHold, 0.5, "Hold: Unclassified signals (%.1f)"}
		}
		rec.Action = d.action
		rec.Confidence = domain.Round2((d.confidence + sent.Confidence) / 2)
		parts = append(parts, fmt.Sprintf(d.summary, tech.RSI))

	case haveTech:
		d, ok := technicalOnly[tech.Signal]
		if !ok {
			d = technicalOnly[domain.MomentumNeutral]
		}
		rec.Action = d.action
		rec.Confidence = d.confidence
		parts = append(parts, technicalOnlyLead, fmt.Sprintf(d.summary, tech.RSI))

	case haveSent:
		rec.Action = domain.ActionSell
		direction := "Bearish"
		if sent.Sentiment == domain.SentimentBullish {
			rec.Action = domain.ActionBuy
			direction = "Bullish"
		}
		rec.Confidence = domain.Round2(sent.Confidence * 0.8)
		parts = append(parts, sentimentOnlyLead,
			fmt.Sprintf("%s sentiment (%.0f%% confidence)", direction, sent.Confidence*100))

	default:
		rec.Action = domain.ActionError
		rec.Confidence = 0
		rec.Summary = allToolsFailedMsg + "."
		rec.Error = &domain.ErrorInfo{Code: domain.CodeAllToolsFailed, Message: "All tools failed"}
		return rec
	}

	rec.Summary = strings.Join(parts, ". ") + "."
	return rec
}
