package domain

import (
	"encoding/json"
	"time"
)

type Momentum string

const (
	MomentumOverbought Momentum = "Overbought"
	MomentumOversold   Momentum = "Oversold"
	MomentumNeutral    Momentum = "Neutral"
)

const (
	OverboughtThreshold = 70.0
	OversoldThreshold   = 30.0
)

// ClassifyMomentum maps an RSI score to its band. Both thresholds are
// themselves Neutral.
func ClassifyMomentum(rsi float64) Momentum {
	switch {
	case rsi > OverboughtThreshold:
		return MomentumOverbought
	case rsi < OversoldThreshold:
		return MomentumOversold
	default:
		return MomentumNeutral
	}
}

type TechnicalResult struct {
	Ticker         string     `json:"ticker" validate:"required,ticker"`
	CurrentPrice   float64    `json:"current_price" validate:"gt=0"`
	RSI            float64    `json:"rsi" validate:"gte=0,lte=100"`
	Signal         Momentum   `json:"rsi_signal"`
	PriceChange24h float64    `json:"price_change_24h"`
	Timestamp      time.Time  `json:"timestamp"`
	Error          *ErrorInfo `json:"error"`
}

func NewTechnicalResult(ticker string, price, rsi, change24h float64, ts time.Time) (TechnicalResult, error) {
	r := TechnicalResult{
		Ticker:         ticker,
		CurrentPrice:   roundTo(price, 2),
		RSI:            roundTo(rsi, 2),
		PriceChange24h: roundTo(change24h, 2),
		Timestamp:      ts.UTC(),
	}
	if err := checkStruct(CodeInternal, r); err != nil {
		return TechnicalResult{}, err
	}
	// Classify the unrounded value.
	r.Signal = ClassifyMomentum(rsi)
	return r, nil
}

// FailedTechnical records a technical tool failure for ticker.
func FailedTechnical(ticker string, err error, ts time.Time) TechnicalResult {
	if err == nil {
		err = Internal(nil, "technical analysis failed")
	}
	return TechnicalResult{Ticker: ticker, Timestamp: ts.UTC(), Error: InfoFromError(err)}
}

func (r TechnicalResult) Failed() bool { return r.Error != nil }

// MarshalJSON writes the numeric fields as null when the result carries an
// error so that zero values are never mistaken for readings.
func (r TechnicalResult) MarshalJSON() ([]byte, error) {
	type wire struct {
		Ticker         string     `json:"ticker"`
		CurrentPrice   *float64   `json:"current_price"`
		RSI            *float64   `json:"rsi"`
		Signal         *Momentum  `json:"rsi_signal"`
		PriceChange24h *float64   `json:"price_change_24h"`
		Timestamp      time.Time  `json:"timestamp"`
		Error          *ErrorInfo `json:"error"`
	}
	w := wire{Ticker: r.Ticker, Timestamp: r.Timestamp, Error: r.Error}
	if r.Error == nil {
		w.CurrentPrice = &r.CurrentPrice
		w.RSI = &r.RSI
		w.Signal = &r.Signal
		w.PriceChange24h = &r.PriceChange24h
	}
	return json.Marshal(w)
}
