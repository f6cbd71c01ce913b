package domain

import (
	"strings"
	"unicode/utf8"
)

const MaxQueryLength = 1000

// Query is one natural-language question. Ticker is empty until extraction
// succeeds.
type Query struct {
	Text      string `json:"text" validate:"required,max=1000"`
	Ticker    string `json:"ticker,omitempty" validate:"omitempty,ticker"`
	SessionID string `json:"session_id,omitempty"`
}

// NewQuery trims the text and enforces the length limits.
func NewQuery(text, sessionID string) (Query, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Query{}, Validationf("query cannot be empty")
	}
	if n := utf8.RuneCountInString(trimmed); n > MaxQueryLength {
		return Query{}, Validationf("query too long (%d characters, max %d)", n, MaxQueryLength)
	}
	q := Query{Text: trimmed, SessionID: strings.TrimSpace(sessionID)}
	if err := checkStruct(CodeValidation, q); err != nil {
		return Query{}, err
	}
	return q, nil
}

func (q Query) WithTicker(ticker string) (Query, error) {
	if !IsTicker(ticker) {
		return q, InvalidTickerf("invalid ticker format: %q", ticker)
	}
	q.Ticker = ticker
	return q, nil
}
