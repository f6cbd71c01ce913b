package supervisor

import (
	"regexp"

	"trading-supervisor/internal/domain"
)

var tickerCandidate = regexp.MustCompile(`\b[A-Z]{1,5}\b`)

// stopWords are short uppercase words that are never treated as tickers.
var stopWords = map[string]struct{}{
	"I": {}, "A": {}, "THE": {}, "AND": {}, "OR": {}, "BUT": {}, "FOR": {},
	"TO": {}, "OF": {}, "IN": {}, "ON": {}, "AT": {}, "BY": {},
}

// ExtractTicker returns the first standalone run of 1-5 uppercase letters
// that is not a stop word. Any such token counts; there is no exchange
// lookup.
func ExtractTicker(query string) (string, error) {
	for _, candidate := range tickerCandidate.FindAllString(query, -1) {
		if _, stop := stopWords[candidate]; stop {
			continue
		}
		return candidate, nil
	}
	return "", domain.InvalidTickerf("no valid ticker symbol found in query %q", truncate(query, 80))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
