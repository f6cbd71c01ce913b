package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"trading-supervisor/internal/domain"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

var testNow = time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)

func TestExtractQuery(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		want    string
		wantErr bool
	}{
		{"input text", map[string]any{"inputText": "Analyze AAPL", "query": "other"}, "Analyze AAPL", false},
		{"query fallback", map[string]any{"query": "Buy MSFT?"}, "Buy MSFT?", false},
		{"text fallback", map[string]any{"query": "", "text": "NVDA news"}, "NVDA news", false},
		{"null input text falls back", map[string]any{"inputText": nil, "text": "TSLA"}, "TSLA", false},
		{"empty input text does not fall back", map[string]any{"inputText": "", "query": "AAPL"}, "", true},
		{"missing", map[string]any{"foo": "bar"}, "", true},
		{"non string", map[string]any{"inputText": 42.0}, "", true},
		{"whitespace", map[string]any{"query": "   "}, "", true},
		{"nil payload", nil, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractQuery(tt.payload)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrValidation) {
					t.Fatalf("expected validation error, got %q, %v", got, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseEvent(t *testing.T) {
	t.Run("agent event", func(t *testing.T) {
		ev, err := ParseEvent([]byte(`{"inputText":"Analyze AAPL","sessionId":"s-1","sessionAttributes":{"lastTicker":"MSFT"}}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ev.Query != "Analyze AAPL" || ev.SessionID != "s-1" || ev.Gateway {
			t.Fatalf("unexpected event: %+v", ev)
		}
		if ev.SessionAttributes["lastTicker"] != "MSFT" {
			t.Fatalf("session attributes not read: %+v", ev.SessionAttributes)
		}
	})

	t.Run("gateway string body", func(t *testing.T) {
		ev, err := ParseEvent([]byte(`{"httpMethod":"POST","body":"{\"query\":\"Should I buy NVDA?\"}"}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ev.Query != "Should I buy NVDA?" || !ev.Gateway {
			t.Fatalf("unexpected event: %+v", ev)
		}
	})

	t.Run("object body", func(t *testing.T) {
		ev, err := ParseEvent([]byte(`{"requestContext":{},"body":{"text":"GOOG sentiment"}}`))
		if err != nil || ev.Query != "GOOG sentiment" || !ev.Gateway {
			t.Fatalf("unexpected event: %+v, %v", ev, err)
		}
	})

	for name, raw := range map[string]string{
		"invalid body json": `{"httpMethod":"POST","body":"{not json"}`,
		"array event":       `["AAPL"]`,
		"garbage":           `nope`,
		"empty body":        `{"body":""}`,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseEvent([]byte(raw)); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func sampleRecommendation(t *testing.T) domain.Recommendation {
	t.Helper()
	tech, err := domain.NewTechnicalResult("AAPL", 180.5, 25.25, -1.5, testNow)
	if err != nil {
		t.Fatal(err)
	}
	sent, err := domain.NewSentimentResult("AAPL", domain.SentimentBullish, 0.9, "good news", 4, 0.3, testNow)
	if err != nil {
		t.Fatal(err)
	}
	return domain.Recommendation{
		Ticker:     "AAPL",
		Action:     domain.ActionBuy,
		Technical:  &tech,
		Sentiment:  &sent,
		Summary:    "Strong buy signal: RSI oversold (25.2) with bullish sentiment.",
		Confidence: 0.85,
		Timestamp:  testNow,
	}
}

func TestStatusCode(t *testing.T) {
	if got := StatusCode(sampleRecommendation(t)); got != http.StatusOK {
		t.Fatalf("success: got %d", got)
	}
	cases := map[error]int{
		domain.Validationf("empty"):         http.StatusBadRequest,
		domain.InvalidTickerf("none"):       http.StatusBadRequest,
		domain.Internal(nil, "boom"):        http.StatusInternalServerError,
		domain.Unavailable(nil, "upstream"): http.StatusInternalServerError,
	}
	for err, want := range cases {
		if got := StatusCode(domain.ErrorRecommendation("", err, testNow)); got != want {
			t.Fatalf("%v: got %d, want %d", err, got, want)
		}
	}
}

func TestFormatMessage(t *testing.T) {
	msg := FormatMessage(sampleRecommendation(t))
	for _, want := range []string{
		"Trading Analysis for AAPL\n\n",
		"Recommendation: BUY\n",
		"Confidence: 85%\n\n",
		"  - Current Price: $180.5\n",
		"  - RSI: 25.25\n",
		"  - Signal: Oversold\n",
		"  - Sentiment: Bullish\n",
		"  - Confidence: 90%\n",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}

	errMsg := FormatMessage(domain.ErrorRecommendation("", domain.InvalidTickerf("no valid ticker"), testNow))
	if !strings.HasPrefix(errMsg, "Error: no valid ticker") || !strings.Contains(errMsg, "Details: INVALID_TICKER") {
		t.Fatalf("unexpected error message: %q", errMsg)
	}
}

func TestFormatAgentResponse(t *testing.T) {
	resp, err := FormatAgentResponse(sampleRecommendation(t), "TradingTools", "/analyze")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.MessageVersion != "1.0" || resp.Response.HTTPMethod != "POST" || resp.Response.HTTPStatusCode != 200 {
		t.Fatalf("unexpected wrapper: %+v", resp)
	}
	if resp.SessionAttributes.LastTicker != "AAPL" || resp.SessionAttributes.LastRecommendation != "BUY" {
		t.Fatalf("unexpected session attributes: %+v", resp.SessionAttributes)
	}

	var body struct {
		Result  map[string]any `json:"result"`
		Message string         `json:"message"`
	}
	if err := json.Unmarshal([]byte(resp.Response.ResponseBody["application/json"].Body), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body.Result["recommendation"] != "BUY" || body.Result["ticker"] != "AAPL" || body.Message == "" {
		t.Fatalf("unexpected body: %+v", body)
	}

	raw, _ := json.Marshal(resp)
	for _, key := range []string{`"messageVersion"`, `"actionGroup":"TradingTools"`, `"apiPath":"/analyze"`, `"sessionAttributes"`} {
		if !strings.Contains(string(raw), key) {
			t.Fatalf("encoded response missing %s: %s", key, raw)
		}
	}
}

func TestFormatGatewayResponse(t *testing.T) {
	rec := domain.ErrorRecommendation("", domain.Validationf("query cannot be empty"), testNow)
	resp, err := FormatGatewayResponse(rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if resp.Headers["Access-Control-Allow-Origin"] != "*" || resp.Headers["Content-Type"] != "application/json" {
		t.Fatalf("missing CORS headers: %+v", resp.Headers)
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body["ticker"] != nil || body["recommendation"] != "ERROR" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

type stubQuerier struct {
	rec       domain.Recommendation
	text      string
	sessionID string
	calls     int
}

func (s *stubQuerier) HandleQuery(ctx context.Context, text, sessionID string) domain.Recommendation {
	s.calls++
	s.text, s.sessionID = text, sessionID
	return s.rec
}

func newAdapter(q Querier) *Adapter {
	a := NewAdapter(trace.NewNoopTracerProvider().Tracer("test"), zerolog.Nop(), q, "TradingTools", "/analyze")
	a.now = func() time.Time { return testNow }
	return a
}

func TestAdapterHandle(t *testing.T) {
	q := &stubQuerier{rec: sampleRecommendation(t)}
	a := newAdapter(q)

	out, status, err := a.Handle(context.Background(), []byte(`{"inputText":"Analyze AAPL","sessionId":"abc"}`), FormatAuto)
	if err != nil || status != http.StatusOK {
		t.Fatalf("unexpected result: %d, %v", status, err)
	}
	if _, ok := out.(AgentResponse); !ok {
		t.Fatalf("expected agent response, got %T", out)
	}
	if q.text != "Analyze AAPL" || q.sessionID != "abc" {
		t.Fatalf("querier got %q/%q", q.text, q.sessionID)
	}

	out, _, _ = a.Handle(context.Background(), []byte(`{"httpMethod":"POST","body":"{\"query\":\"AAPL\"}"}`), FormatAuto)
	if _, ok := out.(GatewayResponse); !ok {
		t.Fatalf("expected gateway response, got %T", out)
	}

	out, _, _ = a.Handle(context.Background(), []byte(`{"query":"AAPL"}`), FormatGateway)
	if _, ok := out.(GatewayResponse); !ok {
		t.Fatalf("forced gateway format ignored, got %T", out)
	}
}

func TestAdapterHandleBadEvent(t *testing.T) {
	q := &stubQuerier{}
	out, status, err := newAdapter(q).Handle(context.Background(), []byte(`{"foo":1}`), FormatAgent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != http.StatusBadRequest || q.calls != 0 {
		t.Fatalf("expected 400 without querying, got %d after %d calls", status, q.calls)
	}
	resp := out.(AgentResponse)
	if resp.Response.HTTPStatusCode != http.StatusBadRequest {
		t.Fatalf("wrapper status mismatch: %d", resp.Response.HTTPStatusCode)
	}
	if !strings.Contains(resp.Response.ResponseBody["application/json"].Body, "Invalid request format") {
		t.Fatalf("unexpected body: %s", resp.Response.ResponseBody["application/json"].Body)
	}
}
