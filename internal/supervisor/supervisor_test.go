package supervisor

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"trading-supervisor/internal/domain"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

type stubTechnical struct {
	result domain.TechnicalResult
	err    error
	panic  bool
	delay  time.Duration
	calls  int
	mu     sync.Mutex
}

func (s *stubTechnical) AnalyzeTechnical(ctx context.Context, ticker string) (domain.TechnicalResult, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.panic {
		panic("boom")
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return domain.TechnicalResult{}, ctx.Err()
		}
	}
	if s.err != nil {
		return domain.TechnicalResult{}, s.err
	}
	r := s.result
	r.Ticker = ticker
	return r, nil
}

type stubSentiment struct {
	result domain.SentimentResult
	err    error
	panic  bool
	calls  int
	mu     sync.Mutex
}

func (s *stubSentiment) AnalyzeSentiment(ctx context.Context, ticker string) (domain.SentimentResult, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.panic {
		panic("boom")
	}
	if s.err != nil {
		return domain.SentimentResult{}, s.err
	}
	r := s.result
	r.Ticker = ticker
	return r, nil
}

type recordingRecorder struct {
	mu       sync.Mutex
	actions  []domain.Action
	failures []domain.Tool
}

func (r *recordingRecorder) ObserveQuery(action domain.Action, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
}

func (r *recordingRecorder) ObserveToolFailure(tool domain.Tool, code domain.ErrorCode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, tool)
}

func newSupervisor(tech TechnicalAnalyzer, sent SentimentAnalyzer, opts Options) *Supervisor {
	s := New(testTracer, zerolog.Nop(), tech, sent, opts)
	s.now = func() time.Time { return testNow }
	s.synthesizer = fixedSynthesizer()
	return s
}

func goodTechnical(t *testing.T, rsi float64) *stubTechnical {
	return &stubTechnical{result: *techResult(t, rsi)}
}

func goodSentiment(t *testing.T, s domain.Sentiment, c float64) *stubSentiment {
	return &stubSentiment{result: *sentResult(t, s, c)}
}

func TestHandleQueryBothTools(t *testing.T) {
	for _, parallel := range []bool{true, false} {
		tech := goodTechnical(t, 25)
		sent := goodSentiment(t, domain.SentimentBullish, 0.9)
		rec := &recordingRecorder{}
		s := newSupervisor(tech, sent, Options{Parallel: parallel, Recorder: rec})

		got := s.HandleQuery(context.Background(), "Should I buy MSFT?", "session-1")
		if got.Ticker != "MSFT" || got.Action != domain.ActionBuy || got.Confidence != 0.85 {
			t.Fatalf("parallel=%t: unexpected recommendation %+v", parallel, got)
		}
		if got.Technical == nil || got.Technical.Ticker != "MSFT" || got.Sentiment == nil {
			t.Fatalf("parallel=%t: sub-results missing", parallel)
		}
		if tech.calls != 1 || sent.calls != 1 {
			t.Fatalf("parallel=%t: expected one call each, got %d/%d", parallel, tech.calls, sent.calls)
		}
		if len(rec.actions) != 1 || rec.actions[0] != domain.ActionBuy {
			t.Fatalf("parallel=%t: recorder saw %v", parallel, rec.actions)
		}
	}
}

func TestHandleQueryConflictExample(t *testing.T) {
	s := newSupervisor(goodTechnical(t, 75), goodSentiment(t, domain.SentimentBullish, 0.7), Options{Parallel: true})
	got := s.HandleQuery(context.Background(), "Should I buy AAPL?", "")
	if got.Action != domain.ActionHold || got.Confidence != 0.6 {
		t.Fatalf("expected HOLD 0.60, got %s %.2f", got.Action, got.Confidence)
	}
}

func TestHandleQueryTechnicalOnlySelection(t *testing.T) {
	tech := goodTechnical(t, 50)
	sent := goodSentiment(t, domain.SentimentBullish, 0.9)
	s := newSupervisor(tech, sent, Options{Parallel: true})

	got := s.HandleQuery(context.Background(), "What is the RSI for TSLA?", "")
	if sent.calls != 0 {
		t.Fatalf("sentiment provider must not be invoked, got %d calls", sent.calls)
	}
	if tech.calls != 1 {
		t.Fatalf("expected one technical call, got %d", tech.calls)
	}
	if got.Sentiment != nil {
		t.Fatal("unselected tool must be absent from the envelope")
	}
	if got.Action != domain.ActionHold || !strings.Contains(got.Summary, "sentiment unavailable") {
		t.Fatalf("unexpected recommendation: %+v", got)
	}
}

func TestHandleQueryShortCircuits(t *testing.T) {
	tests := []struct {
		name  string
		query string
		code  domain.ErrorCode
	}{
		{"no ticker", "Tell me about stocks", domain.CodeInvalidTicker},
		{"empty", "   ", domain.CodeValidation},
		{"too long", "AAPL " + strings.Repeat("x", domain.MaxQueryLength), domain.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tech := goodTechnical(t, 50)
			sent := goodSentiment(t, domain.SentimentBullish, 0.9)
			got := newSupervisor(tech, sent, Options{Parallel: true}).HandleQuery(context.Background(), tt.query, "")

			if got.Action != domain.ActionError || got.Confidence != 0 {
				t.Fatalf("expected ERROR envelope, got %+v", got)
			}
			if got.Error == nil || got.Error.Code != tt.code {
				t.Fatalf("expected %s, got %+v", tt.code, got.Error)
			}
			if got.Technical != nil || got.Sentiment != nil || got.Ticker != "" {
				t.Fatalf("short-circuited envelope must carry no data: %+v", got)
			}
			if got.Summary == "" {
				t.Fatal("summary must describe the failure")
			}
			if tech.calls+sent.calls != 0 {
				t.Fatal("no provider may be called before a ticker is resolved")
			}
		})
	}
}

func TestHandleQueryGracefulDegradation(t *testing.T) {
	rec := &recordingRecorder{}
	tech := &stubTechnical{err: domain.InsufficientDataf("only 5 closes")}
	sent := goodSentiment(t, domain.SentimentBearish, 0.8)
	got := newSupervisor(tech, sent, Options{Parallel: true, Recorder: rec}).
		HandleQuery(context.Background(), "Should I buy AAPL?", "")

	if got.Action != domain.ActionSell || got.Confidence != 0.64 {
		t.Fatalf("expected SELL 0.64 from sentiment alone, got %s %.2f", got.Action, got.Confidence)
	}
	if !strings.Contains(got.Summary, "technical unavailable") {
		t.Fatalf("summary must mention the missing tool: %q", got.Summary)
	}
	if got.Technical == nil || got.Technical.Error == nil || got.Technical.Error.Code != domain.CodeInsufficientData {
		t.Fatalf("errored technical result must be embedded: %+v", got.Technical)
	}
	if len(rec.failures) != 1 || rec.failures[0] != domain.ToolTechnical {
		t.Fatalf("expected one technical failure recorded, got %v", rec.failures)
	}
}

func TestHandleQueryAllToolsFailed(t *testing.T) {
	tech := &stubTechnical{err: errors.New("connection refused")}
	sent := &stubSentiment{err: context.DeadlineExceeded}
	got := newSupervisor(tech, sent, Options{Parallel: true}).
		HandleQuery(context.Background(), "Should I buy AAPL?", "")

	if got.Action != domain.ActionError || got.Confidence != 0 {
		t.Fatalf("expected ERROR, got %+v", got)
	}
	if got.Error == nil || got.Error.Code != domain.CodeAllToolsFailed {
		t.Fatalf("expected ALL_TOOLS_FAILED, got %+v", got.Error)
	}
	if got.Technical.Error.Code != domain.CodeExternalUnavailable {
		t.Fatalf("untyped errors classify as external failures, got %s", got.Technical.Error.Code)
	}
	if got.Sentiment.Error.Code != domain.CodeTimeout {
		t.Fatalf("deadline errors classify as timeouts, got %s", got.Sentiment.Error.Code)
	}
}

func TestHandleQueryToolPanicIsIsolated(t *testing.T) {
	tech := &stubTechnical{panic: true}
	sent := goodSentiment(t, domain.SentimentBullish, 0.5)
	got := newSupervisor(tech, sent, Options{Parallel: true}).
		HandleQuery(context.Background(), "Should I buy AAPL?", "")

	if got.Action != domain.ActionBuy {
		t.Fatalf("expected the surviving tool to decide, got %+v", got)
	}
	if got.Technical.Error == nil || got.Technical.Error.Code != domain.CodeInternal {
		t.Fatalf("expected INTERNAL_ERROR on the panicking tool, got %+v", got.Technical)
	}
}

func TestHandleQueryMissingAnalyzers(t *testing.T) {
	got := newSupervisor(nil, nil, Options{}).HandleQuery(context.Background(), "Should I buy AAPL?", "")
	if got.Action != domain.ActionError || got.Error.Code != domain.CodeAllToolsFailed {
		t.Fatalf("expected ERROR envelope, got %+v", got)
	}
}

func TestHandleQueryTimeoutBoundsTools(t *testing.T) {
	tech := &stubTechnical{delay: time.Second}
	sent := goodSentiment(t, domain.SentimentBullish, 0.9)
	s := newSupervisor(tech, sent, Options{Parallel: true, Timeout: 20 * time.Millisecond})

	start := time.Now()
	got := s.HandleQuery(context.Background(), "Should I buy AAPL?", "")
	if time.Since(start) > 500*time.Millisecond {
		t.Fatal("query budget was not enforced")
	}
	if got.Technical.Error == nil || got.Technical.Error.Code != domain.CodeTimeout {
		t.Fatalf("expected technical timeout, got %+v", got.Technical)
	}
	if got.Action != domain.ActionBuy {
		t.Fatalf("expected sentiment-only BUY, got %s", got.Action)
	}
}

func TestHandleQueryEnvelopeRoundTrip(t *testing.T) {
	s := newSupervisor(goodTechnical(t, 80), goodSentiment(t, domain.SentimentBearish, 0.6), Options{Parallel: true})
	rec := s.HandleQuery(context.Background(), "Should I sell NVDA?", "")

	raw, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back struct {
		Ticker     string  `json:"ticker"`
		Action     string  `json:"recommendation"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Ticker != "NVDA" || back.Action != string(domain.ActionSell) || back.Confidence != rec.Confidence {
		t.Fatalf("round trip mismatch: %+v vs %+v", back, rec)
	}
}
