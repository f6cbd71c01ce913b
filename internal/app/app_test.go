package app

import (
	"testing"

	"trading-supervisor/internal/config"
	"trading-supervisor/internal/provider"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

func TestNewPriceSourcePrefersPolygon(t *testing.T) {
	cfg := &config.Config{PolygonAPIKey: "pk_test_123", MarketDataBaseURL: "http://example.test"}
	src, name := NewPriceSource(cfg, testTracer)
	if name != "polygon" {
		t.Fatalf("expected polygon, got %s", name)
	}
	if _, ok := src.(*provider.PolygonProvider); !ok {
		t.Fatalf("expected *provider.PolygonProvider, got %T", src)
	}
}

func TestNewPriceSourceFallsBackToYahoo(t *testing.T) {
	src, name := NewPriceSource(&config.Config{MarketDataBaseURL: "http://example.test"}, testTracer)
	if name != "yahoo" {
		t.Fatalf("expected yahoo, got %s", name)
	}
	if _, ok := src.(*provider.YahooProvider); !ok {
		t.Fatalf("expected *provider.YahooProvider, got %T", src)
	}
}

func TestNewSupervisor(t *testing.T) {
	cfg := &config.Config{QueryTimeoutSecs: 5, ParallelTools: true, RSIPeriod: 14, PriceHistoryDays: 90, NewsLimit: 10}
	if s := NewSupervisor(cfg, testTracer, zerolog.Nop(), nil); s == nil {
		t.Fatal("expected a supervisor")
	}
}
