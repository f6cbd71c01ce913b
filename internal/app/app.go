// Package app wires configuration into the analysis stack shared by the
// HTTP server and the MCP server.
package app

import (
	"time"

	"trading-supervisor/internal/config"
	"trading-supervisor/internal/provider"
	"trading-supervisor/internal/service"
	"trading-supervisor/internal/supervisor"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// NewPriceSource prefers Polygon when a key is configured and falls back to
// the keyless Yahoo chart API.
func NewPriceSource(cfg *config.Config, tracer trace.Tracer) (service.PriceSource, string) {
	if cfg.PolygonAPIKey != "" {
		return provider.NewPolygonProvider(tracer, cfg.PolygonAPIKey), "polygon"
	}
	return provider.NewYahooProvider(tracer, cfg.MarketDataBaseURL), "yahoo"
}

// NewSupervisor builds the providers, the two analysis services and the
// orchestrator. recorder may be nil.
func NewSupervisor(cfg *config.Config, tracer trace.Tracer, logger zerolog.Logger, recorder supervisor.Recorder) *supervisor.Supervisor {
	prices, source := NewPriceSource(cfg, tracer)
	technicalOpts := service.DefaultTechnicalOptions()
	technicalOpts.RSIPeriod = cfg.RSIPeriod
	technicalOpts.HistoryDays = cfg.PriceHistoryDays
	technical := service.NewTechnicalService(tracer, logger, prices, technicalOpts)

	news := provider.NewAlphaVantageProvider(tracer, cfg.AlphaVantageAPIKey, cfg.AlphaVantageBaseURL, cfg.NewsLimit)
	if !news.HasAPIKey() {
		logger.Warn().Msg("ALPHA_VANTAGE_API_KEY not set, sentiment analysis will report errors")
	}
	sentiment := service.NewSentimentService(tracer, logger, news, service.DefaultSentimentRetry())

	logger.Info().
		Str("price_source", source).
		Bool("parallel", cfg.ParallelTools).
		Int("query_timeout_secs", cfg.QueryTimeoutSecs).
		Msg("analysis stack ready")

	opts := supervisor.Options{
		Timeout:  time.Duration(cfg.QueryTimeoutSecs) * time.Second,
		Parallel: cfg.ParallelTools,
		Recorder: recorder,
	}
	return supervisor.New(tracer, logger, technical, sentiment, opts)
}
