package service

import (
	"context"
	"errors"
	"time"

	"trading-supervisor/internal/domain"
	"trading-supervisor/internal/provider"
	"trading-supervisor/internal/ta"
	"trading-supervisor/pkg/retry"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// PriceSource supplies daily closes, oldest first.
type PriceSource interface {
	FetchDailyCloses(ctx context.Context, ticker string, days int) ([]domain.PricePoint, error)
}

type TechnicalOptions struct {
	RSIPeriod   int
	HistoryDays int
	Retry       retry.Policy
}

func DefaultTechnicalOptions() TechnicalOptions {
	return TechnicalOptions{
		RSIPeriod:   ta.DefaultRSIPeriod,
		HistoryDays: 90,
		Retry: retry.Policy{
			MaxRetries:    3,
			InitialDelay:  time.Second,
			BackoffFactor: 2,
			MaxDelay:      10 * time.Second,
			Timeout:       10 * time.Second,
		},
	}
}

// TechnicalService computes RSI momentum for a ticker.
type TechnicalService struct {
	tracer trace.Tracer
	logger zerolog.Logger
	source PriceSource
	opts   TechnicalOptions
	now    func() time.Time
}

func NewTechnicalService(tracer trace.Tracer, logger zerolog.Logger, source PriceSource, opts TechnicalOptions) *TechnicalService {
	def := DefaultTechnicalOptions()
	if opts.RSIPeriod <= 0 {
		opts.RSIPeriod = def.RSIPeriod
	}
	if opts.HistoryDays <= 0 {
		opts.HistoryDays = def.HistoryDays
	}
	if opts.Retry.Retryable == nil {
		opts.Retry.Retryable = provider.IsRetryable
	}
	return &TechnicalService{
		tracer: tracer,
		logger: logger.With().Str("component", "technical").Logger(),
		source: source,
		opts:   opts,
		now:    time.Now,
	}
}

// AnalyzeTechnical fetches recent closes and classifies RSI momentum.
// Failures are *domain.Error values with INSUFFICIENT_DATA,
// EXTERNAL_API_ERROR or TIMEOUT_ERROR codes.
func (s *TechnicalService) AnalyzeTechnical(ctx context.Context, ticker string) (domain.TechnicalResult, error) {
	ctx, span := s.tracer.Start(ctx, "technical-service.analyze")
	defer span.End()
	span.SetAttributes(attribute.String("ticker", ticker))

	result, err := s.analyze(ctx, ticker)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(domain.CodeOf(err)))
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("technical analysis failed")
		return domain.TechnicalResult{}, err
	}

	span.SetAttributes(
		attribute.Float64("rsi", result.RSI),
		attribute.String("rsi_signal", string(result.Signal)),
	)
	s.logger.Info().
		Str("ticker", ticker).
		Float64("rsi", result.RSI).
		Str("signal", string(result.Signal)).
		Float64("price", result.CurrentPrice).
		Msg("technical analysis complete")
	return result, nil
}

func (s *TechnicalService) analyze(ctx context.Context, ticker string) (domain.TechnicalResult, error) {
	policy := s.opts.Retry
	policy.OnRetry = func(attempt int, err error, wait time.Duration) {
		s.logger.Debug().Err(err).Int("attempt", attempt).Dur("wait", wait).Str("ticker", ticker).Msg("retrying price fetch")
	}

	points, err := retry.Do(ctx, policy, func(ctx context.Context) ([]domain.PricePoint, error) {
		return s.source.FetchDailyCloses(ctx, ticker, s.opts.HistoryDays)
	})
	if err != nil {
		return domain.TechnicalResult{}, upstreamError(err, "failed to fetch price data for %s", ticker)
	}
	if len(points) == 0 {
		return domain.TechnicalResult{}, domain.Unavailable(nil, "no price data returned for %s", ticker)
	}

	closes := domain.Closes(points)
	rsi, err := ta.RSI(closes, s.opts.RSIPeriod)
	if errors.Is(err, ta.ErrInsufficientData) {
		return domain.TechnicalResult{}, domain.InsufficientDataf(
			"need at least %d price points for RSI, got %d", s.opts.RSIPeriod+1, len(closes))
	}
	if err != nil {
		return domain.TechnicalResult{}, domain.Internal(err, "rsi calculation failed for %s", ticker)
	}

	price := closes[len(closes)-1]
	if price <= 0 {
		return domain.TechnicalResult{}, domain.Unavailable(nil, "invalid latest close %.4f for %s", price, ticker)
	}
	return domain.NewTechnicalResult(ticker, price, rsi, ta.LastChange(closes), s.now())
}

// upstreamError maps a provider failure after retries to the taxonomy.
func upstreamError(err error, format string, args ...any) error {
	if retry.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return domain.Timeout(err, format, args...)
	}
	return domain.Unavailable(err, format, args...)
}
