package service

import (
	"context"
	"fmt"
	"time"

	"trading-supervisor/internal/domain"
	"trading-supervisor/internal/provider"
	"trading-supervisor/pkg/retry"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type NewsSource interface {
	FetchNewsSentiment(ctx context.Context, ticker string) ([]domain.NewsArticle, error)
}

func DefaultSentimentRetry() retry.Policy {
	return retry.Policy{
		MaxRetries:    2,
		InitialDelay:  time.Second,
		BackoffFactor: 2,
		MaxDelay:      10 * time.Second,
		Timeout:       15 * time.Second,
	}
}

// SentimentService aggregates relevance-weighted news sentiment.
type SentimentService struct {
	tracer trace.Tracer
	logger zerolog.Logger
	source NewsSource
	policy retry.Policy
	now    func() time.Time
}

func NewSentimentService(tracer trace.Tracer, logger zerolog.Logger, source NewsSource, policy retry.Policy) *SentimentService {
	if policy.MaxRetries == 0 && policy.Timeout == 0 {
		policy = DefaultSentimentRetry()
	}
	if policy.Retryable == nil {
		policy.Retryable = provider.IsRetryable
	}
	return &SentimentService{
		tracer: tracer,
		logger: logger.With().Str("component", "sentiment").Logger(),
		source: source,
		policy: policy,
		now:    time.Now,
	}
}

func (s *SentimentService) AnalyzeSentiment(ctx context.Context, ticker string) (domain.SentimentResult, error) {
	ctx, span := s.tracer.Start(ctx, "sentiment-service.analyze")
	defer span.End()
	span.SetAttributes(attribute.String("ticker", ticker))

	policy := s.policy
	policy.OnRetry = func(attempt int, err error, wait time.Duration) {
		s.logger.Debug().Err(err).Int("attempt", attempt).Dur("wait", wait).Str("ticker", ticker).Msg("retrying news fetch")
	}

	articles, err := retry.Do(ctx, policy, func(ctx context.Context) ([]domain.NewsArticle, error) {
		return s.source.FetchNewsSentiment(ctx, ticker)
	})
	if err != nil {
		err = upstreamError(err, "failed to fetch news sentiment for %s", ticker)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(domain.CodeOf(err)))
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("sentiment analysis failed")
		return domain.SentimentResult{}, err
	}

	agg := AggregateSentiment(ticker, articles)
	result, err := domain.NewSentimentResult(ticker, agg.Sentiment, agg.Confidence, agg.Rationale, agg.Matched, agg.Average, s.now())
	if err != nil {
		span.RecordError(err)
		return domain.SentimentResult{}, err
	}

	span.SetAttributes(
		attribute.Int("articles", agg.Matched),
		attribute.String("sentiment", string(agg.Sentiment)),
	)
	s.logger.Info().
		Str("ticker", ticker).
		Str("sentiment", string(result.Sentiment)).
		Float64("confidence", result.Confidence).
		Int("articles", agg.Matched).
		Msg("sentiment analysis complete")
	return result, nil
}

type Aggregate struct {
	Sentiment  domain.Sentiment
	Confidence float64
	Rationale  string
	Matched    int
	Average    float64
}

// AggregateSentiment averages score×relevance over every mention of ticker.
// No data at all, or no mention of the ticker, yields a Bearish result at
// base confidence.
func AggregateSentiment(ticker string, articles []domain.NewsArticle) Aggregate {
	if len(articles) == 0 {
		return Aggregate{
			Sentiment:  domain.SentimentBearish,
			Confidence: 0.5,
			Rationale:  fmt.Sprintf("No recent news articles found for %s", ticker),
		}
	}

	var sum float64
	matched := 0
	for _, a := range articles {
		for _, m := range a.TickerMentions {
			if m.Ticker != ticker {
				continue
			}
			sum += m.Score * m.Relevance
			matched++
		}
	}
	if matched == 0 {
		return Aggregate{
			Sentiment:  domain.SentimentBearish,
			Confidence: 0.5,
			Rationale:  fmt.Sprintf("No specific sentiment data found for %s in recent news", ticker),
		}
	}

	avg := sum / float64(matched)
	direction := "negative"
	if avg > 0 {
		direction = "positive"
	}
	return Aggregate{
		Sentiment:  domain.ClassifySentiment(avg),
		Confidence: domain.Round2(domain.SentimentConfidence(avg, matched)),
		Rationale: fmt.Sprintf("Based on %d recent news articles, average sentiment score is %.3f (%s)",
			matched, avg, direction),
		Matched: matched,
		Average: avg,
	}
}
